// Package inventory provides the per-branch inventory register.
package inventory

import (
	"context"
	"time"

	"granel/internal/core/entity"
	"granel/internal/core/id"
	"granel/internal/core/types"
)

// Repository defines operations for the inventory register.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements
	CreateMovements(ctx context.Context, movements []entity.InventoryMovement) error

	// DeleteMovementsByRecorder removes all movements for a document
	// Used during sale reversal
	DeleteMovementsByRecorder(ctx context.Context, recorderType string, recorderID id.ID) ([]entity.InventoryMovement, error)

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, recorderType string, recorderID id.ID) ([]entity.InventoryMovement, error)

	// Balance operations

	// EnsureRow creates a zero-quantity balance row if absent
	EnsureRow(ctx context.Context, productID, branchID id.ID) error

	// GetBalance returns the current balance row
	GetBalance(ctx context.Context, productID, branchID id.ID) (entity.InventoryBalance, error)

	// GetBalanceForUpdate returns the balance row with a row lock
	// (SELECT ... FOR UPDATE); must run inside a transaction
	GetBalanceForUpdate(ctx context.Context, productID, branchID id.ID) (entity.InventoryBalance, error)

	// AddQuantity applies a signed delta to the balance row
	AddQuantity(ctx context.Context, productID, branchID id.ID, delta types.Quantity) error

	// SetQuantity overwrites on-hand with an absolute value (stocktaking)
	SetQuantity(ctx context.Context, productID, branchID id.ID, quantity types.Quantity) error

	// GetBalancesByBranch returns all balance rows for a branch
	GetBalancesByBranch(ctx context.Context, branchID id.ID, filter BalanceFilter) ([]entity.InventoryBalance, error)

	// GetBalancesByProduct returns balances across all branches
	GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.InventoryBalance, error)

	// SetPriceOverrides stores branch price overrides (nil clears them)
	SetPriceOverrides(ctx context.Context, productID, branchID id.ID, retail, wholesale *types.Money, threshold *types.Quantity) error

	// Reporting

	// GetMovementHistory returns movement history for a product
	GetMovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.InventoryMovement, error)
}

// BalanceFilter for filtering balance queries.
type BalanceFilter struct {
	ProductIDs  []id.ID
	ExcludeZero bool
	BelowQty    *types.Quantity
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	BranchID     *id.ID
	MovementType *entity.MovementType
	FromDate     *time.Time
	ToDate       *time.Time
	Limit        int
	Offset       int
}
