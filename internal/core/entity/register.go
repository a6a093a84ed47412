package entity

import (
	"time"

	"granel/internal/core/id"
	"granel/internal/core/types"
)

// MovementType defines movement direction for the inventory register.
type MovementType string

const (
	// MovementReceipt increases on-hand quantity (restock, sale reversal)
	MovementReceipt MovementType = "receipt"
	// MovementExpense decreases on-hand quantity (sale)
	MovementExpense MovementType = "expense"
	// MovementAdjustment sets quantity to an absolute value (stocktaking)
	MovementAdjustment MovementType = "adjustment"
)

// InventoryMovement is one journal entry in the inventory register.
// Movements are immutable - never updated, only deleted and recreated
// together with their recorder document.
type InventoryMovement struct {
	// LineID is the unique identifier for this movement (UUIDv7)
	LineID id.ID `db:"id" json:"lineId"`

	// Dimensions
	ProductID id.ID `db:"product_id" json:"productId"`
	BranchID  id.ID `db:"branch_id" json:"branchId"`

	// RecorderType is the document type that created this movement
	// (e.g., "Sale", "Restock", "Adjustment")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	MovementType MovementType `db:"movement_type" json:"movementType"`

	// Resources
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewInventoryMovement creates a movement with a generated LineID.
func NewInventoryMovement(recorderType string, recorderID id.ID, movementType MovementType, productID, branchID id.ID, quantity types.Quantity) InventoryMovement {
	return InventoryMovement{
		LineID:       id.New(),
		ProductID:    productID,
		BranchID:     branchID,
		RecorderType: recorderType,
		RecorderID:   recorderID,
		MovementType: movementType,
		Quantity:     quantity,
		CreatedAt:    time.Now().UTC(),
	}
}

// SignedQuantity returns quantity with sign based on movement type.
// Receipt = positive, Expense = negative.
func (m *InventoryMovement) SignedQuantity() types.Quantity {
	if m.MovementType == MovementExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// InventoryBalance is the materialized on-hand row for fast balance
// queries and row-level locking, plus the branch price overrides.
type InventoryBalance struct {
	// Dimensions
	ProductID id.ID `db:"product_id" json:"productId"`
	BranchID  id.ID `db:"branch_id" json:"branchId"`

	// On-hand quantity, never negative after a committed transaction
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Branch price overrides; nil falls back to the product defaults
	PriceRetail        *types.Money    `db:"price_retail" json:"priceRetail,omitempty"`
	PriceWholesale     *types.Money    `db:"price_wholesale" json:"priceWholesale,omitempty"`
	WholesaleThreshold *types.Quantity `db:"wholesale_threshold" json:"wholesaleThreshold,omitempty"`
}
