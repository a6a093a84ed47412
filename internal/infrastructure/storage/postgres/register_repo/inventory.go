// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"granel/internal/core/apperror"
	"granel/internal/core/entity"
	"granel/internal/core/id"
	"granel/internal/core/types"
	"granel/internal/domain/registers/inventory"
	"granel/internal/infrastructure/storage/postgres"
)

const (
	inventoryTable = "reg_inventory"
	movementsTable = "reg_inventory_movements"
)

var movementCols = []string{
	"id", "product_id", "branch_id",
	"recorder_type", "recorder_id", "movement_type",
	"quantity", "created_at",
}

var balanceCols = []string{
	"product_id", "branch_id", "quantity",
	"price_retail", "price_wholesale", "wholesale_threshold",
}

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewInventoryRepo creates a new inventory register repository.
func NewInventoryRepo(txManager *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ inventory.Repository = (*InventoryRepo)(nil)

// CreateMovements batch inserts movements.
func (r *InventoryRepo) CreateMovements(ctx context.Context, movements []entity.InventoryMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.ProductID, m.BranchID,
				m.RecorderType, m.RecorderID, m.MovementType,
				m.Quantity, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, movementsTable, movementCols, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	// Fallback: plain insert. Prefer calling within a transaction.
	q := r.builder.Insert(movementsTable).Columns(movementCols...)
	for _, m := range movements {
		q = q.Values(
			m.LineID, m.ProductID, m.BranchID,
			m.RecorderType, m.RecorderID, m.MovementType,
			m.Quantity, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

// DeleteMovementsByRecorder removes and returns all movements for a document.
func (r *InventoryRepo) DeleteMovementsByRecorder(ctx context.Context, recorderType string, recorderID id.ID) ([]entity.InventoryMovement, error) {
	q := r.builder.Delete(movementsTable).
		Where(squirrel.Eq{"recorder_type": recorderType}).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		Suffix("RETURNING " + strings.Join(movementCols, ", "))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete: %w", err)
	}

	var movements []entity.InventoryMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("delete movements: %w", err)
	}

	return movements, nil
}

// GetMovementsByRecorder retrieves all movements for a document.
func (r *InventoryRepo) GetMovementsByRecorder(ctx context.Context, recorderType string, recorderID id.ID) ([]entity.InventoryMovement, error) {
	q := r.builder.Select(movementCols...).
		From(movementsTable).
		Where(squirrel.Eq{"recorder_type": recorderType}).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.InventoryMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// EnsureRow creates a zero-quantity balance row if absent.
func (r *InventoryRepo) EnsureRow(ctx context.Context, productID, branchID id.ID) error {
	sql := `
		INSERT INTO reg_inventory (product_id, branch_id, quantity)
		VALUES ($1, $2, 0)
		ON CONFLICT (product_id, branch_id) DO NOTHING
	`
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, productID, branchID); err != nil {
		return fmt.Errorf("ensure inventory row: %w", err)
	}
	return nil
}

// GetBalance returns the current balance row. A missing row reads as
// zero stock with no overrides.
func (r *InventoryRepo) GetBalance(ctx context.Context, productID, branchID id.ID) (entity.InventoryBalance, error) {
	var balance entity.InventoryBalance

	q := r.builder.Select(balanceCols...).
		From(inventoryTable).
		Where(squirrel.Eq{
			"product_id": productID,
			"branch_id":  branchID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.InventoryBalance{
				ProductID: productID,
				BranchID:  branchID,
				Quantity:  0,
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalanceForUpdate returns the balance row with a pessimistic lock.
// A missing row reads as zero stock (nothing to lock, nothing to sell).
func (r *InventoryRepo) GetBalanceForUpdate(ctx context.Context, productID, branchID id.ID) (entity.InventoryBalance, error) {
	var balance entity.InventoryBalance

	sql := `
		SELECT product_id, branch_id, quantity, price_retail, price_wholesale, wholesale_threshold
		FROM reg_inventory
		WHERE product_id = $1 AND branch_id = $2
		FOR UPDATE
	`

	err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &balance, sql, productID, branchID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return entity.InventoryBalance{
				ProductID: productID,
				BranchID:  branchID,
				Quantity:  0,
			}, nil
		}
		return balance, fmt.Errorf("get balance for update: %w", err)
	}

	return balance, nil
}

// AddQuantity applies a signed delta to the balance row.
func (r *InventoryRepo) AddQuantity(ctx context.Context, productID, branchID id.ID, delta types.Quantity) error {
	q := r.builder.Update(inventoryTable).
		Set("quantity", squirrel.Expr("quantity + ?", delta.Int64Scaled())).
		Where(squirrel.Eq{
			"product_id": productID,
			"branch_id":  branchID,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(inventoryTable, fmt.Sprintf("%s@%s", productID, branchID))
	}

	return nil
}

// SetQuantity overwrites on-hand with an absolute value.
func (r *InventoryRepo) SetQuantity(ctx context.Context, productID, branchID id.ID, quantity types.Quantity) error {
	q := r.builder.Update(inventoryTable).
		Set("quantity", quantity.Int64Scaled()).
		Where(squirrel.Eq{
			"product_id": productID,
			"branch_id":  branchID,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(inventoryTable, fmt.Sprintf("%s@%s", productID, branchID))
	}

	return nil
}

// GetBalancesByBranch returns balance rows for a branch.
func (r *InventoryRepo) GetBalancesByBranch(ctx context.Context, branchID id.ID, filter inventory.BalanceFilter) ([]entity.InventoryBalance, error) {
	q := r.builder.Select(balanceCols...).
		From(inventoryTable).
		Where(squirrel.Eq{"branch_id": branchID})

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}
	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductIDs})
	}
	if filter.BelowQty != nil {
		q = q.Where(squirrel.LtOrEq{"quantity": filter.BelowQty.Int64Scaled()})
	}

	q = q.OrderBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.InventoryBalance
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetBalancesByProduct returns balances across all branches.
func (r *InventoryRepo) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.InventoryBalance, error) {
	q := r.builder.Select(balanceCols...).
		From(inventoryTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("branch_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.InventoryBalance
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// SetPriceOverrides stores branch price overrides (nil clears them).
func (r *InventoryRepo) SetPriceOverrides(ctx context.Context, productID, branchID id.ID, retail, wholesale *types.Money, threshold *types.Quantity) error {
	var thresholdScaled *int64
	if threshold != nil {
		v := threshold.Int64Scaled()
		thresholdScaled = &v
	}

	q := r.builder.Update(inventoryTable).
		Set("price_retail", retail).
		Set("price_wholesale", wholesale).
		Set("wholesale_threshold", thresholdScaled).
		Where(squirrel.Eq{
			"product_id": productID,
			"branch_id":  branchID,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set price overrides: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(inventoryTable, fmt.Sprintf("%s@%s", productID, branchID))
	}

	return nil
}

// GetMovementHistory returns movement history for a product.
func (r *InventoryRepo) GetMovementHistory(ctx context.Context, productID id.ID, filter inventory.MovementFilter) ([]entity.InventoryMovement, error) {
	q := r.builder.Select(movementCols...).
		From(movementsTable).
		Where(squirrel.Eq{"product_id": productID})

	if filter.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *filter.BranchID})
	}
	if filter.MovementType != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.MovementType})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.InventoryMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}
