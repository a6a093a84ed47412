package inventory

import (
	"context"
	"fmt"

	"granel/internal/core/apperror"
	"granel/internal/core/entity"
	"granel/internal/core/id"
	"granel/internal/core/types"
	"granel/internal/domain/pricing"
	"granel/pkg/logger"
)

// Service provides business operations for the inventory register.
// Mutating operations must run inside a caller-managed transaction;
// the row lock taken by Reserve and SetQuantity only lives that long.
type Service struct {
	repo Repository
}

// NewService creates a new inventory register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Reserve checks availability and decrements on-hand for one line.
// The balance row is locked for the rest of the transaction, so two
// concurrent sales cannot both pass the check against the same stock.
func (s *Service) Reserve(ctx context.Context, recorderType string, recorderID id.ID, productID, branchID id.ID, qty types.Quantity) error {
	if !qty.IsPositive() {
		return apperror.NewInvalidQuantity("reserve quantity must be positive")
	}

	balance, err := s.repo.GetBalanceForUpdate(ctx, productID, branchID)
	if err != nil {
		return fmt.Errorf("get balance for %s: %w", productID, err)
	}

	if balance.Quantity < qty {
		return apperror.NewInsufficientStock(
			productID.String(),
			qty.Float64(),
			balance.Quantity.Float64(),
		)
	}

	if err := s.repo.AddQuantity(ctx, productID, branchID, qty.Neg()); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	movement := entity.NewInventoryMovement(recorderType, recorderID, entity.MovementExpense, productID, branchID, qty)
	if err := s.repo.CreateMovements(ctx, []entity.InventoryMovement{movement}); err != nil {
		return fmt.Errorf("record movement: %w", err)
	}

	return nil
}

// Release increments on-hand (restock or sale reversal).
// Returned stock is always accepted; there is no upper bound.
func (s *Service) Release(ctx context.Context, recorderType string, recorderID id.ID, productID, branchID id.ID, qty types.Quantity) error {
	if !qty.IsPositive() {
		return apperror.NewInvalidQuantity("release quantity must be positive")
	}

	if err := s.repo.EnsureRow(ctx, productID, branchID); err != nil {
		return fmt.Errorf("ensure balance row: %w", err)
	}

	if err := s.repo.AddQuantity(ctx, productID, branchID, qty); err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}

	movement := entity.NewInventoryMovement(recorderType, recorderID, entity.MovementReceipt, productID, branchID, qty)
	if err := s.repo.CreateMovements(ctx, []entity.InventoryMovement{movement}); err != nil {
		return fmt.Errorf("record movement: %w", err)
	}

	return nil
}

// RemoveMovements reverses everything a document did to the register:
// deletes its movements and applies the inverse deltas to balances.
func (s *Service) RemoveMovements(ctx context.Context, recorderType string, recorderID id.ID) error {
	movements, err := s.repo.DeleteMovementsByRecorder(ctx, recorderType, recorderID)
	if err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	for _, m := range movements {
		// Adjustments are absolute writes; their inverse is unknowable,
		// so they are only removed from the journal.
		if m.MovementType == entity.MovementAdjustment {
			continue
		}
		if err := s.repo.AddQuantity(ctx, m.ProductID, m.BranchID, m.SignedQuantity().Neg()); err != nil {
			return fmt.Errorf("revert balance for %s: %w", m.ProductID, err)
		}
	}

	logger.Info(ctx, "reversed inventory movements",
		"recorder_type", recorderType,
		"recorder_id", recorderID,
		"count", len(movements),
	)

	return nil
}

// SetQuantity overwrites on-hand with an absolute value (stocktaking).
// Records an adjustment movement carrying the applied delta.
func (s *Service) SetQuantity(ctx context.Context, recorderType string, recorderID id.ID, productID, branchID id.ID, qty types.Quantity) error {
	if qty.IsNegative() {
		return apperror.NewInvalidQuantity("on-hand quantity cannot be negative")
	}

	if err := s.repo.EnsureRow(ctx, productID, branchID); err != nil {
		return fmt.Errorf("ensure balance row: %w", err)
	}

	balance, err := s.repo.GetBalanceForUpdate(ctx, productID, branchID)
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}

	if err := s.repo.SetQuantity(ctx, productID, branchID, qty); err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}

	movement := entity.NewInventoryMovement(recorderType, recorderID, entity.MovementAdjustment, productID, branchID, qty)
	if err := s.repo.CreateMovements(ctx, []entity.InventoryMovement{movement}); err != nil {
		return fmt.Errorf("record movement: %w", err)
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", productID,
		"branch_id", branchID,
		"from", balance.Quantity,
		"to", qty,
	)

	return nil
}

// InitProduct creates zero-quantity balance rows for a new product at
// the given branches.
func (s *Service) InitProduct(ctx context.Context, productID id.ID, branchIDs []id.ID) error {
	for _, branchID := range branchIDs {
		if err := s.repo.EnsureRow(ctx, productID, branchID); err != nil {
			return fmt.Errorf("init row for branch %s: %w", branchID, err)
		}
	}
	return nil
}

// GetBalance returns the current balance for product+branch.
func (s *Service) GetBalance(ctx context.Context, productID, branchID id.ID) (entity.InventoryBalance, error) {
	return s.repo.GetBalance(ctx, productID, branchID)
}

// GetBranchStock returns all balance rows for a branch.
func (s *Service) GetBranchStock(ctx context.Context, branchID id.ID, filter BalanceFilter) ([]entity.InventoryBalance, error) {
	return s.repo.GetBalancesByBranch(ctx, branchID, filter)
}

// GetProductAvailability returns available quantity across branches.
func (s *Service) GetProductAvailability(ctx context.Context, productID id.ID) (types.Quantity, error) {
	balances, err := s.repo.GetBalancesByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("get balances: %w", err)
	}

	var total types.Quantity
	for _, b := range balances {
		total += b.Quantity
	}

	return total, nil
}

// SetPriceOverrides stores branch price overrides for a product.
func (s *Service) SetPriceOverrides(ctx context.Context, productID, branchID id.ID, retail, wholesale *types.Money, threshold *types.Quantity) error {
	if retail != nil && !retail.IsPositive() {
		return apperror.NewInvalidPrice("retail override must be positive")
	}
	if wholesale != nil && !wholesale.IsPositive() {
		return apperror.NewInvalidPrice("wholesale override must be positive")
	}

	if err := s.repo.EnsureRow(ctx, productID, branchID); err != nil {
		return fmt.Errorf("ensure balance row: %w", err)
	}

	return s.repo.SetPriceOverrides(ctx, productID, branchID, retail, wholesale, threshold)
}

// EffectivePricing resolves branch overrides over product defaults.
func (s *Service) EffectivePricing(ctx context.Context, productID, branchID id.ID, defaults pricing.BranchPricing) (pricing.BranchPricing, error) {
	balance, err := s.repo.GetBalance(ctx, productID, branchID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return defaults, nil
		}
		return pricing.BranchPricing{}, err
	}

	effective := defaults
	if balance.PriceRetail != nil {
		effective.Retail = *balance.PriceRetail
	}
	if balance.PriceWholesale != nil {
		effective.Wholesale = *balance.PriceWholesale
	}
	if balance.WholesaleThreshold != nil {
		effective.Threshold = *balance.WholesaleThreshold
	}
	return effective, nil
}

// GetMovementHistory returns movement history for a product.
func (s *Service) GetMovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.InventoryMovement, error) {
	return s.repo.GetMovementHistory(ctx, productID, filter)
}
