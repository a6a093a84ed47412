package credit

import (
	"context"
	"fmt"

	"granel/internal/core/apperror"
	"granel/internal/core/id"
	"granel/internal/core/tx"
	"granel/internal/core/types"
	"granel/pkg/logger"
)

// Service provides business operations for the credit register.
// PostDebt and ReverseDebt expect a caller-managed transaction (they run
// as part of a sale); RecordPayment opens its own.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new credit register service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// PostDebt increments the customer balance by the unpaid part of a
// credit sale. Amount must be non-negative: a credit sale cannot have
// paid more than its total.
func (s *Service) PostDebt(ctx context.Context, customerID id.ID, amount types.Money) error {
	if amount.IsNegative() {
		return apperror.NewInvalidPayment("paid amount exceeds sale total")
	}
	if amount.IsZero() {
		return nil
	}

	balance, err := s.repo.GetBalanceForUpdate(ctx, customerID)
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}

	newBalance := types.RoundMoney(balance.Add(amount))
	if err := s.repo.SetBalance(ctx, customerID, newBalance); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}

	logger.Info(ctx, "debt posted",
		"customer_id", customerID,
		"amount", amount,
		"balance", newBalance,
	)

	return nil
}

// ReverseDebt decrements the customer balance, floored at zero.
// A previously corrected or manually adjusted balance must never go
// negative from a reversal.
func (s *Service) ReverseDebt(ctx context.Context, customerID id.ID, amount types.Money) error {
	if amount.IsNegative() {
		return apperror.NewInvalidPayment("reversal amount cannot be negative")
	}
	if amount.IsZero() {
		return nil
	}

	balance, err := s.repo.GetBalanceForUpdate(ctx, customerID)
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}

	newBalance := types.RoundMoney(balance.Sub(amount))
	if newBalance.IsNegative() {
		newBalance = types.Zero()
	}

	if err := s.repo.SetBalance(ctx, customerID, newBalance); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}

	logger.Info(ctx, "debt reversed",
		"customer_id", customerID,
		"amount", amount,
		"balance", newBalance,
	)

	return nil
}

// RecordPayment decrements the balance and appends an immutable payment
// record, atomically. Paying more than the current balance is rejected.
func (s *Service) RecordPayment(ctx context.Context, customerID id.ID, amount types.Money, note string) (Payment, error) {
	if !amount.IsPositive() {
		return Payment{}, apperror.NewInvalidPayment("payment amount must be positive")
	}

	var payment Payment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		balance, err := s.repo.GetBalanceForUpdate(ctx, customerID)
		if err != nil {
			return fmt.Errorf("get balance: %w", err)
		}

		if amount.GreaterThan(balance) {
			return apperror.NewOverpayment(
				customerID.String(),
				amount.InexactFloat64(),
				balance.InexactFloat64(),
			)
		}

		newBalance := types.RoundMoney(balance.Sub(amount))
		if err := s.repo.SetBalance(ctx, customerID, newBalance); err != nil {
			return fmt.Errorf("set balance: %w", err)
		}

		payment = NewPayment(customerID, types.RoundMoney(amount), note)
		if err := s.repo.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return Payment{}, err
	}

	logger.Info(ctx, "payment recorded",
		"customer_id", customerID,
		"payment_id", payment.ID,
		"amount", payment.Amount,
	)

	return payment, nil
}

// GetBalance returns the current customer balance.
func (s *Service) GetBalance(ctx context.Context, customerID id.ID) (types.Money, error) {
	return s.repo.GetBalance(ctx, customerID)
}

// Payments returns payment history for a customer.
func (s *Service) Payments(ctx context.Context, customerID id.ID, filter PaymentFilter) ([]Payment, error) {
	return s.repo.GetPayments(ctx, customerID, filter)
}
