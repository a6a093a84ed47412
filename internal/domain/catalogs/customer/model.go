// Package customer provides the Customer catalog with credit balances.
package customer

import (
	"context"

	"granel/internal/core/apperror"
	"granel/internal/core/entity"
	"granel/internal/core/id"
	"granel/internal/core/types"
)

// Customer represents a buyer who may carry a running debt.
type Customer struct {
	entity.Catalog

	Phone   string `db:"phone" json:"phone,omitempty"`
	Address string `db:"address" json:"address,omitempty"`

	// BranchID is the home branch; nil means a global customer.
	BranchID *id.ID `db:"branch_id" json:"branchId,omitempty"`

	// DebtBalance is maintained exclusively by the credit register.
	// Catalog updates never touch it.
	DebtBalance types.Money `db:"debt_balance" json:"debtBalance"`
}

// New creates a new Customer with a zero balance.
func New(name string) *Customer {
	return &Customer{
		Catalog: entity.NewCatalog(name),
	}
}

// HasDebt reports whether the customer owes anything.
func (c *Customer) HasDebt() bool {
	return c.DebtBalance.IsPositive()
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.DebtBalance.IsNegative() {
		return apperror.NewValidation("debt balance cannot be negative").
			WithDetail("field", "debtBalance")
	}

	return nil
}
