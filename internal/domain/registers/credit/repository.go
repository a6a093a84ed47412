// Package credit provides the customer credit register (running tabs).
package credit

import (
	"context"
	"time"

	"granel/internal/core/id"
	"granel/internal/core/types"
)

// Payment is an immutable record of money received against a debt.
type Payment struct {
	ID         id.ID       `db:"id" json:"id"`
	CustomerID id.ID       `db:"customer_id" json:"customerId"`
	Amount     types.Money `db:"amount" json:"amount"`
	Note       string      `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
}

// NewPayment creates a payment record.
func NewPayment(customerID id.ID, amount types.Money, note string) Payment {
	return Payment{
		ID:         id.New(),
		CustomerID: customerID,
		Amount:     amount,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
}

// Repository defines operations for the credit register.
// The debt balance lives on the customer row; this repository is the only
// code allowed to write it.
type Repository interface {
	// GetBalanceForUpdate returns the customer balance with a row lock;
	// must run inside a transaction
	GetBalanceForUpdate(ctx context.Context, customerID id.ID) (types.Money, error)

	// GetBalance returns the customer balance without locking
	GetBalance(ctx context.Context, customerID id.ID) (types.Money, error)

	// SetBalance overwrites the customer balance
	SetBalance(ctx context.Context, customerID id.ID, balance types.Money) error

	// CreatePayment appends an immutable payment record
	CreatePayment(ctx context.Context, payment Payment) error

	// GetPayments returns payment history, newest first
	GetPayments(ctx context.Context, customerID id.ID, filter PaymentFilter) ([]Payment, error)
}

// PaymentFilter for payment history queries.
type PaymentFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
