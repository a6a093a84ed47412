// Package quotes provides the Quote document (saved priced carts).
// A quote never touches stock or ledgers until it converts to a sale.
package quotes

import (
	"context"

	"granel/internal/core/apperror"
	"granel/internal/core/entity"
	"granel/internal/core/id"
	"granel/internal/core/types"
	"granel/internal/domain/pricing"
)

// Status is the quote lifecycle state.
// pending -> converted (terminal). No other transitions.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConverted Status = "converted"
)

// Quote represents a saved, priced cart.
type Quote struct {
	entity.Document

	BranchID id.ID `db:"branch_id" json:"branchId"`

	// CustomerName is a free-text label; quotes are not tied to the
	// customer catalog
	CustomerName string `db:"customer_name" json:"customerName,omitempty"`

	Status Status `db:"status" json:"status"`

	Total types.Money `db:"total" json:"total"`

	// SaleID links the sale created at conversion
	SaleID *id.ID `db:"sale_id" json:"saleId,omitempty"`

	// Table part
	Lines []QuoteLine `db:"-" json:"lines"`
}

// QuoteLine is a name/price/quantity snapshot. Lines are never re-priced
// at conversion time; conversion trusts the stored subtotal.
type QuoteLine struct {
	LineID  id.ID `db:"id" json:"lineId"`
	QuoteID id.ID `db:"quote_id" json:"quoteId"`

	// ProductID is nil for quick items
	ProductID *id.ID `db:"product_id" json:"productId,omitempty"`

	ProductName string         `db:"product_name" json:"productName"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice   types.Money    `db:"unit_price" json:"unitPrice"`
	Tier        pricing.Tier   `db:"price_tier" json:"priceTier"`
	Subtotal    types.Money    `db:"subtotal" json:"subtotal"`
}

// New creates a pending quote shell.
func New(branchID id.ID, customerName string) *Quote {
	return &Quote{
		Document:     entity.NewDocument(),
		BranchID:     branchID,
		CustomerName: customerName,
		Status:       StatusPending,
		Total:        types.Zero(),
		Lines:        make([]QuoteLine, 0),
	}
}

// IsConverted reports whether the quote already became a sale.
func (q *Quote) IsConverted() bool {
	return q.Status == StatusConverted
}

// RecalculateTotal recomputes the header total from line subtotals.
func (q *Quote) RecalculateTotal() {
	total := types.Zero()
	for _, line := range q.Lines {
		total = total.Add(line.Subtotal)
	}
	q.Total = types.RoundMoney(total)
}

// Validate implements entity.Validatable.
func (q *Quote) Validate(ctx context.Context) error {
	if err := q.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(q.BranchID) {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}

	if q.Status != StatusPending && q.Status != StatusConverted {
		return apperror.NewValidation("invalid quote status").
			WithDetail("field", "status").
			WithDetail("value", string(q.Status))
	}

	if len(q.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range q.Lines {
		if line.ProductName == "" {
			return apperror.NewValidation("line name is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewInvalidQuantity("line quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
