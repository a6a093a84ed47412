// Package sales provides the Sale document and the transactional
// orchestrator that composes pricing, inventory, and credit.
package sales

import (
	"context"

	"granel/internal/core/apperror"
	"granel/internal/core/entity"
	"granel/internal/core/id"
	"granel/internal/core/types"
	"granel/internal/domain/pricing"
)

// RecorderType identifies sale movements in the inventory register.
const RecorderType = "Sale"

// SaleType defines how the sale is paid.
type SaleType string

const (
	// SaleCash is paid in full at the counter
	SaleCash SaleType = "cash"
	// SaleCredit leaves the unpaid part on the customer tab
	SaleCredit SaleType = "credit"
)

// IsValid reports whether the sale type is known.
func (t SaleType) IsValid() bool {
	return t == SaleCash || t == SaleCredit
}

// Sale represents a completed sale document.
type Sale struct {
	entity.Document

	BranchID id.ID `db:"branch_id" json:"branchId"`

	// CustomerID is required for credit sales, optional otherwise
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`

	// OperatorID records the seller at the counter; nil when the sale
	// was created outside an operator session
	OperatorID *id.ID `db:"operator_id" json:"operatorId,omitempty"`

	SaleType SaleType `db:"sale_type" json:"saleType"`

	// Total is the sum of line subtotals
	Total types.Money `db:"total" json:"total"`

	// Paid is the amount received at sale time
	Paid types.Money `db:"paid" json:"paid"`

	// Table part
	Lines []SaleLine `db:"-" json:"lines"`
}

// SaleLine is one priced cart line frozen at sale time.
// Lines keep the product name and unit price as sold, so later catalog
// edits never change what a past sale says.
type SaleLine struct {
	LineID id.ID `db:"id" json:"lineId"`
	SaleID id.ID `db:"sale_id" json:"saleId"`

	// ProductID is nil for quick items (free-text lines with no
	// catalog reference and no stock effect)
	ProductID *id.ID `db:"product_id" json:"productId,omitempty"`

	ProductName string         `db:"product_name" json:"productName"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice   types.Money    `db:"unit_price" json:"unitPrice"`
	Tier        pricing.Tier   `db:"price_tier" json:"priceTier"`
	Subtotal    types.Money    `db:"subtotal" json:"subtotal"`
}

// IsQuickItem reports whether the line has no catalog product.
func (l *SaleLine) IsQuickItem() bool {
	return l.ProductID == nil
}

// New creates a sale document shell; lines and totals are filled by the
// orchestrator.
func New(branchID id.ID, saleType SaleType) *Sale {
	return &Sale{
		Document: entity.NewDocument(),
		BranchID: branchID,
		SaleType: saleType,
		Total:    types.Zero(),
		Paid:     types.Zero(),
		Lines:    make([]SaleLine, 0),
	}
}

// Outstanding returns the unpaid part of the sale.
func (s *Sale) Outstanding() types.Money {
	return s.Total.Sub(s.Paid)
}

// RecalculateTotal recomputes the header total from line subtotals.
func (s *Sale) RecalculateTotal() {
	total := types.Zero()
	for _, line := range s.Lines {
		total = total.Add(line.Subtotal)
	}
	s.Total = types.RoundMoney(total)
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(s.BranchID) {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}

	if !s.SaleType.IsValid() {
		return apperror.NewValidation("invalid sale type").
			WithDetail("field", "saleType").
			WithDetail("value", string(s.SaleType))
	}

	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range s.Lines {
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
		if line.Subtotal.IsNegative() {
			return apperror.NewInvalidPrice("line subtotal cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	// Payment invariants
	if s.Paid.IsNegative() {
		return apperror.NewInvalidPayment("paid amount cannot be negative")
	}

	switch s.SaleType {
	case SaleCredit:
		if s.CustomerID == nil || id.IsNil(*s.CustomerID) {
			return apperror.NewValidation("credit sale requires a customer").
				WithDetail("field", "customerId")
		}
		if s.Paid.GreaterThan(s.Total) {
			return apperror.NewInvalidPayment("paid amount exceeds sale total")
		}
	case SaleCash:
		if !s.Paid.Equal(s.Total) {
			return apperror.NewInvalidPayment("cash sale must be paid in full")
		}
	}

	return nil
}
