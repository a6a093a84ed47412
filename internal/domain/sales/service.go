package sales

import (
	"context"
	"fmt"
	"time"

	"granel/internal/core/apperror"
	appctx "granel/internal/core/context"
	"granel/internal/core/id"
	"granel/internal/core/tx"
	"granel/internal/core/types"
	"granel/internal/domain"
	"granel/internal/domain/catalogs/product"
	"granel/internal/domain/pricing"
	"granel/pkg/logger"
	"granel/pkg/numerator"
)

// InventoryRegister is the slice of the inventory service the
// orchestrator needs.
type InventoryRegister interface {
	Reserve(ctx context.Context, recorderType string, recorderID id.ID, productID, branchID id.ID, qty types.Quantity) error
	RemoveMovements(ctx context.Context, recorderType string, recorderID id.ID) error
}

// CreditRegister is the slice of the credit service the orchestrator needs.
type CreditRegister interface {
	PostDebt(ctx context.Context, customerID id.ID, amount types.Money) error
	ReverseDebt(ctx context.Context, customerID id.ID, amount types.Money) error
}

// ProductReader supplies catalog data for pricing.
type ProductReader interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// PricingResolver resolves branch price overrides over product defaults.
type PricingResolver interface {
	EffectivePricing(ctx context.Context, productID, branchID id.ID, defaults pricing.BranchPricing) (pricing.BranchPricing, error)
}

// Service is the sale transaction orchestrator. One sale create or
// delete is one database transaction spanning stock checks, stock
// mutations, document writes, and ledger posting.
type Service struct {
	repo      Repository
	inventory InventoryRegister
	credit    CreditRegister
	products  ProductReader
	resolver  PricingResolver
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new sale orchestrator.
func NewService(
	repo Repository,
	inventory InventoryRegister,
	credit CreditRegister,
	products ProductReader,
	resolver PricingResolver,
	numerator *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		inventory: inventory,
		credit:    credit,
		products:  products,
		resolver:  resolver,
		numerator: numerator,
		txManager: txManager,
	}
}

// PricedLine is one already-priced cart line going into a sale.
type PricedLine struct {
	// ProductID is nil for quick items
	ProductID   *id.ID         `json:"productId,omitempty"`
	ProductName string         `json:"productName"`
	Quantity    types.Quantity `json:"quantity"`
	UnitPrice   types.Money    `json:"unitPrice"`
	Tier        pricing.Tier   `json:"priceTier"`
	Subtotal    types.Money    `json:"subtotal"`
}

// SaleInput is the request to create a sale.
type SaleInput struct {
	BranchID   id.ID
	SaleType   SaleType
	CustomerID *id.ID

	// PaidAmount defaults to the total for cash sales and zero for
	// credit sales when nil
	PaidAmount *types.Money

	Lines []PricedLine
}

// build assembles a Sale document from the input.
func (in SaleInput) build() *Sale {
	sale := New(in.BranchID, in.SaleType)
	sale.CustomerID = in.CustomerID

	for _, l := range in.Lines {
		sale.Lines = append(sale.Lines, SaleLine{
			LineID:      id.New(),
			SaleID:      sale.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Tier:        l.Tier,
			Subtotal:    types.RoundMoney(l.Subtotal),
		})
	}
	sale.RecalculateTotal()

	switch {
	case in.PaidAmount != nil:
		sale.Paid = types.RoundMoney(*in.PaidAmount)
	case in.SaleType == SaleCash:
		sale.Paid = sale.Total
	default:
		sale.Paid = types.Zero()
	}

	return sale
}

// Create prices nothing and trusts its lines; it validates payment
// invariants, reserves stock for every catalog line, persists the
// document, and posts any unpaid part to the customer tab. All of it
// commits or none of it does.
func (s *Service) Create(ctx context.Context, input SaleInput) (*Sale, error) {
	sale := input.build()

	if operatorID := appctx.GetOperatorID(ctx); !id.IsNil(operatorID) {
		sale.OperatorID = &operatorID
	}

	if err := sale.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Stock first: any failing reservation aborts before the
		// document exists.
		for _, line := range sale.Lines {
			if line.IsQuickItem() {
				continue
			}
			if err := s.inventory.Reserve(ctx, RecorderType, sale.ID, *line.ProductID, sale.BranchID, line.Quantity); err != nil {
				return err
			}
		}

		// Numbering shares the transaction, so a failed sale cannot
		// leave a gap in the sequence.
		if sale.Number == "" {
			number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("S"), time.Now())
			if err != nil {
				return fmt.Errorf("generate number: %w", err)
			}
			sale.Number = number
		}

		if err := s.repo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.repo.SaveLines(ctx, sale.ID, sale.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		if sale.SaleType == SaleCredit && sale.CustomerID != nil {
			if err := s.credit.PostDebt(ctx, *sale.CustomerID, sale.Outstanding()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale created",
		"id", sale.ID,
		"number", sale.Number,
		"branch_id", sale.BranchID,
		"type", sale.SaleType,
		"total", sale.Total,
	)

	return sale, nil
}

// Delete is the exact inverse of Create, applied to the sale's original
// recorded lines: stock released via the movement journal, the recorded
// unpaid part reversed on the tab, then the document removed.
func (s *Service) Delete(ctx context.Context, saleID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.repo.GetByID(ctx, saleID)
		if err != nil {
			return err
		}

		if err := s.inventory.RemoveMovements(ctx, RecorderType, sale.ID); err != nil {
			return err
		}

		if sale.SaleType == SaleCredit && sale.CustomerID != nil {
			if err := s.credit.ReverseDebt(ctx, *sale.CustomerID, sale.Outstanding()); err != nil {
				return err
			}
		}

		if err := s.repo.DeleteWithLines(ctx, sale.ID); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}

		logger.Info(ctx, "sale deleted", "id", sale.ID, "number", sale.Number)
		return nil
	})
}

// Replace atomically deletes a sale and creates its replacement in one
// transaction. This is the edit-a-sale flow; there is no in-place update.
func (s *Service) Replace(ctx context.Context, oldID id.ID, input SaleInput) (*Sale, error) {
	var created *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.Delete(ctx, oldID); err != nil {
			return err
		}
		sale, err := s.Create(ctx, input)
		if err != nil {
			return err
		}
		created = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a sale with its lines.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	sale.Lines = lines

	return sale, nil
}

// List retrieves sales with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error) {
	return s.repo.List(ctx, filter)
}

// --- Cart pricing ---

// PriceMode selects how a cart item is specified.
type PriceMode string

const (
	// ModeAmount prices by cash amount ("give me $1500 worth")
	ModeAmount PriceMode = "amount"
	// ModeQuantity prices by requested quantity
	ModeQuantity PriceMode = "quantity"
)

// CartItem is one unpriced cart entry.
type CartItem struct {
	ProductID id.ID
	Mode      PriceMode
	Amount    types.Money
	Quantity  types.Quantity
}

// PriceCart prices each cart item using the product's effective branch
// pricing. It reads catalog data only; no stock is touched.
func (s *Service) PriceCart(ctx context.Context, branchID id.ID, items []CartItem) ([]PricedLine, error) {
	lines := make([]PricedLine, 0, len(items))

	for i, item := range items {
		p, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		if !p.Active {
			return nil, apperror.NewBusinessRule("PRODUCT_INACTIVE", "product is not for sale").
				WithDetail("product_id", item.ProductID)
		}

		effective, err := s.resolver.EffectivePricing(ctx, p.ID, branchID, p.DefaultPricing())
		if err != nil {
			return nil, fmt.Errorf("item %d: resolve pricing: %w", i+1, err)
		}

		var quote pricing.Quote
		switch item.Mode {
		case ModeAmount:
			quote, err = pricing.PriceByAmount(p.Category, effective, item.Amount)
		case ModeQuantity:
			quote, err = pricing.PriceByQuantity(p.Category, effective, item.Quantity)
		default:
			err = apperror.NewValidation("unknown price mode").
				WithDetail("mode", string(item.Mode))
		}
		if err != nil {
			return nil, err
		}

		productID := p.ID
		lines = append(lines, PricedLine{
			ProductID:   &productID,
			ProductName: p.Name,
			Quantity:    quote.Quantity,
			UnitPrice:   quote.UnitPrice,
			Tier:        quote.Tier,
			Subtotal:    quote.Total,
		})
	}

	return lines, nil
}
