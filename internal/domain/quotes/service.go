package quotes

import (
	"context"
	"fmt"
	"time"

	"granel/internal/core/apperror"
	"granel/internal/core/id"
	"granel/internal/core/tx"
	"granel/internal/core/types"
	"granel/internal/domain"
	"granel/internal/domain/sales"
	"granel/pkg/logger"
	"granel/pkg/numerator"
)

// SaleCreator is the slice of the sale orchestrator the converter needs.
type SaleCreator interface {
	Create(ctx context.Context, input sales.SaleInput) (*sales.Sale, error)
}

// Service provides quote lifecycle operations.
type Service struct {
	repo      Repository
	sales     SaleCreator
	numerator *numerator.Service
	txManager tx.Manager
}

// NewService creates a new quote service.
func NewService(repo Repository, saleCreator SaleCreator, numerator *numerator.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		sales:     saleCreator,
		numerator: numerator,
		txManager: txManager,
	}
}

// QuoteInput is the request to save a priced cart as a quote.
type QuoteInput struct {
	BranchID     id.ID
	CustomerName string
	Lines        []sales.PricedLine
}

// Create persists a pending quote. Stock is not checked and nothing is
// reserved; a quote is only a snapshot.
func (s *Service) Create(ctx context.Context, input QuoteInput) (*Quote, error) {
	quote := New(input.BranchID, input.CustomerName)
	for _, l := range input.Lines {
		quote.Lines = append(quote.Lines, QuoteLine{
			LineID:      id.New(),
			QuoteID:     quote.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Tier:        l.Tier,
			Subtotal:    types.RoundMoney(l.Subtotal),
		})
	}
	quote.RecalculateTotal()

	if err := quote.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Numbering shares the transaction, so a failed quote cannot
		// leave a gap in the sequence.
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("Q"), time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		quote.Number = number

		if err := s.repo.Create(ctx, quote); err != nil {
			return fmt.Errorf("create quote: %w", err)
		}
		if err := s.repo.SaveLines(ctx, quote.ID, quote.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quote created", "id", quote.ID, "number", quote.Number, "total", quote.Total)
	return quote, nil
}

// ConvertInput carries the payment decision made at conversion time.
type ConvertInput struct {
	SaleType   sales.SaleType
	CustomerID *id.ID
	PaidAmount *types.Money
}

// Convert promotes a pending quote into a real sale. The quote's stored
// lines go to the sale orchestrator unrepriced; stock checks and ledger
// posting happen there. The quote row is locked first, so a second
// conversion attempt fails before any stock or ledger mutation.
func (s *Service) Convert(ctx context.Context, quoteID id.ID, input ConvertInput) (*sales.Sale, error) {
	var sale *sales.Sale

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		quote, err := s.repo.GetByIDForUpdate(ctx, quoteID)
		if err != nil {
			return err
		}

		if quote.IsConverted() {
			return apperror.NewQuoteConverted(quoteID.String())
		}

		lines, err := s.repo.GetLines(ctx, quoteID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}

		saleInput := sales.SaleInput{
			BranchID:   quote.BranchID,
			SaleType:   input.SaleType,
			CustomerID: input.CustomerID,
			PaidAmount: input.PaidAmount,
		}
		for _, l := range lines {
			saleInput.Lines = append(saleInput.Lines, sales.PricedLine{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				Tier:        l.Tier,
				Subtotal:    l.Subtotal,
			})
		}

		sale, err = s.sales.Create(ctx, saleInput)
		if err != nil {
			return err
		}

		if err := s.repo.MarkConverted(ctx, quoteID, sale.ID); err != nil {
			return fmt.Errorf("mark converted: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quote converted", "quote_id", quoteID, "sale_id", sale.ID)
	return sale, nil
}

// GetByID retrieves a quote with its lines.
func (s *Service) GetByID(ctx context.Context, quoteID id.ID) (*Quote, error) {
	quote, err := s.repo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	quote.Lines = lines

	return quote, nil
}

// List retrieves quotes with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quote], error) {
	return s.repo.List(ctx, filter)
}

// Delete removes a quote. Quotes have no stock or ledger effects, so
// deletion is unconditional; a converted quote's sale is untouched.
func (s *Service) Delete(ctx context.Context, quoteID id.ID) error {
	if _, err := s.repo.GetByID(ctx, quoteID); err != nil {
		return err
	}
	return s.repo.DeleteWithLines(ctx, quoteID)
}
