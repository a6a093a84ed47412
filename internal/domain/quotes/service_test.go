package quotes

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"granel/internal/core/apperror"
	"granel/internal/core/id"
	"granel/internal/core/types"
	"granel/internal/domain"
	"granel/internal/domain/pricing"
	"granel/internal/domain/sales"
	"granel/pkg/numerator"
)

// --- fakes ---

type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type seqRow struct{ val int64 }

func (r seqRow) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = r.val
	}
	return nil
}

type seqQuerier struct{ n int64 }

func (q *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.n++
	return seqRow{val: q.n}
}

type fakeQuoteRepo struct {
	quotes map[id.ID]*Quote
	lines  map[id.ID][]QuoteLine
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{
		quotes: make(map[id.ID]*Quote),
		lines:  make(map[id.ID][]QuoteLine),
	}
}

func (r *fakeQuoteRepo) Create(ctx context.Context, quote *Quote) error {
	stored := *quote
	stored.Lines = nil
	r.quotes[quote.ID] = &stored
	return nil
}

func (r *fakeQuoteRepo) SaveLines(ctx context.Context, quoteID id.ID, lines []QuoteLine) error {
	r.lines[quoteID] = append([]QuoteLine(nil), lines...)
	return nil
}

func (r *fakeQuoteRepo) GetByID(ctx context.Context, quoteID id.ID) (*Quote, error) {
	q, ok := r.quotes[quoteID]
	if !ok {
		return nil, apperror.NewNotFound("quote", quoteID.String())
	}
	copied := *q
	return &copied, nil
}

func (r *fakeQuoteRepo) GetByIDForUpdate(ctx context.Context, quoteID id.ID) (*Quote, error) {
	return r.GetByID(ctx, quoteID)
}

func (r *fakeQuoteRepo) GetLines(ctx context.Context, quoteID id.ID) ([]QuoteLine, error) {
	return r.lines[quoteID], nil
}

func (r *fakeQuoteRepo) MarkConverted(ctx context.Context, quoteID, saleID id.ID) error {
	q, ok := r.quotes[quoteID]
	if !ok || q.Status != StatusPending {
		return apperror.NewQuoteConverted(quoteID.String())
	}
	q.Status = StatusConverted
	q.SaleID = &saleID
	return nil
}

func (r *fakeQuoteRepo) DeleteWithLines(ctx context.Context, quoteID id.ID) error {
	delete(r.quotes, quoteID)
	delete(r.lines, quoteID)
	return nil
}

func (r *fakeQuoteRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quote], error) {
	var result domain.ListResult[*Quote]
	for _, q := range r.quotes {
		copied := *q
		result.Items = append(result.Items, &copied)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

type fakeSaleCreator struct {
	inputs []sales.SaleInput
	err    error
}

func (f *fakeSaleCreator) Create(ctx context.Context, input sales.SaleInput) (*sales.Sale, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, input)
	sale := sales.New(input.BranchID, input.SaleType)
	sale.CustomerID = input.CustomerID
	return sale, nil
}

func newTestService() (*Service, *fakeQuoteRepo, *fakeSaleCreator) {
	repo := newFakeQuoteRepo()
	creator := &fakeSaleCreator{}
	svc := NewService(repo, creator, numerator.New(&seqQuerier{}), passTxManager{})
	return svc, repo, creator
}

func pricedLine(name string, qty, unitPrice float64, tier pricing.Tier) sales.PricedLine {
	q := types.NewQuantityFromFloat64(qty)
	price := types.NewMoney(unitPrice)
	return sales.PricedLine{
		ProductName: name,
		Quantity:    q,
		UnitPrice:   price,
		Tier:        tier,
		Subtotal:    types.RoundMoney(price.Mul(q.Decimal())),
	}
}

// --- tests ---

func TestCreate_SnapshotsCart(t *testing.T) {
	svc, repo, _ := newTestService()

	quote, err := svc.Create(context.Background(), QuoteInput{
		BranchID:     id.New(),
		CustomerName: "Hotel Mirador",
		Lines: []sales.PricedLine{
			pricedLine("Detergente", 6, 250, pricing.TierWholesale),
			pricedLine("Esponja", 2, 90, pricing.TierStandard),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, quote.Status)
	assert.True(t, quote.Total.Equal(types.NewMoney(1680)), "total %s", quote.Total)
	assert.True(t, strings.HasPrefix(quote.Number, "Q-"), "number %s", quote.Number)
	assert.Len(t, repo.lines[quote.ID], 2)
}

func TestConvert_CreatesSaleFromStoredLines(t *testing.T) {
	svc, repo, creator := newTestService()
	branchID := id.New()
	customerID := id.New()

	quote, err := svc.Create(context.Background(), QuoteInput{
		BranchID:     branchID,
		CustomerName: "Hotel Mirador",
		Lines: []sales.PricedLine{
			pricedLine("Detergente", 6, 250, pricing.TierWholesale),
		},
	})
	require.NoError(t, err)

	sale, err := svc.Convert(context.Background(), quote.ID, ConvertInput{
		SaleType:   sales.SaleCredit,
		CustomerID: &customerID,
	})
	require.NoError(t, err)

	require.Len(t, creator.inputs, 1)
	input := creator.inputs[0]
	assert.Equal(t, branchID, input.BranchID)
	assert.Equal(t, sales.SaleCredit, input.SaleType)
	require.Len(t, input.Lines, 1)
	assert.True(t, input.Lines[0].Subtotal.Equal(types.NewMoney(1500)),
		"stored subtotal goes to the sale unrepriced")

	stored := repo.quotes[quote.ID]
	assert.Equal(t, StatusConverted, stored.Status)
	require.NotNil(t, stored.SaleID)
	assert.Equal(t, sale.ID, *stored.SaleID)
}

func TestConvert_SecondAttemptFails(t *testing.T) {
	svc, _, creator := newTestService()

	quote, err := svc.Create(context.Background(), QuoteInput{
		BranchID: id.New(),
		Lines: []sales.PricedLine{
			pricedLine("Detergente", 2, 300, pricing.TierRetail),
		},
	})
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), quote.ID, ConvertInput{SaleType: sales.SaleCash})
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), quote.ID, ConvertInput{SaleType: sales.SaleCash})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeQuoteConverted), "got %v", err)
	assert.Len(t, creator.inputs, 1, "second conversion never reaches the orchestrator")
}

func TestConvert_SaleFailureLeavesQuotePending(t *testing.T) {
	svc, repo, creator := newTestService()
	creator.err = apperror.NewInsufficientStock(id.New().String(), 10, 2)

	quote, err := svc.Create(context.Background(), QuoteInput{
		BranchID: id.New(),
		Lines: []sales.PricedLine{
			pricedLine("Detergente", 10, 250, pricing.TierWholesale),
		},
	})
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), quote.ID, ConvertInput{SaleType: sales.SaleCash})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, StatusPending, repo.quotes[quote.ID].Status)
}

func TestConvert_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Convert(context.Background(), id.New(), ConvertInput{SaleType: sales.SaleCash})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_ConvertedQuoteKeepsSale(t *testing.T) {
	svc, repo, _ := newTestService()

	quote, err := svc.Create(context.Background(), QuoteInput{
		BranchID: id.New(),
		Lines: []sales.PricedLine{
			pricedLine("Detergente", 1, 300, pricing.TierRetail),
		},
	})
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), quote.ID, ConvertInput{SaleType: sales.SaleCash})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), quote.ID))
	assert.Empty(t, repo.quotes)
}
