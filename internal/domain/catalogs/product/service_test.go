package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"granel/internal/core/apperror"
	"granel/internal/core/id"
	"granel/internal/core/types"
	"granel/internal/domain"
	"granel/internal/domain/pricing"
)

type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProductRepo struct {
	products    map[id.ID]*Product
	saleHistory map[id.ID]bool
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products:    make(map[id.ID]*Product),
		saleHistory: make(map[id.ID]bool),
	}
}

func (r *fakeProductRepo) Create(ctx context.Context, p *Product) error {
	stored := *p
	r.products[p.ID] = &stored
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return apperror.NewNotFound("product", p.ID.String())
	}
	stored := *p
	r.products[p.ID] = &stored
	return nil
}

func (r *fakeProductRepo) SetActive(ctx context.Context, productID id.ID, active bool) error {
	p, ok := r.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	p.Active = active
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	var result domain.ListResult[*Product]
	for _, p := range r.products {
		if !p.Active && !filter.IncludeInactive {
			continue
		}
		copied := *p
		result.Items = append(result.Items, &copied)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *fakeProductRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	_, ok := r.products[productID]
	return ok, nil
}

func (r *fakeProductRepo) FindByCategory(ctx context.Context, category string, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	var result domain.ListResult[*Product]
	for _, p := range r.products {
		if string(p.Category) == category {
			copied := *p
			result.Items = append(result.Items, &copied)
		}
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *fakeProductRepo) HasSaleHistory(ctx context.Context, productID id.ID) (bool, error) {
	return r.saleHistory[productID], nil
}

func (r *fakeProductRepo) HardDelete(ctx context.Context, productID id.ID) error {
	delete(r.products, productID)
	return nil
}

type fakeBranchLister struct {
	ids []id.ID
}

func (f *fakeBranchLister) ActiveBranchIDs(ctx context.Context) ([]id.ID, error) {
	return f.ids, nil
}

type fakeInventoryInit struct {
	initialized map[id.ID][]id.ID
}

func (f *fakeInventoryInit) InitProduct(ctx context.Context, productID id.ID, branchIDs []id.ID) error {
	if f.initialized == nil {
		f.initialized = make(map[id.ID][]id.ID)
	}
	f.initialized[productID] = branchIDs
	return nil
}

func newTestEnv() (*Service, *fakeProductRepo, *fakeBranchLister, *fakeInventoryInit) {
	repo := newFakeProductRepo()
	branches := &fakeBranchLister{ids: []id.ID{id.New(), id.New()}}
	inv := &fakeInventoryInit{}
	return NewService(repo, branches, inv, passTxManager{}), repo, branches, inv
}

func TestNew_LiquidDefaults(t *testing.T) {
	p := New("Detergente", pricing.CategoryLiquid, types.NewMoney(300))

	assert.Equal(t, "L", p.Unit)
	assert.Equal(t, types.NewQuantityFromFloat64(5), p.WholesaleThreshold)
	assert.True(t, p.Active)
}

func TestNew_DryGoodsNeverTiered(t *testing.T) {
	p := New("Esponja", pricing.CategoryDryGoods, types.NewMoney(90))

	assert.Equal(t, "unit", p.Unit)
	assert.True(t, p.PriceWholesale.Equal(p.PriceRetail))
	assert.True(t, p.WholesaleThreshold.IsZero())
}

func TestValidate_WholesaleAboveRetail(t *testing.T) {
	p := New("Detergente", pricing.CategoryLiquid, types.NewMoney(200))
	p.PriceWholesale = types.NewMoney(250)

	err := p.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidPrice))
}

func TestValidate_TieredNeedsWholesalePrice(t *testing.T) {
	p := New("Detergente", pricing.CategoryLiquid, types.NewMoney(200))

	err := p.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidPrice))
}

func TestCreate_InitializesInventoryEverywhere(t *testing.T) {
	svc, repo, branches, inv := newTestEnv()

	p := New("Detergente", pricing.CategoryLiquid, types.NewMoney(300))
	p.PriceWholesale = types.NewMoney(250)

	require.NoError(t, svc.Create(context.Background(), p))

	_, ok := repo.products[p.ID]
	assert.True(t, ok)
	assert.Equal(t, branches.ids, inv.initialized[p.ID])
}

func TestCreate_InvalidCategory(t *testing.T) {
	svc, _, _, _ := newTestEnv()

	p := New("Misterio", pricing.Category("frozen"), types.NewMoney(100))
	err := svc.Create(context.Background(), p)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestUpdate_NormalizesNonTiered(t *testing.T) {
	svc, repo, _, _ := newTestEnv()

	p := New("Arroz suelto", pricing.CategoryBulkFood, types.NewMoney(120))
	require.NoError(t, svc.Create(context.Background(), p))

	// Switching category off liquid must collapse the tier fields,
	// whatever the caller sent.
	p.PriceWholesale = types.NewMoney(90)
	p.WholesaleThreshold = types.NewQuantityFromFloat64(10)
	require.NoError(t, svc.Update(context.Background(), p))

	stored := repo.products[p.ID]
	assert.True(t, stored.PriceWholesale.Equal(stored.PriceRetail))
	assert.True(t, stored.WholesaleThreshold.IsZero())
}

func TestDelete_WithHistoryDeactivates(t *testing.T) {
	svc, repo, _, _ := newTestEnv()

	p := New("Detergente", pricing.CategoryLiquid, types.NewMoney(300))
	p.PriceWholesale = types.NewMoney(250)
	require.NoError(t, svc.Create(context.Background(), p))
	repo.saleHistory[p.ID] = true

	require.NoError(t, svc.Delete(context.Background(), p.ID))

	stored, ok := repo.products[p.ID]
	require.True(t, ok, "product row survives")
	assert.False(t, stored.Active)
}

func TestDelete_WithoutHistoryRemoves(t *testing.T) {
	svc, repo, _, _ := newTestEnv()

	p := New("Esponja", pricing.CategoryDryGoods, types.NewMoney(90))
	require.NoError(t, svc.Create(context.Background(), p))

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	assert.Empty(t, repo.products)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _, _ := newTestEnv()

	err := svc.Delete(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRestore_Reactivates(t *testing.T) {
	svc, repo, _, _ := newTestEnv()

	p := New("Detergente", pricing.CategoryLiquid, types.NewMoney(300))
	p.PriceWholesale = types.NewMoney(250)
	require.NoError(t, svc.Create(context.Background(), p))
	repo.saleHistory[p.ID] = true
	require.NoError(t, svc.Delete(context.Background(), p.ID))

	require.NoError(t, svc.Restore(context.Background(), p.ID))
	assert.True(t, repo.products[p.ID].Active)
}
