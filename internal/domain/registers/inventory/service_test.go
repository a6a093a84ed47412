package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"granel/internal/core/apperror"
	"granel/internal/core/entity"
	"granel/internal/core/id"
	"granel/internal/core/types"
	"granel/internal/domain/pricing"
)

type balanceKey struct {
	productID id.ID
	branchID  id.ID
}

type fakeInventoryRepo struct {
	balances  map[balanceKey]*entity.InventoryBalance
	movements []entity.InventoryMovement
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{balances: make(map[balanceKey]*entity.InventoryBalance)}
}

func (r *fakeInventoryRepo) CreateMovements(ctx context.Context, movements []entity.InventoryMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeInventoryRepo) DeleteMovementsByRecorder(ctx context.Context, recorderType string, recorderID id.ID) ([]entity.InventoryMovement, error) {
	var deleted []entity.InventoryMovement
	kept := r.movements[:0]
	for _, m := range r.movements {
		if m.RecorderType == recorderType && m.RecorderID == recorderID {
			deleted = append(deleted, m)
			continue
		}
		kept = append(kept, m)
	}
	r.movements = kept
	return deleted, nil
}

func (r *fakeInventoryRepo) GetMovementsByRecorder(ctx context.Context, recorderType string, recorderID id.ID) ([]entity.InventoryMovement, error) {
	var out []entity.InventoryMovement
	for _, m := range r.movements {
		if m.RecorderType == recorderType && m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) EnsureRow(ctx context.Context, productID, branchID id.ID) error {
	key := balanceKey{productID, branchID}
	if _, ok := r.balances[key]; !ok {
		r.balances[key] = &entity.InventoryBalance{ProductID: productID, BranchID: branchID}
	}
	return nil
}

func (r *fakeInventoryRepo) GetBalance(ctx context.Context, productID, branchID id.ID) (entity.InventoryBalance, error) {
	if b, ok := r.balances[balanceKey{productID, branchID}]; ok {
		return *b, nil
	}
	return entity.InventoryBalance{}, apperror.NewNotFound("inventory balance", productID.String())
}

func (r *fakeInventoryRepo) GetBalanceForUpdate(ctx context.Context, productID, branchID id.ID) (entity.InventoryBalance, error) {
	if b, ok := r.balances[balanceKey{productID, branchID}]; ok {
		return *b, nil
	}
	// Missing rows read as zero, matching the SQL implementation.
	return entity.InventoryBalance{ProductID: productID, BranchID: branchID}, nil
}

func (r *fakeInventoryRepo) AddQuantity(ctx context.Context, productID, branchID id.ID, delta types.Quantity) error {
	key := balanceKey{productID, branchID}
	if _, ok := r.balances[key]; !ok {
		r.balances[key] = &entity.InventoryBalance{ProductID: productID, BranchID: branchID}
	}
	r.balances[key].Quantity += delta
	return nil
}

func (r *fakeInventoryRepo) SetQuantity(ctx context.Context, productID, branchID id.ID, quantity types.Quantity) error {
	key := balanceKey{productID, branchID}
	if _, ok := r.balances[key]; !ok {
		r.balances[key] = &entity.InventoryBalance{ProductID: productID, BranchID: branchID}
	}
	r.balances[key].Quantity = quantity
	return nil
}

func (r *fakeInventoryRepo) GetBalancesByBranch(ctx context.Context, branchID id.ID, filter BalanceFilter) ([]entity.InventoryBalance, error) {
	var out []entity.InventoryBalance
	for key, b := range r.balances {
		if key.branchID == branchID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.InventoryBalance, error) {
	var out []entity.InventoryBalance
	for key, b := range r.balances {
		if key.productID == productID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) SetPriceOverrides(ctx context.Context, productID, branchID id.ID, retail, wholesale *types.Money, threshold *types.Quantity) error {
	key := balanceKey{productID, branchID}
	if _, ok := r.balances[key]; !ok {
		return apperror.NewNotFound("inventory balance", productID.String())
	}
	r.balances[key].PriceRetail = retail
	r.balances[key].PriceWholesale = wholesale
	r.balances[key].WholesaleThreshold = threshold
	return nil
}

func (r *fakeInventoryRepo) GetMovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.InventoryMovement, error) {
	var out []entity.InventoryMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) quantity(productID, branchID id.ID) types.Quantity {
	if b, ok := r.balances[balanceKey{productID, branchID}]; ok {
		return b.Quantity
	}
	return 0
}

func setup(t *testing.T, initial float64) (*Service, *fakeInventoryRepo, id.ID, id.ID) {
	t.Helper()
	repo := newFakeInventoryRepo()
	svc := NewService(repo)
	productID := id.New()
	branchID := id.New()
	require.NoError(t, repo.SetQuantity(context.Background(), productID, branchID, types.NewQuantityFromFloat64(initial)))
	return svc, repo, productID, branchID
}

func TestReserve_DecrementsAndRecords(t *testing.T) {
	svc, repo, productID, branchID := setup(t, 10)
	saleID := id.New()

	err := svc.Reserve(context.Background(), "Sale", saleID, productID, branchID, types.NewQuantityFromFloat64(4))
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantityFromFloat64(6), repo.quantity(productID, branchID))
	require.Len(t, repo.movements, 1)
	assert.Equal(t, entity.MovementExpense, repo.movements[0].MovementType)
	assert.Equal(t, saleID, repo.movements[0].RecorderID)
}

func TestReserve_ExactStock(t *testing.T) {
	svc, repo, productID, branchID := setup(t, 5)

	err := svc.Reserve(context.Background(), "Sale", id.New(), productID, branchID, types.NewQuantityFromFloat64(5))
	require.NoError(t, err)
	assert.True(t, repo.quantity(productID, branchID).IsZero())
}

func TestReserve_InsufficientStock(t *testing.T) {
	svc, repo, productID, branchID := setup(t, 3)

	err := svc.Reserve(context.Background(), "Sale", id.New(), productID, branchID, types.NewQuantityFromFloat64(3.5))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err), "got %v", err)
	assert.Equal(t, types.NewQuantityFromFloat64(3), repo.quantity(productID, branchID), "stock untouched")
	assert.Empty(t, repo.movements)
}

func TestReserve_MissingRowReadsAsZero(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewService(repo)

	err := svc.Reserve(context.Background(), "Sale", id.New(), id.New(), id.New(), types.NewQuantityFromFloat64(1))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestReserve_NonPositiveQuantity(t *testing.T) {
	svc, _, productID, branchID := setup(t, 10)

	err := svc.Reserve(context.Background(), "Sale", id.New(), productID, branchID, 0)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))
}

func TestRemoveMovements_RestoresBalance(t *testing.T) {
	svc, repo, productID, branchID := setup(t, 10)
	saleID := id.New()
	ctx := context.Background()

	require.NoError(t, svc.Reserve(ctx, "Sale", saleID, productID, branchID, types.NewQuantityFromFloat64(7)))
	require.Equal(t, types.NewQuantityFromFloat64(3), repo.quantity(productID, branchID))

	require.NoError(t, svc.RemoveMovements(ctx, "Sale", saleID))

	assert.Equal(t, types.NewQuantityFromFloat64(10), repo.quantity(productID, branchID))
	assert.Empty(t, repo.movements)
}

func TestRemoveMovements_SkipsAdjustments(t *testing.T) {
	svc, repo, productID, branchID := setup(t, 0)
	docID := id.New()
	ctx := context.Background()

	require.NoError(t, svc.SetQuantity(ctx, "Adjustment", docID, productID, branchID, types.NewQuantityFromFloat64(50)))
	require.NoError(t, svc.RemoveMovements(ctx, "Adjustment", docID))

	// The absolute write stays; only the journal entry is gone.
	assert.Equal(t, types.NewQuantityFromFloat64(50), repo.quantity(productID, branchID))
	assert.Empty(t, repo.movements)
}

func TestSetQuantity_NegativeRejected(t *testing.T) {
	svc, _, productID, branchID := setup(t, 10)

	err := svc.SetQuantity(context.Background(), "Adjustment", id.New(), productID, branchID, types.NewQuantityFromFloat64(-1))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))
}

func TestRelease_AcceptsAnyAmount(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewService(repo)
	productID := id.New()
	branchID := id.New()

	err := svc.Release(context.Background(), "Sale", id.New(), productID, branchID, types.NewQuantityFromFloat64(12.5))
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantityFromFloat64(12.5), repo.quantity(productID, branchID))
	require.Len(t, repo.movements, 1)
	assert.Equal(t, entity.MovementReceipt, repo.movements[0].MovementType)
}

func TestInitProduct_CreatesZeroRows(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewService(repo)
	productID := id.New()
	branches := []id.ID{id.New(), id.New()}

	require.NoError(t, svc.InitProduct(context.Background(), productID, branches))

	for _, branchID := range branches {
		b, err := svc.GetBalance(context.Background(), productID, branchID)
		require.NoError(t, err)
		assert.True(t, b.Quantity.IsZero())
	}
}

func TestEffectivePricing_OverridesWin(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewService(repo)
	productID := id.New()
	branchID := id.New()
	ctx := context.Background()

	defaults := pricing.BranchPricing{
		Retail:    types.NewMoney(300),
		Wholesale: types.NewMoney(250),
		Threshold: types.NewQuantityFromFloat64(5),
	}

	require.NoError(t, repo.EnsureRow(ctx, productID, branchID))
	retail := types.NewMoney(320)
	require.NoError(t, svc.SetPriceOverrides(ctx, productID, branchID, &retail, nil, nil))

	effective, err := svc.EffectivePricing(ctx, productID, branchID, defaults)
	require.NoError(t, err)

	assert.True(t, effective.Retail.Equal(types.NewMoney(320)), "retail %s", effective.Retail)
	assert.True(t, effective.Wholesale.Equal(types.NewMoney(250)), "wholesale falls back to default")
	assert.Equal(t, types.NewQuantityFromFloat64(5), effective.Threshold)
}

func TestEffectivePricing_MissingRowUsesDefaults(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewService(repo)

	defaults := pricing.BranchPricing{Retail: types.NewMoney(90)}
	effective, err := svc.EffectivePricing(context.Background(), id.New(), id.New(), defaults)
	require.NoError(t, err)
	assert.True(t, effective.Retail.Equal(types.NewMoney(90)))
}

func TestSetPriceOverrides_RejectsNonPositive(t *testing.T) {
	svc, _, productID, branchID := setup(t, 0)

	bad := types.NewMoney(0)
	err := svc.SetPriceOverrides(context.Background(), productID, branchID, &bad, nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidPrice))
}

func TestGetProductAvailability_SumsBranches(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewService(repo)
	productID := id.New()
	ctx := context.Background()

	require.NoError(t, repo.SetQuantity(ctx, productID, id.New(), types.NewQuantityFromFloat64(10)))
	require.NoError(t, repo.SetQuantity(ctx, productID, id.New(), types.NewQuantityFromFloat64(7.5)))

	total, err := svc.GetProductAvailability(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(17.5), total)
}
