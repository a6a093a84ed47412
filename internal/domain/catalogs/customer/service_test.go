package customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"granel/internal/core/apperror"
	"granel/internal/core/id"
	"granel/internal/core/types"
	"granel/internal/domain"
)

type fakeCustomerRepo struct {
	customers map[id.ID]*Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[id.ID]*Customer)}
}

func (r *fakeCustomerRepo) Create(ctx context.Context, c *Customer) error {
	stored := *c
	r.customers[c.ID] = &stored
	return nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	c, ok := r.customers[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID.String())
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, c *Customer) error {
	stored, ok := r.customers[c.ID]
	if !ok {
		return apperror.NewNotFound("customer", c.ID.String())
	}
	balance := stored.DebtBalance
	updated := *c
	// The catalog never writes the balance column.
	updated.DebtBalance = balance
	r.customers[c.ID] = &updated
	return nil
}

func (r *fakeCustomerRepo) SetActive(ctx context.Context, customerID id.ID, active bool) error {
	c, ok := r.customers[customerID]
	if !ok {
		return apperror.NewNotFound("customer", customerID.String())
	}
	c.Active = active
	return nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	var result domain.ListResult[*Customer]
	for _, c := range r.customers {
		copied := *c
		result.Items = append(result.Items, &copied)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *fakeCustomerRepo) Exists(ctx context.Context, customerID id.ID) (bool, error) {
	_, ok := r.customers[customerID]
	return ok, nil
}

func (r *fakeCustomerRepo) FindByBranch(ctx context.Context, branchID id.ID, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	var result domain.ListResult[*Customer]
	for _, c := range r.customers {
		if c.BranchID != nil && *c.BranchID == branchID {
			copied := *c
			result.Items = append(result.Items, &copied)
		}
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *fakeCustomerRepo) FindDebtors(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	var result domain.ListResult[*Customer]
	for _, c := range r.customers {
		if c.HasDebt() {
			copied := *c
			result.Items = append(result.Items, &copied)
		}
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func TestDeactivate_BlockedByDebt(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := NewService(repo)

	c := New("Hotel Mirador")
	require.NoError(t, svc.Create(context.Background(), c))
	repo.customers[c.ID].DebtBalance = types.NewMoney(500)

	err := svc.Deactivate(context.Background(), c.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, "CUSTOMER_HAS_DEBT"), "got %v", err)
	assert.True(t, repo.customers[c.ID].Active)
}

func TestDeactivate_ZeroBalance(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := NewService(repo)

	c := New("Consumidor final")
	require.NoError(t, svc.Create(context.Background(), c))

	require.NoError(t, svc.Deactivate(context.Background(), c.ID))
	assert.False(t, repo.customers[c.ID].Active)
}

func TestUpdate_NeverTouchesBalance(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := NewService(repo)

	c := New("Lavadero El Rapido")
	require.NoError(t, svc.Create(context.Background(), c))
	repo.customers[c.ID].DebtBalance = types.NewMoney(750)

	c.Phone = "+54 11 5555-2001"
	c.DebtBalance = types.Zero() // stale client copy
	require.NoError(t, svc.Update(context.Background(), c))

	stored := repo.customers[c.ID]
	assert.Equal(t, "+54 11 5555-2001", stored.Phone)
	assert.True(t, stored.DebtBalance.Equal(types.NewMoney(750)), "balance %s", stored.DebtBalance)
}

func TestValidate_NegativeBalance(t *testing.T) {
	c := New("Cliente")
	c.DebtBalance = types.NewMoney(-1)

	err := c.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
