package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"granel/internal/core/apperror"
	"granel/internal/core/id"
	"granel/internal/domain"
	"granel/internal/domain/catalogs/customer"
	"granel/internal/infrastructure/storage/postgres"
)

const customerTable = "cat_customers"

// CustomerRepo implements customer.Repository.
// Update never touches debt_balance; after the initial insert only the
// credit register writes that column.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	cols := postgres.ExtractDBColumns[customer.Customer]()
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(txManager, customerTable, cols, func() *customer.Customer {
			return &customer.Customer{}
		}),
	}
}

var _ customer.Repository = (*CustomerRepo)(nil)

// Update modifies a customer without touching the balance.
func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	data := postgres.StructToMap(c)

	q := r.Builder().
		Update(customerTable).
		Set("name", data["name"]).
		Set("phone", data["phone"]).
		Set("address", data["address"]).
		Set("branch_id", data["branch_id"]).
		Set("active", data["active"]).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": c.ID}).
		Where(squirrel.Eq{"version": c.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(customerTable, c.ID)
	}

	return nil
}

// FindByBranch retrieves customers affiliated with a branch.
func (r *CustomerRepo) FindByBranch(ctx context.Context, branchID id.ID, filter domain.ListFilter) (domain.ListResult[*customer.Customer], error) {
	return r.selectWhere(ctx, filter, squirrel.Eq{"branch_id": branchID}, "name ASC")
}

// FindDebtors retrieves customers with a positive balance, largest first.
func (r *CustomerRepo) FindDebtors(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*customer.Customer], error) {
	return r.selectWhere(ctx, filter, squirrel.Gt{"debt_balance": 0}, "debt_balance DESC")
}

func (r *CustomerRepo) selectWhere(ctx context.Context, filter domain.ListFilter, cond squirrel.Sqlizer, orderBy string) (domain.ListResult[*customer.Customer], error) {
	result := domain.ListResult[*customer.Customer]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	cols := postgres.ExtractDBColumns[customer.Customer]()
	q := r.Builder().
		Select(cols...).
		From(customerTable).
		Where(cond).
		OrderBy(orderBy)

	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"active": true})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select customers: %w", err)
	}

	return result, nil
}
