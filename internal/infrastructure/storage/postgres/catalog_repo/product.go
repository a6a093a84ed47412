package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"granel/internal/core/id"
	"granel/internal/domain"
	"granel/internal/domain/catalogs/product"
	"granel/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	cols := postgres.ExtractDBColumns[product.Product]()
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(txManager, productTable, cols, func() *product.Product {
			return &product.Product{}
		}),
	}
}

var _ product.Repository = (*ProductRepo)(nil)

// FindByCategory retrieves products of a category.
func (r *ProductRepo) FindByCategory(ctx context.Context, category string, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	result := domain.ListResult[*product.Product]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	cols := postgres.ExtractDBColumns[product.Product]()
	q := r.Builder().
		Select(cols...).
		From(productTable).
		Where(squirrel.Eq{"category": category}).
		OrderBy("name ASC")

	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"active": true})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
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

	if err := pgxscan.Select(ctx, r.Querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("find by category: %w", err)
	}

	result.TotalCount = int64(len(result.Items))
	return result, nil
}

// HasSaleHistory reports whether any sale line references the product.
func (r *ProductRepo) HasSaleHistory(ctx context.Context, productID id.ID) (bool, error) {
	q := r.Builder().
		Select("1").
		From("doc_sale_lines").
		Where(squirrel.Eq{"product_id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check sale history: %w", err)
	}

	return true, nil
}

// HardDelete physically removes a product and its inventory rows.
func (r *ProductRepo) HardDelete(ctx context.Context, productID id.ID) error {
	for _, table := range []string{"reg_inventory_movements", "reg_inventory", productTable} {
		q := r.Builder().
			Delete(table).
			Where(squirrel.Eq{idColumnFor(table): productID})

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}

		if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}

func idColumnFor(table string) string {
	if table == productTable {
		return "id"
	}
	return "product_id"
}
