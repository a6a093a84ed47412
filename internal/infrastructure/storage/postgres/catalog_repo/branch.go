package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"granel/internal/core/id"
	"granel/internal/domain/catalogs/branch"
	"granel/internal/infrastructure/storage/postgres"
)

const branchTable = "cat_branches"

// BranchRepo implements branch.Repository.
type BranchRepo struct {
	*BaseCatalogRepo[*branch.Branch]
}

// NewBranchRepo creates a new branch repository.
func NewBranchRepo(txManager *postgres.TxManager) *BranchRepo {
	cols := postgres.ExtractDBColumns[branch.Branch]()
	return &BranchRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(txManager, branchTable, cols, func() *branch.Branch {
			return &branch.Branch{}
		}),
	}
}

var _ branch.Repository = (*BranchRepo)(nil)

// ActiveIDs returns ids of all active branches.
func (r *BranchRepo) ActiveIDs(ctx context.Context) ([]id.ID, error) {
	q := r.Builder().
		Select("id").
		From(branchTable).
		Where(squirrel.Eq{"active": true}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.Querier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("active branch ids: %w", err)
	}

	return ids, nil
}
