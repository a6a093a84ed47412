package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"granel/pkg/numerator"
)

// numeratorQuerier routes numbering queries through the transaction in
// the context, so sequence increments roll back with the document.
type numeratorQuerier struct {
	txManager *TxManager
}

func (q numeratorQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
}

// NewNumeratorService creates a numbering service bound to the
// transaction manager.
func NewNumeratorService(txManager *TxManager) *numerator.Service {
	return numerator.New(numeratorQuerier{txManager: txManager})
}
