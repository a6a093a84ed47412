package register_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"granel/internal/core/apperror"
	"granel/internal/core/id"
	"granel/internal/core/types"
	"granel/internal/domain/registers/credit"
	"granel/internal/infrastructure/storage/postgres"
)

const paymentsTable = "reg_payments"

// CreditRepo implements credit.Repository.
// The balance lives on cat_customers.debt_balance; this repo is the only
// writer of that column.
type CreditRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewCreditRepo creates a new credit register repository.
func NewCreditRepo(txManager *postgres.TxManager) *CreditRepo {
	return &CreditRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ credit.Repository = (*CreditRepo)(nil)

// GetBalanceForUpdate returns the customer balance with a row lock.
func (r *CreditRepo) GetBalanceForUpdate(ctx context.Context, customerID id.ID) (types.Money, error) {
	sql := `
		SELECT debt_balance
		FROM cat_customers
		WHERE id = $1
		FOR UPDATE
	`

	var balance types.Money
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, customerID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Zero(), apperror.NewNotFound("customer", customerID.String())
		}
		return types.Zero(), fmt.Errorf("get balance for update: %w", err)
	}

	return balance, nil
}

// GetBalance returns the customer balance without locking.
func (r *CreditRepo) GetBalance(ctx context.Context, customerID id.ID) (types.Money, error) {
	q := r.builder.Select("debt_balance").
		From("cat_customers").
		Where(squirrel.Eq{"id": customerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build query: %w", err)
	}

	var balance types.Money
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Zero(), apperror.NewNotFound("customer", customerID.String())
		}
		return types.Zero(), fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// SetBalance overwrites the customer balance.
func (r *CreditRepo) SetBalance(ctx context.Context, customerID id.ID, balance types.Money) error {
	q := r.builder.Update("cat_customers").
		Set("debt_balance", balance).
		Where(squirrel.Eq{"id": customerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", customerID.String())
	}

	return nil
}

// CreatePayment appends an immutable payment record.
func (r *CreditRepo) CreatePayment(ctx context.Context, payment credit.Payment) error {
	q := r.builder.Insert(paymentsTable).
		Columns("id", "customer_id", "amount", "note", "created_at").
		Values(payment.ID, payment.CustomerID, payment.Amount, payment.Note, payment.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

// GetPayments returns payment history, newest first.
func (r *CreditRepo) GetPayments(ctx context.Context, customerID id.ID, filter credit.PaymentFilter) ([]credit.Payment, error) {
	q := r.builder.Select("id", "customer_id", "amount", "note", "created_at").
		From(paymentsTable).
		Where(squirrel.Eq{"customer_id": customerID})

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []credit.Payment
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}

	return payments, nil
}
