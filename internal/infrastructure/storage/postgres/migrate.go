package postgres

import (
	"context"
	"fmt"

	"granel/pkg/logger"
)

// schemaStatements defines the full database schema in dependency order.
// Statements are idempotent so Migrate can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sys_sequences (
		key TEXT PRIMARY KEY,
		current_val BIGINT NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS cat_branches (
		id UUID PRIMARY KEY,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		version INTEGER NOT NULL DEFAULT 1,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS cat_products (
		id UUID PRIMARY KEY,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		version INTEGER NOT NULL DEFAULT 1,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT 'L',
		price_retail NUMERIC(14,2) NOT NULL DEFAULT 0,
		price_wholesale NUMERIC(14,2) NOT NULL DEFAULT 0,
		wholesale_threshold BIGINT NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS cat_customers (
		id UUID PRIMARY KEY,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		version INTEGER NOT NULL DEFAULT 1,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		branch_id UUID REFERENCES cat_branches(id),
		debt_balance NUMERIC(14,2) NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS reg_inventory (
		product_id UUID NOT NULL REFERENCES cat_products(id),
		branch_id UUID NOT NULL REFERENCES cat_branches(id),
		quantity BIGINT NOT NULL DEFAULT 0,
		price_retail NUMERIC(14,2),
		price_wholesale NUMERIC(14,2),
		wholesale_threshold BIGINT,
		PRIMARY KEY (product_id, branch_id)
	)`,

	`CREATE TABLE IF NOT EXISTS reg_inventory_movements (
		id UUID PRIMARY KEY,
		product_id UUID NOT NULL REFERENCES cat_products(id),
		branch_id UUID NOT NULL REFERENCES cat_branches(id),
		recorder_type TEXT NOT NULL,
		recorder_id UUID NOT NULL,
		movement_type TEXT NOT NULL,
		quantity BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_movements_recorder
		ON reg_inventory_movements (recorder_type, recorder_id)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_movements_product
		ON reg_inventory_movements (product_id, branch_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS doc_sales (
		id UUID PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		branch_id UUID NOT NULL REFERENCES cat_branches(id),
		customer_id UUID REFERENCES cat_customers(id),
		operator_id UUID,
		sale_type TEXT NOT NULL,
		total NUMERIC(14,2) NOT NULL,
		paid NUMERIC(14,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_branch_date
		ON doc_sales (branch_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_customer
		ON doc_sales (customer_id)`,

	`CREATE TABLE IF NOT EXISTS doc_sale_lines (
		id UUID PRIMARY KEY,
		sale_id UUID NOT NULL REFERENCES doc_sales(id) ON DELETE CASCADE,
		product_id UUID REFERENCES cat_products(id),
		product_name TEXT NOT NULL,
		quantity BIGINT NOT NULL,
		unit_price NUMERIC(14,4) NOT NULL,
		price_tier TEXT NOT NULL,
		subtotal NUMERIC(14,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_lines_sale
		ON doc_sale_lines (sale_id)`,

	`CREATE TABLE IF NOT EXISTS doc_quotes (
		id UUID PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		branch_id UUID NOT NULL REFERENCES cat_branches(id),
		customer_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		total NUMERIC(14,2) NOT NULL,
		sale_id UUID REFERENCES doc_sales(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS doc_quote_lines (
		id UUID PRIMARY KEY,
		quote_id UUID NOT NULL REFERENCES doc_quotes(id) ON DELETE CASCADE,
		product_id UUID REFERENCES cat_products(id),
		product_name TEXT NOT NULL,
		quantity BIGINT NOT NULL,
		unit_price NUMERIC(14,4) NOT NULL,
		price_tier TEXT NOT NULL,
		subtotal NUMERIC(14,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quote_lines_quote
		ON doc_quote_lines (quote_id)`,

	`CREATE TABLE IF NOT EXISTS reg_payments (
		id UUID PRIMARY KEY,
		customer_id UUID NOT NULL REFERENCES cat_customers(id),
		amount NUMERIC(14,2) NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_customer
		ON reg_payments (customer_id, created_at)`,
}

// Migrate applies the schema to the connected database.
func Migrate(ctx context.Context, pool *Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	logger.Info(ctx, "database schema up to date", "statements", len(schemaStatements))
	return nil
}
