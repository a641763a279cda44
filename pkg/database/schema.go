package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order by EnsureSchema. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS inventory (
		id         UUID PRIMARY KEY,
		singleton  BOOLEAN NOT NULL DEFAULT TRUE UNIQUE CHECK (singleton),
		tax_rate   NUMERIC(10, 4) NOT NULL DEFAULT 2.0 CHECK (tax_rate >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS ingredients (
		id           UUID PRIMARY KEY,
		inventory_id UUID NOT NULL REFERENCES inventory (id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		quantity     INTEGER NOT NULL CHECK (quantity >= 0)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ingredients_inventory_name_key
		ON ingredients (inventory_id, lower(name))`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		price       INTEGER NOT NULL CHECK (price > 0),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS menu_item_ingredients (
		menu_item_id  UUID NOT NULL REFERENCES menu_items (id) ON DELETE CASCADE,
		ingredient_id UUID NOT NULL REFERENCES ingredients (id),
		position      INTEGER NOT NULL,
		quantity      INTEGER NOT NULL CHECK (quantity >= 0),
		unit          TEXT NOT NULL DEFAULT 'unit',
		PRIMARY KEY (menu_item_id, ingredient_id)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		display_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id            UUID PRIMARY KEY,
		created_at    TIMESTAMPTZ NOT NULL,
		status        TEXT NOT NULL CHECK (status IN ('pending', 'fulfilled', 'canceled', 'picked up')),
		subtotal      INTEGER NOT NULL CHECK (subtotal >= 0),
		tax           INTEGER NOT NULL CHECK (tax >= 0),
		tip           INTEGER NOT NULL CHECK (tip >= 0),
		customer_id   TEXT,
		customer_name TEXT NOT NULL DEFAULT '',
		item_summary  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders (created_at)`,
	`CREATE INDEX IF NOT EXISTS orders_customer_id_idx ON orders (customer_id)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id           UUID PRIMARY KEY,
		order_id     UUID NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
		menu_item_id UUID NOT NULL REFERENCES menu_items (id) ON DELETE RESTRICT,
		position     INTEGER NOT NULL,
		quantity     INTEGER NOT NULL CHECK (quantity >= 1)
	)`,
	`CREATE INDEX IF NOT EXISTS order_items_menu_item_id_idx ON order_items (menu_item_id)`,
	`CREATE TABLE IF NOT EXISTS inventory_transactions (
		id              UUID PRIMARY KEY,
		ingredient_name TEXT NOT NULL,
		delta           INTEGER NOT NULL,
		reason          TEXT NOT NULL,
		reference_id    TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates any missing tables and indexes. It does not alter
// existing ones.
func (db *DB) EnsureSchema(ctx context.Context) error {
	db.logger.Info("Ensuring database schema", "statements", len(schema))
	return db.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				db.logger.Error("Failed to apply schema statement", "index", i, "error", err)
				return fmt.Errorf("schema statement %d: %w", i, err)
			}
		}
		return nil
	})
}
