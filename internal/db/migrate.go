package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// RunMigrations creates the kv_store table. The schema is valid for both
// postgres and sqlite.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS kv_store (
    store_key TEXT PRIMARY KEY,
    store_value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}
