package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLStore keeps every key as one row of the kv_store table.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	op := "storage.SQLStore.Get"

	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind(`SELECT store_value FROM kv_store WHERE store_key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	op := "storage.SQLStore.Set"

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO kv_store (store_key, store_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (store_key)
		DO UPDATE SET
		  store_value = EXCLUDED.store_value,
		  updated_at = EXCLUDED.updated_at`), key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	return s.MultiRemove(ctx, key)
}

func (s *SQLStore) MultiRemove(ctx context.Context, keys ...string) error {
	op := "storage.SQLStore.MultiRemove"
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM kv_store WHERE store_key IN (?)`, keys)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
