// Package repository keeps the mood, journal and chat collections. Each
// collection is one JSON array under one store key and every mutation rewrites
// the whole array, so two overlapping writers can lose each other's updates.
// Reads never fail: a missing or corrupt collection is logged and read as
// empty, and a single undecodable record is logged and skipped.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sanctuary/internal/storage"
)

// ErrStorageWrite wraps every failed write; the store's own error is wrapped too.
var ErrStorageWrite = errors.New("storage write failed")

type Option func(*options)

type options struct {
	now      func() time.Time
	location *time.Location
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the location calendar dates are computed in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, location: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// readRecords decodes the array under key. Any failure yields nil.
func readRecords[R any](ctx context.Context, store storage.KeyValueStore, logger *zap.Logger, key string) []R {
	raw, found, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("read collection", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !found || raw == "" {
		return nil
	}

	var records []R
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		logger.Warn("decode collection", zap.String("key", key), zap.Error(err))
		return nil
	}
	return records
}

func writeRecords[R any](ctx context.Context, store storage.KeyValueStore, key string, records []R) error {
	if records == nil {
		records = []R{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w: %w", key, ErrStorageWrite, err)
	}
	if err := store.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("write %s: %w: %w", key, ErrStorageWrite, err)
	}
	return nil
}
