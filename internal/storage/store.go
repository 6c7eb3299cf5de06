// Package storage provides the string-keyed persistent store the repositories
// serialize their collections into.
package storage

import (
	"context"
	"errors"
)

// Keys used by the repositories and the app lock.
const (
	KeyMoodEntries    = "mood_entries"
	KeyMoodStats      = "mood_stats"
	KeyJournalEntries = "journalEntries"
	KeyMessages       = "messages"
	KeyUserSessions   = "userSessions"
	KeyAppPIN         = "app_pin"
)

var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KeyValueStore is an async string-keyed store. Get reports found=false for a
// missing key without an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	MultiRemove(ctx context.Context, keys ...string) error
}
