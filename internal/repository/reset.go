package repository

import (
	"context"
	"fmt"

	"sanctuary/internal/storage"
)

// ClearAll removes every collection and the stored PIN in one call.
func ClearAll(ctx context.Context, store storage.KeyValueStore) error {
	err := store.MultiRemove(ctx,
		storage.KeyMoodEntries,
		storage.KeyMoodStats,
		storage.KeyJournalEntries,
		storage.KeyMessages,
		storage.KeyUserSessions,
		storage.KeyAppPIN,
	)
	if err != nil {
		return fmt.Errorf("repository.ClearAll: %w: %w", ErrStorageWrite, err)
	}
	return nil
}
