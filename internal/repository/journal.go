package repository

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"sanctuary/internal/models"
	"sanctuary/internal/storage"
)

type JournalRepository struct {
	store  storage.KeyValueStore
	logger *zap.Logger
	opts   options
}

func NewJournalRepository(store storage.KeyValueStore, logger *zap.Logger, opts ...Option) *JournalRepository {
	return &JournalRepository{store: store, logger: orNop(logger), opts: buildOptions(opts)}
}

// SaveEntry stores a new unanalyzed entry and returns it.
func (r *JournalRepository) SaveEntry(ctx context.Context, title, content, mood string) (models.JournalEntry, error) {
	const op = "repository.JournalRepository.SaveEntry"

	now := r.opts.now()
	entry := models.JournalEntry{
		ID:        newID(now),
		Title:     title,
		Content:   content,
		Timestamp: now,
		Mood:      mood,
	}

	entries := r.load(ctx)
	entries = append(entries, entry)
	if err := r.write(ctx, entries); err != nil {
		return models.JournalEntry{}, fmt.Errorf("%s: %w", op, err)
	}
	return entry, nil
}

// UpdateAnalysis records the analysis result on entry id. An unknown id is a
// no-op and nothing is written.
func (r *JournalRepository) UpdateAnalysis(ctx context.Context, id string, sentiment models.Sentiment, tags []string) error {
	const op = "repository.JournalRepository.UpdateAnalysis"

	entries := r.load(ctx)
	idx := indexOfJournal(entries, id)
	if idx < 0 {
		r.logger.Debug("update analysis for unknown entry", zap.String("id", id))
		return nil
	}

	entries[idx].Sentiment = sentiment
	entries[idx].Tags = append([]string(nil), tags...)
	entries[idx].IsAnalyzed = true
	if err := r.write(ctx, entries); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetEntries returns entries newest first. limit <= 0 returns all of them.
func (r *JournalRepository) GetEntries(ctx context.Context, limit int) []models.JournalEntry {
	entries := r.load(ctx)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func (r *JournalRepository) GetEntryByID(ctx context.Context, id string) (models.JournalEntry, bool) {
	entries := r.load(ctx)
	if idx := indexOfJournal(entries, id); idx >= 0 {
		return entries[idx], true
	}
	return models.JournalEntry{}, false
}

func (r *JournalRepository) DeleteEntry(ctx context.Context, id string) error {
	const op = "repository.JournalRepository.DeleteEntry"

	entries := r.load(ctx)
	kept := make([]models.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if err := r.write(ctx, kept); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUnanalyzed returns entries still waiting for analysis, in storage order.
func (r *JournalRepository) GetUnanalyzed(ctx context.Context) []models.JournalEntry {
	var out []models.JournalEntry
	for _, e := range r.load(ctx) {
		if !e.IsAnalyzed {
			out = append(out, e)
		}
	}
	return out
}

func (r *JournalRepository) load(ctx context.Context) []models.JournalEntry {
	records := readRecords[journalRecord](ctx, r.store, r.logger, storage.KeyJournalEntries)
	return decodeAll(records, decodeJournalEntry, r.logger, storage.KeyJournalEntries)
}

func (r *JournalRepository) write(ctx context.Context, entries []models.JournalEntry) error {
	return writeRecords(ctx, r.store, storage.KeyJournalEntries, encodeAll(entries, encodeJournalEntry))
}

func indexOfJournal(entries []models.JournalEntry, id string) int {
	for i := range entries {
		if entries[i].ID == id {
			return i
		}
	}
	return -1
}
