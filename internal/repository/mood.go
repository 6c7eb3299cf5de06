package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sanctuary/internal/models"
	"sanctuary/internal/storage"
)

const neutralFace = "😐"

type MoodRepository struct {
	store  storage.KeyValueStore
	logger *zap.Logger
	opts   options
}

func NewMoodRepository(store storage.KeyValueStore, logger *zap.Logger, opts ...Option) *MoodRepository {
	return &MoodRepository{store: store, logger: orNop(logger), opts: buildOptions(opts)}
}

// SaveEntry appends entry and rewrites the list. Missing id, timestamp and
// date are filled from the clock. Same-day duplicates are kept.
func (r *MoodRepository) SaveEntry(ctx context.Context, entry models.MoodEntry) (models.MoodEntry, error) {
	const op = "repository.MoodRepository.SaveEntry"

	now := r.opts.now()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}
	if entry.ID == "" {
		entry.ID = newID(entry.Timestamp)
	}
	if entry.Date == "" {
		entry.Date = dateKey(entry.Timestamp, r.opts.location)
	}

	entries := r.GetAllEntries(ctx)
	entries = append(entries, entry)
	if err := r.writeEntries(ctx, entries); err != nil {
		return models.MoodEntry{}, fmt.Errorf("%s: %w", op, err)
	}

	r.refreshStats(ctx, entries)
	return entry, nil
}

// Record builds an entry for mood at the current instant and saves it.
func (r *MoodRepository) Record(ctx context.Context, mood models.MoodOption, moodContext string) (models.MoodEntry, error) {
	return r.SaveEntry(ctx, models.MoodEntry{Mood: mood, Context: moodContext})
}

// GetAllEntries returns the stored entries in insertion order.
func (r *MoodRepository) GetAllEntries(ctx context.Context) []models.MoodEntry {
	records := readRecords[moodRecord](ctx, r.store, r.logger, storage.KeyMoodEntries)
	return decodeAll(records, decodeMoodEntry, r.logger, storage.KeyMoodEntries)
}

// Now is the repository's current time in its location.
func (r *MoodRepository) Now() time.Time {
	return r.opts.now().In(r.opts.location)
}

// GetEntriesInRange returns entries with start <= timestamp <= end.
func (r *MoodRepository) GetEntriesInRange(ctx context.Context, start, end time.Time) []models.MoodEntry {
	var out []models.MoodEntry
	for _, e := range r.GetAllEntries(ctx) {
		if !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			out = append(out, e)
		}
	}
	return out
}

// GetTodaysEntry returns the first entry saved under today's date.
func (r *MoodRepository) GetTodaysEntry(ctx context.Context) (models.MoodEntry, bool) {
	today := dateKey(r.opts.now(), r.opts.location)
	for _, e := range r.GetAllEntries(ctx) {
		if e.Date == today {
			return e, true
		}
	}
	return models.MoodEntry{}, false
}

func (r *MoodRepository) DeleteEntry(ctx context.Context, id string) error {
	const op = "repository.MoodRepository.DeleteEntry"

	entries := r.GetAllEntries(ctx)
	kept := make([]models.MoodEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if err := r.writeEntries(ctx, kept); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	r.refreshStats(ctx, kept)
	return nil
}

func (r *MoodRepository) GetStats(ctx context.Context) models.MoodStats {
	return r.computeStats(r.GetAllEntries(ctx))
}

// GenerateInsight picks one message about the user's recent moods.
func (r *MoodRepository) GenerateInsight(ctx context.Context) models.MoodInsight {
	stats := r.GetStats(ctx)
	switch {
	case stats.TotalEntries == 0:
		return models.MoodInsight{
			Type:    models.InsightEncouraging,
			Message: "Start your mood tracking journey today!",
			Emoji:   "🌟",
		}
	case stats.CurrentStreak >= 7:
		return models.MoodInsight{
			Type:    models.InsightPositive,
			Message: fmt.Sprintf("Amazing! You've tracked your mood for %d days in a row!", stats.CurrentStreak),
			Emoji:   "🔥",
		}
	case stats.MostFrequentMood != nil:
		return models.MoodInsight{
			Type:    models.InsightPositive,
			Message: fmt.Sprintf("You've felt '%s' most often this week!", stats.MostFrequentMood.Label),
			Emoji:   stats.MostFrequentMood.Emoji,
		}
	}
	return models.MoodInsight{
		Type:    models.InsightEncouraging,
		Message: "Keep tracking your mood to discover patterns!",
		Emoji:   "📊",
	}
}

// ClearAllData removes the entry list and the cached stats.
func (r *MoodRepository) ClearAllData(ctx context.Context) error {
	if err := r.store.MultiRemove(ctx, storage.KeyMoodEntries, storage.KeyMoodStats); err != nil {
		return fmt.Errorf("repository.MoodRepository.ClearAllData: %w: %w", ErrStorageWrite, err)
	}
	return nil
}

func (r *MoodRepository) writeEntries(ctx context.Context, entries []models.MoodEntry) error {
	return writeRecords(ctx, r.store, storage.KeyMoodEntries, encodeAll(entries, encodeMoodEntry))
}

// refreshStats rewrites the mood_stats cache. Nothing reads it back, so a
// failure is only logged.
func (r *MoodRepository) refreshStats(ctx context.Context, entries []models.MoodEntry) {
	payload, err := json.Marshal(r.computeStats(entries))
	if err == nil {
		err = r.store.Set(ctx, storage.KeyMoodStats, string(payload))
	}
	if err != nil {
		r.logger.Warn("refresh mood stats", zap.String("key", storage.KeyMoodStats), zap.Error(err))
	}
}

func (r *MoodRepository) computeStats(entries []models.MoodEntry) models.MoodStats {
	now := r.opts.now()
	stats := models.MoodStats{
		TotalEntries:  len(entries),
		CurrentStreak: r.currentStreak(entries, now),
		AverageMood:   neutralFace,
		WeeklyData:    r.weeklyData(entries, now),
	}
	if mood := mostFrequentMood(entries); mood != nil {
		stats.MostFrequentMood = mood
		stats.AverageMood = mood.Emoji
	}
	return stats
}

// currentStreak counts consecutive calendar days with an entry, ending today.
func (r *MoodRepository) currentStreak(entries []models.MoodEntry, now time.Time) int {
	loc := r.opts.location
	days := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		days[dateKey(startOfDay(e.Timestamp, loc), loc)] = struct{}{}
	}

	today := startOfDay(now, loc)
	streak := 0
	for {
		if _, ok := days[dateKey(today.AddDate(0, 0, -streak), loc)]; !ok {
			return streak
		}
		streak++
	}
}

// weeklyData covers the last seven days, oldest first.
func (r *MoodRepository) weeklyData(entries []models.MoodEntry, now time.Time) []models.WeeklyMood {
	loc := r.opts.location
	today := startOfDay(now, loc)
	week := make([]models.WeeklyMood, 0, 7)
	for i := 6; i >= 0; i-- {
		day := dateKey(today.AddDate(0, 0, -i), loc)
		slot := models.WeeklyMood{Date: day}
		for _, e := range entries {
			if e.Date == day {
				mood := e.Mood
				slot.Mood = &mood
				break
			}
		}
		week = append(week, slot)
	}
	return week
}

// mostFrequentMood groups by mood id. Ties go to the mood seen first.
func mostFrequentMood(entries []models.MoodEntry) *models.MoodOption {
	counts := make(map[string]int)
	var order []models.MoodOption
	for _, e := range entries {
		if counts[e.Mood.ID] == 0 {
			order = append(order, e.Mood)
		}
		counts[e.Mood.ID]++
	}

	var best *models.MoodOption
	bestCount := 0
	for i := range order {
		if c := counts[order[i].ID]; c > bestCount {
			mood := order[i]
			best, bestCount = &mood, c
		}
	}
	return best
}
