package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sanctuary/internal/models"
	"sanctuary/internal/repository"
)

// Journaling saves an entry, then analyzes it, then stores the analysis.
// The steps run in order; the entry is visible unanalyzed before analysis ends.
type Journaling struct {
	entries  *repository.JournalRepository
	analyzer *JournalAnalyzer
	logger   *zap.Logger
}

func NewJournaling(entries *repository.JournalRepository, analyzer *JournalAnalyzer, logger *zap.Logger) *Journaling {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journaling{entries: entries, analyzer: analyzer, logger: logger}
}

// Write returns the entry with its analysis applied. When only the analysis
// write fails, the saved (unanalyzed) entry is returned with the error.
func (j *Journaling) Write(ctx context.Context, title, content, mood string) (models.JournalEntry, error) {
	const op = "services.Journaling.Write"

	entry, err := j.entries.SaveEntry(ctx, title, content, mood)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("%s: %w", op, err)
	}

	analyzed, err := j.analyze(ctx, entry)
	if err != nil {
		return entry, fmt.Errorf("%s: %w", op, err)
	}
	return analyzed, nil
}

// AnalyzePending analyzes every entry that has no analysis yet and returns
// how many were updated. It stops at the first write failure.
func (j *Journaling) AnalyzePending(ctx context.Context) (int, error) {
	const op = "services.Journaling.AnalyzePending"

	done := 0
	for _, entry := range j.entries.GetUnanalyzed(ctx) {
		if err := ctx.Err(); err != nil {
			return done, fmt.Errorf("%s: %w", op, err)
		}
		if _, err := j.analyze(ctx, entry); err != nil {
			return done, fmt.Errorf("%s: %w", op, err)
		}
		done++
	}
	j.logger.Debug("analyzed pending journal entries", zap.Int("count", done))
	return done, nil
}

func (j *Journaling) analyze(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	analysis := j.analyzer.Analyze(ctx, entry.Content)
	if err := j.entries.UpdateAnalysis(ctx, entry.ID, analysis.Sentiment, analysis.Tags); err != nil {
		return entry, err
	}
	entry.Sentiment = analysis.Sentiment
	entry.Tags = analysis.Tags
	entry.IsAnalyzed = true
	return entry, nil
}
