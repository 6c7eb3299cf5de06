package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctuary/internal/models"
	"sanctuary/internal/repository"
	"sanctuary/internal/storage"
)

func TestJournalingWriteAnalyzesAndPersists(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewJournalRepository(storage.NewMemoryStore(0), nil)
	gen := &stubGenerator{response: `{"sentiment":"positive","tags":["gratitude"]}`}
	j := NewJournaling(repo, NewJournalAnalyzer(gen, nil), nil)

	entry, err := j.Write(ctx, "Thanks", "Grateful for friends", "happy")
	require.NoError(t, err)
	assert.True(t, entry.IsAnalyzed)
	assert.Equal(t, models.SentimentPositive, entry.Sentiment)

	stored, found := repo.GetEntryByID(ctx, entry.ID)
	require.True(t, found)
	assert.True(t, stored.IsAnalyzed)
	assert.Equal(t, []string{"gratitude"}, stored.Tags)
}

func TestJournalingWriteWithFailingModelStoresFallback(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewJournalRepository(storage.NewMemoryStore(0), nil)
	j := NewJournaling(repo, NewJournalAnalyzer(&stubGenerator{response: "not json"}, nil), nil)

	entry, err := j.Write(ctx, "t", "c", "")
	require.NoError(t, err)

	stored, _ := repo.GetEntryByID(ctx, entry.ID)
	assert.Equal(t, models.SentimentNeutral, stored.Sentiment)
	assert.Equal(t, []string{"journal", "entry"}, stored.Tags)
}

func TestJournalingWriteReturnsSaveFailure(t *testing.T) {
	repo := repository.NewJournalRepository(storage.NewMemoryStore(1), nil)
	j := NewJournaling(repo, NewJournalAnalyzer(&stubGenerator{}, nil), nil)

	_, err := j.Write(context.Background(), "title", "content", "")
	assert.ErrorIs(t, err, repository.ErrStorageWrite)
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
}

func TestJournalingAnalyzePending(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewJournalRepository(storage.NewMemoryStore(0), nil)
	for _, title := range []string{"a", "b"} {
		_, err := repo.SaveEntry(ctx, title, "content", "")
		require.NoError(t, err)
	}

	gen := &stubGenerator{response: `{"sentiment":"neutral","tags":["day"]}`}
	n, err := NewJournaling(repo, NewJournalAnalyzer(gen, nil), nil).AnalyzePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, repo.GetUnanalyzed(ctx))
	assert.Len(t, gen.prompts, 2)
}
