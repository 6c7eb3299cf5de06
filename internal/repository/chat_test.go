package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctuary/internal/storage"
)

func TestChatMessagesBySession(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	repo := NewChatRepository(storage.NewMemoryStore(0), nil, WithClock(c.now))

	_, err := repo.SaveMessage(ctx, "s1", "hi", true)
	require.NoError(t, err)
	c.t = c.t.Add(time.Second)
	_, err = repo.SaveMessage(ctx, "s2", "other", true)
	require.NoError(t, err)
	c.t = c.t.Add(time.Second)
	reply, err := repo.SaveMessage(ctx, "s1", "hello there", false)
	require.NoError(t, err)

	assert.Len(t, repo.GetMessages(ctx), 3)
	s1 := repo.GetSessionMessages(ctx, "s1")
	require.Len(t, s1, 2)
	assert.True(t, s1[0].IsUser)
	assert.Equal(t, reply.ID, s1[1].ID)
	assert.False(t, s1[1].IsUser)

	require.NoError(t, repo.ClearMessages(ctx))
	assert.Empty(t, repo.GetMessages(ctx))
}

func TestChatSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	repo := NewChatRepository(storage.NewMemoryStore(0), nil, WithClock(c.now))

	session, err := repo.CreateSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session.EndTime)

	_, err = repo.SaveMessage(ctx, session.ID, "hi", true)
	require.NoError(t, err)

	c.t = c.t.Add(10 * time.Minute)
	require.NoError(t, repo.EndSession(ctx, session.ID))
	require.NoError(t, repo.EndSession(ctx, "unknown"))

	sessions := repo.GetSessions(ctx)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].EndTime)
	assert.True(t, sessions[0].EndTime.Equal(c.t))
	require.Len(t, sessions[0].Messages, 1)
	assert.Equal(t, "hi", sessions[0].Messages[0].Text)
}

func TestClearAllRemovesEverything(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(0)
	for _, key := range []string{storage.KeyMoodEntries, storage.KeyJournalEntries, storage.KeyMessages, storage.KeyAppPIN} {
		require.NoError(t, store.Set(ctx, key, "[]"))
	}

	require.NoError(t, ClearAll(ctx, store))

	for _, key := range []string{storage.KeyMoodEntries, storage.KeyJournalEntries, storage.KeyMessages, storage.KeyAppPIN} {
		_, found, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, found, key)
	}
}
