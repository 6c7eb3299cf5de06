package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctuary/internal/storage"
)

func newTestLock(store storage.KeyValueStore) *AppLock {
	return NewAppLock(store, []byte("test-secret"), time.Hour, nil)
}

func TestAppLockSetAndUnlock(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(0)
	lock := newTestLock(store)

	has, err := lock.HasPIN(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = lock.Unlock(ctx, "1234")
	assert.ErrorIs(t, err, ErrNoPIN)

	require.NoError(t, lock.SetPIN(ctx, "1234", "1234"))
	has, err = lock.HasPIN(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	raw, _, err := store.Get(ctx, storage.KeyAppPIN)
	require.NoError(t, err)
	assert.NotEqual(t, "1234", raw, "PIN is stored hashed")

	_, err = lock.Unlock(ctx, "4321")
	assert.ErrorIs(t, err, ErrWrongPIN)

	token, err := lock.Unlock(ctx, "1234")
	require.NoError(t, err)
	assert.NoError(t, lock.VerifyToken(token))
}

func TestAppLockValidation(t *testing.T) {
	ctx := context.Background()
	lock := newTestLock(storage.NewMemoryStore(0))

	for _, pin := range []string{"", "123", "12345", "12a4", "١٢٣٤"} {
		assert.ErrorIs(t, lock.SetPIN(ctx, pin, pin), ErrInvalidPIN, pin)
	}
	assert.ErrorIs(t, lock.SetPIN(ctx, "1234", "1235"), ErrPINMismatch)

	require.NoError(t, lock.SetPIN(ctx, "0000", "0000"))
	assert.ErrorIs(t, lock.SetPIN(ctx, "1111", "1111"), ErrPINExists)

	require.NoError(t, lock.ResetPIN(ctx))
	assert.NoError(t, lock.SetPIN(ctx, "1111", "1111"))
}

func TestAppLockTokenExpiryAndSignature(t *testing.T) {
	ctx := context.Background()
	lock := newTestLock(storage.NewMemoryStore(0))
	require.NoError(t, lock.SetPIN(ctx, "2468", "2468"))

	token, err := lock.Unlock(ctx, "2468")
	require.NoError(t, err)

	other := NewAppLock(storage.NewMemoryStore(0), []byte("other-secret"), time.Hour, nil)
	assert.ErrorIs(t, other.VerifyToken(token), ErrInvalidToken)

	lock.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.ErrorIs(t, lock.VerifyToken(token), ErrInvalidToken)

	assert.ErrorIs(t, lock.VerifyToken("garbage"), ErrInvalidToken)
}
