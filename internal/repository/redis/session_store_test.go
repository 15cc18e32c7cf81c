package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*sessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return NewSessionStore(rdb), mr
}

func TestRevokeToken(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RevokeToken(ctx, "tok", time.Now().Add(time.Hour)))
	revoked, err := store.IsTokenRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = store.IsTokenRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeExpiredTokenIsNoop(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, store.RevokeToken(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(revokedKey("old")))
}

func TestFailedSignInWindow(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	window := 15 * time.Minute

	for i := int64(1); i <= 5; i++ {
		n, err := store.RecordFailedSignIn(ctx, "signin:a@b.co", window)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	assert.Equal(t, window, mr.TTL(failuresKey("signin:a@b.co")))

	count, err := store.FailedSignIns(ctx, "signin:a@b.co")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	mr.FastForward(window + time.Second)
	count, err = store.FailedSignIns(ctx, "signin:a@b.co")
	require.NoError(t, err)
	assert.Zero(t, count)

	n, err := store.RecordFailedSignIn(ctx, "signin:a@b.co", window)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLaterFailuresDoNotExtendWindow(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	window := 15 * time.Minute

	_, err := store.RecordFailedSignIn(ctx, "signin:a@b.co", window)
	require.NoError(t, err)

	mr.FastForward(10 * time.Minute)
	_, err = store.RecordFailedSignIn(ctx, "signin:a@b.co", window)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, mr.TTL(failuresKey("signin:a@b.co")))
}

func TestResetFailedSignIns(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.RecordFailedSignIn(ctx, "signin:a@b.co", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.ResetFailedSignIns(ctx, "signin:a@b.co"))

	count, err := store.FailedSignIns(ctx, "signin:a@b.co")
	require.NoError(t, err)
	assert.Zero(t, count)
}
