package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionStoreRevocationExpires(t *testing.T) {
	store := NewSessionStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	assert.NoError(t, store.RevokeToken(ctx, "tok", now.Add(time.Hour)))
	revoked, _ := store.IsTokenRevoked(ctx, "tok")
	assert.True(t, revoked)

	store.now = func() time.Time { return now.Add(2 * time.Hour) }
	revoked, _ = store.IsTokenRevoked(ctx, "tok")
	assert.False(t, revoked)
}

func TestSessionStoreFailureWindow(t *testing.T) {
	store := NewSessionStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		n, err := store.RecordFailedSignIn(ctx, "a@b.co", 15*time.Minute)
		assert.NoError(t, err)
		assert.Equal(t, int64(i), n)
	}

	store.now = func() time.Time { return now.Add(16 * time.Minute) }
	n, _ := store.FailedSignIns(ctx, "a@b.co")
	assert.Equal(t, int64(0), n)

	n, _ = store.RecordFailedSignIn(ctx, "a@b.co", 15*time.Minute)
	assert.Equal(t, int64(1), n)

	assert.NoError(t, store.ResetFailedSignIns(ctx, "a@b.co"))
	n, _ = store.FailedSignIns(ctx, "a@b.co")
	assert.Equal(t, int64(0), n)
}
