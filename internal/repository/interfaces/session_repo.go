package interfaces

import (
	"context"
	"time"
)

// SessionStore keeps the short-lived state of the identity provider: revoked tokens and
// failed sign-in counters.
type SessionStore interface {
	RevokeToken(ctx context.Context, token string, until time.Time) error
	IsTokenRevoked(ctx context.Context, token string) (bool, error)
	// RecordFailedSignIn increments the failure counter of key and returns the new count.
	// The counter expires window after the first failure.
	RecordFailedSignIn(ctx context.Context, key string, window time.Duration) (int64, error)
	FailedSignIns(ctx context.Context, key string) (int64, error)
	ResetFailedSignIns(ctx context.Context, key string) error
}
