// Package redis keeps identity session state in Redis so it is shared by every instance.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type sessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *sessionStore {
	return &sessionStore{rdb: rdb}
}

func revokedKey(token string) string  { return "auth:revoked:" + token }
func failuresKey(email string) string { return "auth:failures:" + email }

func (s *sessionStore) RevokeToken(ctx context.Context, token string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKey(token), 1, ttl).Err()
}

func (s *sessionStore) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *sessionStore) RecordFailedSignIn(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := failuresKey(key)
	n, err := s.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	// the window starts at the first failure; later failures do not extend it
	if n == 1 {
		if err := s.rdb.Expire(ctx, k, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *sessionStore) FailedSignIns(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.Get(ctx, failuresKey(key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func (s *sessionStore) ResetFailedSignIns(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, failuresKey(key)).Err()
}
