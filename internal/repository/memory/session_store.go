package memory

import (
	"context"
	"sync"
	"time"
)

type failureCounter struct {
	count     int64
	expiresAt time.Time
}

// sessionStore keeps revoked tokens and sign-in failures in process memory.
type sessionStore struct {
	mu       sync.Mutex
	revoked  map[string]time.Time
	failures map[string]failureCounter
	now      func() time.Time
}

func NewSessionStore() *sessionStore {
	return &sessionStore{
		revoked:  make(map[string]time.Time),
		failures: make(map[string]failureCounter),
		now:      time.Now,
	}
}

func (s *sessionStore) RevokeToken(_ context.Context, token string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = until
	return nil
}

func (s *sessionStore) IsTokenRevoked(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.revoked[token]
	if !exists {
		return false, nil
	}
	if s.now().After(expiry) {
		delete(s.revoked, token)
		return false, nil
	}
	return true, nil
}

func (s *sessionStore) RecordFailedSignIn(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	counter, ok := s.failures[key]
	if !ok || now.After(counter.expiresAt) {
		counter = failureCounter{expiresAt: now.Add(window)}
	}
	counter.count++
	s.failures[key] = counter
	return counter.count, nil
}

func (s *sessionStore) FailedSignIns(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counter, ok := s.failures[key]
	if !ok {
		return 0, nil
	}
	if s.now().After(counter.expiresAt) {
		delete(s.failures, key)
		return 0, nil
	}
	return counter.count, nil
}

func (s *sessionStore) ResetFailedSignIns(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, key)
	return nil
}
