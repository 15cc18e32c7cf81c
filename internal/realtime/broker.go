// Package realtime fans out live updates (new posts, chat messages) to subscribed clients.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
)

const (
	FeedChannel = "feed:posts"

	subscriberBuffer = 32
)

// ChatChannel is the channel carrying the messages of one conversation.
func ChatChannel(chatID string) string {
	return "chat:" + chatID
}

// Broker publishes JSON payloads on named channels.
type Broker interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
	Subscribe(ctx context.Context, channel string) (*Subscription, error)
	Close() error
}

// Subscription delivers raw payloads until Close is called or its context ends.
type Subscription struct {
	C <-chan []byte

	once  sync.Once
	close func()
}

func (s *Subscription) Close() {
	s.once.Do(s.close)
}

// memoryBroker delivers within the current process only.
type memoryBroker struct {
	mu     sync.RWMutex
	subs   map[string]map[*memorySub]struct{}
	closed bool
}

type memorySub struct {
	ch chan []byte
}

func NewMemoryBroker() *memoryBroker {
	return &memoryBroker{subs: make(map[string]map[*memorySub]struct{})}
}

func (b *memoryBroker) Publish(_ context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs[channel] {
		select {
		case sub.ch <- data:
		default:
			// slow subscriber, drop
		}
	}
	return nil
}

func (b *memoryBroker) Subscribe(ctx context.Context, channel string) (*Subscription, error) {
	sub := &memorySub{ch: make(chan []byte, subscriberBuffer)}

	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*memorySub]struct{})
	}
	b.subs[channel][sub] = struct{}{}
	b.mu.Unlock()

	done := make(chan struct{})
	s := &Subscription{C: sub.ch}
	s.close = func() {
		close(done)
		b.mu.Lock()
		delete(b.subs[channel], sub)
		if len(b.subs[channel]) == 0 {
			delete(b.subs, channel)
		}
		close(sub.ch)
		b.mu.Unlock()
	}

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-done:
		}
	}()
	return s, nil
}

func (b *memoryBroker) Close() error {
	return nil
}

// Subscribers reports how many listeners a channel has.
func (b *memoryBroker) Subscribers(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[channel])
}
