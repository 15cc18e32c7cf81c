package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

// redisBroker uses Redis pub/sub so every API instance sees every update.
type redisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *redisBroker {
	return &redisBroker{rdb: rdb}
}

func (b *redisBroker) Publish(ctx context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, channel, data).Err()
}

func (b *redisBroker) Subscribe(ctx context.Context, channel string) (*Subscription, error) {
	pubsub := b.rdb.Subscribe(ctx, channel)
	// wait for the subscription confirmation so no publish after return is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan []byte, subscriberBuffer)
	done := make(chan struct{})
	s := &Subscription{C: out}
	s.close = func() {
		close(done)
		if err := pubsub.Close(); err != nil {
			util.Logger.Warn("failed to close redis subscription", zap.Error(err), zap.String("channel", channel))
		}
	}

	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				s.Close()
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
				}
			}
		}
	}()
	return s, nil
}

// Close is a no-op; the client belongs to the caller and is closed by it.
func (b *redisBroker) Close() error {
	return nil
}
