package service

import (
	"context"
	"encoding/json"

	"github.com/zack12Ali/sb1-a2fvdq/internal/realtime"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

// decodeStream turns the raw payloads of sub into values. The returned channel is closed
// when the subscription ends; leaving ctx closes the subscription.
func decodeStream[T any](ctx context.Context, sub *realtime.Subscription) <-chan *T {
	out := make(chan *T)
	go func() {
		defer close(out)
		for data := range sub.C {
			v := new(T)
			if err := json.Unmarshal(data, v); err != nil {
				util.Logger.Warn("dropping malformed live update", zap.Error(err))
				continue
			}
			select {
			case out <- v:
			case <-ctx.Done():
				sub.Close()
				return
			}
		}
	}()
	return out
}
