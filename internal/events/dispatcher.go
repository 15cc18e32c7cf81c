package events

import (
	"context"
	"sync"
	"time"

	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

const handlerTimeout = 10 * time.Second

// Dispatcher delivers events to in-process handlers. It is used when no Kafka brokers are
// configured. Handlers run on their own goroutine so publishers never wait on them.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
	wg       sync.WaitGroup
}

func NewDispatcher(handlers ...Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers}
}

func (d *Dispatcher) Subscribe(h Handler) {
	d.mu.Lock()
	d.handlers = append(d.handlers, h)
	d.mu.Unlock()
}

func (d *Dispatcher) Publish(_ context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers...)
	d.mu.RUnlock()

	for _, h := range handlers {
		d.wg.Add(1)
		go func(h Handler) {
			defer d.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
			defer cancel()
			if err := h(ctx, event); err != nil {
				util.Logger.Error("event handler failed", zap.Error(err), zap.String("type", event.Type))
			}
		}(h)
	}
	return nil
}

// Close waits for running handlers.
func (d *Dispatcher) Close() error {
	d.wg.Wait()
	return nil
}
