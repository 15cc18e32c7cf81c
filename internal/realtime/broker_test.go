package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBrokerDelivers(t *testing.T) {
	b := NewMemoryBroker()
	sub, err := b.Subscribe(context.Background(), FeedChannel)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, b.Publish(context.Background(), FeedChannel, map[string]string{"id": "p1"}))

	select {
	case data := <-sub.C:
		assert.JSONEq(t, `{"id":"p1"}`, string(data))
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}

func TestMemoryBrokerUnsubscribesOnCancel(t *testing.T) {
	b := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := b.Subscribe(ctx, ChatChannel("a_b"))
	require.NoError(t, err)
	assert.Equal(t, 1, b.Subscribers(ChatChannel("a_b")))

	cancel()

	assert.Eventually(t, func() bool {
		return b.Subscribers(ChatChannel("a_b")) == 0
	}, time.Second, 10*time.Millisecond)
	_, open := <-sub.C
	assert.False(t, open)

	// closing again is a no-op
	sub.Close()
}
