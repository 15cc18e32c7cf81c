package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBrokerDelivers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	b := NewRedisBroker(rdb)
	sub, err := b.Subscribe(context.Background(), FeedChannel)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, b.Publish(context.Background(), FeedChannel, map[string]string{"id": "p1"}))

	select {
	case data := <-sub.C:
		assert.JSONEq(t, `{"id":"p1"}`, string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestRedisBrokerCloseLeavesClientOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	require.NoError(t, NewRedisBroker(rdb).Close())
	assert.NoError(t, rdb.Ping(context.Background()).Err())
	assert.NoError(t, rdb.Close())
}
