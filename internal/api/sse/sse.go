// Package sse streams live updates to HTTP clients as server-sent events.
package sse

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

const keepAlive = 25 * time.Second

// Stream writes every value received on ch as an SSE event named event. It returns when
// ch is closed or the client goes away, then calls stop.
func Stream[T any](c *gin.Context, event string, ch <-chan *T, stop func()) {
	defer stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case v, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(event, v)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
