package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/metrics"
	"go.uber.org/zap"
)

// ErrorMonitorMiddleware counts the errors handlers attached to the context and logs the
// server-side ones.
func ErrorMonitorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			code := errors.CodeOf(e.Err)
			metrics.ErrorsTotal.WithLabelValues(strconv.Itoa(int(code))).Inc()

			if errors.StatusOf(e.Err) >= 500 {
				zap.L().Error("request failed",
					zap.Int("error_code", int(code)),
					zap.Error(e.Err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method))
			}
		}
	}
}
