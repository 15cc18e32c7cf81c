package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/telemetry"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a panic into an ErrInternal response and logs it with its stack.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				traced := errors.NewTracedError(r, errors.ErrorContext{
					TraceID: telemetry.TraceID(c.Request.Context()),
					UserID:  c.GetString(ContextUserID),
					Path:    c.Request.URL.Path,
					Method:  c.Request.Method,
				}).AddLabel("route", c.FullPath())

				zap.L().Error("panic recovered", traced.Fields()...)

				c.Abort()
				errors.HandleError(c, errors.New(errors.ErrInternal, "internal server error"))
			}
		}()
		c.Next()
	}
}
