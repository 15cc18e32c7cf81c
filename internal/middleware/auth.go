package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

const (
	ContextUserID = "user_id"
	ContextToken  = "token"

	authTimeout = 5 * time.Second
)

// RevocationChecker reports whether a session token was signed out.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware requires a valid bearer token and stores the caller's id under "user_id".
func AuthMiddleware(checker RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "authentication required"))
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), authTimeout)
		defer cancel()

		revoked, err := checker.IsTokenRevoked(ctx, token)
		if err != nil {
			util.Logger.Error("token revocation check failed", zap.Error(err))
			errors.HandleError(c, err)
			c.Abort()
			return
		}
		if revoked {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "token has been revoked"))
			c.Abort()
			return
		}

		userID, err := util.ValidateToken(token)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrUnauthorized, "invalid or expired token", err))
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextToken, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// UserID returns the authenticated caller, or "" outside AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
