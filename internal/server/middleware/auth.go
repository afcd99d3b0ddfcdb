// Package middleware holds gin middleware shared by the HTTP handlers.
package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/monok8i/users-service/internal/security"
)

const (
	// UserIDKey is the gin context key the authenticated user's ID is stored
	// under.
	UserIDKey = "userID"
)

// RequireAuth validates the bearer access token and stores the subject user ID
// in the request context. Requests without a valid token are aborted with 401.
func RequireAuth(codec *security.TokenCodec, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := codec.DecodeBearer(c.GetHeader("Authorization"))
		if err != nil {
			msg := "invalid access token"
			if errors.Is(err, security.ErrTokenExpired) {
				msg = "access token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		userID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			logger.Warn("access token with non-numeric subject", zap.String("sub", claims.Subject))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user's ID set by RequireAuth.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
