package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

type contextKey struct{ name string }

var clientIPKey = contextKey{"client_ip"}

// ClientInfo copies the client IP into the request context so code below the
// handler layer, like the audit trail, can read it without a gin dependency.
func ClientInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), clientIPKey, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ClientIP returns the client IP stored by ClientInfo, or "" when absent.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}
