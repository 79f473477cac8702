package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "kardex/internal/core/context"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
)

// Actor middleware captures the acting user for audit attribution.
// Authentication happens upstream; the engine trusts the gateway-supplied
// identity headers and only records them.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			c.Next()
			return
		}

		ctx := appctx.WithUser(c.Request.Context(), &appctx.UserContext{
			UserID: userID,
			Name:   c.GetHeader(HeaderUserName),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
