package middleware

import (
	"net/http"
	"strings"

	"github.com/ethanbaker/legal-assistant/pkg/sdk"
	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// RequireUser reads the caller identity set by the upstream authenticator. Requests
// without one are rejected before any handler runs
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(sdk.UserIDHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, sdk.ChatError{Error: "Authentication required"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the identity stored by RequireUser
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
