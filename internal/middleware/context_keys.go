package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the acting user's ID.
const userIDKey = contextKey("userID")

// DefaultActor is recorded in audit fields when a request names no user.
const DefaultActor = "system"

// ActorHeader names the acting user.
const ActorHeader = "X-User-ID"

// ActorMiddleware records the caller named by the X-User-ID header for audit fields.
// It performs no authentication.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(ActorHeader)
		if actor == "" {
			actor = DefaultActor
		}
		c.Set(string(userIDKey), actor)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userIDKey, actor))
		c.Next()
	}
}

// GetUserIDFromContext retrieves the acting user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if v, ok := c.Request.Context().Value(userIDKey).(string); ok {
			return v, true
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	return userID, ok
}

// ActorFromContext returns the acting user ID or DefaultActor.
func ActorFromContext(c *gin.Context) string {
	if id, ok := GetUserIDFromContext(c); ok && id != "" {
		return id
	}
	return DefaultActor
}
