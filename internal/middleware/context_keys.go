package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

const (
	// userIDKey holds the authenticated actor's ID.
	userIDKey = contextKey("userID")
	// tenantIDKey holds the tenant resolved from the token.
	tenantIDKey = contextKey("tenantID")
)

// WithActor returns a copy of ctx carrying the authenticated tenant and user.
func WithActor(ctx context.Context, tenantID, userID string) context.Context {
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext retrieves the authenticated user ID from the request context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	return stringFromCtx(c, userIDKey)
}

// GetTenantIDFromContext retrieves the tenant of the authenticated user.
func GetTenantIDFromContext(c *gin.Context) (string, bool) {
	return stringFromCtx(c, tenantIDKey)
}

func stringFromCtx(c *gin.Context, key contextKey) (string, bool) {
	if v, exists := c.Get(string(key)); exists {
		s, ok := v.(string)
		return s, ok && s != ""
	}
	s, ok := c.Request.Context().Value(key).(string)
	return s, ok && s != ""
}
