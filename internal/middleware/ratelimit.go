package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// RateLimit creates a Gin middleware for rate limiting requests.
// Authenticated requests are limited per tenant, anonymous ones per client IP.
func RateLimit(limiterInstance *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if tenantID, ok := GetTenantIDFromContext(c); ok {
			key = "tenant:" + tenantID
		}
		logger := GetLoggerFromCtx(c.Request.Context())

		lctx, err := limiterInstance.Get(c.Request.Context(), key)
		if err != nil {
			logger.Error("Failed to get rate limit context", slog.String("key", key), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error during rate limit check"})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		if lctx.Reached {
			logger.Warn("Rate limit exceeded", slog.String("key", key), slog.Int64("limit", lctx.Limit))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}

		c.Next()
	}
}
