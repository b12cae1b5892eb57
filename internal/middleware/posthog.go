package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/utils"
	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1/"

// PosthogMiddleware captures one event per successful API call, grouped by tenant.
// It must run after AuthMiddleware.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}
		resource, action, ok := routeEvent(c.Request.Method, c.FullPath())
		if !ok {
			return
		}
		tenantID, _ := GetTenantIDFromContext(c)

		props := map[string]any{
			"resource":    resource,
			"action":      action,
			"status_code": c.Writer.Status(),
			"latency_ms":  time.Since(start).Milliseconds(),
		}
		for _, param := range c.Params {
			props[param.Key] = param.Value
		}

		event := "api_" + strings.ReplaceAll(resource+"_"+action, "-", "_")
		_ = posthogClient.EnqueueForTenant(userID, tenantID, event, props)
	}
}

// routeEvent names an API route by its resource group and action.
// "/api/v1/journal-entries/:entryID/post" is ("journal-entries", "post").
func routeEvent(method, fullPath string) (resource, action string, ok bool) {
	rest, found := strings.CutPrefix(fullPath, apiPrefix)
	if !found || rest == "" {
		return "", "", false
	}
	segments := strings.Split(rest, "/")
	resource = segments[0]
	last := segments[len(segments)-1]

	switch {
	case len(segments) > 1 && !strings.HasPrefix(last, ":"):
		action = last
	case method == http.MethodGet && len(segments) == 1:
		action = "list"
	case method == http.MethodGet:
		action = "get"
	case method == http.MethodPost:
		action = "create"
	case method == http.MethodPut, method == http.MethodPatch:
		action = "update"
	case method == http.MethodDelete:
		action = "delete"
	default:
		action = strings.ToLower(method)
	}
	return resource, action, true
}
