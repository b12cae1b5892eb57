package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/SscSPs/ledger_engine/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/posthog/posthog-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureClient records enqueued captures. Other posthog.Client methods are not used.
type captureClient struct {
	posthog.Client
	mu       sync.Mutex
	captures []posthog.Capture
}

func (c *captureClient) Enqueue(msg posthog.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if capture, ok := msg.(posthog.Capture); ok {
		c.captures = append(c.captures, capture)
	}
	return nil
}

func TestPosthogMiddleware_CapturesRouteAndTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client := &captureClient{}
	r := gin.New()
	api := r.Group("/api/v1",
		middleware.AuthMiddleware(testSecret, testIssuer),
		middleware.PosthogMiddleware(utils.NewPosthogClientWrapper(client, nopLogger())),
	)
	api.POST("/journal-entries/:entryID/post", func(c *gin.Context) { c.Status(http.StatusOK) })
	api.GET("/accounts/:accountID", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	api.GET("/fiscal-periods", func(c *gin.Context) { c.Status(http.StatusOK) })

	token, err := middleware.IssueToken("user-1", "tenant-1", testSecret, time.Hour, testIssuer)
	require.NoError(t, err)
	for _, req := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/journal-entries/e-1/post"},
		{http.MethodGet, "/api/v1/accounts/missing"},
		{http.MethodGet, "/api/v1/fiscal-periods"},
	} {
		httpReq, _ := http.NewRequest(req.method, req.path, nil)
		httpReq.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(httptest.NewRecorder(), httpReq)
	}

	// The 404 is not captured
	require.Len(t, client.captures, 2)
	posted := client.captures[0]
	assert.Equal(t, "api_journal_entries_post", posted.Event)
	assert.Equal(t, "user-1", posted.DistinctId)
	assert.Equal(t, "tenant-1", posted.Groups["tenant"])
	assert.Equal(t, "journal-entries", posted.Properties["resource"])
	assert.Equal(t, "e-1", posted.Properties["entryID"])
	assert.Equal(t, "api_fiscal_periods_list", client.captures[1].Event)
}

func TestPosthogMiddleware_UninitializedClientIsNoop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/fiscal-periods", middleware.PosthogMiddleware(nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/fiscal-periods", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
