package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	testSecret = "test-secret-key-that-is-long-enough"
	testIssuer = "ledger-test"
)

type MiddlewareTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *MiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
}

// whoami echoes what the auth middleware put into the context.
func whoami(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	c.JSON(http.StatusOK, gin.H{"user": userID, "tenant": tenantID})
}

func (s *MiddlewareTestSuite) get(path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *MiddlewareTestSuite) TestAuth_ValidToken() {
	s.router.GET("/me", middleware.AuthMiddleware(testSecret, testIssuer), whoami)
	token, err := middleware.IssueToken("user-1", "tenant-1", testSecret, time.Hour, testIssuer)
	s.Require().NoError(err)

	w := s.get("/me", token)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"user":"user-1","tenant":"tenant-1"}`, w.Body.String())
}

func (s *MiddlewareTestSuite) TestAuth_Rejections() {
	s.router.GET("/me", middleware.AuthMiddleware(testSecret, testIssuer), whoami)

	expired, err := middleware.IssueToken("user-1", "tenant-1", testSecret, -time.Minute, testIssuer)
	s.Require().NoError(err)
	wrongIssuer, err := middleware.IssueToken("user-1", "tenant-1", testSecret, time.Hour, "someone-else")
	s.Require().NoError(err)
	wrongSecret, err := middleware.IssueToken("user-1", "tenant-1", "another-secret", time.Hour, testIssuer)
	s.Require().NoError(err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, middleware.LedgerClaims{
		TenantID:         "tenant-1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: testIssuer},
	}).SignedString([]byte(testSecret))
	s.Require().NoError(err)

	testCases := []struct {
		name    string
		token   string
		wantMsg string
	}{
		{name: "missing", token: "", wantMsg: "Authorization header required"},
		{name: "expired", token: expired, wantMsg: "Token has expired"},
		{name: "wrong issuer", token: wrongIssuer, wantMsg: "Invalid token"},
		{name: "wrong secret", token: wrongSecret, wantMsg: "Invalid token"},
		{name: "unexpected algorithm", token: hs512, wantMsg: "Invalid token"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w := s.get("/me", tc.token)

			s.Equal(http.StatusUnauthorized, w.Code)
			s.Contains(w.Body.String(), tc.wantMsg)
		})
	}
}

func (s *MiddlewareTestSuite) TestAuth_EmptyIssuerSkipsCheck() {
	s.router.GET("/me", middleware.AuthMiddleware(testSecret, ""), whoami)
	token, err := middleware.IssueToken("user-1", "tenant-1", testSecret, time.Hour, "anyone")
	s.Require().NoError(err)

	s.Equal(http.StatusOK, s.get("/me", token).Code)
}

func (s *MiddlewareTestSuite) TestRequestID_EchoedOrGenerated() {
	s.router.Use(middleware.StructuredLoggingMiddleware(nopLogger()))
	s.router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal("req-42", w.Header().Get("X-Request-ID"))

	w = s.get("/ping", "")
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *MiddlewareTestSuite) TestRateLimit_PerTenant() {
	rate, err := limiter.NewRateFromFormatted("2-M")
	s.Require().NoError(err)
	rl := middleware.RateLimit(limiter.New(limitermemory.NewStore(), rate))
	s.router.GET("/me", middleware.AuthMiddleware(testSecret, testIssuer), rl, whoami)

	tenantA, _ := middleware.IssueToken("user-1", "tenant-a", testSecret, time.Hour, testIssuer)
	tenantB, _ := middleware.IssueToken("user-2", "tenant-b", testSecret, time.Hour, testIssuer)

	s.Equal(http.StatusOK, s.get("/me", tenantA).Code)
	w := s.get("/me", tenantA)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("0", w.Header().Get("X-RateLimit-Remaining"))
	s.Equal(http.StatusTooManyRequests, s.get("/me", tenantA).Code)

	// Another tenant has its own budget
	s.Equal(http.StatusOK, s.get("/me", tenantB).Code)
}

func (s *MiddlewareTestSuite) TestCORS_Preflight() {
	s.router.Use(middleware.CORS([]string{"https://books.example.com"}))
	s.router.POST("/api/v1/journal-entries", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req, _ := http.NewRequest(http.MethodOptions, "/api/v1/journal-entries", nil)
	req.Header.Set("Origin", "https://books.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNoContent, w.Code)
	s.Equal("https://books.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddleware(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}

func TestIssueToken_RequiresActor(t *testing.T) {
	_, err := middleware.IssueToken("", "tenant-1", testSecret, time.Hour, testIssuer)
	require.Error(t, err)
	_, err = middleware.IssueToken("user-1", "", testSecret, time.Hour, testIssuer)
	assert.Error(t, err)
}
