package handlers

import (
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// apiMiddleware runs on /api/v1 after authentication, so it sees the tenant and user.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	apiMiddleware ...gin.HandlerFunc,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services, apiMiddleware)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	apiMiddleware []gin.HandlerFunc,
) {
	// Apply AuthMiddleware to the entire v1 group
	chain := append([]gin.HandlerFunc{middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)}, apiMiddleware...)
	v1 := r.Group("/api/v1", chain...)

	RegisterAccountRoutes(v1, service.Account)
	RegisterJournalRoutes(v1, service.Journal, service.Posting)
	RegisterLedgerRoutes(v1, service.Ledger)
	RegisterFiscalPeriodRoutes(v1, service.FiscalPeriod)
}
