package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler serves read-only ledger views and reports.
type ledgerHandler struct {
	ledgerService portssvc.LedgerQuerySvc
}

// RegisterLedgerRoutes registers the ledger and reporting routes.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerQuerySvc) {
	h := &ledgerHandler{ledgerService: ledgerService}

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/accounts/:accountID", h.listAccountLedger)
		ledger.GET("/trial-balance", h.getTrialBalance)
		ledger.GET("/balances", h.getBalances)
		ledger.GET("/integrity", h.verifyIntegrity)
	}
}

// listAccountLedger returns one page of an account's ledger rows with running balances.
func (h *ledgerHandler) listAccountLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	who, ok := requireActor(c)
	if !ok {
		return
	}

	var params dto.ListLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "query parameters", err)
		return
	}

	logger = logger.With(slog.String("account_id", accountID))
	rows, nextToken, err := h.ledgerService.ListAccountLedger(c.Request.Context(), who.tenantID, accountID, params)
	if err != nil {
		respondError(c, logger, "list account ledger", err)
		return
	}

	logger.Debug("Ledger page retrieved", slog.Int("count", len(rows)), slog.Bool("has_more", nextToken != nil))
	c.JSON(http.StatusOK, dto.ToListLedgerResponse(accountID, rows, nextToken))
}

func (h *ledgerHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	who, ok := requireActor(c)
	if !ok {
		return
	}

	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "query parameters", err)
		return
	}

	tb, err := h.ledgerService.GetTrialBalance(c.Request.Context(), who.tenantID, params.AsOf)
	if err != nil {
		respondError(c, logger, "build trial balance", err)
		return
	}

	c.JSON(http.StatusOK, tb)
}

func (h *ledgerHandler) getBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	who, ok := requireActor(c)
	if !ok {
		return
	}

	balances, err := h.ledgerService.GetBalances(c.Request.Context(), who.tenantID)
	if err != nil {
		respondError(c, logger, "retrieve balances", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// verifyIntegrity recomputes every balance from the ledger. A mismatch is reported, not treated as an error.
func (h *ledgerHandler) verifyIntegrity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	who, ok := requireActor(c)
	if !ok {
		return
	}

	report, err := h.ledgerService.VerifyIntegrity(c.Request.Context(), who.tenantID)
	if err != nil {
		respondError(c, logger, "verify ledger integrity", err)
		return
	}

	if !report.IsConsistent {
		logger.Error("Ledger integrity check found mismatches", slog.Int("mismatches", len(report.Mismatches)))
	}
	c.JSON(http.StatusOK, report)
}
