package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("/tree", h.getAccountTree)
		accounts.GET("/:accountID", h.getAccount)
		accounts.PATCH("/:accountID", h.updateAccount)
		accounts.POST("/:accountID/deactivate", h.deactivateAccount)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}

	who, ok := requireActor(c)
	if !ok {
		return
	}

	logger.Info("Received request to create account", slog.String("code", req.Code), slog.String("account_type", string(req.AccountType)))

	newAccount, err := h.accountService.CreateAccount(c.Request.Context(), who.tenantID, req, who.userID)
	if err != nil {
		respondError(c, logger, "create account", err)
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", newAccount.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(newAccount))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	who, ok := requireActor(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("target_account_id", accountID))
	account, err := h.accountService.GetAccountByID(c.Request.Context(), who.tenantID, accountID)
	if err != nil {
		respondError(c, logger, "retrieve account", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountTree returns the account forest, optionally including inactive accounts.
func (h *accountHandler) getAccountTree(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	who, ok := requireActor(c)
	if !ok {
		return
	}

	var params dto.AccountTreeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "query parameters", err)
		return
	}

	nodes, err := h.accountService.GetAccountTree(c.Request.Context(), who.tenantID, params.IncludeInactive)
	if err != nil {
		respondError(c, logger, "retrieve account tree", err)
		return
	}

	logger.Debug("Account tree retrieved", slog.Int("roots", len(nodes)))
	c.JSON(http.StatusOK, dto.ToAccountTreeResponse(nodes))
}

func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}

	who, ok := requireActor(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("target_account_id", accountID))
	logger.Info("Received request to update account")

	updated, err := h.accountService.UpdateAccount(c.Request.Context(), who.tenantID, accountID, req, who.userID)
	if err != nil {
		respondError(c, logger, "update account", err)
		return
	}

	logger.Info("Account updated successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(updated))
}

// deactivateAccount marks an account inactive. Accounts with a balance or active children are refused.
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	who, ok := requireActor(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("target_account_id", accountID))
	logger.Info("Received request to deactivate account")

	if err := h.accountService.DeactivateAccount(c.Request.Context(), who.tenantID, accountID, who.userID); err != nil {
		respondError(c, logger, "deactivate account", err)
		return
	}

	logger.Info("Account deactivated successfully")
	c.Status(http.StatusNoContent)
}
