package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

type fiscalPeriodHandler struct {
	periodService portssvc.FiscalPeriodSvcFacade
}

// RegisterFiscalPeriodRoutes registers fiscal period administration routes.
func RegisterFiscalPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.FiscalPeriodSvcFacade) {
	h := &fiscalPeriodHandler{periodService: periodService}

	periods := rg.Group("/fiscal-periods")
	{
		periods.GET("", h.listPeriods)
		periods.POST("", h.definePeriod)
		periods.POST("/:periodID/close", h.setStatus(domain.PeriodClosed))
		periods.POST("/:periodID/reopen", h.setStatus(domain.PeriodOpen))
	}
}

func (h *fiscalPeriodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	who, ok := requireActor(c)
	if !ok {
		return
	}

	periods, err := h.periodService.ListPeriods(c.Request.Context(), who.tenantID)
	if err != nil {
		respondError(c, logger, "list fiscal periods", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListFiscalPeriodResponse(periods))
}

func (h *fiscalPeriodHandler) definePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateFiscalPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}

	who, ok := requireActor(c)
	if !ok {
		return
	}

	period, err := h.periodService.DefinePeriod(c.Request.Context(), who.tenantID, req, who.userID)
	if err != nil {
		respondError(c, logger, "define fiscal period", err)
		return
	}

	logger.Info("Fiscal period defined", slog.String("period_id", period.PeriodID), slog.String("name", period.Name))
	c.JSON(http.StatusCreated, dto.ToFiscalPeriodResponse(period))
}

// setStatus returns a handler that moves a period to status.
func (h *fiscalPeriodHandler) setStatus(status domain.PeriodStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		periodID := c.Param("periodID")

		who, ok := requireActor(c)
		if !ok {
			return
		}

		logger = logger.With(slog.String("period_id", periodID), slog.String("status", string(status)))
		period, err := h.periodService.SetPeriodStatus(c.Request.Context(), who.tenantID, periodID, status, who.userID)
		if err != nil {
			respondError(c, logger, "change fiscal period status", err)
			return
		}

		logger.Info("Fiscal period status changed")
		c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
	}
}
