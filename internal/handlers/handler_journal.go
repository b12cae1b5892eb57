package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles the draft lifecycle, posting and reversal of journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
	postingService portssvc.PostingSvc
}

func newJournalHandler(js portssvc.JournalSvcFacade, ps portssvc.PostingSvc) *journalHandler {
	return &journalHandler{
		journalService: js,
		postingService: ps,
	}
}

// RegisterJournalRoutes registers routes related to journal entries.
func RegisterJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade, postingService portssvc.PostingSvc) {
	h := newJournalHandler(journalService, postingService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("/:entryID", h.getEntry)
		entries.PUT("/:entryID", h.updateEntry)
		entries.DELETE("/:entryID", h.deleteEntry)
		entries.POST("/:entryID/submit", h.submitEntry)
		entries.POST("/:entryID/post", h.postEntry)
		entries.POST("/:entryID/reverse", h.reverseEntry)
	}
}

func (h *journalHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}

	who, ok := requireActor(c)
	if !ok {
		return
	}

	logger.Info("Received request to create journal entry", slog.Int("line_count", len(req.Lines)))

	entry, err := h.journalService.CreateDraft(c.Request.Context(), who.tenantID, req, who.userID)
	if err != nil {
		respondError(c, logger, "create journal entry", err)
		return
	}

	logger.Info("Journal entry created", slog.String("entry_id", entry.EntryID), slog.Int64("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	who, ok := requireActor(c)
	if !ok {
		return
	}

	entry, err := h.journalService.GetEntry(c.Request.Context(), who.tenantID, entryID)
	if err != nil {
		respondError(c, logger.With(slog.String("entry_id", entryID)), "retrieve journal entry", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

func (h *journalHandler) updateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	var req dto.UpdateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}

	who, ok := requireActor(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("entry_id", entryID))
	logger.Info("Received request to update journal entry")

	entry, err := h.journalService.UpdateDraft(c.Request.Context(), who.tenantID, entryID, req, who.userID)
	if err != nil {
		respondError(c, logger, "update journal entry", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

func (h *journalHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	who, ok := requireActor(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("entry_id", entryID))
	if err := h.journalService.DeleteDraft(c.Request.Context(), who.tenantID, entryID, who.userID); err != nil {
		respondError(c, logger, "delete journal entry", err)
		return
	}

	logger.Info("Journal entry deleted")
	c.Status(http.StatusNoContent)
}

func (h *journalHandler) submitEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	who, ok := requireActor(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("entry_id", entryID))
	entry, err := h.journalService.SubmitForReview(c.Request.Context(), who.tenantID, entryID, who.userID)
	if err != nil {
		respondError(c, logger, "submit journal entry", err)
		return
	}

	logger.Info("Journal entry submitted for review")
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// postEntry applies a draft or pending entry to the ledger.
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	who, ok := requireActor(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("entry_id", entryID))
	logger.Info("Received request to post journal entry")

	entry, err := h.postingService.Post(c.Request.Context(), who.tenantID, entryID, who.userID)
	if err != nil {
		respondError(c, logger, "post journal entry", err)
		return
	}

	logger.Info("Journal entry posted", slog.Int64("entry_number", entry.EntryNumber))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseEntry posts the mirror of a posted entry and returns the mirror.
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	var req dto.ReverseJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "request format", err)
		return
	}

	who, ok := requireActor(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("entry_id", entryID))
	logger.Info("Received request to reverse journal entry")

	reversal, err := h.postingService.Reverse(c.Request.Context(), who.tenantID, entryID, req, who.userID)
	if err != nil {
		respondError(c, logger, "reverse journal entry", err)
		return
	}

	logger.Info("Journal entry reversed", slog.String("reversal_entry_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}
