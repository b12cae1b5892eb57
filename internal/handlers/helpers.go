package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// retryAfterSeconds is sent with every 503 so clients back off before re-issuing the call.
const retryAfterSeconds = 1

// actor is the tenant and user a request acts for.
type actor struct {
	tenantID string
	userID   string
}

// requireActor reads the authenticated tenant and user, aborting with 401 when either is missing.
func requireActor(c *gin.Context) (actor, bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return actor{}, false
	}
	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		logger.Error("Tenant ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return actor{}, false
	}
	return actor{tenantID: tenantID, userID: userID}, true
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch apperrors.CategoryOf(err) {
	case apperrors.CategoryValidation:
		if errors.Is(err, apperrors.ErrDuplicate) {
			return http.StatusConflict
		}
		if errors.Is(err, apperrors.ErrUnbalancedEntry) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case apperrors.CategoryNotFound:
		return http.StatusNotFound
	case apperrors.CategoryState:
		return http.StatusConflict
	case apperrors.CategoryResource:
		return http.StatusUnprocessableEntity
	case apperrors.CategoryTransient:
		return http.StatusServiceUnavailable
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 600 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// respondError writes err as a JSON error body. Internal failures are logged and hidden from the client.
func respondError(c *gin.Context, logger *slog.Logger, action string, err error) {
	status := statusFor(err)
	category := apperrors.CategoryOf(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Failed to " + action, "category": category})
		return
	}

	logger.Warn("Request rejected", slog.String("action", action), slog.String("category", string(category)), slog.String("error", err.Error()))
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	c.JSON(status, gin.H{"error": err.Error(), "category": category, "retryable": apperrors.IsRetryable(err)})
}

// bindError answers a request whose body or query failed to bind.
func bindError(c *gin.Context, logger *slog.Logger, what string, err error) {
	logger.Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + ": " + err.Error()})
}
