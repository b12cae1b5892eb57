package notifier

import (
	"context"
	"log/slog"

	"github.com/SscSPs/ledger_engine/internal/middleware"
)

// requestLogger prefers the logger carried by ctx over fallback.
func requestLogger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == slog.Default() && fallback != nil {
		return fallback
	}
	return logger
}
