package notifier

import (
	"context"
	"log/slog"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// Log writes every event to the request logger, or to the fallback logger when the context carries none.
type Log struct {
	fallback *slog.Logger
}

func NewLog(fallback *slog.Logger) *Log {
	return &Log{fallback: fallback}
}

func (n *Log) NotifyPosted(ctx context.Context, event domain.PostingCompleted) error {
	logger := requestLogger(ctx, n.fallback)
	attrs := []any{
		slog.String("tenant_id", event.TenantID),
		slog.String("entry_id", event.EntryID),
		slog.Int64("entry_number", event.EntryNumber),
		slog.Int("accounts", len(event.AccountIDs)),
		slog.String("net_amount", event.NetAmount.String()),
		slog.String("posted_by", event.PostedBy),
	}
	if event.OriginalEntryID != nil {
		attrs = append(attrs, slog.String("original_entry_id", *event.OriginalEntryID))
	}
	logger.InfoContext(ctx, "Posting completed", attrs...)
	return nil
}
