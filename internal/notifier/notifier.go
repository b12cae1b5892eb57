// Package notifier delivers PostingCompleted events to the outside world.
// Every adapter satisfies services.PostingNotifier.
package notifier

import (
	"context"
	"errors"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

// EventPostingCompleted is the event name used by analytics and broker adapters.
const EventPostingCompleted = "journal_entry_posted"

// Multi fans an event out to every notifier and joins their errors.
type Multi []portssvc.PostingNotifier

// NewMulti drops nil notifiers.
func NewMulti(notifiers ...portssvc.PostingNotifier) Multi {
	m := make(Multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

func (m Multi) NotifyPosted(ctx context.Context, event domain.PostingCompleted) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyPosted(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func eventProperties(event domain.PostingCompleted) map[string]any {
	props := map[string]any{
		"tenant_id":    event.TenantID,
		"entry_id":     event.EntryID,
		"entry_number": event.EntryNumber,
		"account_ids":  event.AccountIDs,
		"net_amount":   event.NetAmount.String(),
		"posted_at":    event.PostedAt,
		"is_reversal":  event.OriginalEntryID != nil,
	}
	if event.OriginalEntryID != nil {
		props["original_entry_id"] = *event.OriginalEntryID
	}
	return props
}
