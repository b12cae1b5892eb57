package notifier

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// EventEnqueuer is the part of utils.PosthogClientWrapper the notifier needs.
type EventEnqueuer interface {
	IsInitialized() bool
	Enqueue(distinctID string, event string, properties map[string]any) error
}

// Posthog records each posting as an analytics event attributed to the actor.
type Posthog struct {
	client EventEnqueuer
}

func NewPosthog(client EventEnqueuer) *Posthog {
	return &Posthog{client: client}
}

func (n *Posthog) NotifyPosted(_ context.Context, event domain.PostingCompleted) error {
	if n.client == nil || !n.client.IsInitialized() {
		return nil
	}
	return n.client.Enqueue(event.PostedBy, EventPostingCompleted, eventProperties(event))
}
