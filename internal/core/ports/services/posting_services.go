package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// PostingSvc is the only way account balances change.
type PostingSvc interface {
	// Post applies a DRAFT or PENDING entry to the ledger and returns it in POSTED state.
	Post(ctx context.Context, tenantID string, entryID string, userID string) (*domain.JournalEntry, error)

	// Reverse posts a mirror entry of a POSTED entry, marks the original REVERSED and returns the mirror.
	Reverse(ctx context.Context, tenantID string, entryID string, req dto.ReverseJournalEntryRequest, userID string) (*domain.JournalEntry, error)
}

// PostingNotifier receives a fact for every committed posting.
type PostingNotifier interface {
	NotifyPosted(ctx context.Context, event domain.PostingCompleted) error
}
