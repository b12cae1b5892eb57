package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// JournalReader defines read operations for journal entries
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines ordered by line number.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)
}

// JournalWriter defines write operations for journal entries that are not posted yet
type JournalWriter interface {
	// SaveDraft allocates the next entry number for the tenant, then persists the entry and its lines.
	// The allocated number is written back into entry.
	SaveDraft(ctx context.Context, entry *domain.JournalEntry) error

	// UpdateDraft replaces the header fields and lines of an editable entry.
	// Returns apperrors.ErrEntryNotEditable if the stored entry is no longer DRAFT or PENDING.
	UpdateDraft(ctx context.Context, entry domain.JournalEntry) error

	// DeleteDraft removes an editable entry and its lines.
	DeleteDraft(ctx context.Context, entryID string) error

	// UpdateEntryStatus moves an entry from one of the expected statuses to the target one.
	// Returns apperrors.ErrEntryNotEditable if the stored status is not in from.
	UpdateEntryStatus(ctx context.Context, entryID string, from []domain.JournalStatus, to domain.JournalStatus, userID string, now time.Time) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
