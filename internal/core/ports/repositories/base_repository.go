package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostingTx is the transactional view used while posting. Everything written through it becomes
// visible atomically on commit, or not at all.
type PostingTx interface {
	FiscalPeriodReader

	// LockEntry loads an entry with its lines and holds it until the transaction ends.
	LockEntry(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)

	// LockAccounts locks the given accounts in ascending ID order and returns the found ones.
	LockAccounts(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)

	// NextEntryNumber allocates the next sequential entry number of the tenant.
	NextEntryNumber(ctx context.Context, tenantID string) (int64, error)

	// InsertEntry persists a new entry with its lines.
	InsertEntry(ctx context.Context, entry domain.JournalEntry) error

	// AppendLedgerRows appends rows in slice order.
	AppendLedgerRows(ctx context.Context, rows []domain.LedgerRow) error

	// UpdateAccountBalances sets current_balance of each account to the given value.
	UpdateAccountBalances(ctx context.Context, balances map[string]decimal.Decimal, userID string, now time.Time) error

	// MarkEntryPosted stores status, totals, posted_at and posted_by of entry.
	MarkEntryPosted(ctx context.Context, entry domain.JournalEntry) error

	// MarkEntryReversed flips a posted entry to REVERSED and links the reversal entry.
	MarkEntryReversed(ctx context.Context, entryID, reversedByEntryID, reason, userID string, now time.Time) error
}

// PostingTxRunner runs fn inside a single storage transaction bounded by lockTimeout.
// The transaction commits when fn returns nil and rolls back otherwise.
// Lock waits longer than lockTimeout surface as apperrors.ErrLockTimeout.
type PostingTxRunner interface {
	WithinPostingTx(ctx context.Context, lockTimeout time.Duration, fn func(ctx context.Context, tx PostingTx) error) error
}
