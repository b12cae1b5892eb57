package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// postingTx stages every write and applies them together on commit.
type postingTx struct {
	store   *Store
	timeout time.Duration
	held    []string
	holding map[string]bool

	newEntries []domain.JournalEntry
	patches    []func(entries map[string]domain.JournalEntry)
	rows       []domain.LedgerRow
	balances   map[string]decimal.Decimal
	balanceBy  string
	balanceAt  time.Time
	sequences  map[string]int64
	seenOpen   []string
}

var _ portsrepo.PostingTx = (*postingTx)(nil)

// WithinPostingTx runs fn against a staged transaction and commits it if fn succeeds.
func (s *Store) WithinPostingTx(ctx context.Context, lockTimeout time.Duration, fn func(ctx context.Context, tx portsrepo.PostingTx) error) error {
	if lockTimeout <= 0 {
		lockTimeout = s.lockTimeout
	}
	tx := &postingTx{
		store:     s,
		timeout:   lockTimeout,
		holding:   make(map[string]bool),
		balances:  make(map[string]decimal.Decimal),
		sequences: make(map[string]int64),
	}
	defer tx.releaseAll()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

func (tx *postingTx) lock(ctx context.Context, key string) error {
	if tx.holding[key] {
		return nil
	}
	if err := tx.store.locks.acquire(ctx, key, tx.timeout); err != nil {
		return err
	}
	tx.holding[key] = true
	tx.held = append(tx.held, key)
	return nil
}

func (tx *postingTx) releaseAll() {
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.store.locks.release(tx.held[i])
	}
	tx.held = nil
	clear(tx.holding)
}

func (tx *postingTx) commit() error {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// A period read as open must still be open at commit time.
	for _, id := range tx.seenOpen {
		if p := s.periods[id]; p.Status != domain.PeriodOpen {
			return fmt.Errorf("%w: %s closed during posting", apperrors.ErrPeriodClosed, p.Name)
		}
	}

	for _, e := range tx.newEntries {
		s.entries[e.EntryID] = e
	}
	for _, patch := range tx.patches {
		patch(s.entries)
	}
	for _, row := range tx.rows {
		s.nextRowID++
		row.RowID = s.nextRowID
		s.rows = append(s.rows, row)
		s.rowsByAccount[row.AccountID] = append(s.rowsByAccount[row.AccountID], len(s.rows)-1)
	}
	for id, balance := range tx.balances {
		acc := s.accounts[id]
		acc.CurrentBalance = balance
		acc.LastUpdatedAt = tx.balanceAt
		acc.LastUpdatedBy = tx.balanceBy
		s.accounts[id] = acc
	}
	for tenant, seq := range tx.sequences {
		s.sequences[tenant] = seq
	}
	return nil
}

func (tx *postingTx) FindPeriodsCovering(_ context.Context, tenantID string, date time.Time) ([]domain.FiscalPeriod, error) {
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	periods := tx.store.periodsCoveringLocked(tenantID, date)
	for _, p := range periods {
		if p.Status == domain.PeriodOpen {
			tx.seenOpen = append(tx.seenOpen, p.PeriodID)
		}
	}
	return periods, nil
}

func (tx *postingTx) LockEntry(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	if err := tx.lock(ctx, entryKey(entryID)); err != nil {
		return nil, err
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	e, ok := tx.store.entries[entryID]
	if !ok || e.TenantID != tenantID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
	}
	e = cloneEntry(e)
	e.Lines = e.SortedLines()
	return &e, nil
}

func (tx *postingTx) LockAccounts(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	ids := slices.Clone(accountIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	for _, id := range ids {
		if err := tx.lock(ctx, accountKey(id)); err != nil {
			return nil, err
		}
	}

	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	found := make(map[string]domain.Account, len(ids))
	for _, id := range ids {
		acc, ok := tx.store.accounts[id]
		if !ok || acc.TenantID != tenantID {
			continue
		}
		if staged, ok := tx.balances[id]; ok {
			acc.CurrentBalance = staged
		}
		found[id] = cloneAccount(acc)
	}
	return found, nil
}

func (tx *postingTx) NextEntryNumber(ctx context.Context, tenantID string) (int64, error) {
	if err := tx.lock(ctx, seqKey(tenantID)); err != nil {
		return 0, err
	}
	next, ok := tx.sequences[tenantID]
	if !ok {
		tx.store.mu.RLock()
		next = tx.store.sequences[tenantID]
		tx.store.mu.RUnlock()
	}
	next++
	tx.sequences[tenantID] = next
	return next, nil
}

func (tx *postingTx) InsertEntry(ctx context.Context, entry domain.JournalEntry) error {
	if err := tx.lock(ctx, entryKey(entry.EntryID)); err != nil {
		return err
	}
	tx.newEntries = append(tx.newEntries, cloneEntry(entry))
	return nil
}

func (tx *postingTx) AppendLedgerRows(_ context.Context, rows []domain.LedgerRow) error {
	tx.rows = append(tx.rows, rows...)
	return nil
}

func (tx *postingTx) UpdateAccountBalances(_ context.Context, balances map[string]decimal.Decimal, userID string, now time.Time) error {
	for id, b := range balances {
		if !tx.holding[accountKey(id)] {
			return fmt.Errorf("%w: balance update on unlocked account %s", apperrors.ErrInternal, id)
		}
		tx.balances[id] = b
	}
	tx.balanceBy = userID
	tx.balanceAt = now
	return nil
}

func (tx *postingTx) MarkEntryPosted(_ context.Context, entry domain.JournalEntry) error {
	posted := cloneEntry(entry)
	tx.patches = append(tx.patches, func(entries map[string]domain.JournalEntry) {
		stored := entries[posted.EntryID]
		stored.Status = domain.Posted
		stored.TotalDebit = posted.TotalDebit
		stored.TotalCredit = posted.TotalCredit
		stored.IsBalanced = posted.IsBalanced
		stored.PostedAt = posted.PostedAt
		stored.PostedBy = posted.PostedBy
		stored.LastUpdatedAt = posted.LastUpdatedAt
		stored.LastUpdatedBy = posted.LastUpdatedBy
		entries[posted.EntryID] = stored
	})
	return nil
}

func (tx *postingTx) MarkEntryReversed(_ context.Context, entryID, reversedByEntryID, reason, userID string, now time.Time) error {
	tx.patches = append(tx.patches, func(entries map[string]domain.JournalEntry) {
		stored := entries[entryID]
		stored.Status = domain.Reversed
		stored.ReversedByEntryID = &reversedByEntryID
		stored.ReversalReason = reason
		stored.LastUpdatedAt = now
		stored.LastUpdatedBy = userID
		entries[entryID] = stored
	})
	return nil
}
