// Package memory is an in-process implementation of every repository port.
// Writers serialize on per-key locks; committed state is swapped in under a
// store-wide write lock so readers never observe a partial posting.
package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

const defaultLockTimeout = 5 * time.Second

// Store keeps accounts, entries, ledger rows and periods in maps.
type Store struct {
	mu            sync.RWMutex
	accounts      map[string]domain.Account
	entries       map[string]domain.JournalEntry
	rows          []domain.LedgerRow
	rowsByAccount map[string][]int
	periods       map[string]domain.FiscalPeriod
	sequences     map[string]int64
	nextRowID     int64

	locks       *lockTable
	lockTimeout time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLockTimeout bounds how long draft and admin writes wait for a row lock.
func WithLockTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		s.lockTimeout = d
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		accounts:      make(map[string]domain.Account),
		entries:       make(map[string]domain.JournalEntry),
		rowsByAccount: make(map[string][]int),
		periods:       make(map[string]domain.FiscalPeriod),
		sequences:     make(map[string]int64),
		locks:         newLockTable(),
		lockTimeout:   defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider exposes the store through the repository ports.
func (s *Store) Provider() *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		AccountRepo:      s,
		JournalRepo:      s,
		LedgerRepo:       s,
		FiscalPeriodRepo: s,
		PostingRunner:    s,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade      = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade      = (*Store)(nil)
	_ portsrepo.LedgerReader                 = (*Store)(nil)
	_ portsrepo.FiscalPeriodRepositoryFacade = (*Store)(nil)
	_ portsrepo.PostingTxRunner              = (*Store)(nil)
)

func cloneEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = slices.Clone(e.Lines)
	e.OriginalEntryID = clonePtr(e.OriginalEntryID)
	e.ReversedByEntryID = clonePtr(e.ReversedByEntryID)
	e.PostedAt = clonePtr(e.PostedAt)
	return e
}

func cloneAccount(a domain.Account) domain.Account {
	a.ParentAccountID = clonePtr(a.ParentAccountID)
	return a
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func entryKey(id string) string   { return "entry:" + id }
func accountKey(id string) string { return "account:" + id }
func seqKey(tenant string) string { return "seq:" + tenant }
