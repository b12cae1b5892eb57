package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

func (s *Store) FindEntryByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
	}
	e = cloneEntry(e)
	e.Lines = e.SortedLines()
	return &e, nil
}

func (s *Store) SaveDraft(ctx context.Context, entry *domain.JournalEntry) error {
	return s.withLock(ctx, seqKey(entry.TenantID), func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, exists := s.entries[entry.EntryID]; exists {
			return fmt.Errorf("%w: entry ID %s", apperrors.ErrDuplicate, entry.EntryID)
		}
		s.sequences[entry.TenantID]++
		entry.EntryNumber = s.sequences[entry.TenantID]
		s.entries[entry.EntryID] = cloneEntry(*entry)
		return nil
	})
}

// editable loads an entry for modification. Callers hold s.mu.
func (s *Store) editable(entryID string) (domain.JournalEntry, error) {
	stored, ok := s.entries[entryID]
	if !ok {
		return domain.JournalEntry{}, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
	}
	if !stored.Status.IsEditable() {
		return domain.JournalEntry{}, fmt.Errorf("%w: status is %s", apperrors.ErrEntryNotEditable, stored.Status)
	}
	return stored, nil
}

func (s *Store) UpdateDraft(ctx context.Context, entry domain.JournalEntry) error {
	return s.withLock(ctx, entryKey(entry.EntryID), func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		stored, err := s.editable(entry.EntryID)
		if err != nil {
			return err
		}
		stored.EntryDate = entry.EntryDate
		stored.Description = entry.Description
		stored.ReferenceNumber = entry.ReferenceNumber
		stored.Status = entry.Status
		stored.Lines = slices.Clone(entry.Lines)
		stored.TotalDebit = entry.TotalDebit
		stored.TotalCredit = entry.TotalCredit
		stored.IsBalanced = entry.IsBalanced
		stored.LastUpdatedAt = entry.LastUpdatedAt
		stored.LastUpdatedBy = entry.LastUpdatedBy
		s.entries[entry.EntryID] = stored
		return nil
	})
}

func (s *Store) DeleteDraft(ctx context.Context, entryID string) error {
	return s.withLock(ctx, entryKey(entryID), func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, err := s.editable(entryID); err != nil {
			return err
		}
		delete(s.entries, entryID)
		return nil
	})
}

func (s *Store) UpdateEntryStatus(ctx context.Context, entryID string, from []domain.JournalStatus, to domain.JournalStatus, userID string, now time.Time) error {
	return s.withLock(ctx, entryKey(entryID), func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		stored, ok := s.entries[entryID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
		}
		if !slices.Contains(from, stored.Status) {
			return fmt.Errorf("%w: status is %s", apperrors.ErrEntryNotEditable, stored.Status)
		}
		stored.Status = to
		stored.LastUpdatedAt = now
		stored.LastUpdatedBy = userID
		s.entries[entryID] = stored
		return nil
	})
}
