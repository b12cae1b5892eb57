package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	acc = cloneAccount(acc)
	return &acc, nil
}

func (s *Store) FindAccountsByIDs(_ context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok && acc.TenantID == tenantID {
			found[id] = cloneAccount(acc)
		}
	}
	return found, nil
}

func (s *Store) ListAccounts(_ context.Context, tenantID string, includeInactive bool) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]domain.Account, 0)
	for _, acc := range s.accounts {
		if acc.TenantID != tenantID || (!includeInactive && !acc.IsActive) {
			continue
		}
		accounts = append(accounts, cloneAccount(acc))
	}
	slices.SortFunc(accounts, func(a, b domain.Account) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.Code, b.Code))
	})
	return accounts, nil
}

func (s *Store) CountActiveChildren(_ context.Context, accountID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countActiveChildrenLocked(accountID), nil
}

func (s *Store) countActiveChildrenLocked(accountID string) int {
	n := 0
	for _, acc := range s.accounts {
		if acc.IsActive && acc.ParentAccountID != nil && *acc.ParentAccountID == accountID {
			n++
		}
	}
	return n
}

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account ID %s", apperrors.ErrDuplicate, account.AccountID)
	}
	for _, acc := range s.accounts {
		if acc.TenantID == account.TenantID && acc.Code == account.Code {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, account.Code)
		}
	}
	s.accounts[account.AccountID] = cloneAccount(account)
	return nil
}

func (s *Store) UpdateAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.accounts[account.AccountID]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, account.AccountID)
	}
	if account.ParentAccountID != nil && s.isAncestorLocked(account.AccountID, *account.ParentAccountID) {
		return fmt.Errorf("%w: %s is a descendant of %s", apperrors.ErrInvalidParent, *account.ParentAccountID, account.AccountID)
	}
	stored.Name = account.Name
	stored.Description = account.Description
	stored.ParentAccountID = clonePtr(account.ParentAccountID)
	stored.SortOrder = account.SortOrder
	stored.LastUpdatedAt = account.LastUpdatedAt
	stored.LastUpdatedBy = account.LastUpdatedBy
	s.accounts[account.AccountID] = stored
	return nil
}

// isAncestorLocked reports whether accountID is startID or one of its ancestors. Callers hold s.mu.
func (s *Store) isAncestorLocked(accountID, startID string) bool {
	visited := make(map[string]bool)
	for cur := startID; !visited[cur]; {
		if cur == accountID {
			return true
		}
		visited[cur] = true
		acc, ok := s.accounts[cur]
		if !ok || acc.ParentAccountID == nil {
			return false
		}
		cur = *acc.ParentAccountID
	}
	return false
}

func (s *Store) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	return s.withLock(ctx, accountKey(accountID), func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		stored, ok := s.accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		if !stored.CurrentBalance.IsZero() {
			return fmt.Errorf("%w: %s", apperrors.ErrNonZeroBalance, stored.CurrentBalance.String())
		}
		if n := s.countActiveChildrenLocked(accountID); n > 0 {
			return fmt.Errorf("%w: %d active children", apperrors.ErrHasChildren, n)
		}
		stored.IsActive = false
		stored.LastUpdatedAt = now
		stored.LastUpdatedBy = userID
		s.accounts[accountID] = stored
		return nil
	})
}
