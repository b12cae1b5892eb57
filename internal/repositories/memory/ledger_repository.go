package memory

import (
	"context"
	"slices"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (s *Store) ListLedgerRows(_ context.Context, tenantID, accountID string, rng domain.DateRange, after *domain.LedgerCursor, limit int) ([]domain.LedgerRow, error) {
	s.mu.RLock()
	matched := make([]domain.LedgerRow, 0)
	for _, idx := range s.rowsByAccount[accountID] {
		row := s.rows[idx]
		if row.TenantID != tenantID || !rng.Contains(row.EntryDate) {
			continue
		}
		if after != nil && !after.After(row) {
			continue
		}
		matched = append(matched, row)
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, domain.CompareLedgerRows)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) SumLedgerByAccount(_ context.Context, tenantID string, asOf *time.Time) (map[string]domain.AccountActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sums := make(map[string]domain.AccountActivity)
	for _, row := range s.rows {
		if row.TenantID != tenantID {
			continue
		}
		if asOf != nil && row.EntryDate.After(domain.DateOnly(*asOf)) {
			continue
		}
		act, ok := sums[row.AccountID]
		if !ok {
			act = domain.AccountActivity{AccountID: row.AccountID, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
		}
		act.TotalDebit = act.TotalDebit.Add(row.DebitAmount)
		act.TotalCredit = act.TotalCredit.Add(row.CreditAmount)
		act.RowCount++
		sums[row.AccountID] = act
	}
	return sums, nil
}
