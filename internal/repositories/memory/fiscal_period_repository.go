package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

func byStartDate(a, b domain.FiscalPeriod) int {
	return a.StartDate.Compare(b.StartDate)
}

func (s *Store) FindPeriodsCovering(_ context.Context, tenantID string, date time.Time) ([]domain.FiscalPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.periodsCoveringLocked(tenantID, date), nil
}

func (s *Store) periodsCoveringLocked(tenantID string, date time.Time) []domain.FiscalPeriod {
	found := make([]domain.FiscalPeriod, 0, 1)
	for _, p := range s.periods {
		if p.TenantID == tenantID && p.Contains(date) {
			found = append(found, p)
		}
	}
	slices.SortFunc(found, byStartDate)
	return found
}

func (s *Store) FindPeriodByID(_ context.Context, periodID string) (*domain.FiscalPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.periods[periodID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFiscalPeriodNotFound, periodID)
	}
	return &p, nil
}

func (s *Store) ListPeriods(_ context.Context, tenantID string) ([]domain.FiscalPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	periods := make([]domain.FiscalPeriod, 0)
	for _, p := range s.periods {
		if p.TenantID == tenantID {
			periods = append(periods, p)
		}
	}
	slices.SortFunc(periods, byStartDate)
	return periods, nil
}

func (s *Store) SavePeriod(_ context.Context, period domain.FiscalPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.periods {
		if p.TenantID == period.TenantID && p.Overlaps(period) {
			return fmt.Errorf("%w: %s", apperrors.ErrFiscalPeriodOverlap, p.Name)
		}
	}
	s.periods[period.PeriodID] = period
	return nil
}

func (s *Store) UpdatePeriodStatus(_ context.Context, periodID string, status domain.PeriodStatus, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.periods[periodID]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrFiscalPeriodNotFound, periodID)
	}
	p.Status = status
	p.LastUpdatedAt = now
	p.LastUpdatedBy = userID
	s.periods[periodID] = p
	return nil
}
