package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// FiscalPeriodReader defines read operations for fiscal periods
type FiscalPeriodReader interface {
	// FindPeriodsCovering returns every period of the tenant whose range contains date.
	FindPeriodsCovering(ctx context.Context, tenantID string, date time.Time) ([]domain.FiscalPeriod, error)
}

// FiscalPeriodAdmin holds the administrative operations on periods. The posting engine never uses it.
type FiscalPeriodAdmin interface {
	FindPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error)
	ListPeriods(ctx context.Context, tenantID string) ([]domain.FiscalPeriod, error)
	// SavePeriod persists a new period. Returns apperrors.ErrFiscalPeriodOverlap if it overlaps another one.
	SavePeriod(ctx context.Context, period domain.FiscalPeriod) error
	UpdatePeriodStatus(ctx context.Context, periodID string, status domain.PeriodStatus, userID string, now time.Time) error
}

// FiscalPeriodRepositoryFacade combines all fiscal-period repository interfaces
type FiscalPeriodRepositoryFacade interface {
	FiscalPeriodReader
	FiscalPeriodAdmin
}
