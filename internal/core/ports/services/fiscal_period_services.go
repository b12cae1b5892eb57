package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// FiscalPeriodGuardSvc decides whether a date may receive postings.
type FiscalPeriodGuardSvc interface {
	// FindOpenPeriod returns the single OPEN period containing date.
	FindOpenPeriod(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error)

	// FindOpenPeriodWith is FindOpenPeriod against a specific reader, e.g. a posting transaction.
	FindOpenPeriodWith(ctx context.Context, reader portsrepo.FiscalPeriodReader, tenantID string, date time.Time) (*domain.FiscalPeriod, error)
}

// FiscalPeriodAdminSvc opens, closes and lists periods on behalf of administrators.
type FiscalPeriodAdminSvc interface {
	DefinePeriod(ctx context.Context, tenantID string, req dto.CreateFiscalPeriodRequest, userID string) (*domain.FiscalPeriod, error)
	ListPeriods(ctx context.Context, tenantID string) ([]domain.FiscalPeriod, error)
	SetPeriodStatus(ctx context.Context, tenantID string, periodID string, status domain.PeriodStatus, userID string) (*domain.FiscalPeriod, error)
}

// FiscalPeriodSvcFacade combines all fiscal-period service interfaces
type FiscalPeriodSvcFacade interface {
	FiscalPeriodGuardSvc
	FiscalPeriodAdminSvc
}
