package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

type fiscalPeriodService struct {
	BaseService
	periodRepo portsrepo.FiscalPeriodRepositoryFacade
}

// NewFiscalPeriodService creates the period guard and its administrative operations.
func NewFiscalPeriodService(repo portsrepo.FiscalPeriodRepositoryFacade, base BaseService) portssvc.FiscalPeriodSvcFacade {
	return &fiscalPeriodService{BaseService: base, periodRepo: repo}
}

var _ portssvc.FiscalPeriodSvcFacade = (*fiscalPeriodService)(nil)

func (s *fiscalPeriodService) FindOpenPeriod(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	return s.FindOpenPeriodWith(ctx, s.periodRepo, tenantID, date)
}

func (s *fiscalPeriodService) FindOpenPeriodWith(ctx context.Context, reader portsrepo.FiscalPeriodReader, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	day := domain.DateOnly(date)
	periods, err := reader.FindPeriodsCovering(ctx, tenantID, day)
	if err != nil {
		if apperrors.IsRetryable(err) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to read fiscal periods", slog.Time("date", day))
		return nil, fmt.Errorf("failed to read fiscal periods: %w", err)
	}

	switch len(periods) {
	case 0:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNoPeriodDefined, day.Format(time.DateOnly))
	case 1:
		p := periods[0]
		if p.Status != domain.PeriodOpen {
			return nil, fmt.Errorf("%w: %s covers %s", apperrors.ErrPeriodClosed, p.Name, day.Format(time.DateOnly))
		}
		return &p, nil
	default:
		names := make([]string, len(periods))
		for i, p := range periods {
			names[i] = p.Name
		}
		s.LogError(ctx, apperrors.ErrOverlappingPeriods, "Fiscal periods overlap",
			slog.String("tenant_id", tenantID),
			slog.String("periods", strings.Join(names, ",")))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrOverlappingPeriods, strings.Join(names, ", "))
	}
}

func (s *fiscalPeriodService) DefinePeriod(ctx context.Context, tenantID string, req dto.CreateFiscalPeriodRequest, userID string) (*domain.FiscalPeriod, error) {
	start, end := domain.DateOnly(req.StartDate), domain.DateOnly(req.EndDate)
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", apperrors.ErrFiscalPeriodInvalidDay, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	status := req.Status
	if status == "" {
		status = domain.PeriodOpen
	}

	now := s.Now()
	period := domain.FiscalPeriod{
		PeriodID:  uuid.NewString(),
		TenantID:  tenantID,
		Name:      strings.TrimSpace(req.Name),
		StartDate: start,
		EndDate:   end,
		Status:    status,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			s.LogWarn(ctx, err, "Rejected fiscal period", slog.String("name", period.Name))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save fiscal period", slog.String("name", period.Name))
		return nil, fmt.Errorf("failed to save fiscal period: %w", err)
	}
	s.LogInfo(ctx, "Fiscal period defined",
		slog.String("period_id", period.PeriodID),
		slog.String("status", string(period.Status)))
	return &period, nil
}

func (s *fiscalPeriodService) ListPeriods(ctx context.Context, tenantID string) ([]domain.FiscalPeriod, error) {
	periods, err := s.periodRepo.ListPeriods(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list fiscal periods", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list fiscal periods: %w", err)
	}
	return periods, nil
}

func (s *fiscalPeriodService) SetPeriodStatus(ctx context.Context, tenantID string, periodID string, status domain.PeriodStatus, userID string) (*domain.FiscalPeriod, error) {
	if status != domain.PeriodOpen && status != domain.PeriodClosed {
		return nil, fmt.Errorf("%w: unknown period status '%s'", apperrors.ErrValidation, status)
	}
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.TenantID != tenantID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFiscalPeriodNotFound, periodID)
	}
	if period.Status == status {
		return period, nil
	}

	now := s.Now()
	if err := s.periodRepo.UpdatePeriodStatus(ctx, periodID, status, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to update fiscal period", slog.String("period_id", periodID))
		return nil, fmt.Errorf("failed to update fiscal period: %w", err)
	}
	period.Status = status
	period.LastUpdatedAt = now
	period.LastUpdatedBy = userID
	s.LogInfo(ctx, "Fiscal period status changed",
		slog.String("period_id", periodID),
		slog.String("status", string(status)))
	return period, nil
}
