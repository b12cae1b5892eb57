package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
)

// journalService owns journal entries until they are posted.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
	scale       int32
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithJournalAmountScale sets the number of fractional digits allowed on line amounts.
func WithJournalAmountScale(scale int32) JournalServiceOption {
	return func(s *journalService) {
		s.scale = scale
	}
}

// WithJournalBase replaces the embedded BaseService.
func WithJournalBase(base BaseService) JournalServiceOption {
	return func(s *journalService) {
		s.BaseService = base
	}
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountReader, options ...JournalServiceOption) portssvc.JournalSvcFacade {
	svc := &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		scale:       accounting.DefaultScale,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// prepareLines numbers, validates and stamps request lines for entryID.
func (s *journalService) prepareLines(ctx context.Context, tenantID, entryID string, reqLines []dto.JournalLineRequest) ([]domain.JournalLine, error) {
	lines := dto.ToDomainLines(reqLines)
	accounting.NormalizeLineNumbers(lines)
	if err := accounting.ValidateLines(lines, s.scale); err != nil {
		return nil, err
	}
	if err := s.checkAccounts(ctx, tenantID, lines); err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].LineID = uuid.NewString()
		lines[i].EntryID = entryID
	}
	slices.SortFunc(lines, func(a, b domain.JournalLine) int { return a.LineNumber - b.LineNumber })
	return lines, nil
}

// checkAccounts fails with ErrAccountNotFound if a line references an unknown or inactive account.
func (s *journalService) checkAccounts(ctx context.Context, tenantID string, lines []domain.JournalLine) error {
	ids := domain.JournalEntry{Lines: lines}.AccountIDs()
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, tenantID, ids)
	if err != nil {
		s.LogError(ctx, err, "Failed to load line accounts", slog.Int("account_count", len(ids)))
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: %s is inactive", apperrors.ErrAccountNotFound, id)
		}
	}
	return nil
}

func (s *journalService) CreateDraft(ctx context.Context, tenantID string, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		s.LogError(ctx, err, "Failed to generate entry ID")
		return nil, fmt.Errorf("failed to generate entry ID: %w", err)
	}
	entryID := id.String()

	lines, err := s.prepareLines(ctx, tenantID, entryID, req.Lines)
	if err != nil {
		s.LogWarn(ctx, err, "Rejected journal draft", slog.String("tenant_id", tenantID))
		return nil, err
	}

	now := s.Now()
	entry := &domain.JournalEntry{
		EntryID:         entryID,
		TenantID:        tenantID,
		EntryDate:       domain.DateOnly(req.EntryDate),
		Description:     req.Description,
		ReferenceNumber: req.ReferenceNumber,
		Status:          domain.Draft,
		Lines:           lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	entry.RecomputeTotals()

	if err := s.journalRepo.SaveDraft(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save journal draft", slog.String("entry_id", entryID))
		if apperrors.IsRetryable(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save journal draft: %w", err)
	}

	s.LogInfo(ctx, "Journal draft created",
		slog.String("entry_id", entry.EntryID),
		slog.Int64("entry_number", entry.EntryNumber),
		slog.Bool("is_balanced", entry.IsBalanced))
	return entry, nil
}

func (s *journalService) GetEntry(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	if entry.TenantID != tenantID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
	}
	return entry, nil
}

func (s *journalService) UpdateDraft(ctx context.Context, tenantID string, entryID string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	entry, err := s.GetEntry(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.Status.IsEditable() {
		return nil, fmt.Errorf("%w: status is %s", apperrors.ErrEntryNotEditable, entry.Status)
	}

	if req.EntryDate != nil {
		entry.EntryDate = domain.DateOnly(*req.EntryDate)
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.ReferenceNumber != nil {
		entry.ReferenceNumber = *req.ReferenceNumber
	}
	if req.Lines != nil {
		lines, err := s.prepareLines(ctx, tenantID, entryID, req.Lines)
		if err != nil {
			s.LogWarn(ctx, err, "Rejected journal update", slog.String("entry_id", entryID))
			return nil, err
		}
		entry.Lines = lines
	}

	// Any edit sends a submitted entry back for another review.
	entry.Status = domain.Draft
	entry.RecomputeTotals()
	entry.LastUpdatedAt = s.Now()
	entry.LastUpdatedBy = userID

	if err := s.journalRepo.UpdateDraft(ctx, *entry); err != nil {
		if apperrors.CategoryOf(err) != apperrors.CategoryInternal {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update journal draft", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to update journal draft: %w", err)
	}
	return entry, nil
}

func (s *journalService) DeleteDraft(ctx context.Context, tenantID string, entryID string, userID string) error {
	entry, err := s.GetEntry(ctx, tenantID, entryID)
	if err != nil {
		return err
	}
	if !entry.Status.IsEditable() {
		return fmt.Errorf("%w: status is %s", apperrors.ErrEntryNotEditable, entry.Status)
	}
	if err := s.journalRepo.DeleteDraft(ctx, entryID); err != nil {
		if apperrors.CategoryOf(err) != apperrors.CategoryInternal {
			return err
		}
		s.LogError(ctx, err, "Failed to delete journal draft", slog.String("entry_id", entryID))
		return fmt.Errorf("failed to delete journal draft: %w", err)
	}
	s.LogInfo(ctx, "Journal draft deleted", slog.String("entry_id", entryID), slog.String("user_id", userID))
	return nil
}

func (s *journalService) SubmitForReview(ctx context.Context, tenantID string, entryID string, userID string) (*domain.JournalEntry, error) {
	entry, err := s.GetEntry(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: only DRAFT entries can be submitted, status is %s", apperrors.ErrEntryNotEditable, entry.Status)
	}
	if err := accounting.ValidateEntryBalance(entry); err != nil {
		return nil, err
	}

	now := s.Now()
	if err := s.journalRepo.UpdateEntryStatus(ctx, entryID, []domain.JournalStatus{domain.Draft}, domain.Pending, userID, now); err != nil {
		if apperrors.CategoryOf(err) != apperrors.CategoryInternal {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to submit journal entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to submit journal entry: %w", err)
	}
	entry.Status = domain.Pending
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID
	return entry, nil
}
