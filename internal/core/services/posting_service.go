package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
)

const defaultPostingLockTimeout = 5 * time.Second

// postingService is the posting engine. It is the only writer of account balances and ledger rows.
type postingService struct {
	BaseService
	runner      portsrepo.PostingTxRunner
	guard       portssvc.FiscalPeriodGuardSvc
	notifier    portssvc.PostingNotifier
	lockTimeout time.Duration
	scale       int32
}

// PostingServiceOption is a functional option for configuring the posting service
type PostingServiceOption func(*postingService)

// WithPostingNotifier sets the receiver of PostingCompleted events.
func WithPostingNotifier(n portssvc.PostingNotifier) PostingServiceOption {
	return func(s *postingService) {
		s.notifier = n
	}
}

// WithPostingLockTimeout bounds how long a posting waits for its locks.
func WithPostingLockTimeout(d time.Duration) PostingServiceOption {
	return func(s *postingService) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// WithPostingAmountScale sets the number of fractional digits allowed on line amounts.
func WithPostingAmountScale(scale int32) PostingServiceOption {
	return func(s *postingService) {
		s.scale = scale
	}
}

// WithPostingBase replaces the embedded BaseService.
func WithPostingBase(base BaseService) PostingServiceOption {
	return func(s *postingService) {
		s.BaseService = base
	}
}

// NewPostingService creates the posting engine.
func NewPostingService(runner portsrepo.PostingTxRunner, guard portssvc.FiscalPeriodGuardSvc, options ...PostingServiceOption) portssvc.PostingSvc {
	svc := &postingService{
		runner:      runner,
		guard:       guard,
		lockTimeout: defaultPostingLockTimeout,
		scale:       accounting.DefaultScale,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PostingSvc = (*postingService)(nil)

// postingPlan is the computed effect of one entry, ready to be written.
type postingPlan struct {
	rows     []domain.LedgerRow
	balances map[string]decimal.Decimal
}

// plan checks the period, locks the entry's accounts in ascending order and computes rows and balances.
func (s *postingService) plan(ctx context.Context, tx portsrepo.PostingTx, entry *domain.JournalEntry, now time.Time) (*postingPlan, error) {
	if err := accounting.ValidateLines(entry.Lines, s.scale); err != nil {
		return nil, err
	}
	if err := accounting.ValidateEntryBalance(entry); err != nil {
		return nil, err
	}
	if _, err := s.guard.FindOpenPeriodWith(ctx, tx, entry.TenantID, entry.EntryDate); err != nil {
		return nil, err
	}

	ids := entry.AccountIDs()
	accounts, err := tx.LockAccounts(ctx, entry.TenantID, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: %s is inactive", apperrors.ErrAccountNotFound, id)
		}
	}

	p := &postingPlan{balances: make(map[string]decimal.Decimal, len(ids))}
	for _, id := range ids {
		p.balances[id] = accounts[id].CurrentBalance
	}
	for _, line := range entry.SortedLines() {
		acc := accounts[line.AccountID]
		delta, err := accounting.CalculateSignedAmount(line, acc.NormalBalance)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
		}
		balance := p.balances[line.AccountID].Add(delta)
		p.balances[line.AccountID] = balance
		p.rows = append(p.rows, domain.LedgerRow{
			TenantID:            entry.TenantID,
			EntryID:             entry.EntryID,
			EntryNumber:         entry.EntryNumber,
			LineID:              line.LineID,
			LineNumber:          line.LineNumber,
			AccountID:           line.AccountID,
			EntryDate:           entry.EntryDate,
			DebitAmount:         line.DebitAmount,
			CreditAmount:        line.CreditAmount,
			RunningBalanceAfter: balance,
			CreatedAt:           now,
		})
	}
	return p, nil
}

// write appends the plan's rows and stores the new balances.
func (s *postingService) write(ctx context.Context, tx portsrepo.PostingTx, p *postingPlan, userID string, now time.Time) error {
	if err := tx.AppendLedgerRows(ctx, p.rows); err != nil {
		return err
	}
	return tx.UpdateAccountBalances(ctx, p.balances, userID, now)
}

func markPosted(entry *domain.JournalEntry, userID string, now time.Time) {
	entry.Status = domain.Posted
	entry.PostedAt = &now
	entry.PostedBy = userID
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID
}

func (s *postingService) Post(ctx context.Context, tenantID string, entryID string, userID string) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx).With(slog.String("entry_id", entryID), slog.String("tenant_id", tenantID))
	now := s.Now()

	var posted *domain.JournalEntry
	err := s.runner.WithinPostingTx(ctx, s.lockTimeout, func(ctx context.Context, tx portsrepo.PostingTx) error {
		entry, err := tx.LockEntry(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if !entry.Status.IsEditable() {
			return fmt.Errorf("%w: status is %s", apperrors.ErrAlreadyPosted, entry.Status)
		}

		p, err := s.plan(ctx, tx, entry, now)
		if err != nil {
			return err
		}
		if err := s.write(ctx, tx, p, userID, now); err != nil {
			return err
		}
		markPosted(entry, userID, now)
		if err := tx.MarkEntryPosted(ctx, *entry); err != nil {
			return err
		}
		posted = entry
		return nil
	})
	if err != nil {
		s.logPostingFailure(ctx, logger, err, "Posting failed")
		return nil, err
	}

	logger.Info("Journal entry posted",
		slog.Int64("entry_number", posted.EntryNumber),
		slog.String("total", posted.TotalDebit.String()))
	s.notify(ctx, posted)
	return posted, nil
}

func (s *postingService) Reverse(ctx context.Context, tenantID string, entryID string, req dto.ReverseJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx).With(slog.String("entry_id", entryID), slog.String("tenant_id", tenantID))
	now := s.Now()
	reversalDate := domain.DateOnly(now)
	if req.ReversalDate != nil {
		reversalDate = domain.DateOnly(*req.ReversalDate)
	}

	var mirror *domain.JournalEntry
	err := s.runner.WithinPostingTx(ctx, s.lockTimeout, func(ctx context.Context, tx portsrepo.PostingTx) error {
		original, err := tx.LockEntry(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if original.Status != domain.Posted {
			return fmt.Errorf("%w: status is %s", apperrors.ErrNotPosted, original.Status)
		}
		if original.IsReversal() {
			return fmt.Errorf("%w: %s reverses %s", apperrors.ErrCannotReverseReversal, entryID, *original.OriginalEntryID)
		}

		m, err := buildMirror(original, reversalDate, req.Reason, userID, now)
		if err != nil {
			return err
		}
		p, err := s.plan(ctx, tx, m, now)
		if err != nil {
			return err
		}

		// Entry numbers are taken after the account locks so every tx acquires locks in the same order.
		number, err := tx.NextEntryNumber(ctx, tenantID)
		if err != nil {
			return err
		}
		m.EntryNumber = number
		for i := range p.rows {
			p.rows[i].EntryNumber = number
		}

		markPosted(m, userID, now)
		if err := tx.InsertEntry(ctx, *m); err != nil {
			return err
		}
		if err := s.write(ctx, tx, p, userID, now); err != nil {
			return err
		}
		if err := tx.MarkEntryReversed(ctx, original.EntryID, m.EntryID, req.Reason, userID, now); err != nil {
			return err
		}
		mirror = m
		return nil
	})
	if err != nil {
		s.logPostingFailure(ctx, logger, err, "Reversal failed")
		return nil, err
	}

	logger.Info("Journal entry reversed",
		slog.String("reversal_entry_id", mirror.EntryID),
		slog.Int64("reversal_entry_number", mirror.EntryNumber))
	s.notify(ctx, mirror)
	return mirror, nil
}

// buildMirror copies original with debit and credit swapped on every line.
func buildMirror(original *domain.JournalEntry, date time.Time, reason, userID string, now time.Time) (*domain.JournalEntry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate entry ID: %v", apperrors.ErrInternal, err)
	}
	originalID := original.EntryID
	m := &domain.JournalEntry{
		EntryID:         id.String(),
		TenantID:        original.TenantID,
		EntryDate:       date,
		Description:     fmt.Sprintf("Reversal of entry #%d: %s", original.EntryNumber, reason),
		ReferenceNumber: original.ReferenceNumber,
		Status:          domain.Draft,
		OriginalEntryID: &originalID,
		ReversalReason:  reason,
		Lines:           make([]domain.JournalLine, 0, len(original.Lines)),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	for _, l := range original.SortedLines() {
		m.Lines = append(m.Lines, domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      m.EntryID,
			LineNumber:   l.LineNumber,
			AccountID:    l.AccountID,
			DebitAmount:  l.CreditAmount,
			CreditAmount: l.DebitAmount,
			CostCenterID: l.CostCenterID,
			Description:  l.Description,
		})
	}
	m.RecomputeTotals()
	return m, nil
}

func (s *postingService) logPostingFailure(ctx context.Context, logger *slog.Logger, err error, msg string) {
	category := apperrors.CategoryOf(err)
	attrs := []any{
		slog.String("error", err.Error()),
		slog.String("category", string(category)),
	}
	switch category {
	case apperrors.CategoryInternal:
		logger.ErrorContext(ctx, msg, attrs...)
	case apperrors.CategoryTransient:
		logger.WarnContext(ctx, msg, append(attrs, slog.Bool("retryable", true))...)
	default:
		logger.InfoContext(ctx, msg, attrs...)
	}
}

// notify emits a PostingCompleted fact. A failing notifier never undoes the posting.
func (s *postingService) notify(ctx context.Context, entry *domain.JournalEntry) {
	if s.notifier == nil {
		return
	}
	event := domain.PostingCompleted{
		TenantID:        entry.TenantID,
		EntryID:         entry.EntryID,
		EntryNumber:     entry.EntryNumber,
		OriginalEntryID: entry.OriginalEntryID,
		AccountIDs:      entry.AccountIDs(),
		NetAmount:       entry.TotalDebit,
		PostedAt:        *entry.PostedAt,
		PostedBy:        entry.PostedBy,
	}
	if err := s.notifier.NotifyPosted(context.WithoutCancel(ctx), event); err != nil {
		s.LogWarn(ctx, err, "Posting notification failed", slog.String("entry_id", entry.EntryID))
	}
}
