package services

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
)

const defaultLedgerPageSize = 500

type ledgerQueryService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerReader
	accountRepo portsrepo.AccountReader
	pageSize    int
}

// LedgerQueryServiceOption is a functional option for configuring the ledger query service
type LedgerQueryServiceOption func(*ledgerQueryService)

// WithLedgerPageSize sets how many rows GetAccountLedger fetches per storage round trip.
func WithLedgerPageSize(n int) LedgerQueryServiceOption {
	return func(s *ledgerQueryService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithLedgerBase replaces the embedded BaseService.
func WithLedgerBase(base BaseService) LedgerQueryServiceOption {
	return func(s *ledgerQueryService) {
		s.BaseService = base
	}
}

// NewLedgerQueryService creates the read side of the ledger.
func NewLedgerQueryService(ledgerRepo portsrepo.LedgerReader, accountRepo portsrepo.AccountReader, options ...LedgerQueryServiceOption) portssvc.LedgerQuerySvc {
	svc := &ledgerQueryService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		pageSize:    defaultLedgerPageSize,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerQuerySvc = (*ledgerQueryService)(nil)

func (s *ledgerQueryService) checkAccount(ctx context.Context, tenantID, accountID string) error {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acc.TenantID != tenantID {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return nil
}

func (s *ledgerQueryService) GetAccountLedger(ctx context.Context, tenantID string, accountID string, rng domain.DateRange) (iter.Seq2[domain.LedgerRow, error], error) {
	if err := s.checkAccount(ctx, tenantID, accountID); err != nil {
		return nil, err
	}

	return func(yield func(domain.LedgerRow, error) bool) {
		var cursor *domain.LedgerCursor
		for {
			rows, err := s.ledgerRepo.ListLedgerRows(ctx, tenantID, accountID, rng, cursor, s.pageSize)
			if err != nil {
				s.LogError(ctx, err, "Failed to read ledger page", slog.String("account_id", accountID))
				yield(domain.LedgerRow{}, fmt.Errorf("failed to read ledger rows: %w", err))
				return
			}
			for _, row := range rows {
				if !yield(row, nil) {
					return
				}
			}
			if len(rows) < s.pageSize {
				return
			}
			last := rows[len(rows)-1]
			cursor = &domain.LedgerCursor{EntryDate: last.EntryDate, EntryID: last.EntryID, LineNumber: last.LineNumber}
		}
	}, nil
}

// encodeLedgerCursor turns the last returned row into an opaque next-page token.
func encodeLedgerCursor(row domain.LedgerRow) (string, error) {
	return pagination.EncodeMultiFieldToken(
		row.EntryDate.Format(time.DateOnly),
		row.EntryID,
		strconv.Itoa(row.LineNumber),
	)
}

func decodeLedgerCursor(token string) (*domain.LedgerCursor, error) {
	fields, err := pagination.DecodeMultiFieldToken(token, 3)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	date, err := time.Parse(time.DateOnly, fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed ledger token date", apperrors.ErrValidation)
	}
	line, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed ledger token line", apperrors.ErrValidation)
	}
	return &domain.LedgerCursor{EntryDate: date, EntryID: fields[1], LineNumber: line}, nil
}

func (s *ledgerQueryService) ListAccountLedger(ctx context.Context, tenantID string, accountID string, params dto.ListLedgerParams) ([]domain.LedgerRow, *string, error) {
	if err := s.checkAccount(ctx, tenantID, accountID); err != nil {
		return nil, nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}

	var cursor *domain.LedgerCursor
	if params.NextToken != nil && strings.TrimSpace(*params.NextToken) != "" {
		c, err := decodeLedgerCursor(*params.NextToken)
		if err != nil {
			return nil, nil, err
		}
		cursor = c
	}

	rng := domain.DateRange{From: params.From, To: params.To}
	rows, err := s.ledgerRepo.ListLedgerRows(ctx, tenantID, accountID, rng, cursor, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger rows", slog.String("account_id", accountID))
		return nil, nil, fmt.Errorf("failed to list ledger rows: %w", err)
	}

	var next *string
	if len(rows) == limit {
		token, err := encodeLedgerCursor(rows[len(rows)-1])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
		}
		next = &token
	}
	return rows, next, nil
}

func (s *ledgerQueryService) GetTrialBalance(ctx context.Context, tenantID string, asOf *time.Time) (*domain.TrialBalance, error) {
	if asOf != nil {
		d := domain.DateOnly(*asOf)
		asOf = &d
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for trial balance", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	activity, err := s.ledgerRepo.SumLedgerByAccount(ctx, tenantID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum ledger rows", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to sum ledger rows: %w", err)
	}

	slices.SortFunc(accounts, func(a, b domain.Account) int { return strings.Compare(a.Code, b.Code) })
	tb := &domain.TrialBalance{
		AsOf:        asOf,
		Rows:        make([]domain.TrialBalanceRow, 0, len(accounts)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, acc := range accounts {
		a := activity[acc.AccountID]
		// Deactivated accounts stay in the report while their history does
		if !acc.IsActive && a.RowCount == 0 {
			continue
		}
		row := domain.TrialBalanceRow{
			AccountID:     acc.AccountID,
			AccountCode:   acc.Code,
			AccountName:   acc.Name,
			AccountType:   acc.AccountType,
			NormalBalance: acc.NormalBalance,
			Debit:         a.TotalDebit,
			Credit:        a.TotalCredit,
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	tb.IsBalanced = tb.TotalDebit.Equal(tb.TotalCredit)
	if !tb.IsBalanced {
		s.GetLogger(ctx).Error("Trial balance does not balance",
			slog.String("tenant_id", tenantID),
			slog.String("total_debit", tb.TotalDebit.String()),
			slog.String("total_credit", tb.TotalCredit.String()))
	}
	return tb, nil
}

func (s *ledgerQueryService) GetBalances(ctx context.Context, tenantID string) ([]domain.AccountBalance, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for balances", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	balances := make([]domain.AccountBalance, len(accounts))
	for i, acc := range accounts {
		balances[i] = domain.AccountBalance{
			AccountID:     acc.AccountID,
			AccountCode:   acc.Code,
			AccountName:   acc.Name,
			AccountType:   acc.AccountType,
			NormalBalance: acc.NormalBalance,
			Balance:       acc.CurrentBalance,
			DebitPositive: accounting.ToDebitPositive(acc.CurrentBalance, acc.NormalBalance),
			IsActive:      acc.IsActive,
		}
	}
	return balances, nil
}

func (s *ledgerQueryService) VerifyIntegrity(ctx context.Context, tenantID string) (*domain.IntegrityReport, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	activity, err := s.ledgerRepo.SumLedgerByAccount(ctx, tenantID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger rows: %w", err)
	}

	report := &domain.IntegrityReport{
		CheckedAccounts:  len(accounts),
		Mismatches:       []domain.BalanceMismatch{},
		DebitPositiveSum: decimal.Zero,
		LedgerDebit:      decimal.Zero,
		LedgerCredit:     decimal.Zero,
	}
	for _, acc := range accounts {
		a := activity[acc.AccountID]
		report.LedgerDebit = report.LedgerDebit.Add(a.TotalDebit)
		report.LedgerCredit = report.LedgerCredit.Add(a.TotalCredit)

		movement := a.TotalDebit.Sub(a.TotalCredit)
		computed := acc.OpeningBalance.Add(accounting.ToDebitPositive(movement, acc.NormalBalance))
		if !computed.Equal(acc.CurrentBalance) {
			report.Mismatches = append(report.Mismatches, domain.BalanceMismatch{
				AccountID:       acc.AccountID,
				AccountCode:     acc.Code,
				StoredBalance:   acc.CurrentBalance,
				ComputedBalance: computed,
			})
		}
		report.DebitPositiveSum = report.DebitPositiveSum.Add(
			accounting.ToDebitPositive(acc.CurrentBalance.Sub(acc.OpeningBalance), acc.NormalBalance))
	}
	report.IsConsistent = len(report.Mismatches) == 0 &&
		report.DebitPositiveSum.IsZero() &&
		report.LedgerDebit.Equal(report.LedgerCredit)

	if !report.IsConsistent {
		s.GetLogger(ctx).Error("Ledger integrity check failed",
			slog.String("tenant_id", tenantID),
			slog.Int("mismatches", len(report.Mismatches)),
			slog.String("debit_positive_sum", report.DebitPositiveSum.String()))
	}
	return report, nil
}
