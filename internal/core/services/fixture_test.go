package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/repositories/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockPostingNotifier is a mock type for the PostingNotifier interface
type MockPostingNotifier struct {
	mock.Mock
}

func (m *MockPostingNotifier) NotifyPosted(ctx context.Context, event domain.PostingCompleted) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// ledgerSuite wires every service against a fresh in-memory store with one open period covering 2025.
type ledgerSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	accounts portssvc.AccountSvcFacade
	journal  portssvc.JournalSvcFacade
	posting  portssvc.PostingSvc
	ledger   portssvc.LedgerQuerySvc
	periods  portssvc.FiscalPeriodSvcFacade
	notifier *MockPostingNotifier
	tenantID string
	userID   string
	fy2025   *domain.FiscalPeriod
}

func (s *ledgerSuite) setupLedger(postingOpts ...services.PostingServiceOption) {
	s.ctx = context.Background()
	s.store = memory.NewStore(memory.WithLockTimeout(2 * time.Second))
	repos := s.store.Provider()
	s.tenantID = uuid.NewString()
	s.userID = uuid.NewString()
	s.notifier = new(MockPostingNotifier)

	s.periods = services.NewFiscalPeriodService(repos.FiscalPeriodRepo, services.BaseService{})
	s.accounts = services.NewAccountService(repos.AccountRepo)
	s.journal = services.NewJournalService(repos.JournalRepo, repos.AccountRepo)
	opts := append([]services.PostingServiceOption{services.WithPostingNotifier(s.notifier)}, postingOpts...)
	s.posting = services.NewPostingService(repos.PostingRunner, s.periods, opts...)
	s.ledger = services.NewLedgerQueryService(repos.LedgerRepo, repos.AccountRepo, services.WithLedgerPageSize(2))

	period, err := s.periods.DefinePeriod(s.ctx, s.tenantID, dto.CreateFiscalPeriodRequest{
		Name:      "FY2025",
		StartDate: day(2025, 1, 1),
		EndDate:   day(2025, 12, 31),
	}, s.userID)
	s.Require().NoError(err)
	s.fy2025 = period
}

// expectNotifications accepts any number of PostingCompleted events.
func (s *ledgerSuite) expectNotifications() {
	s.notifier.On("NotifyPosted", mock.Anything, mock.AnythingOfType("domain.PostingCompleted")).Return(nil).Maybe()
}

func (s *ledgerSuite) createAccount(code string, typ domain.AccountType, opening string) *domain.Account {
	acc, err := s.accounts.CreateAccount(s.ctx, s.tenantID, dto.CreateAccountRequest{
		Code:           code,
		Name:           "Account " + code,
		AccountType:    typ,
		OpeningBalance: decimal.RequireFromString(opening),
	}, s.userID)
	s.Require().NoError(err)
	return acc
}

func (s *ledgerSuite) draft(date time.Time, lines ...dto.JournalLineRequest) *domain.JournalEntry {
	entry, err := s.journal.CreateDraft(s.ctx, s.tenantID, dto.CreateJournalEntryRequest{
		EntryDate:   date,
		Description: "test entry",
		Lines:       lines,
	}, s.userID)
	s.Require().NoError(err)
	return entry
}

func (s *ledgerSuite) balance(accountID string) decimal.Decimal {
	acc, err := s.accounts.GetAccountByID(s.ctx, s.tenantID, accountID)
	s.Require().NoError(err)
	return acc.CurrentBalance
}

func (s *ledgerSuite) rows(accountID string) []domain.LedgerRow {
	seq, err := s.ledger.GetAccountLedger(s.ctx, s.tenantID, accountID, domain.DateRange{})
	s.Require().NoError(err)
	var rows []domain.LedgerRow
	for row, err := range seq {
		s.Require().NoError(err)
		rows = append(rows, row)
	}
	return rows
}

func (s *ledgerSuite) assertDecimal(expected string, actual decimal.Decimal) {
	s.Truef(decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func debit(accountID, amount string) dto.JournalLineRequest {
	return dto.JournalLineRequest{AccountID: accountID, DebitAmount: decimal.RequireFromString(amount)}
}

func credit(accountID, amount string) dto.JournalLineRequest {
	return dto.JournalLineRequest{AccountID: accountID, CreditAmount: decimal.RequireFromString(amount)}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}
