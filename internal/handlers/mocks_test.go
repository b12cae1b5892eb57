package handlers_test

import (
	"context"
	"iter"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountTree(ctx context.Context, tenantID string, includeInactive bool) ([]*domain.AccountNode, error) {
	args := m.Called(ctx, tenantID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AccountNode), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, tenantID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, tenantID string, accountID string, userID string) error {
	args := m.Called(ctx, tenantID, accountID, userID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) GetEntry(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) CreateDraft(ctx context.Context, tenantID string, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) UpdateDraft(ctx context.Context, tenantID string, entryID string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) DeleteDraft(ctx context.Context, tenantID string, entryID string, userID string) error {
	args := m.Called(ctx, tenantID, entryID, userID)
	return args.Error(0)
}
func (m *MockJournalService) SubmitForReview(ctx context.Context, tenantID string, entryID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

// --- Mock PostingService ---
type MockPostingService struct {
	mock.Mock
}

func (m *MockPostingService) Post(ctx context.Context, tenantID string, entryID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockPostingService) Reverse(ctx context.Context, tenantID string, entryID string, req dto.ReverseJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

var _ portssvc.PostingSvc = (*MockPostingService)(nil)

// --- Mock LedgerQueryService ---
type MockLedgerQueryService struct {
	mock.Mock
}

func (m *MockLedgerQueryService) GetAccountLedger(ctx context.Context, tenantID string, accountID string, rng domain.DateRange) (iter.Seq2[domain.LedgerRow, error], error) {
	args := m.Called(ctx, tenantID, accountID, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(iter.Seq2[domain.LedgerRow, error]), args.Error(1)
}
func (m *MockLedgerQueryService) ListAccountLedger(ctx context.Context, tenantID string, accountID string, params dto.ListLedgerParams) ([]domain.LedgerRow, *string, error) {
	args := m.Called(ctx, tenantID, accountID, params)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.LedgerRow), next, args.Error(2)
}
func (m *MockLedgerQueryService) GetTrialBalance(ctx context.Context, tenantID string, asOf *time.Time) (*domain.TrialBalance, error) {
	args := m.Called(ctx, tenantID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}
func (m *MockLedgerQueryService) GetBalances(ctx context.Context, tenantID string) ([]domain.AccountBalance, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalance), args.Error(1)
}
func (m *MockLedgerQueryService) VerifyIntegrity(ctx context.Context, tenantID string) (*domain.IntegrityReport, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrityReport), args.Error(1)
}

var _ portssvc.LedgerQuerySvc = (*MockLedgerQueryService)(nil)

// --- Mock FiscalPeriodService ---
type MockFiscalPeriodService struct {
	mock.Mock
}

func (m *MockFiscalPeriodService) FindOpenPeriod(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}
func (m *MockFiscalPeriodService) FindOpenPeriodWith(ctx context.Context, reader portsrepo.FiscalPeriodReader, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, reader, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}
func (m *MockFiscalPeriodService) DefinePeriod(ctx context.Context, tenantID string, req dto.CreateFiscalPeriodRequest, userID string) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}
func (m *MockFiscalPeriodService) ListPeriods(ctx context.Context, tenantID string) ([]domain.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalPeriod), args.Error(1)
}
func (m *MockFiscalPeriodService) SetPeriodStatus(ctx context.Context, tenantID string, periodID string, status domain.PeriodStatus, userID string) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, periodID, status, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

var _ portssvc.FiscalPeriodSvcFacade = (*MockFiscalPeriodService)(nil)
