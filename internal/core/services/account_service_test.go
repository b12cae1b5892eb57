package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

// --- Implement mock methods for AccountRepository ---

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) CountActiveChildren(ctx context.Context, accountID string) (int, error) {
	args := m.Called(ctx, accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
	now      time.Time
	tenantID string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.now = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	suite.tenantID = uuid.NewString()
	suite.service = services.NewAccountService(suite.mockRepo,
		services.WithAccountBase(services.BaseService{Clock: func() time.Time { return suite.now }}))
}

func (suite *AccountServiceTestSuite) account(id, code string, parent *string) *domain.Account {
	return &domain.Account{
		AccountID:       id,
		TenantID:        suite.tenantID,
		Code:            code,
		Name:            "Account " + code,
		AccountType:     domain.Asset,
		NormalBalance:   domain.Debit,
		ParentAccountID: parent,
		CurrentBalance:  decimal.Zero,
		IsActive:        true,
	}
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateAccountRequest{
		Code:           "1000",
		Name:           "Cash",
		AccountType:    domain.Asset,
		OpeningBalance: decimal.RequireFromString("125.50"),
	}

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	createdAccount, err := suite.service.CreateAccount(ctx, suite.tenantID, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(createdAccount)
	suite.NotEmpty(createdAccount.AccountID)
	suite.Equal(suite.tenantID, createdAccount.TenantID)
	suite.Equal(domain.Debit, createdAccount.NormalBalance)
	suite.True(createdAccount.CurrentBalance.Equal(req.OpeningBalance))
	suite.True(createdAccount.IsActive)
	suite.Equal(creatorUserID, createdAccount.CreatedBy)
	suite.Equal(suite.now, createdAccount.CreatedAt)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_RevenueIsCreditNormal() {
	ctx := context.Background()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	acc, err := suite.service.CreateAccount(ctx, suite.tenantID, dto.CreateAccountRequest{
		Code: "4000", Name: "Sales", AccountType: domain.Revenue,
	}, "user")

	suite.Require().NoError(err)
	suite.Equal(domain.Credit, acc.NormalBalance)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicateCode).Once()

	acc, err := suite.service.CreateAccount(ctx, suite.tenantID, dto.CreateAccountRequest{
		Code: "1000", Name: "Cash", AccountType: domain.Asset,
	}, "user")

	suite.Nil(acc)
	suite.ErrorIs(err, apperrors.ErrDuplicateCode)
	suite.Equal(apperrors.CategoryValidation, apperrors.CategoryOf(err))
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentInOtherTenant() {
	ctx := context.Background()
	parent := suite.account("parent", "1", nil)
	parent.TenantID = "someone-else"
	suite.mockRepo.On("FindAccountByID", ctx, "parent").Return(parent, nil).Once()

	parentID := "parent"
	acc, err := suite.service.CreateAccount(ctx, suite.tenantID, dto.CreateAccountRequest{
		Code: "1100", Name: "Petty cash", AccountType: domain.Asset, ParentAccountID: &parentID,
	}, "user")

	suite.Nil(acc)
	suite.ErrorIs(err, apperrors.ErrInvalidParent)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_MissingParent() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, "ghost").Return(nil, apperrors.ErrAccountNotFound).Once()

	parentID := "ghost"
	_, err := suite.service.CreateAccount(ctx, suite.tenantID, dto.CreateAccountRequest{
		Code: "1100", Name: "Petty cash", AccountType: domain.Asset, ParentAccountID: &parentID,
	}, "user")

	suite.ErrorIs(err, apperrors.ErrInvalidParent)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_OpeningBalanceScale() {
	_, err := suite.service.CreateAccount(context.Background(), suite.tenantID, dto.CreateAccountRequest{
		Code: "1000", Name: "Cash", AccountType: domain.Asset, OpeningBalance: decimal.RequireFromString("1.005"),
	}, "user")

	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_SaveError() {
	ctx := context.Background()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(assert.AnError).Once()

	acc, err := suite.service.CreateAccount(ctx, suite.tenantID, dto.CreateAccountRequest{
		Code: "1000", Name: "Cash", AccountType: domain.Asset,
	}, "user")

	suite.Require().Error(err)
	suite.Nil(acc)
	suite.ErrorIs(err, assert.AnError)
	suite.Equal(apperrors.CategoryInternal, apperrors.CategoryOf(err))
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_OtherTenantIsNotFound() {
	ctx := context.Background()
	acc := suite.account("a1", "1000", nil)
	acc.TenantID = "other"
	suite.mockRepo.On("FindAccountByID", ctx, "a1").Return(acc, nil).Once()

	found, err := suite.service.GetAccountByID(ctx, suite.tenantID, "a1")

	suite.Nil(found)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestGetAccountTree() {
	ctx := context.Background()
	rootID, midID := "root", "mid"
	accounts := []domain.Account{
		*suite.account(rootID, "1000", nil),
		*suite.account(midID, "1100", &rootID),
		*suite.account("leaf-b", "1120", &midID),
		*suite.account("leaf-a", "1110", &midID),
		*suite.account("other", "2000", nil),
	}
	suite.mockRepo.On("ListAccounts", ctx, suite.tenantID, false).Return(accounts, nil).Once()

	forest, err := suite.service.GetAccountTree(ctx, suite.tenantID, false)

	suite.Require().NoError(err)
	suite.Require().Len(forest, 2)
	suite.Equal(rootID, forest[0].Account.AccountID)
	suite.Equal(1, forest[0].ChildCount)
	suite.Equal(3, forest[0].DescendantCount)
	mid := forest[0].Children[0]
	suite.Equal(2, mid.ChildCount)
	// sibling order follows the input order
	suite.Equal("leaf-b", mid.Children[0].Account.AccountID)
	suite.Equal(0, forest[1].DescendantCount)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_RejectsCycle() {
	ctx := context.Background()
	rootID, childID := "root", "child"
	suite.mockRepo.On("FindAccountByID", ctx, rootID).Return(suite.account(rootID, "1000", nil), nil)
	suite.mockRepo.On("FindAccountByID", ctx, childID).Return(suite.account(childID, "1100", &rootID), nil)

	_, err := suite.service.UpdateAccount(ctx, suite.tenantID, rootID, dto.UpdateAccountRequest{ParentAccountID: &childID}, "user")

	suite.ErrorIs(err, apperrors.ErrInvalidParent)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_RejectsSelfParent() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, "a1").Return(suite.account("a1", "1000", nil), nil)

	selfID := "a1"
	_, err := suite.service.UpdateAccount(ctx, suite.tenantID, "a1", dto.UpdateAccountRequest{ParentAccountID: &selfID}, "user")

	suite.ErrorIs(err, apperrors.ErrInvalidParent)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_RenameAndMoveToRoot() {
	ctx := context.Background()
	rootID := "root"
	suite.mockRepo.On("FindAccountByID", ctx, "a1").Return(suite.account("a1", "1100", &rootID), nil).Once()
	suite.mockRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Name == "Bank" && a.ParentAccountID == nil && a.LastUpdatedBy == "editor"
	})).Return(nil).Once()

	name := "Bank"
	updated, err := suite.service.UpdateAccount(ctx, suite.tenantID, "a1", dto.UpdateAccountRequest{Name: &name, MoveToRoot: true}, "editor")

	suite.Require().NoError(err)
	suite.Equal("Bank", updated.Name)
	suite.Nil(updated.ParentAccountID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_Success() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, "a1").Return(suite.account("a1", "1000", nil), nil).Once()
	suite.mockRepo.On("CountActiveChildren", ctx, "a1").Return(0, nil).Once()
	suite.mockRepo.On("DeactivateAccount", ctx, "a1", "user", suite.now).Return(nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.tenantID, "a1", "user")

	suite.NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_NonZeroBalance() {
	ctx := context.Background()
	acc := suite.account("a1", "1000", nil)
	acc.CurrentBalance = decimal.NewFromInt(10)
	suite.mockRepo.On("FindAccountByID", ctx, "a1").Return(acc, nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.tenantID, "a1", "user")

	suite.ErrorIs(err, apperrors.ErrNonZeroBalance)
	suite.Equal(apperrors.CategoryState, apperrors.CategoryOf(err))
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_HasChildren() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, "a1").Return(suite.account("a1", "1000", nil), nil).Once()
	suite.mockRepo.On("CountActiveChildren", ctx, "a1").Return(2, nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.tenantID, "a1", "user")

	suite.ErrorIs(err, apperrors.ErrHasChildren)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeactivateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_AlreadyInactive() {
	ctx := context.Background()
	acc := suite.account("a1", "1000", nil)
	acc.IsActive = false
	suite.mockRepo.On("FindAccountByID", ctx, "a1").Return(acc, nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.tenantID, "a1", "user")

	suite.NoError(err)
	suite.mockRepo.AssertNotCalled(suite.T(), "CountActiveChildren", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByID", ctx, "missing").Return(nil, apperrors.ErrAccountNotFound).Once()

	err := suite.service.DeactivateAccount(ctx, suite.tenantID, "missing", "user")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Run Test Suite ---

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
