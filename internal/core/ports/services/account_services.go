package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account of the tenant.
	GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error)

	// GetAccountTree returns the account forest ordered by sort order, then code.
	GetAccountTree(ctx context.Context, tenantID string, includeInactive bool) ([]*domain.AccountNode, error)
}

// AccountWriterSvc defines write operations for the chart of accounts
type AccountWriterSvc interface {
	// CreateAccount persists a new account with current balance equal to its opening balance.
	CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount renames or reparents an account.
	UpdateAccount(ctx context.Context, tenantID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, tenantID string, accountID string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
