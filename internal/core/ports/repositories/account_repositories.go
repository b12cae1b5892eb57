package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves the accounts of a tenant with the given IDs. Missing IDs are absent from the map.
	FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts returns the tenant's accounts ordered by sort order, then code.
	ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error)

	// CountActiveChildren counts active accounts whose parent is accountID.
	CountActiveChildren(ctx context.Context, accountID string) (int, error)
}

// AccountWriter defines write operations for account data.
// Balances are never written here; see PostingTx.
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicateCode on a code collision.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates name, description, parent and sort order.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive. It fails with apperrors.ErrNonZeroBalance or
	// apperrors.ErrHasChildren if the account stopped qualifying after the caller checked it.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
