package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, tenant_id, code, name, description, account_type, normal_balance,
	parent_account_id, sort_order, opening_balance, current_balance, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.TenantID,
		&m.Code,
		&m.Name,
		&m.Description,
		&m.AccountType,
		&m.NormalBalance,
		&m.ParentAccountID,
		&m.SortOrder,
		&m.OpeningBalance,
		&m.CurrentBalance,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	defer rows.Close()
	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, mapPgError(err, "failed to scan account row")
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating account rows")
	}
	return accounts, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`

	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.TenantID,
		m.Code,
		m.Name,
		m.Description,
		m.AccountType,
		m.NormalBalance,
		m.ParentAccountID,
		m.SortOrder,
		m.OpeningBalance,
		m.CurrentBalance,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		switch constraintOf(err) {
		case "uq_accounts_tenant_code":
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, m.Code)
		case "accounts_parent_account_id_fkey":
			return fmt.Errorf("%w: parent %v does not exist", apperrors.ErrInvalidParent, *m.ParentAccountID)
		}
		return mapPgError(err, "failed to save account "+m.AccountID)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, mapPgError(err, "failed to find account "+accountID)
	}
	return &acc, nil
}

// FindAccountsByIDs retrieves the tenant's accounts with the given IDs. Missing IDs are absent from the map.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = ANY($2);`
	return queryAccountMap(ctx, r.Pool, query, tenantID, accountIDs)
}

func queryAccountMap(ctx context.Context, q querier, query string, args ...any) (map[string]domain.Account, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to query accounts by IDs")
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	found := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		found[acc.AccountID] = acc
	}
	return found, nil
}

// ListAccounts returns the tenant's accounts ordered by sort order, then code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE tenant_id = $1 AND ($2::boolean OR is_active)
		ORDER BY sort_order, code COLLATE "C";`
	rows, err := r.Pool.Query(ctx, query, tenantID, includeInactive)
	if err != nil {
		return nil, mapPgError(err, "failed to list accounts for tenant "+tenantID)
	}
	return collectAccounts(rows)
}

// CountActiveChildren counts active accounts whose parent is accountID.
func (r *PgxAccountRepository) CountActiveChildren(ctx context.Context, accountID string) (int, error) {
	return countActiveChildren(ctx, r.Pool, accountID)
}

func countActiveChildren(ctx context.Context, q querier, accountID string) (int, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE parent_account_id = $1 AND is_active;`, accountID).Scan(&n)
	if err != nil {
		return 0, mapPgError(err, "failed to count children of account "+accountID)
	}
	return n, nil
}

// UpdateAccount updates name, description, parent and sort order.
// A new parent is checked against the ancestor chain under a per-tenant advisory lock, so
// concurrent reparents cannot close a cycle between them.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if account.ParentAccountID != nil {
			if err := lockAccountTree(ctx, tx, account.TenantID); err != nil {
				return err
			}
			var cycle bool
			err := tx.QueryRow(ctx, ancestorCycleQuery, *account.ParentAccountID, account.AccountID).Scan(&cycle)
			if err != nil {
				return mapPgError(err, "failed to walk ancestors of "+*account.ParentAccountID)
			}
			if cycle {
				return fmt.Errorf("%w: %s is a descendant of %s", apperrors.ErrInvalidParent, *account.ParentAccountID, account.AccountID)
			}
		}

		query := `
			UPDATE accounts
			SET name = $2, description = $3, parent_account_id = $4, sort_order = $5, last_updated_at = $6, last_updated_by = $7
			WHERE account_id = $1;
		`
		cmdTag, err := tx.Exec(ctx, query,
			account.AccountID,
			account.Name,
			account.Description,
			account.ParentAccountID,
			account.SortOrder,
			account.LastUpdatedAt,
			account.LastUpdatedBy,
		)
		if err != nil {
			if constraintOf(err) == "accounts_parent_account_id_fkey" || constraintOf(err) == "chk_accounts_not_own_parent" {
				return fmt.Errorf("%w: %s", apperrors.ErrInvalidParent, account.AccountID)
			}
			return mapPgError(err, "failed to update account "+account.AccountID)
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, account.AccountID)
		}
		return nil
	})
}

// ancestorCycleQuery reports whether $2 appears on the ancestor chain starting at $1.
const ancestorCycleQuery = `
	WITH RECURSIVE ancestors(account_id, parent_account_id) AS (
		SELECT account_id, parent_account_id FROM accounts WHERE account_id = $1
		UNION
		SELECT a.account_id, a.parent_account_id
		FROM accounts a JOIN ancestors an ON a.account_id = an.parent_account_id
	)
	SELECT EXISTS (SELECT 1 FROM ancestors WHERE account_id = $2);
`

// lockAccountTree serializes structural changes to one tenant's account tree until the tx ends.
func lockAccountTree(ctx context.Context, tx pgx.Tx, tenantID string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended('account_tree:' || $1, 0));`, tenantID)
	if err != nil {
		return mapPgError(err, "failed to lock account tree")
	}
	return nil
}

// DeactivateAccount marks an account as inactive after re-checking balance and children under a row lock.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var balance decimal.Decimal
		err := tx.QueryRow(ctx, `SELECT current_balance FROM accounts WHERE account_id = $1 FOR UPDATE;`, accountID).Scan(&balance)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
			}
			return mapPgError(err, "failed to lock account "+accountID)
		}
		if !balance.IsZero() {
			return fmt.Errorf("%w: %s", apperrors.ErrNonZeroBalance, balance.String())
		}
		n, err := countActiveChildren(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %d active children", apperrors.ErrHasChildren, n)
		}

		_, err = tx.Exec(ctx, `
			UPDATE accounts SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
			WHERE account_id = $1;`, accountID, now, userID)
		if err != nil {
			return mapPgError(err, "failed to deactivate account "+accountID)
		}
		return nil
	})
}
