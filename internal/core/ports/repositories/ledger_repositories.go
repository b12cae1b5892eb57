package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// LedgerReader reads committed ledger rows. It never blocks on posting transactions.
type LedgerReader interface {
	// ListLedgerRows returns up to limit rows of the account inside rng, ordered by
	// (entry_date, entry_id, line_number) and strictly after the cursor when one is given.
	ListLedgerRows(ctx context.Context, tenantID, accountID string, rng domain.DateRange, after *domain.LedgerCursor, limit int) ([]domain.LedgerRow, error)

	// SumLedgerByAccount sums debit and credit per account for rows dated on or before asOf (all rows when nil).
	SumLedgerByAccount(ctx context.Context, tenantID string, asOf *time.Time) (map[string]domain.AccountActivity, error)
}
