package services

import (
	"context"
	"iter"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// LedgerQuerySvc derives ledgers and reports from posted rows. It never mutates state.
type LedgerQuerySvc interface {
	// GetAccountLedger yields the account's rows in (entry_date, entry_id, line_number) order.
	// Rows are fetched lazily page by page; ranging over the sequence again starts from the first row.
	GetAccountLedger(ctx context.Context, tenantID string, accountID string, rng domain.DateRange) (iter.Seq2[domain.LedgerRow, error], error)

	// ListAccountLedger returns one page of the account ledger plus a token for the next page.
	ListAccountLedger(ctx context.Context, tenantID string, accountID string, params dto.ListLedgerParams) ([]domain.LedgerRow, *string, error)

	// GetTrialBalance sums every active account's rows dated on or before asOf (all rows when nil).
	GetTrialBalance(ctx context.Context, tenantID string, asOf *time.Time) (*domain.TrialBalance, error)

	// GetBalances returns the stored current balance of every account.
	GetBalances(ctx context.Context, tenantID string) ([]domain.AccountBalance, error)

	// VerifyIntegrity recomputes balances from the ledger and compares them to the stored ones.
	VerifyIntegrity(ctx context.Context, tenantID string) (*domain.IntegrityReport, error)
}
