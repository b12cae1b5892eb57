package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow represents a row of the append-only ledger_rows table.
type LedgerRow struct {
	RowID               int64           `db:"row_id"`
	TenantID            string          `db:"tenant_id"`
	EntryID             string          `db:"entry_id"`
	EntryNumber         int64           `db:"entry_number"`
	LineID              string          `db:"line_id"`
	LineNumber          int             `db:"line_number"`
	AccountID           string          `db:"account_id"`
	EntryDate           time.Time       `db:"entry_date"`
	DebitAmount         decimal.Decimal `db:"debit_amount"`
	CreditAmount        decimal.Decimal `db:"credit_amount"`
	RunningBalanceAfter decimal.Decimal `db:"running_balance_after"`
	CreatedAt           time.Time       `db:"created_at"`
}
