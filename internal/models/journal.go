package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

// JournalEntry represents a row of the journal_entries table.
type JournalEntry struct {
	EntryID           string          `db:"entry_id"`
	TenantID          string          `db:"tenant_id"`
	EntryNumber       int64           `db:"entry_number"`
	EntryDate         time.Time       `db:"entry_date"`
	Description       string          `db:"description"`
	ReferenceNumber   string          `db:"reference_number"`
	Status            JournalStatus   `db:"status"`
	TotalDebit        decimal.Decimal `db:"total_debit"`
	TotalCredit       decimal.Decimal `db:"total_credit"`
	OriginalEntryID   *string         `db:"original_entry_id"`    // Nullable
	ReversedByEntryID *string         `db:"reversed_by_entry_id"` // Nullable
	ReversalReason    string          `db:"reversal_reason"`
	PostedAt          *time.Time      `db:"posted_at"` // Nullable
	PostedBy          *string         `db:"posted_by"` // Nullable
	AuditFields
}

// JournalLine represents a row of the journal_lines table.
type JournalLine struct {
	LineID       string          `db:"line_id"`
	EntryID      string          `db:"entry_id"`
	LineNumber   int             `db:"line_number"`
	AccountID    string          `db:"account_id"`
	DebitAmount  decimal.Decimal `db:"debit_amount"`
	CreditAmount decimal.Decimal `db:"credit_amount"`
	CostCenterID *string         `db:"cost_center_id"` // Nullable
	Description  string          `db:"description"`
}
