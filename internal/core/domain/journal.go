package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the lifecycle state of a journal entry.
type JournalStatus string

const (
	Draft    JournalStatus = "DRAFT"
	Pending  JournalStatus = "PENDING"
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// IsEditable reports whether lines and header fields may still change.
func (s JournalStatus) IsEditable() bool {
	return s == Draft || s == Pending
}

// JournalEntry is a dated set of debit and credit lines.
type JournalEntry struct {
	EntryID           string          `json:"entryID"`                     // Primary Key (UUIDv7)
	TenantID          string          `json:"tenantID"`                    // Owning tenant
	EntryNumber       int64           `json:"entryNumber"`                 // Sequential per tenant
	EntryDate         time.Time       `json:"entryDate"`                   // Calendar date, UTC midnight
	Description       string          `json:"description"`                 // Free text
	ReferenceNumber   string          `json:"referenceNumber"`             // External reference, optional
	Status            JournalStatus   `json:"status"`                      // DRAFT -> PENDING -> POSTED -> REVERSED
	TotalDebit        decimal.Decimal `json:"totalDebit"`                  // Sum of line debits
	TotalCredit       decimal.Decimal `json:"totalCredit"`                 // Sum of line credits
	IsBalanced        bool            `json:"isBalanced"`                  // TotalDebit == TotalCredit
	OriginalEntryID   *string         `json:"originalEntryID,omitempty"`   // Set on reversal entries
	ReversedByEntryID *string         `json:"reversedByEntryID,omitempty"` // Set on reversed entries
	ReversalReason    string          `json:"reversalReason,omitempty"`
	PostedAt          *time.Time      `json:"postedAt,omitempty"`
	PostedBy          string          `json:"postedBy,omitempty"`
	Lines             []JournalLine   `json:"lines"`
	AuditFields
}

// JournalLine is a single debit or credit against one account.
type JournalLine struct {
	LineID       string          `json:"lineID"`                 // Primary Key (UUID)
	EntryID      string          `json:"entryID"`                // FK -> journal_entries
	LineNumber   int             `json:"lineNumber"`             // 1..n, unique within the entry
	AccountID    string          `json:"accountID"`              // FK -> accounts
	DebitAmount  decimal.Decimal `json:"debitAmount"`            // >= 0
	CreditAmount decimal.Decimal `json:"creditAmount"`           // >= 0, exactly one side positive
	CostCenterID *string         `json:"costCenterID,omitempty"` // Opaque dimension
	Description  string          `json:"description"`
}

// Side returns the side carrying the line's amount.
func (l JournalLine) Side() BalanceSide {
	if l.DebitAmount.IsPositive() {
		return Debit
	}
	return Credit
}

// Amount returns the positive amount of the line.
func (l JournalLine) Amount() decimal.Decimal {
	if l.DebitAmount.IsPositive() {
		return l.DebitAmount
	}
	return l.CreditAmount
}

// RecomputeTotals refreshes the debit/credit totals and the balanced flag from the lines.
func (e *JournalEntry) RecomputeTotals() {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.DebitAmount)
		credit = credit.Add(l.CreditAmount)
	}
	e.TotalDebit = debit
	e.TotalCredit = credit
	e.IsBalanced = debit.Equal(credit)
}

// SortedLines returns a copy of the lines ordered by line number.
func (e JournalEntry) SortedLines() []JournalLine {
	lines := slices.Clone(e.Lines)
	slices.SortFunc(lines, func(a, b JournalLine) int { return a.LineNumber - b.LineNumber })
	return lines
}

// AccountIDs returns the distinct account IDs referenced by the lines in ascending order.
func (e JournalEntry) AccountIDs() []string {
	ids := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		ids = append(ids, l.AccountID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// IsReversal reports whether the entry was created to reverse another entry.
func (e JournalEntry) IsReversal() bool {
	return e.OriginalEntryID != nil && *e.OriginalEntryID != ""
}
