package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow is the immutable effect of one posted line on one account.
type LedgerRow struct {
	RowID               int64           `json:"rowID"`
	TenantID            string          `json:"tenantID"`
	EntryID             string          `json:"entryID"`
	EntryNumber         int64           `json:"entryNumber"`
	LineID              string          `json:"lineID"`
	LineNumber          int             `json:"lineNumber"`
	AccountID           string          `json:"accountID"`
	EntryDate           time.Time       `json:"entryDate"`
	DebitAmount         decimal.Decimal `json:"debitAmount"`
	CreditAmount        decimal.Decimal `json:"creditAmount"`
	RunningBalanceAfter decimal.Decimal `json:"runningBalanceAfter"` // Account balance right after this row
	CreatedAt           time.Time       `json:"createdAt"`
}

// LedgerCursor marks the last row returned in (entry_date, entry_id, line_number) order.
type LedgerCursor struct {
	EntryDate  time.Time
	EntryID    string
	LineNumber int
}

// After reports whether row sorts strictly after the cursor.
func (c LedgerCursor) After(row LedgerRow) bool {
	if !row.EntryDate.Equal(c.EntryDate) {
		return row.EntryDate.After(c.EntryDate)
	}
	if row.EntryID != c.EntryID {
		return row.EntryID > c.EntryID
	}
	return row.LineNumber > c.LineNumber
}

// CompareLedgerRows orders rows by entry date, entry ID and line number.
func CompareLedgerRows(a, b LedgerRow) int {
	if c := a.EntryDate.Compare(b.EntryDate); c != 0 {
		return c
	}
	if a.EntryID != b.EntryID {
		if a.EntryID < b.EntryID {
			return -1
		}
		return 1
	}
	return a.LineNumber - b.LineNumber
}

// AccountActivity is the summed ledger activity of one account.
type AccountActivity struct {
	AccountID   string          `json:"accountID"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	RowCount    int64           `json:"rowCount"`
}

// TrialBalanceRow represents a single row in a trial balance report.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	NormalBalance BalanceSide     `json:"normalBalance"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// TrialBalance lists every active account's summed activity.
type TrialBalance struct {
	AsOf        *time.Time        `json:"asOf,omitempty"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	IsBalanced  bool              `json:"isBalanced"`
}

// AccountBalance is a snapshot of an account's current balance.
type AccountBalance struct {
	AccountID     string          `json:"accountID"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	NormalBalance BalanceSide     `json:"normalBalance"`
	Balance       decimal.Decimal `json:"balance"`              // Signed in the normal-balance direction
	DebitPositive decimal.Decimal `json:"debitPositiveBalance"` // Same balance, debit side positive
	IsActive      bool            `json:"isActive"`
}

// BalanceMismatch records an account whose stored balance disagrees with its ledger rows.
type BalanceMismatch struct {
	AccountID       string          `json:"accountID"`
	AccountCode     string          `json:"accountCode"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	ComputedBalance decimal.Decimal `json:"computedBalance"`
}

// IntegrityReport is the outcome of recomputing balances from the ledger.
type IntegrityReport struct {
	CheckedAccounts  int               `json:"checkedAccounts"`
	Mismatches       []BalanceMismatch `json:"mismatches"`
	DebitPositiveSum decimal.Decimal   `json:"debitPositiveSum"` // Must be zero
	LedgerDebit      decimal.Decimal   `json:"ledgerDebit"`
	LedgerCredit     decimal.Decimal   `json:"ledgerCredit"`
	IsConsistent     bool              `json:"isConsistent"`
}
