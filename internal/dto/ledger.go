package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListLedgerParams defines query parameters for the paged account ledger.
type ListLedgerParams struct {
	From      *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To        *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
	Limit     int        `form:"limit,default=100" binding:"gte=1,lte=1000"`
	NextToken *string    `form:"nextToken"`
}

// LedgerRowResponse defines the data returned for one ledger row.
type LedgerRowResponse struct {
	EntryID             string          `json:"entryID"`
	EntryNumber         int64           `json:"entryNumber"`
	LineID              string          `json:"lineID"`
	LineNumber          int             `json:"lineNumber"`
	EntryDate           time.Time       `json:"entryDate"`
	DebitAmount         decimal.Decimal `json:"debitAmount"`
	CreditAmount        decimal.Decimal `json:"creditAmount"`
	RunningBalanceAfter decimal.Decimal `json:"runningBalanceAfter"`
}

// ListLedgerResponse is one page of an account ledger.
type ListLedgerResponse struct {
	AccountID string              `json:"accountID"`
	Rows      []LedgerRowResponse `json:"rows"`
	NextToken *string             `json:"nextToken,omitempty"`
}

// TrialBalanceParams defines query parameters for the trial balance.
type TrialBalanceParams struct {
	AsOf *time.Time `form:"asOf" time_format:"2006-01-02" time_utc:"1"`
}

// ToListLedgerResponse converts ledger rows to the page DTO.
func ToListLedgerResponse(accountID string, rows []domain.LedgerRow, nextToken *string) ListLedgerResponse {
	res := make([]LedgerRowResponse, len(rows))
	for i, r := range rows {
		res[i] = LedgerRowResponse{
			EntryID:             r.EntryID,
			EntryNumber:         r.EntryNumber,
			LineID:              r.LineID,
			LineNumber:          r.LineNumber,
			EntryDate:           r.EntryDate,
			DebitAmount:         r.DebitAmount,
			CreditAmount:        r.CreditAmount,
			RunningBalanceAfter: r.RunningBalanceAfter,
		}
	}
	return ListLedgerResponse{AccountID: accountID, Rows: res, NextToken: nextToken}
}
