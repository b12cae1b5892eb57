package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one debit or credit line of a journal entry request.
type JournalLineRequest struct {
	LineNumber   int             `json:"lineNumber" binding:"gte=0"` // 0 on every line lets the server number them
	AccountID    string          `json:"accountID" binding:"required"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	CostCenterID *string         `json:"costCenterID"`
	Description  string          `json:"description"`
}

// CreateJournalEntryRequest defines the data needed to create a draft entry.
type CreateJournalEntryRequest struct {
	EntryDate       time.Time            `json:"entryDate" binding:"required"`
	Description     string               `json:"description" binding:"max=1024"`
	ReferenceNumber string               `json:"referenceNumber" binding:"max=128"`
	Lines           []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// UpdateJournalEntryRequest defines the editable fields of a draft. Nil fields keep their value;
// a non-nil Lines slice replaces every line.
type UpdateJournalEntryRequest struct {
	EntryDate       *time.Time           `json:"entryDate"`
	Description     *string              `json:"description" binding:"omitempty,max=1024"`
	ReferenceNumber *string              `json:"referenceNumber" binding:"omitempty,max=128"`
	Lines           []JournalLineRequest `json:"lines" binding:"omitempty,min=2,dive"`
}

// ReverseJournalEntryRequest defines the data needed to reverse a posted entry.
type ReverseJournalEntryRequest struct {
	ReversalDate *time.Time `json:"reversalDate"` // Defaults to today (UTC)
	Reason       string     `json:"reason" binding:"required,max=1024"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID       string          `json:"lineID"`
	LineNumber   int             `json:"lineNumber"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	CostCenterID *string         `json:"costCenterID,omitempty"`
	Description  string          `json:"description"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID           string                `json:"entryID"`
	EntryNumber       int64                 `json:"entryNumber"`
	EntryDate         time.Time             `json:"entryDate"`
	Description       string                `json:"description"`
	ReferenceNumber   string                `json:"referenceNumber"`
	Status            domain.JournalStatus  `json:"status"`
	TotalDebit        decimal.Decimal       `json:"totalDebit"`
	TotalCredit       decimal.Decimal       `json:"totalCredit"`
	IsBalanced        bool                  `json:"isBalanced"`
	OriginalEntryID   *string               `json:"originalEntryID,omitempty"`
	ReversedByEntryID *string               `json:"reversedByEntryID,omitempty"`
	ReversalReason    string                `json:"reversalReason,omitempty"`
	PostedAt          *time.Time            `json:"postedAt,omitempty"`
	PostedBy          string                `json:"postedBy,omitempty"`
	Lines             []JournalLineResponse `json:"lines"`
	CreatedAt         time.Time             `json:"createdAt"`
	CreatedBy         string                `json:"createdBy"`
	LastUpdatedAt     time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy     string                `json:"lastUpdatedBy"`
}

// ToDomainLines converts request lines to domain lines in request order.
func ToDomainLines(lines []JournalLineRequest) []domain.JournalLine {
	res := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		res[i] = domain.JournalLine{
			LineNumber:   l.LineNumber,
			AccountID:    l.AccountID,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			CostCenterID: l.CostCenterID,
			Description:  l.Description,
		}
	}
	return res
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := e.SortedLines()
	resLines := make([]JournalLineResponse, len(lines))
	for i, l := range lines {
		resLines[i] = JournalLineResponse{
			LineID:       l.LineID,
			LineNumber:   l.LineNumber,
			AccountID:    l.AccountID,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			CostCenterID: l.CostCenterID,
			Description:  l.Description,
		}
	}
	return JournalEntryResponse{
		EntryID:           e.EntryID,
		EntryNumber:       e.EntryNumber,
		EntryDate:         e.EntryDate,
		Description:       e.Description,
		ReferenceNumber:   e.ReferenceNumber,
		Status:            e.Status,
		TotalDebit:        e.TotalDebit,
		TotalCredit:       e.TotalCredit,
		IsBalanced:        e.IsBalanced,
		OriginalEntryID:   e.OriginalEntryID,
		ReversedByEntryID: e.ReversedByEntryID,
		ReversalReason:    e.ReversalReason,
		PostedAt:          e.PostedAt,
		PostedBy:          e.PostedBy,
		Lines:             resLines,
		CreatedAt:         e.CreatedAt,
		CreatedBy:         e.CreatedBy,
		LastUpdatedAt:     e.LastUpdatedAt,
		LastUpdatedBy:     e.LastUpdatedBy,
	}
}
