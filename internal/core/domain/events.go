package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostingCompleted is emitted once an entry has been committed to the ledger.
type PostingCompleted struct {
	TenantID        string          `json:"tenantID"`
	EntryID         string          `json:"entryID"`
	EntryNumber     int64           `json:"entryNumber"`
	OriginalEntryID *string         `json:"originalEntryID,omitempty"` // Set when the posting is a reversal
	AccountIDs      []string        `json:"accountIDs"`                // Ascending
	NetAmount       decimal.Decimal `json:"netAmount"`                 // Total debit of the entry
	PostedAt        time.Time       `json:"postedAt"`
	PostedBy        string          `json:"postedBy"`
}
