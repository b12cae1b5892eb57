package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalBalance returns the side on which balances of this type are positive.
func (t AccountType) NormalBalance() BalanceSide {
	if t == Asset || t == Expense {
		return Debit
	}
	return Credit
}

// BalanceSide is either DEBIT or CREDIT.
type BalanceSide string

const (
	Debit  BalanceSide = "DEBIT"
	Credit BalanceSide = "CREDIT"
)

// Account represents a node of the chart of accounts.
type Account struct {
	AccountID       string          `json:"accountID"`                 // Primary Key (UUID)
	TenantID        string          `json:"tenantID"`                  // Owning tenant
	Code            string          `json:"code"`                      // Unique per tenant
	Name            string          `json:"name"`                      // Display name
	Description     string          `json:"description"`               // Optional
	AccountType     AccountType     `json:"accountType"`               // ASSET, LIABILITY, etc.
	NormalBalance   BalanceSide     `json:"normalBalance"`             // Derived from AccountType
	ParentAccountID *string         `json:"parentAccountID,omitempty"` // Same tenant, acyclic
	SortOrder       int             `json:"sortOrder"`                 // Sibling ordering before code
	OpeningBalance  decimal.Decimal `json:"openingBalance"`            // Signed in the normal-balance direction
	CurrentBalance  decimal.Decimal `json:"currentBalance"`            // Written only by posting
	IsActive        bool            `json:"isActive"`
	AuditFields
}

// AccountNode is an account placed in the chart-of-accounts forest.
type AccountNode struct {
	Account         Account        `json:"account"`
	ChildCount      int            `json:"childCount"`      // Direct children
	DescendantCount int            `json:"descendantCount"` // All accounts below this node
	Children        []*AccountNode `json:"children"`
}
