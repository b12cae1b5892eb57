package models

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

// Account represents a row of the accounts table.
type Account struct {
	AccountID       string          `db:"account_id"`
	TenantID        string          `db:"tenant_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	Description     string          `db:"description"`
	AccountType     AccountType     `db:"account_type"`
	NormalBalance   string          `db:"normal_balance"`
	ParentAccountID *string         `db:"parent_account_id"` // Nullable
	SortOrder       int             `db:"sort_order"`
	OpeningBalance  decimal.Decimal `db:"opening_balance"`
	CurrentBalance  decimal.Decimal `db:"current_balance"`
	IsActive        bool            `db:"is_active"`
	AuditFields
}
