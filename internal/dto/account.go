package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required,max=32"`
	Name            string             `json:"name" binding:"required,max=255"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentAccountID *string            `json:"parentAccountID"` // Optional, use pointer for nullability
	OpeningBalance  decimal.Decimal    `json:"openingBalance"`  // Signed in the normal-balance direction
	Description     string             `json:"description"`     // Optional
	SortOrder       int                `json:"sortOrder"`       // Optional
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name            *string `json:"name"`            // Optional: New name
	Description     *string `json:"description"`     // Optional: New description
	ParentAccountID *string `json:"parentAccountID"` // Optional: New parent
	MoveToRoot      bool    `json:"moveToRoot"`      // Detach from the current parent
	SortOrder       *int    `json:"sortOrder"`       // Optional: New sort order
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	NormalBalance   domain.BalanceSide `json:"normalBalance"`
	ParentAccountID *string            `json:"parentAccountID,omitempty"`
	SortOrder       int                `json:"sortOrder"`
	Description     string             `json:"description"`
	OpeningBalance  decimal.Decimal    `json:"openingBalance"`
	CurrentBalance  decimal.Decimal    `json:"currentBalance"`
	IsActive        bool               `json:"isActive"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
	LastUpdatedAt   time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy   string             `json:"lastUpdatedBy"`
}

// AccountTreeNodeResponse is one node of the chart-of-accounts tree.
type AccountTreeNodeResponse struct {
	AccountResponse
	ChildCount      int                       `json:"childCount"`
	DescendantCount int                       `json:"descendantCount"`
	Children        []AccountTreeNodeResponse `json:"children"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		NormalBalance:   acc.NormalBalance,
		ParentAccountID: acc.ParentAccountID,
		SortOrder:       acc.SortOrder,
		Description:     acc.Description,
		OpeningBalance:  acc.OpeningBalance,
		CurrentBalance:  acc.CurrentBalance,
		IsActive:        acc.IsActive,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToAccountTreeResponse converts the account forest to its DTO form.
func ToAccountTreeResponse(nodes []*domain.AccountNode) []AccountTreeNodeResponse {
	res := make([]AccountTreeNodeResponse, len(nodes))
	for i, n := range nodes {
		res[i] = AccountTreeNodeResponse{
			AccountResponse: ToAccountResponse(&n.Account),
			ChildCount:      n.ChildCount,
			DescendantCount: n.DescendantCount,
			Children:        ToAccountTreeResponse(n.Children),
		}
	}
	return res
}

// AccountTreeParams defines query parameters for the account tree.
type AccountTreeParams struct {
	IncludeInactive bool `form:"includeInactive"`
}
