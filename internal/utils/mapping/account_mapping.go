package mapping

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		TenantID:        d.TenantID,
		Code:            d.Code,
		Name:            d.Name,
		Description:     d.Description,
		AccountType:     models.AccountType(d.AccountType),
		NormalBalance:   string(d.AccountType.NormalBalance()),
		ParentAccountID: d.ParentAccountID,
		SortOrder:       d.SortOrder,
		OpeningBalance:  d.OpeningBalance,
		CurrentBalance:  d.CurrentBalance,
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account.
// NormalBalance is derived from the type, the stored column only serves reporting queries.
func ToDomainAccount(m models.Account) domain.Account {
	typ := domain.AccountType(m.AccountType)
	return domain.Account{
		AccountID:       m.AccountID,
		TenantID:        m.TenantID,
		Code:            m.Code,
		Name:            m.Name,
		Description:     m.Description,
		AccountType:     typ,
		NormalBalance:   typ.NormalBalance(),
		ParentAccountID: m.ParentAccountID,
		SortOrder:       m.SortOrder,
		OpeningBalance:  m.OpeningBalance,
		CurrentBalance:  m.CurrentBalance,
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
