package mapping

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelLedgerRow converts a domain LedgerRow to a model LedgerRow
func ToModelLedgerRow(d domain.LedgerRow) models.LedgerRow {
	return models.LedgerRow{
		RowID:               d.RowID,
		TenantID:            d.TenantID,
		EntryID:             d.EntryID,
		EntryNumber:         d.EntryNumber,
		LineID:              d.LineID,
		LineNumber:          d.LineNumber,
		AccountID:           d.AccountID,
		EntryDate:           d.EntryDate,
		DebitAmount:         d.DebitAmount,
		CreditAmount:        d.CreditAmount,
		RunningBalanceAfter: d.RunningBalanceAfter,
		CreatedAt:           d.CreatedAt,
	}
}

// ToDomainLedgerRow converts a model LedgerRow to a domain LedgerRow
func ToDomainLedgerRow(m models.LedgerRow) domain.LedgerRow {
	return domain.LedgerRow{
		RowID:               m.RowID,
		TenantID:            m.TenantID,
		EntryID:             m.EntryID,
		EntryNumber:         m.EntryNumber,
		LineID:              m.LineID,
		LineNumber:          m.LineNumber,
		AccountID:           m.AccountID,
		EntryDate:           domain.DateOnly(m.EntryDate),
		DebitAmount:         m.DebitAmount,
		CreditAmount:        m.CreditAmount,
		RunningBalanceAfter: m.RunningBalanceAfter,
		CreatedAt:           m.CreatedAt,
	}
}
