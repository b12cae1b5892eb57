package mapping

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry. Lines are mapped separately.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	var postedBy *string
	if d.PostedBy != "" {
		postedBy = &d.PostedBy
	}
	return models.JournalEntry{
		EntryID:           d.EntryID,
		TenantID:          d.TenantID,
		EntryNumber:       d.EntryNumber,
		EntryDate:         d.EntryDate,
		Description:       d.Description,
		ReferenceNumber:   d.ReferenceNumber,
		Status:            models.JournalStatus(d.Status),
		TotalDebit:        d.TotalDebit,
		TotalCredit:       d.TotalCredit,
		OriginalEntryID:   d.OriginalEntryID,
		ReversedByEntryID: d.ReversedByEntryID,
		ReversalReason:    d.ReversalReason,
		PostedAt:          d.PostedAt,
		PostedBy:          postedBy,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry and its lines to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalLine) domain.JournalEntry {
	d := domain.JournalEntry{
		EntryID:           m.EntryID,
		TenantID:          m.TenantID,
		EntryNumber:       m.EntryNumber,
		EntryDate:         domain.DateOnly(m.EntryDate),
		Description:       m.Description,
		ReferenceNumber:   m.ReferenceNumber,
		Status:            domain.JournalStatus(m.Status),
		TotalDebit:        m.TotalDebit,
		TotalCredit:       m.TotalCredit,
		IsBalanced:        m.TotalDebit.Equal(m.TotalCredit),
		OriginalEntryID:   m.OriginalEntryID,
		ReversedByEntryID: m.ReversedByEntryID,
		ReversalReason:    m.ReversalReason,
		PostedAt:          m.PostedAt,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
	if m.PostedBy != nil {
		d.PostedBy = *m.PostedBy
	}
	d.Lines = make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		d.Lines[i] = ToDomainJournalLine(l)
	}
	return d
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:       d.LineID,
		EntryID:      d.EntryID,
		LineNumber:   d.LineNumber,
		AccountID:    d.AccountID,
		DebitAmount:  d.DebitAmount,
		CreditAmount: d.CreditAmount,
		CostCenterID: d.CostCenterID,
		Description:  d.Description,
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:       m.LineID,
		EntryID:      m.EntryID,
		LineNumber:   m.LineNumber,
		AccountID:    m.AccountID,
		DebitAmount:  m.DebitAmount,
		CreditAmount: m.CreditAmount,
		CostCenterID: m.CostCenterID,
		Description:  m.Description,
	}
}
