package mapping

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelFiscalPeriod converts a domain FiscalPeriod to a model FiscalPeriod
func ToModelFiscalPeriod(d domain.FiscalPeriod) models.FiscalPeriod {
	return models.FiscalPeriod{
		PeriodID:    d.PeriodID,
		TenantID:    d.TenantID,
		Name:        d.Name,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Status:      string(d.Status),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFiscalPeriod converts a model FiscalPeriod to a domain FiscalPeriod
func ToDomainFiscalPeriod(m models.FiscalPeriod) domain.FiscalPeriod {
	return domain.FiscalPeriod{
		PeriodID:    m.PeriodID,
		TenantID:    m.TenantID,
		Name:        m.Name,
		StartDate:   domain.DateOnly(m.StartDate),
		EndDate:     domain.DateOnly(m.EndDate),
		Status:      domain.PeriodStatus(m.Status),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
