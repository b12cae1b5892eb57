package mapping

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelAuditFields converts audit fields for storage. The two structs differ only in tags.
func ToModelAuditFields(d domain.AuditFields) models.AuditFields {
	return models.AuditFields(d)
}

// ToDomainAuditFields returns audit timestamps in UTC, whatever zone the driver scanned them in.
func ToDomainAuditFields(m models.AuditFields) domain.AuditFields {
	d := domain.AuditFields(m)
	d.CreatedAt = d.CreatedAt.UTC()
	d.LastUpdatedAt = d.LastUpdatedAt.UTC()
	return d
}
