package domain

import "time"

// PeriodStatus indicates whether postings may land in a fiscal period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// FiscalPeriod is an accounting date range that is either open or locked.
type FiscalPeriod struct {
	PeriodID  string       `json:"periodID"`
	TenantID  string       `json:"tenantID"`
	Name      string       `json:"name"`
	StartDate time.Time    `json:"startDate"` // Inclusive
	EndDate   time.Time    `json:"endDate"`   // Inclusive
	Status    PeriodStatus `json:"status"`
	AuditFields
}

// Contains reports whether date falls inside the period.
func (p FiscalPeriod) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(p.StartDate)) && !d.After(DateOnly(p.EndDate))
}

// Overlaps reports whether the two periods share at least one day.
func (p FiscalPeriod) Overlaps(other FiscalPeriod) bool {
	return !DateOnly(p.EndDate).Before(DateOnly(other.StartDate)) &&
		!DateOnly(other.EndDate).Before(DateOnly(p.StartDate))
}
