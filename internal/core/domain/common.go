package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // Actor ID
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // Actor ID
}

// DateRange is an inclusive range of calendar dates. A nil bound is open.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	d = DateOnly(d)
	if r.From != nil && d.Before(DateOnly(*r.From)) {
		return false
	}
	if r.To != nil && d.After(DateOnly(*r.To)) {
		return false
	}
	return true
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
