package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// CreateFiscalPeriodRequest defines the data needed to define a fiscal period.
type CreateFiscalPeriodRequest struct {
	Name      string              `json:"name" binding:"required,max=64"`
	StartDate time.Time           `json:"startDate" binding:"required"`
	EndDate   time.Time           `json:"endDate" binding:"required"`
	Status    domain.PeriodStatus `json:"status" binding:"omitempty,oneof=OPEN CLOSED"` // Defaults to OPEN
}

// FiscalPeriodResponse defines the data returned for a fiscal period.
type FiscalPeriodResponse struct {
	PeriodID  string              `json:"periodID"`
	Name      string              `json:"name"`
	StartDate time.Time           `json:"startDate"`
	EndDate   time.Time           `json:"endDate"`
	Status    domain.PeriodStatus `json:"status"`
}

// ToFiscalPeriodResponse converts a domain.FiscalPeriod to its DTO.
func ToFiscalPeriodResponse(p *domain.FiscalPeriod) FiscalPeriodResponse {
	return FiscalPeriodResponse{
		PeriodID:  p.PeriodID,
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    p.Status,
	}
}

// ToListFiscalPeriodResponse converts a slice of periods.
func ToListFiscalPeriodResponse(periods []domain.FiscalPeriod) []FiscalPeriodResponse {
	res := make([]FiscalPeriodResponse, len(periods))
	for i := range periods {
		res[i] = ToFiscalPeriodResponse(&periods[i])
	}
	return res
}
