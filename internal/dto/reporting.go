package dto

import (
	"time"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AsOfParams selects the cut-off day of a balance report.
type AsOfParams struct {
	AsOf Date `form:"asOf"` // Optional, defaults to today
}

// PeriodParams selects a reporting period. Either From and To, or Year with
// one of Quarter or Month.
type PeriodParams struct {
	From    Date `form:"from"`
	To      Date `form:"to"`
	Year    int  `form:"year" binding:"omitempty,min=1900,max=9999"`
	Quarter int  `form:"quarter" binding:"omitempty,min=1,max=4"`
	Month   int  `form:"month" binding:"omitempty,min=1,max=12"`
}

// ToPeriod resolves the params into a domain.Period.
func (p PeriodParams) ToPeriod() (domain.Period, error) {
	switch {
	case !p.From.IsZero() || !p.To.IsZero():
		if p.From.IsZero() || p.To.IsZero() {
			return domain.Period{}, apperrors.NewValidationError("period", "from and to must be given together")
		}
		period, err := domain.NewPeriod(p.From.Time, p.To.Time)
		if err != nil {
			return domain.Period{}, apperrors.NewValidationError("period", err.Error())
		}
		return period, nil
	case p.Year == 0:
		return domain.Period{}, apperrors.NewValidationError("period", "give from and to, or year with quarter or month")
	case p.Quarter != 0 && p.Month != 0:
		return domain.Period{}, apperrors.NewValidationError("period", "quarter and month are mutually exclusive")
	case p.Quarter != 0:
		period, err := domain.QuarterPeriod(p.Year, p.Quarter)
		if err != nil {
			return domain.Period{}, apperrors.NewValidationError("quarter", err.Error())
		}
		return period, nil
	case p.Month != 0:
		return domain.MonthPeriod(p.Year, time.Month(p.Month)), nil
	default:
		return domain.YearPeriod(p.Year), nil
	}
}

// YearParams selects a tax year.
type YearParams struct {
	Year int `form:"year" binding:"required,min=1900,max=9999"`
}

// QuarterParams selects a tax quarter.
type QuarterParams struct {
	Year    int `form:"year" binding:"required,min=1900,max=9999"`
	Quarter int `form:"quarter" binding:"required,min=1,max=4"`
}

// FileQITRequest defines the data needed to file a quarterly income tax estimate.
type FileQITRequest struct {
	Year            int             `json:"year" binding:"required,min=1900,max=9999"`
	Quarter         int             `json:"quarter" binding:"required,min=1,max=4"`
	EstimatedIncome decimal.Decimal `json:"estimatedIncome"`
	TaxRate         decimal.Decimal `json:"taxRate"` // Optional, zero uses the configured rate
}
