package services

import (
	"context"

	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PayrollRunResult summarises one payroll run.
type PayrollRunResult struct {
	Period       string                 `json:"period"`
	Records      []domain.PayrollRecord `json:"records"`
	Posted       int                    `json:"posted"`
	Skipped      int                    `json:"skipped"`
	TotalGross   decimal.Decimal        `json:"totalGross"`
	TotalPAYE    decimal.Decimal        `json:"totalPAYE"`
	TotalRSSB    decimal.Decimal        `json:"totalRSSB"`
	TotalNetPaid decimal.Decimal        `json:"totalNetPaid"`
}

// PayrollSvc computes salaries and posts payroll runs.
type PayrollSvc interface {
	// Calculate applies the configured rates to one gross salary.
	Calculate(gross decimal.Decimal) (domain.PayrollBreakdown, error)

	// RunPayroll computes, stores and posts every employee's salary for a "YYYY-MM" period.
	// Running the same period again posts nothing new.
	RunPayroll(ctx context.Context, companyID, period string, employees []domain.Employee, method domain.PaymentMethod, userID string) (*PayrollRunResult, error)

	ListPayrollRecords(ctx context.Context, companyID, period string) ([]domain.PayrollRecord, error)
}
