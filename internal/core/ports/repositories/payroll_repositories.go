package repositories

import (
	"context"

	"github.com/SscSPs/statutory_ledger/internal/core/domain"
)

// PayrollRepositoryFacade stores computed payroll records.
type PayrollRepositoryFacade interface {
	// SavePayrollRecord stores rec unless a record for the same company, period
	// and employee exists. It reports whether rec was inserted.
	SavePayrollRecord(ctx context.Context, rec domain.PayrollRecord) (bool, error)

	// FindPayrollRecord returns apperrors.ErrNotFound when the employee has no
	// record for the period.
	FindPayrollRecord(ctx context.Context, companyID, period, employeeID string) (*domain.PayrollRecord, error)

	// ListPayrollRecords returns the company's records for a "YYYY-MM" period,
	// or every period when period is empty, ordered by period then employee.
	ListPayrollRecords(ctx context.Context, companyID, period string) ([]domain.PayrollRecord, error)
}
