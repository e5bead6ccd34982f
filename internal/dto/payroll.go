package dto

import (
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculatePayrollRequest asks for the breakdown of one gross salary.
type CalculatePayrollRequest struct {
	GrossSalary decimal.Decimal `json:"grossSalary"`
}

// EmployeeRequest is one employee of a payroll run.
type EmployeeRequest struct {
	EmployeeID  string          `json:"employeeID" binding:"required"`
	Name        string          `json:"name"`
	GrossSalary decimal.Decimal `json:"grossSalary"`
}

// RunPayrollRequest defines the data needed to run payroll for a month.
type RunPayrollRequest struct {
	Period        string               `json:"period" binding:"required"` // YYYY-MM
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" binding:"required"`
	Employees     []EmployeeRequest    `json:"employees" binding:"required,min=1,dive"`
}

// ToEmployees converts the request employees to domain employees.
func (r RunPayrollRequest) ToEmployees() []domain.Employee {
	out := make([]domain.Employee, len(r.Employees))
	for i, e := range r.Employees {
		out[i] = domain.Employee{EmployeeID: e.EmployeeID, Name: e.Name, GrossSalary: e.GrossSalary}
	}
	return out
}

// ListPayrollRecordsParams filters payroll records by period.
type ListPayrollRecordsParams struct {
	Period string `form:"period"` // Optional, YYYY-MM
}
