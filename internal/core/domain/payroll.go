package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the payroll view of a worker supplied by the HR collaborator.
type Employee struct {
	EmployeeID  string          `json:"employeeID" validate:"required"`
	Name        string          `json:"name"`
	GrossSalary decimal.Decimal `json:"grossSalary" validate:"gt=0"`
}

// PayrollBreakdown is the gross to net computation for one salary.
type PayrollBreakdown struct {
	GrossSalary   decimal.Decimal `json:"grossSalary"`
	TaxableIncome decimal.Decimal `json:"taxableIncome"`
	PAYE          decimal.Decimal `json:"paye"`
	RSSBEmployee  decimal.Decimal `json:"rssbEmployee"`
	RSSBEmployer  decimal.Decimal `json:"rssbEmployer"`
	NetSalary     decimal.Decimal `json:"netSalary"`
}

// Check verifies net = gross - paye - rssb_employee.
func (b PayrollBreakdown) Check() error {
	want := b.GrossSalary.Sub(b.PAYE).Sub(b.RSSBEmployee)
	if !want.Equal(b.NetSalary) {
		return fmt.Errorf("net salary %s does not equal gross %s - paye %s - rssb %s = %s",
			b.NetSalary, b.GrossSalary, b.PAYE, b.RSSBEmployee, want)
	}
	return nil
}

// EmployerCost is what the salary costs the company.
func (b PayrollBreakdown) EmployerCost() decimal.Decimal {
	return b.GrossSalary.Add(b.RSSBEmployer)
}

// PayrollRecord is a stored payroll computation for one employee and period ("YYYY-MM").
type PayrollRecord struct {
	RecordID     string `json:"recordID"`
	CompanyID    string `json:"companyID"`
	EmployeeID   string `json:"employeeID"`
	EmployeeName string `json:"employeeName"`
	Period       string `json:"period"`
	PayrollBreakdown
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CreatedAt     time.Time     `json:"createdAt"`
	CreatedBy     string        `json:"createdBy,omitempty"`
}

// NewPayrollRecord builds a record after checking the net salary invariant.
func NewPayrollRecord(recordID, companyID string, emp Employee, period string, b PayrollBreakdown, method PaymentMethod, now time.Time) (PayrollRecord, error) {
	if err := b.Check(); err != nil {
		return PayrollRecord{}, err
	}
	return PayrollRecord{
		RecordID:         recordID,
		CompanyID:        companyID,
		EmployeeID:       emp.EmployeeID,
		EmployeeName:     emp.Name,
		Period:           period,
		PayrollBreakdown: b,
		PaymentMethod:    method,
		CreatedAt:        now,
	}, nil
}

// PayrollSourceID is the idempotency source id of an employee's payroll for a period.
func PayrollSourceID(period, employeeID string) string {
	return period + ":" + employeeID
}
