package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is the per-account summary of a trial balance. Balance = DebitTotal - CreditTotal.
type TrialBalanceRow struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Category    AccountCategory `json:"category"`
	DebitTotal  decimal.Decimal `json:"debitTotal"`
	CreditTotal decimal.Decimal `json:"creditTotal"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalance holds the rows of accounts with activity up to AsOf, ordered by code.
type TrialBalance struct {
	CompanyID    string            `json:"companyID"`
	AsOf         time.Time         `json:"asOf"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"totalDebits"`
	TotalCredits decimal.Decimal   `json:"totalCredits"`
}

// AccountBalance is the position of a single account as of a date.
// NormalBalance is Balance expressed on the account's normal side (positive credit balance for liabilities).
type AccountBalance struct {
	CompanyID     string          `json:"companyID"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	Category      AccountCategory `json:"category"`
	AsOf          time.Time       `json:"asOf"`
	DebitTotal    decimal.Decimal `json:"debitTotal"`
	CreditTotal   decimal.Decimal `json:"creditTotal"`
	Balance       decimal.Decimal `json:"balance"`
	NormalBalance decimal.Decimal `json:"normalBalance"`
}

// VATReturn nets output VAT on invoices against input VAT on purchases.
type VATReturn struct {
	CompanyID     string          `json:"companyID"`
	Period        Period          `json:"period"`
	SalesVAT      decimal.Decimal `json:"salesVAT"`
	PurchaseVAT   decimal.Decimal `json:"purchaseVAT"`
	NetVATPayable decimal.Decimal `json:"netVATPayable"`
}

// PAYEEmployeeLine is one employee's withholding traced from payroll postings.
type PAYEEmployeeLine struct {
	EmployeeID    string          `json:"employeeID"`
	SalaryExpense decimal.Decimal `json:"salaryExpense"`
	PAYE          decimal.Decimal `json:"paye"`
	RSSB          decimal.Decimal `json:"rssb"`
	NetPaid       decimal.Decimal `json:"netPaid"`
}

// PAYEReturn totals payroll withholding for a period.
type PAYEReturn struct {
	CompanyID string             `json:"companyID"`
	Period    Period             `json:"period"`
	TotalPAYE decimal.Decimal    `json:"totalPAYE"`
	TotalRSSB decimal.Decimal    `json:"totalRSSB"`
	Employees []PAYEEmployeeLine `json:"employees"`
}

// CITReturn is the annual corporate income tax computation.
type CITReturn struct {
	CompanyID     string          `json:"companyID"`
	Year          int             `json:"year"`
	Turnover      decimal.Decimal `json:"turnover"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Profit        decimal.Decimal `json:"profit"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	CITPayable    decimal.Decimal `json:"citPayable"`
}

// QITReturn is a quarterly estimated income tax filing. It is not derived from the ledger.
type QITReturn struct {
	CompanyID       string          `json:"companyID"`
	Year            int             `json:"year"`
	Quarter         int             `json:"quarter"`
	EstimatedIncome decimal.Decimal `json:"estimatedIncome"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	TaxDue          decimal.Decimal `json:"taxDue"`
	DueDate         time.Time       `json:"dueDate"`
	FiledAt         time.Time       `json:"filedAt"`
	FiledBy         string          `json:"filedBy,omitempty"`
}
