package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/SscSPs/statutory_ledger/internal/platform/config"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingSvc interface. Every report is
// recomputed from the ledger; nothing derived is cached.
type reportingService struct {
	BaseService
	ledgerRepo portsrepo.LedgerReader
	filingRepo portsrepo.TaxFilingRepositoryFacade
	chart      *domain.ChartOfAccounts
	tax        config.TaxConfig
}

// NewReportingService creates a new reporting service
func NewReportingService(ledger portsrepo.LedgerReader, filings portsrepo.TaxFilingRepositoryFacade, chart *domain.ChartOfAccounts, tax config.TaxConfig, options ...BaseOption) portssvc.ReportingSvc {
	svc := &reportingService{
		BaseService: newBaseService(),
		ledgerRepo:  ledger,
		filingRepo:  filings,
		chart:       chart,
		tax:         tax,
	}
	for _, option := range options {
		option(&svc.BaseService)
	}
	return svc
}

// Ensure reportingService implements the ReportingSvc interface
var _ portssvc.ReportingSvc = (*reportingService)(nil)

func (s *reportingService) entries(ctx context.Context, companyID string, from, to *time.Time, codes ...string) ([]domain.LedgerEntry, error) {
	if companyID == "" {
		return nil, apperrors.NewValidationError("companyID", "is required")
	}
	entries, err := s.ledgerRepo.ListEntries(ctx, companyID, portsrepo.EntryFilter{From: from, To: to, AccountCodes: codes})
	if err != nil {
		s.LogError(ctx, err, "Failed to read ledger for report", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return entries, nil
}

// TrialBalance generates a trial balance report as of a specific date
func (s *reportingService) TrialBalance(ctx context.Context, companyID string, asOf time.Time) (*domain.TrialBalance, error) {
	asOf = domain.DateOnly(asOf)
	entries, err := s.entries(ctx, companyID, nil, &asOf)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]*domain.TrialBalanceRow)
	for _, e := range entries {
		row, ok := byCode[e.AccountCode]
		if !ok {
			acc, _ := s.chart.Lookup(e.AccountCode)
			row = &domain.TrialBalanceRow{
				AccountCode: e.AccountCode,
				AccountName: acc.Name,
				Category:    acc.Category,
				DebitTotal:  decimal.Zero,
				CreditTotal: decimal.Zero,
			}
			byCode[e.AccountCode] = row
		}
		row.DebitTotal = row.DebitTotal.Add(e.Debit)
		row.CreditTotal = row.CreditTotal.Add(e.Credit)
	}

	tb := &domain.TrialBalance{
		CompanyID:    companyID,
		AsOf:         asOf,
		Rows:         make([]domain.TrialBalanceRow, 0, len(byCode)),
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	for _, row := range byCode {
		row.Balance = row.DebitTotal.Sub(row.CreditTotal)
		tb.Rows = append(tb.Rows, *row)
		tb.TotalDebits = tb.TotalDebits.Add(row.DebitTotal)
		tb.TotalCredits = tb.TotalCredits.Add(row.CreditTotal)
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].AccountCode < tb.Rows[j].AccountCode })

	if !tb.TotalDebits.Equal(tb.TotalCredits) {
		// Every posting is balanced, so this only happens if the store was written around the engine.
		s.LogWarn(ctx, "Trial balance does not close",
			slog.String("company_id", companyID),
			slog.String("debits", tb.TotalDebits.String()),
			slog.String("credits", tb.TotalCredits.String()))
	}
	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("company_id", companyID),
		slog.String("asOf", asOf.Format(time.DateOnly)),
		slog.Int("row_count", len(tb.Rows)))
	return tb, nil
}

func (s *reportingService) AccountBalance(ctx context.Context, companyID, accountCode string, asOf time.Time) (*domain.AccountBalance, error) {
	acc, ok := s.chart.Lookup(accountCode)
	if !ok {
		return nil, &apperrors.UnknownAccountError{Code: accountCode}
	}
	asOf = domain.DateOnly(asOf)
	entries, err := s.entries(ctx, companyID, nil, &asOf, accountCode)
	if err != nil {
		return nil, err
	}
	debits, credits := sumSides(entries)
	bal := &domain.AccountBalance{
		CompanyID:   companyID,
		AccountCode: acc.Code,
		AccountName: acc.Name,
		Category:    acc.Category,
		AsOf:        asOf,
		DebitTotal:  debits,
		CreditTotal: credits,
		Balance:     debits.Sub(credits),
	}
	bal.NormalBalance = bal.Balance
	if !acc.Category.IsDebitNormal() {
		bal.NormalBalance = bal.Balance.Neg()
	}
	return bal, nil
}

// VATReturn nets VAT charged on invoices against VAT recoverable on
// purchases. Settlements with the tax authority and other postings that
// touch the VAT accounts are left out.
func (s *reportingService) VATReturn(ctx context.Context, companyID string, period domain.Period) (*domain.VATReturn, error) {
	entries, err := s.entries(ctx, companyID, &period.Start, &period.End, domain.AccountVATPayable, domain.AccountVATInput)
	if err != nil {
		return nil, err
	}
	sales, purchases := decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch {
		case e.AccountCode == domain.AccountVATPayable && fromSource(e, domain.SourceInvoice):
			sales = sales.Add(e.Credit).Sub(e.Debit)
		case e.AccountCode == domain.AccountVATInput && fromSource(e, domain.SourcePurchase):
			purchases = purchases.Add(e.Debit).Sub(e.Credit)
		}
	}
	r := &domain.VATReturn{
		CompanyID:     companyID,
		Period:        period,
		SalesVAT:      sales,
		PurchaseVAT:   purchases,
		NetVATPayable: sales.Sub(purchases),
	}
	s.LogInfo(ctx, "VAT return computed",
		slog.String("company_id", companyID),
		slog.String("period", period.String()),
		slog.String("net_vat_payable", r.NetVATPayable.String()))
	return r, nil
}

// PAYEReturn traces withholding per employee from payroll postings and their reversals.
func (s *reportingService) PAYEReturn(ctx context.Context, companyID string, period domain.Period) (*domain.PAYEReturn, error) {
	entries, err := s.entries(ctx, companyID, &period.Start, &period.End)
	if err != nil {
		return nil, err
	}

	lines := make(map[string]*domain.PAYEEmployeeLine)
	r := &domain.PAYEReturn{CompanyID: companyID, Period: period, TotalPAYE: decimal.Zero, TotalRSSB: decimal.Zero}
	for _, e := range entries {
		if !fromSource(e, domain.SourcePayroll) {
			continue
		}
		line, ok := lines[e.PartyID]
		if !ok {
			line = &domain.PAYEEmployeeLine{
				EmployeeID:    e.PartyID,
				SalaryExpense: decimal.Zero,
				PAYE:          decimal.Zero,
				RSSB:          decimal.Zero,
				NetPaid:       decimal.Zero,
			}
			lines[e.PartyID] = line
		}
		credit := e.Credit.Sub(e.Debit)
		switch e.AccountCode {
		case domain.AccountPAYEPayable:
			line.PAYE = line.PAYE.Add(credit)
			r.TotalPAYE = r.TotalPAYE.Add(credit)
		case domain.AccountRSSBPayable:
			line.RSSB = line.RSSB.Add(credit)
			r.TotalRSSB = r.TotalRSSB.Add(credit)
		case domain.AccountSalariesAndWages:
			line.SalaryExpense = line.SalaryExpense.Sub(credit)
		case domain.AccountPettyCash, domain.AccountBank, domain.AccountMobileMoney:
			line.NetPaid = line.NetPaid.Add(credit)
		}
	}

	r.Employees = make([]domain.PAYEEmployeeLine, 0, len(lines))
	for _, l := range lines {
		r.Employees = append(r.Employees, *l)
	}
	sort.Slice(r.Employees, func(i, j int) bool { return r.Employees[i].EmployeeID < r.Employees[j].EmployeeID })

	s.LogInfo(ctx, "PAYE return computed",
		slog.String("company_id", companyID),
		slog.String("period", period.String()),
		slog.Int("employees", len(r.Employees)))
	return r, nil
}

// fromSource matches postings of type st and reversals of them. A reversal's
// source id is the reversed posting's key, "company/type/id".
func fromSource(e domain.LedgerEntry, st domain.SourceType) bool {
	switch e.SourceType {
	case st:
		return true
	case domain.SourceReversal:
		prefix := domain.IdempotencyKey{CompanyID: e.CompanyID, SourceType: st}.String()
		return strings.HasPrefix(e.SourceID, prefix)
	default:
		return false
	}
}

// CITReturn computes corporate income tax on the calendar year's profit.
// Turnover counts credits to revenue and expenses count debits to expense
// accounts, so closing entries leave both alone. Reversals take back what
// the reversed posting counted.
func (s *reportingService) CITReturn(ctx context.Context, companyID string, year int) (*domain.CITReturn, error) {
	if year < 1 {
		return nil, apperrors.NewValidationError("year", fmt.Sprintf("must be positive, got %d", year))
	}
	p := domain.YearPeriod(year)
	entries, err := s.entries(ctx, companyID, &p.Start, &p.End)
	if err != nil {
		return nil, err
	}

	turnover, expenses := decimal.Zero, decimal.Zero
	for _, e := range entries {
		acc, ok := s.chart.Lookup(e.AccountCode)
		if !ok {
			continue
		}
		reversal := e.SourceType == domain.SourceReversal
		switch {
		case acc.Category == domain.Revenue && reversal:
			turnover = turnover.Sub(e.Debit)
		case acc.Category == domain.Revenue:
			turnover = turnover.Add(e.Credit)
		case acc.Category == domain.Expense && reversal:
			expenses = expenses.Sub(e.Credit)
		case acc.Category == domain.Expense:
			expenses = expenses.Add(e.Debit)
		}
	}
	profit := turnover.Sub(expenses)
	payable := decimal.Zero
	if profit.IsPositive() {
		payable = profit.Mul(s.tax.CITRate).Round(s.tax.CurrencyDecimals)
	}
	r := &domain.CITReturn{
		CompanyID:     companyID,
		Year:          year,
		Turnover:      turnover,
		TotalExpenses: expenses,
		Profit:        profit,
		TaxRate:       s.tax.CITRate,
		CITPayable:    payable,
	}
	s.LogInfo(ctx, "CIT return computed",
		slog.String("company_id", companyID),
		slog.Int("year", year),
		slog.String("profit", profit.String()),
		slog.String("cit_payable", payable.String()))
	return r, nil
}

func (s *reportingService) FileQITReturn(ctx context.Context, companyID string, year, quarter int, estimatedIncome, taxRate decimal.Decimal, userID string) (*domain.QITReturn, error) {
	errs := fieldErrors{}
	if companyID == "" {
		errs.add("companyID", "is required")
	}
	if year < 1 {
		errs.add("year", "must be positive, got %d", year)
	}
	if estimatedIncome.IsNegative() {
		errs.add("estimatedIncome", "must not be negative, got %s", estimatedIncome)
	}
	if taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		errs.add("taxRate", "must be at least 0 and less than 1, got %s", taxRate)
	}
	due, err := domain.QuarterDueDate(year, quarter)
	if err != nil {
		errs.add("quarter", "%s", err.Error())
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if taxRate.IsZero() {
		taxRate = s.tax.QITRate
	}
	r := domain.QITReturn{
		CompanyID:       companyID,
		Year:            year,
		Quarter:         quarter,
		EstimatedIncome: estimatedIncome,
		TaxRate:         taxRate,
		TaxDue:          estimatedIncome.Mul(taxRate).Round(s.tax.CurrencyDecimals),
		DueDate:         due,
		FiledAt:         s.Now(),
		FiledBy:         userID,
	}
	if err := s.filingRepo.SaveQITReturn(ctx, r); err != nil {
		s.LogError(ctx, err, "Failed to save QIT return",
			slog.String("company_id", companyID), slog.Int("year", year), slog.Int("quarter", quarter))
		return nil, fmt.Errorf("failed to save QIT return: %w", err)
	}
	s.LogInfo(ctx, "QIT return filed",
		slog.String("company_id", companyID),
		slog.Int("year", year),
		slog.Int("quarter", quarter),
		slog.String("tax_due", r.TaxDue.String()))
	return &r, nil
}

func (s *reportingService) QITReturn(ctx context.Context, companyID string, year, quarter int) (*domain.QITReturn, error) {
	if quarter < 1 || quarter > 4 {
		return nil, apperrors.NewValidationError("quarter", fmt.Sprintf("must be between 1 and 4, got %d", quarter))
	}
	r, err := s.filingRepo.FindQITReturn(ctx, companyID, year, quarter)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no QIT return filed for %d Q%d", apperrors.ErrNotFound, year, quarter)
		}
		s.LogError(ctx, err, "Failed to load QIT return", slog.String("company_id", companyID))
		return nil, err
	}
	return r, nil
}
