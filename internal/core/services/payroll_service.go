package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/SscSPs/statutory_ledger/internal/platform/config"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// payrollService implements the PayrollSvc interface
type payrollService struct {
	BaseService
	payrollRepo portsrepo.PayrollRepositoryFacade
	encoder     portssvc.EventEncoderSvc
	posting     portssvc.PostingSvc
	tax         config.TaxConfig
	validate    *validator.Validate
}

// NewPayrollService creates a new payroll service
func NewPayrollService(repo portsrepo.PayrollRepositoryFacade, encoder portssvc.EventEncoderSvc, posting portssvc.PostingSvc, tax config.TaxConfig, options ...BaseOption) portssvc.PayrollSvc {
	svc := &payrollService{
		BaseService: newBaseService(),
		payrollRepo: repo,
		encoder:     encoder,
		posting:     posting,
		tax:         tax,
		validate:    newValidator(),
	}
	for _, option := range options {
		option(&svc.BaseService)
	}
	return svc
}

var _ portssvc.PayrollSvc = (*payrollService)(nil)

// Calculate computes PAYE on the salary above the basic exemption and RSSB
// on the full gross for both sides.
func (s *payrollService) Calculate(gross decimal.Decimal) (domain.PayrollBreakdown, error) {
	if !gross.IsPositive() {
		return domain.PayrollBreakdown{}, apperrors.NewValidationError("grossSalary", fmt.Sprintf("must be greater than 0, got %s", gross))
	}
	places := s.tax.CurrencyDecimals
	taxable := gross.Sub(s.tax.PAYEBasicExemption)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	b := domain.PayrollBreakdown{
		GrossSalary:   gross,
		TaxableIncome: taxable,
		PAYE:          taxable.Mul(s.tax.PAYERate).Round(places),
		RSSBEmployee:  gross.Mul(s.tax.RSSBEmployeeRate).Round(places),
		RSSBEmployer:  gross.Mul(s.tax.RSSBEmployerRate).Round(places),
	}
	b.NetSalary = gross.Sub(b.PAYE).Sub(b.RSSBEmployee)
	return b, nil
}

func (s *payrollService) RunPayroll(ctx context.Context, companyID, period string, employees []domain.Employee, method domain.PaymentMethod, userID string) (*portssvc.PayrollRunResult, error) {
	errs := fieldErrors{}
	if companyID == "" {
		errs.add("companyID", "is required")
	}
	p, perr := domain.ParsePayrollPeriod(period)
	if perr != nil {
		errs.add("period", "%s", perr.Error())
	}
	if _, ok := domain.PaymentAccount(method); !ok {
		errs.add("paymentMethod", "unknown payment method %q", method)
	}
	if len(employees) == 0 {
		errs.add("employees", "at least one employee is required")
	}
	seen := make(map[string]struct{}, len(employees))
	for i, emp := range employees {
		if err := s.validate.Struct(emp); err != nil {
			errs.add(fmt.Sprintf("employees[%d]", i), "%s", validateStruct(s.validate, emp).Error())
			continue
		}
		if _, dup := seen[emp.EmployeeID]; dup {
			errs.add(fmt.Sprintf("employees[%d].employeeID", i), "duplicate employee %s", emp.EmployeeID)
		}
		seen[emp.EmployeeID] = struct{}{}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	sorted := make([]domain.Employee, len(employees))
	copy(sorted, employees)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EmployeeID < sorted[j].EmployeeID })

	result := &portssvc.PayrollRunResult{
		Period:       period,
		Records:      make([]domain.PayrollRecord, 0, len(sorted)),
		TotalGross:   decimal.Zero,
		TotalPAYE:    decimal.Zero,
		TotalRSSB:    decimal.Zero,
		TotalNetPaid: decimal.Zero,
	}
	for _, emp := range sorted {
		rec, posted, err := s.payEmployee(ctx, companyID, period, p, emp, method, userID)
		if err != nil {
			s.LogError(ctx, err, "Payroll run stopped",
				slog.String("company_id", companyID),
				slog.String("period", period),
				slog.String("employee_id", emp.EmployeeID))
			return nil, err
		}
		if posted {
			result.Posted++
		} else {
			result.Skipped++
		}
		result.Records = append(result.Records, rec)
		result.TotalGross = result.TotalGross.Add(rec.GrossSalary)
		result.TotalPAYE = result.TotalPAYE.Add(rec.PAYE)
		result.TotalRSSB = result.TotalRSSB.Add(rec.RSSBEmployee).Add(rec.RSSBEmployer)
		result.TotalNetPaid = result.TotalNetPaid.Add(rec.NetSalary)
	}

	s.LogInfo(ctx, "Payroll run completed",
		slog.String("company_id", companyID),
		slog.String("period", period),
		slog.Int("posted", result.Posted),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

// payEmployee posts one employee's salary and stores its record. Both writes
// are keyed on (period, employee), so a rerun after a partial failure
// completes the missing half without duplicating the other. The record is
// saved after the posting, so a stored record is returned as it is.
func (s *payrollService) payEmployee(ctx context.Context, companyID, period string, p domain.Period, emp domain.Employee, method domain.PaymentMethod, userID string) (domain.PayrollRecord, bool, error) {
	stored, err := s.storedRecord(ctx, companyID, period, emp.EmployeeID)
	if err != nil {
		return domain.PayrollRecord{}, false, err
	}
	if stored != nil {
		if !stored.GrossSalary.Equal(emp.GrossSalary) {
			s.LogWarn(ctx, "Payroll already run for employee, ignoring changed gross salary",
				slog.String("period", period),
				slog.String("employee_id", emp.EmployeeID),
				slog.String("stored_gross", stored.GrossSalary.String()),
				slog.String("requested_gross", emp.GrossSalary.String()))
		}
		return *stored, false, nil
	}

	b, err := s.Calculate(emp.GrossSalary)
	if err != nil {
		return domain.PayrollRecord{}, false, err
	}

	ev := domain.PayrollEvent{
		EventHeader: domain.EventHeader{
			CompanyID:   companyID,
			Date:        p.End,
			Reference:   "PAYROLL-" + period,
			Description: fmt.Sprintf("Salary %s - %s", period, employeeLabel(emp)),
			SourceID:    domain.PayrollSourceID(period, emp.EmployeeID),
			PartyID:     emp.EmployeeID,
			PartyName:   emp.Name,
			CreatedBy:   userID,
		},
		GrossSalary:   b.GrossSalary,
		PAYE:          b.PAYE,
		RSSBEmployee:  b.RSSBEmployee,
		RSSBEmployer:  b.RSSBEmployer,
		NetSalary:     b.NetSalary,
		PaymentMethod: method,
	}
	tx, err := s.encoder.Encode(ev)
	if err != nil {
		return domain.PayrollRecord{}, false, err
	}
	res, err := s.posting.Post(ctx, tx)
	if err != nil {
		return domain.PayrollRecord{}, false, err
	}

	rec, err := domain.NewPayrollRecord(s.NewID(), companyID, emp, period, b, method, s.Now())
	if err != nil {
		return domain.PayrollRecord{}, false, err
	}
	rec.CreatedBy = userID
	inserted, err := s.payrollRepo.SavePayrollRecord(ctx, rec)
	if err != nil {
		return domain.PayrollRecord{}, false, fmt.Errorf("failed to save payroll record: %w", err)
	}
	if !inserted {
		// Another run stored the record between the lookup and the save.
		stored, err = s.storedRecord(ctx, companyID, period, emp.EmployeeID)
		if err != nil || stored == nil {
			return domain.PayrollRecord{}, false, fmt.Errorf("failed to reload payroll record %s/%s: %w", period, emp.EmployeeID, err)
		}
		return *stored, false, nil
	}
	return rec, !res.Skipped(), nil
}

// storedRecord returns nil without error when no record exists.
func (s *payrollService) storedRecord(ctx context.Context, companyID, period, employeeID string) (*domain.PayrollRecord, error) {
	rec, err := s.payrollRepo.FindPayrollRecord(ctx, companyID, period, employeeID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load payroll record: %w", err)
	}
	return rec, nil
}

func employeeLabel(emp domain.Employee) string {
	if emp.Name != "" {
		return emp.Name
	}
	return emp.EmployeeID
}

func (s *payrollService) ListPayrollRecords(ctx context.Context, companyID, period string) ([]domain.PayrollRecord, error) {
	if period != "" {
		if _, err := domain.ParsePayrollPeriod(period); err != nil {
			return nil, apperrors.NewValidationError("period", err.Error())
		}
	}
	recs, err := s.payrollRepo.ListPayrollRecords(ctx, companyID, period)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payroll records", slog.String("company_id", companyID))
		return nil, err
	}
	return recs, nil
}
