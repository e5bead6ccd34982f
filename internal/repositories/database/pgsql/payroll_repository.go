package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPayrollRepository struct {
	BaseRepository
}

// newPgxPayrollRepository creates a new repository for payroll records.
func newPgxPayrollRepository(pool *pgxpool.Pool) portsrepo.PayrollRepositoryFacade {
	return &PgxPayrollRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PayrollRepositoryFacade = (*PgxPayrollRepository)(nil)

// SavePayrollRecord implements portsrepo.PayrollRepositoryFacade. A record that
// already exists for (company, period, employee) is left as it is.
func (r *PgxPayrollRepository) SavePayrollRecord(ctx context.Context, rec domain.PayrollRecord) (bool, error) {
	query := `
		INSERT INTO payroll_records (record_id, company_id, employee_id, employee_name, period,
		    gross_salary, taxable_income, paye, rssb_employee, rssb_employer, net_salary,
		    payment_method, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (company_id, period, employee_id) DO NOTHING;
	`
	tag, err := r.Pool.Exec(ctx, query,
		rec.RecordID,
		rec.CompanyID,
		rec.EmployeeID,
		rec.EmployeeName,
		rec.Period,
		rec.GrossSalary,
		rec.TaxableIncome,
		rec.PAYE,
		rec.RSSBEmployee,
		rec.RSSBEmployer,
		rec.NetSalary,
		string(rec.PaymentMethod),
		rec.CreatedAt,
		rec.CreatedBy,
	)
	if err != nil {
		return false, apperrors.NewAppError(500, fmt.Sprintf("failed to save payroll record %s/%s", rec.Period, rec.EmployeeID), err)
	}
	return tag.RowsAffected() == 1, nil
}

const payrollRecordColumns = `record_id, company_id, employee_id, employee_name, period,
		gross_salary, taxable_income, paye, rssb_employee, rssb_employer, net_salary,
		payment_method, created_at, created_by`

// FindPayrollRecord implements portsrepo.PayrollRepositoryFacade.
func (r *PgxPayrollRepository) FindPayrollRecord(ctx context.Context, companyID, period, employeeID string) (*domain.PayrollRecord, error) {
	query := `SELECT ` + payrollRecordColumns + `
		FROM payroll_records
		WHERE company_id = $1 AND period = $2 AND employee_id = $3;`
	rec, err := scanPayrollRecord(r.Pool.QueryRow(ctx, query, companyID, period, employeeID))
	if err != nil {
		return nil, rowError(err, fmt.Sprintf("find payroll record %s/%s", period, employeeID))
	}
	return &rec, nil
}

// ListPayrollRecords implements portsrepo.PayrollRepositoryFacade.
func (r *PgxPayrollRepository) ListPayrollRecords(ctx context.Context, companyID, period string) ([]domain.PayrollRecord, error) {
	query := `SELECT ` + payrollRecordColumns + `
		FROM payroll_records
		WHERE company_id = $1 AND ($2 = '' OR period = $2)
		ORDER BY period, employee_id;`
	rows, err := r.Pool.Query(ctx, query, companyID, period)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list payroll records for company "+companyID, err)
	}
	defer rows.Close()

	recs := make([]domain.PayrollRecord, 0)
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payroll record row", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payroll record rows", err)
	}
	return recs, nil
}

func scanPayrollRecord(row pgx.Row) (domain.PayrollRecord, error) {
	var rec domain.PayrollRecord
	var method string
	err := row.Scan(
		&rec.RecordID,
		&rec.CompanyID,
		&rec.EmployeeID,
		&rec.EmployeeName,
		&rec.Period,
		&rec.GrossSalary,
		&rec.TaxableIncome,
		&rec.PAYE,
		&rec.RSSBEmployee,
		&rec.RSSBEmployer,
		&rec.NetSalary,
		&method,
		&rec.CreatedAt,
		&rec.CreatedBy,
	)
	rec.PaymentMethod = domain.PaymentMethod(method)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, err
}
