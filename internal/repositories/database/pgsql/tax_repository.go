package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTaxFilingRepository struct {
	BaseRepository
}

// newPgxTaxFilingRepository creates a new repository for filed tax returns.
func newPgxTaxFilingRepository(pool *pgxpool.Pool) portsrepo.TaxFilingRepositoryFacade {
	return &PgxTaxFilingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TaxFilingRepositoryFacade = (*PgxTaxFilingRepository)(nil)

// SaveQITReturn implements portsrepo.TaxFilingRepositoryFacade.
func (r *PgxTaxFilingRepository) SaveQITReturn(ctx context.Context, q domain.QITReturn) error {
	query := `
		INSERT INTO qit_returns (company_id, year, quarter, estimated_income, tax_rate, tax_due, due_date, filed_at, filed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (company_id, year, quarter) DO UPDATE
		SET estimated_income = EXCLUDED.estimated_income,
		    tax_rate = EXCLUDED.tax_rate,
		    tax_due = EXCLUDED.tax_due,
		    due_date = EXCLUDED.due_date,
		    filed_at = EXCLUDED.filed_at,
		    filed_by = EXCLUDED.filed_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		q.CompanyID, q.Year, q.Quarter, q.EstimatedIncome, q.TaxRate, q.TaxDue, q.DueDate, q.FiledAt, q.FiledBy)
	if err != nil {
		return apperrors.NewAppError(500, fmt.Sprintf("failed to save QIT return %d-Q%d", q.Year, q.Quarter), err)
	}
	return nil
}

// FindQITReturn implements portsrepo.TaxFilingRepositoryFacade.
func (r *PgxTaxFilingRepository) FindQITReturn(ctx context.Context, companyID string, year, quarter int) (*domain.QITReturn, error) {
	query := `
		SELECT company_id, year, quarter, estimated_income, tax_rate, tax_due, due_date, filed_at, filed_by
		FROM qit_returns
		WHERE company_id = $1 AND year = $2 AND quarter = $3;
	`
	var q domain.QITReturn
	err := r.Pool.QueryRow(ctx, query, companyID, year, quarter).Scan(
		&q.CompanyID,
		&q.Year,
		&q.Quarter,
		&q.EstimatedIncome,
		&q.TaxRate,
		&q.TaxDue,
		&q.DueDate,
		&q.FiledAt,
		&q.FiledBy,
	)
	if err != nil {
		return nil, rowError(err, fmt.Sprintf("find QIT return %d-Q%d", year, quarter))
	}
	q.DueDate = q.DueDate.UTC()
	q.FiledAt = q.FiledAt.UTC()
	return &q, nil
}
