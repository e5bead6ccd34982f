package pgsql

import (
	"context"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/statutory_ledger/internal/models"
	"github.com/SscSPs/statutory_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCapitalRepository struct {
	BaseRepository
}

// newPgxCapitalRepository creates a new repository for share capital, ownership and dividends.
func newPgxCapitalRepository(pool *pgxpool.Pool) portsrepo.CapitalRepositoryFacade {
	return &PgxCapitalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CapitalRepositoryFacade = (*PgxCapitalRepository)(nil)

const upsertShareholderQuery = `
	INSERT INTO shareholders (company_id, shareholder_id, name, shares_held, ownership_percentage, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (company_id, shareholder_id) DO UPDATE
	SET name = EXCLUDED.name,
	    shares_held = EXCLUDED.shares_held,
	    ownership_percentage = EXCLUDED.ownership_percentage,
	    updated_at = EXCLUDED.updated_at;
`

// FindCapital implements portsrepo.CapitalReader.
func (r *PgxCapitalRepository) FindCapital(ctx context.Context, companyID string) (*domain.CompanyCapital, error) {
	query := `
		SELECT company_id, authorized_shares, share_price, issued_shares, paid_up_capital, version, updated_at
		FROM company_capital
		WHERE company_id = $1;
	`
	var c domain.CompanyCapital
	err := r.Pool.QueryRow(ctx, query, companyID).Scan(
		&c.CompanyID,
		&c.AuthorizedShares,
		&c.SharePrice,
		&c.IssuedShares,
		&c.PaidUpCapital,
		&c.Version,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, rowError(err, "find capital for company "+companyID)
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

// SaveCapital performs a compare-and-swap on the capital version and writes
// the given holders in the same database transaction.
func (r *PgxCapitalRepository) SaveCapital(ctx context.Context, capital domain.CompanyCapital, expectedVersion int64, holders []domain.Shareholder, postingKey string) error {
	var query string
	args := []any{
		capital.CompanyID,
		capital.AuthorizedShares,
		capital.SharePrice,
		capital.IssuedShares,
		capital.PaidUpCapital,
		expectedVersion + 1,
		capital.UpdatedAt,
	}
	if expectedVersion == 0 {
		query = `
			INSERT INTO company_capital (company_id, authorized_shares, share_price, issued_shares, paid_up_capital, version, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (company_id) DO NOTHING;
		`
	} else {
		query = `
			UPDATE company_capital
			SET authorized_shares = $2, share_price = $3, issued_shares = $4,
			    paid_up_capital = $5, version = $6, updated_at = $7
			WHERE company_id = $1 AND version = $8;
		`
		args = append(args, expectedVersion)
	}

	return r.inTx(ctx, "capital of company "+capital.CompanyID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return apperrors.NewAppError(500, "failed to save capital for company "+capital.CompanyID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrConflict
		}

		batch := &pgx.Batch{}
		for _, h := range holders {
			batch.Queue(upsertShareholderQuery, h.CompanyID, h.ShareholderID, h.Name, h.SharesHeld, h.OwnershipPercentage, h.UpdatedAt)
		}
		if postingKey != "" {
			batch.Queue(`INSERT INTO capital_postings (company_id, posting_key, applied_at) VALUES ($1, $2, $3);`,
				capital.CompanyID, postingKey, capital.UpdatedAt)
		}
		return sendBatch(ctx, tx, batch, "save shareholders for company "+capital.CompanyID)
	})
}

// CapitalPostingApplied implements portsrepo.CapitalReader.
func (r *PgxCapitalRepository) CapitalPostingApplied(ctx context.Context, companyID, postingKey string) (bool, error) {
	var applied bool
	err := r.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM capital_postings WHERE company_id = $1 AND posting_key = $2);`,
		companyID, postingKey,
	).Scan(&applied)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check capital posting "+postingKey, err)
	}
	return applied, nil
}

// ListShareholders implements portsrepo.CapitalReader.
func (r *PgxCapitalRepository) ListShareholders(ctx context.Context, companyID string) ([]domain.Shareholder, error) {
	query := `
		SELECT shareholder_id, company_id, name, shares_held, ownership_percentage, updated_at
		FROM shareholders
		WHERE company_id = $1
		ORDER BY shareholder_id;
	`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list shareholders for company "+companyID, err)
	}
	defer rows.Close()

	holders := make([]domain.Shareholder, 0)
	for rows.Next() {
		var h domain.Shareholder
		if err := rows.Scan(&h.ShareholderID, &h.CompanyID, &h.Name, &h.SharesHeld, &h.OwnershipPercentage, &h.UpdatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan shareholder row", err)
		}
		h.UpdatedAt = h.UpdatedAt.UTC()
		holders = append(holders, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating shareholder rows", err)
	}
	return holders, nil
}

// FindShareholder implements portsrepo.CapitalReader.
func (r *PgxCapitalRepository) FindShareholder(ctx context.Context, companyID, shareholderID string) (*domain.Shareholder, error) {
	query := `
		SELECT shareholder_id, company_id, name, shares_held, ownership_percentage, updated_at
		FROM shareholders
		WHERE company_id = $1 AND shareholder_id = $2;
	`
	var h domain.Shareholder
	err := r.Pool.QueryRow(ctx, query, companyID, shareholderID).
		Scan(&h.ShareholderID, &h.CompanyID, &h.Name, &h.SharesHeld, &h.OwnershipPercentage, &h.UpdatedAt)
	if err != nil {
		return nil, rowError(err, "find shareholder "+shareholderID)
	}
	h.UpdatedAt = h.UpdatedAt.UTC()
	return &h, nil
}

// SaveShareholder implements portsrepo.CapitalWriter.
func (r *PgxCapitalRepository) SaveShareholder(ctx context.Context, h domain.Shareholder) error {
	_, err := r.Pool.Exec(ctx, upsertShareholderQuery, h.CompanyID, h.ShareholderID, h.Name, h.SharesHeld, h.OwnershipPercentage, h.UpdatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save shareholder "+h.ShareholderID, err)
	}
	return nil
}

// ListBeneficialOwners implements portsrepo.CapitalReader.
func (r *PgxCapitalRepository) ListBeneficialOwners(ctx context.Context, companyID string) ([]domain.BeneficialOwner, error) {
	query := `
		SELECT owner_id, company_id, name, nationality, ownership_percentage,
		       control_percentage, has_significant_control, updated_at
		FROM beneficial_owners
		WHERE company_id = $1
		ORDER BY owner_id;
	`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list beneficial owners for company "+companyID, err)
	}
	defer rows.Close()

	owners := make([]domain.BeneficialOwner, 0)
	for rows.Next() {
		var o domain.BeneficialOwner
		if err := rows.Scan(
			&o.OwnerID,
			&o.CompanyID,
			&o.Name,
			&o.Nationality,
			&o.OwnershipPercentage,
			&o.ControlPercentage,
			&o.HasSignificantControl,
			&o.UpdatedAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan beneficial owner row", err)
		}
		o.UpdatedAt = o.UpdatedAt.UTC()
		owners = append(owners, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating beneficial owner rows", err)
	}
	return owners, nil
}

// SaveBeneficialOwner implements portsrepo.CapitalWriter.
func (r *PgxCapitalRepository) SaveBeneficialOwner(ctx context.Context, o domain.BeneficialOwner) error {
	query := `
		INSERT INTO beneficial_owners (company_id, owner_id, name, nationality, ownership_percentage,
		                               control_percentage, has_significant_control, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company_id, owner_id) DO UPDATE
		SET name = EXCLUDED.name,
		    nationality = EXCLUDED.nationality,
		    ownership_percentage = EXCLUDED.ownership_percentage,
		    control_percentage = EXCLUDED.control_percentage,
		    has_significant_control = EXCLUDED.has_significant_control,
		    updated_at = EXCLUDED.updated_at;
	`
	_, err := r.Pool.Exec(ctx, query,
		o.CompanyID,
		o.OwnerID,
		o.Name,
		o.Nationality,
		o.OwnershipPercentage,
		o.ControlPercentage,
		o.HasSignificantControl,
		o.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save beneficial owner "+o.OwnerID, err)
	}
	return nil
}

// FindDividend implements portsrepo.DividendReader.
func (r *PgxCapitalRepository) FindDividend(ctx context.Context, companyID, declarationID string) (*domain.DividendDeclaration, error) {
	query := `
		SELECT declaration_id, company_id, declaration_date, profit_amount, dividend_percentage,
		       dividend_pool, status, created_at, created_by, last_updated_at, last_updated_by
		FROM dividend_declarations
		WHERE company_id = $1 AND declaration_id = $2;
	`
	var m models.DividendDeclaration
	err := r.Pool.QueryRow(ctx, query, companyID, declarationID).Scan(
		&m.DeclarationID,
		&m.CompanyID,
		&m.DeclarationDate,
		&m.ProfitAmount,
		&m.DividendPercentage,
		&m.DividendPool,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, rowError(err, "find dividend declaration "+declarationID)
	}
	decl := mapping.ToDomainDividendDeclaration(m)
	return &decl, nil
}

// ListDistributions implements portsrepo.DividendReader.
func (r *PgxCapitalRepository) ListDistributions(ctx context.Context, companyID, declarationID string) ([]domain.DividendDistribution, error) {
	query := `
		SELECT distribution_id, declaration_id, company_id, shareholder_id,
		       shares_held_at_time, amount, is_paid, paid_at
		FROM dividend_distributions
		WHERE company_id = $1 AND declaration_id = $2
		ORDER BY shareholder_id;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, declarationID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list distributions for declaration "+declarationID, err)
	}
	defer rows.Close()

	dists := make([]domain.DividendDistribution, 0)
	for rows.Next() {
		var d domain.DividendDistribution
		if err := rows.Scan(
			&d.DistributionID,
			&d.DeclarationID,
			&d.CompanyID,
			&d.ShareholderID,
			&d.SharesHeldAtTime,
			&d.Amount,
			&d.IsPaid,
			&d.PaidAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan distribution row", err)
		}
		if d.PaidAt != nil {
			paid := d.PaidAt.UTC()
			d.PaidAt = &paid
		}
		dists = append(dists, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating distribution rows", err)
	}
	return dists, nil
}

// SaveDividend upserts the declaration and, when dists is not nil, replaces
// its distributions in the same database transaction.
func (r *PgxCapitalRepository) SaveDividend(ctx context.Context, decl domain.DividendDeclaration, dists []domain.DividendDistribution) error {
	m := mapping.ToModelDividendDeclaration(decl)
	query := `
		INSERT INTO dividend_declarations (declaration_id, company_id, declaration_date, profit_amount,
		    dividend_percentage, dividend_pool, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (declaration_id) DO UPDATE
		SET status = EXCLUDED.status,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`

	return r.inTx(ctx, "dividend declaration "+m.DeclarationID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			m.DeclarationID,
			m.CompanyID,
			m.DeclarationDate,
			m.ProfitAmount,
			m.DividendPercentage,
			m.DividendPool,
			m.Status,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to save dividend declaration "+m.DeclarationID, err)
		}
		if dists == nil {
			return nil
		}

		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM dividend_distributions WHERE declaration_id = $1;`, m.DeclarationID)
		for _, d := range dists {
			batch.Queue(`
				INSERT INTO dividend_distributions (distribution_id, declaration_id, company_id, shareholder_id,
				    shares_held_at_time, amount, is_paid, paid_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
				d.DistributionID, d.DeclarationID, d.CompanyID, d.ShareholderID,
				d.SharesHeldAtTime, d.Amount, d.IsPaid, d.PaidAt,
			)
		}
		return sendBatch(ctx, tx, batch, "save distributions for declaration "+m.DeclarationID)
	})
}
