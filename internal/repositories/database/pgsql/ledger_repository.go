package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/statutory_ledger/internal/models"
	"github.com/SscSPs/statutory_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ledgerEntryColumns = `entry_id, company_id, entry_date, account_code, amount, entry_type,
		reference, description, source_type, source_id, party_id, line_no, created_at, created_by`

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for the append-only ledger.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// AppendTransaction claims the idempotency key in ledger_postings and inserts
// every entry in the same database transaction. A key that is already claimed
// leaves the ledger untouched.
func (r *PgxLedgerRepository) AppendTransaction(ctx context.Context, key domain.IdempotencyKey, entries []domain.LedgerEntry) (bool, error) {
	if len(entries) == 0 {
		return false, apperrors.NewAppError(500, "refusing to append an empty transaction "+key.String(), nil)
	}

	appended := false
	err := r.inTx(ctx, "posting "+key.String(), func(tx pgx.Tx) error {
		claim := `
			INSERT INTO ledger_postings (company_id, source_type, source_id, committed_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (company_id, source_type, source_id) DO NOTHING;
		`
		tag, err := tx.Exec(ctx, claim, key.CompanyID, string(key.SourceType), key.SourceID, entries[0].CreatedAt)
		if err != nil {
			return apperrors.NewAppError(500, "failed to claim posting "+key.String(), err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		insert := `INSERT INTO ledger_entries (` + ledgerEntryColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`
		for _, e := range entries {
			m := mapping.ToModelLedgerEntry(e)
			batch.Queue(insert,
				m.EntryID,
				m.CompanyID,
				m.EntryDate,
				m.AccountCode,
				m.Amount,
				m.EntryType,
				m.Reference,
				m.Description,
				m.SourceType,
				m.SourceID,
				m.PartyID,
				m.LineNo,
				m.CreatedAt,
				m.CreatedBy,
			)
		}
		if err := sendBatch(ctx, tx, batch, "insert entries for posting "+key.String()); err != nil {
			return err
		}
		appended = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return appended, nil
}

// EntriesBySource implements portsrepo.LedgerReader.
func (r *PgxLedgerRepository) EntriesBySource(ctx context.Context, key domain.IdempotencyKey) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE company_id = $1 AND source_type = $2 AND source_id = $3
		ORDER BY line_no;`
	rows, err := r.Pool.Query(ctx, query, key.CompanyID, string(key.SourceType), key.SourceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for posting "+key.String(), err)
	}
	defer rows.Close()
	return scanLedgerEntries(rows)
}

// ListEntries implements portsrepo.LedgerReader. Results follow ledger order
// (entry_date, created_at, line_no, entry_id) and resume strictly after filter.After.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, companyID string, filter portsrepo.EntryFilter) ([]domain.LedgerEntry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE company_id = $1`)
	args := []any{companyID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.From != nil {
		sb.WriteString(" AND entry_date >= " + arg(*filter.From))
	}
	if filter.To != nil {
		sb.WriteString(" AND entry_date <= " + arg(*filter.To))
	}
	if len(filter.AccountCodes) > 0 {
		sb.WriteString(" AND account_code = ANY(" + arg(filter.AccountCodes) + ")")
	}
	if filter.SourceType != "" {
		sb.WriteString(" AND source_type = " + arg(string(filter.SourceType)))
	}
	if filter.PartyID != "" {
		sb.WriteString(" AND party_id = " + arg(filter.PartyID))
	}
	if c := filter.After; c != nil {
		sb.WriteString(fmt.Sprintf(" AND (entry_date, created_at, line_no, entry_id) > (%s, %s, %s, %s)",
			arg(c.Date), arg(c.CreatedAt), arg(c.LineNo), arg(c.EntryID)))
	}
	sb.WriteString(" ORDER BY entry_date, created_at, line_no, entry_id")
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(filter.Limit))
	}

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list ledger entries for company "+companyID, err)
	}
	defer rows.Close()
	return scanLedgerEntries(rows)
}

func scanLedgerEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	var out []models.LedgerEntry
	for rows.Next() {
		var m models.LedgerEntry
		if err := rows.Scan(
			&m.EntryID,
			&m.CompanyID,
			&m.EntryDate,
			&m.AccountCode,
			&m.Amount,
			&m.EntryType,
			&m.Reference,
			&m.Description,
			&m.SourceType,
			&m.SourceID,
			&m.PartyID,
			&m.LineNo,
			&m.CreatedAt,
			&m.CreatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger entry row", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger entry rows", err)
	}
	return mapping.ToDomainLedgerEntrySlice(out), nil
}
