package pgsql

import (
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:    newPgxLedgerRepository(dbPool),
		CapitalRepo:   newPgxCapitalRepository(dbPool),
		PayrollRepo:   newPgxPayrollRepository(dbPool),
		TaxFilingRepo: newPgxTaxFilingRepository(dbPool),
	}
}
