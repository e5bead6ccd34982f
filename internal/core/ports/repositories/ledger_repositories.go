package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/core/domain"
)

// EntryCursor is the position of an entry in ledger order (date, created_at, line_no, entry_id).
type EntryCursor struct {
	Date      time.Time
	CreatedAt time.Time
	LineNo    int
	EntryID   string
}

// EntryFilter narrows a ledger scan. Zero values mean "no restriction".
// From and To are inclusive calendar days.
type EntryFilter struct {
	From         *time.Time
	To           *time.Time
	AccountCodes []string
	SourceType   domain.SourceType
	PartyID      string
	Limit        int
	After        *EntryCursor
}

// LedgerReader defines read operations over committed ledger entries.
type LedgerReader interface {
	// ListEntries returns the company's entries matching filter in ledger order.
	ListEntries(ctx context.Context, companyID string, filter EntryFilter) ([]domain.LedgerEntry, error)

	// EntriesBySource returns the entries committed under an idempotency key, ordered by line.
	EntriesBySource(ctx context.Context, key domain.IdempotencyKey) ([]domain.LedgerEntry, error)
}

// LedgerWriter defines the single write operation of the append-only ledger.
type LedgerWriter interface {
	// AppendTransaction stores all entries or none. It returns false without
	// writing anything when key has already been committed.
	AppendTransaction(ctx context.Context, key domain.IdempotencyKey, entries []domain.LedgerEntry) (bool, error)
}

// LedgerRepositoryFacade combines ledger read and write operations.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
