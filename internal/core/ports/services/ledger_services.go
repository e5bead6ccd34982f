package services

import (
	"context"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/core/domain"
)

// EntryQuery narrows a ledger listing. NextToken continues a previous page.
type EntryQuery struct {
	From        *time.Time
	To          *time.Time
	AccountCode string
	SourceType  domain.SourceType
	PartyID     string
	Limit       int
	NextToken   *string
}

// PostingSvc commits balanced transactions to the ledger.
type PostingSvc interface {
	// Post validates tx and appends it atomically. A repeated idempotency key
	// succeeds with domain.PostStatusDuplicateSkipped and writes nothing.
	Post(ctx context.Context, tx domain.Transaction) (domain.PostResult, error)

	// Reverse posts the mirror image of a committed transaction on date.
	Reverse(ctx context.Context, original domain.IdempotencyKey, date time.Time, userID string) (domain.PostResult, error)
}

// LedgerReaderSvc exposes committed entries.
type LedgerReaderSvc interface {
	// ListEntries returns one page of entries and a token for the next page, if any.
	ListEntries(ctx context.Context, companyID string, q EntryQuery) ([]domain.LedgerEntry, *string, error)

	// Chart returns the chart of accounts every posting is checked against.
	Chart() *domain.ChartOfAccounts
}

// LedgerSvcFacade combines posting and ledger reads.
type LedgerSvcFacade interface {
	PostingSvc
	LedgerReaderSvc
}

// EventEncoderSvc turns business events into posting requests.
type EventEncoderSvc interface {
	// Validate checks an event's fields without encoding it.
	Validate(event domain.BusinessEvent) error

	// Encode is pure: the same event always yields the same transaction.
	Encode(event domain.BusinessEvent) (domain.Transaction, error)
}

// EventRecorderSvc validates, encodes and posts business events.
type EventRecorderSvc interface {
	Record(ctx context.Context, event domain.BusinessEvent) (domain.PostResult, error)
}
