package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType indicates whether a ledger line is a Debit or a Credit.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// LedgerEntry is one row of the ledger_entries table. The amount is always
// positive; EntryType carries the side.
type LedgerEntry struct {
	EntryID     string          `db:"entry_id"`
	CompanyID   string          `db:"company_id"`
	EntryDate   time.Time       `db:"entry_date"`
	AccountCode string          `db:"account_code"`
	Amount      decimal.Decimal `db:"amount"`
	EntryType   EntryType       `db:"entry_type"`
	Reference   string          `db:"reference"`
	Description string          `db:"description"`
	SourceType  string          `db:"source_type"`
	SourceID    string          `db:"source_id"`
	PartyID     *string         `db:"party_id"` // Nullable
	LineNo      int             `db:"line_no"`
	CreatedAt   time.Time       `db:"created_at"`
	CreatedBy   string          `db:"created_by"`
}
