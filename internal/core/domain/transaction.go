package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceType identifies the kind of business document a posting came from.
type SourceType string

const (
	SourceInvoice             SourceType = "invoice"
	SourcePurchase            SourceType = "purchase"
	SourcePayroll             SourceType = "payroll"
	SourceCapitalContribution SourceType = "capital_contribution"
	SourceShareIssuance       SourceType = "share_issuance"
	SourceDividendDeclaration SourceType = "dividend_declaration"
	SourceDividendPayment     SourceType = "dividend_payment"
	SourceAssetAcquisition    SourceType = "asset_acquisition"
	SourceEquityAdjustment    SourceType = "equity_adjustment"
	SourceTransfer            SourceType = "transfer"
	SourceManual              SourceType = "manual"
	SourceReversal            SourceType = "reversal"
)

// BalanceTolerance is the largest debit/credit difference a posting may carry.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// LedgerEntry is one committed debit or credit line. Entries are never updated or deleted.
type LedgerEntry struct {
	EntryID     string          `json:"entryID"`
	CompanyID   string          `json:"companyID"`
	Date        time.Time       `json:"date"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	SourceID    string          `json:"sourceID"`
	SourceType  SourceType      `json:"sourceType"`
	PartyID     string          `json:"partyID,omitempty"` // customer, supplier, employee or shareholder
	LineNo      int             `json:"lineNo"`
	CreatedAt   time.Time       `json:"createdAt"`
	CreatedBy   string          `json:"createdBy,omitempty"`
}

// EntryLine is an uncommitted line of a posting request.
type EntryLine struct {
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	PartyID     string          `json:"partyID,omitempty"`
}

// DebitLine builds a debit line.
func DebitLine(code string, amount decimal.Decimal) EntryLine {
	return EntryLine{AccountCode: code, Debit: amount}
}

// CreditLine builds a credit line.
func CreditLine(code string, amount decimal.Decimal) EntryLine {
	return EntryLine{AccountCode: code, Credit: amount}
}

// WithParty returns a copy of the line tagged with a counterparty.
func (l EntryLine) WithParty(partyID string) EntryLine {
	l.PartyID = partyID
	return l
}

// Transaction is a posting request: the unit of atomic commitment to the ledger.
type Transaction struct {
	CompanyID   string      `json:"companyID"`
	Date        time.Time   `json:"date"`
	Reference   string      `json:"reference"`
	Description string      `json:"description"`
	SourceID    string      `json:"sourceID"`
	SourceType  SourceType  `json:"sourceType"`
	Lines       []EntryLine `json:"lines"`
	CreatedBy   string      `json:"createdBy,omitempty"`
}

// Totals returns the debit and credit sums of the transaction lines.
func (t Transaction) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range t.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits, credits
}

// IsBalanced reports whether debits equal credits within BalanceTolerance.
func (t Transaction) IsBalanced() bool {
	d, c := t.Totals()
	return d.Sub(c).Abs().LessThanOrEqual(BalanceTolerance)
}

// Key returns the idempotency key of the transaction.
func (t Transaction) Key() IdempotencyKey {
	return IdempotencyKey{CompanyID: t.CompanyID, SourceType: t.SourceType, SourceID: t.SourceID}
}

// IdempotencyKey identifies a posting. At most one transaction is ever committed per key.
type IdempotencyKey struct {
	CompanyID  string
	SourceType SourceType
	SourceID   string
}

func (k IdempotencyKey) String() string {
	return k.CompanyID + "/" + string(k.SourceType) + "/" + k.SourceID
}

// PostStatus is the outcome of a successful Post call.
type PostStatus string

const (
	PostStatusCommitted        PostStatus = "COMMITTED"
	PostStatusDuplicateSkipped PostStatus = "DUPLICATE_SKIPPED"
)

// PostResult describes what the posting engine did with a transaction.
type PostResult struct {
	Status  PostStatus      `json:"status"`
	Key     string          `json:"key"`
	Entries []LedgerEntry   `json:"entries,omitempty"`
	Debits  decimal.Decimal `json:"debits"`
	Credits decimal.Decimal `json:"credits"`
}

// Skipped reports whether the transaction was a duplicate.
func (r PostResult) Skipped() bool { return r.Status == PostStatusDuplicateSkipped }
