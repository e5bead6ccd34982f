package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how an event was settled in cash terms.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBank         PaymentMethod = "bank"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheque       PaymentMethod = "cheque"
	PaymentCard         PaymentMethod = "card"
	PaymentMobileMoney  PaymentMethod = "mobile_money"
)

// PaymentAccount maps a payment method to the cash account it settles through.
func PaymentAccount(m PaymentMethod) (string, bool) {
	switch m {
	case PaymentCash:
		return AccountPettyCash, true
	case PaymentBank, PaymentBankTransfer, PaymentCheque, PaymentCard:
		return AccountBank, true
	case PaymentMobileMoney:
		return AccountMobileMoney, true
	default:
		return "", false
	}
}

// PaymentStatus tells the encoder how much of a sale or purchase was settled.
type PaymentStatus string

const (
	PaymentPaid          PaymentStatus = "paid"
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
)

// EventHeader carries the fields every business event shares.
// SourceID together with the event's source type and CompanyID forms the idempotency key.
type EventHeader struct {
	CompanyID   string    `json:"companyID" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Reference   string    `json:"reference"`
	Description string    `json:"description"`
	SourceID    string    `json:"sourceID" validate:"required"`
	PartyID     string    `json:"partyID,omitempty"`
	PartyName   string    `json:"partyName,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
}

// Header returns the shared event fields.
func (h EventHeader) Header() EventHeader { return h }

// BusinessEvent is the closed set of events the encoder understands.
// Only types in this package can implement it.
type BusinessEvent interface {
	Header() EventHeader
	SourceType() SourceType
	isBusinessEvent()
}

// SaleEvent is a sale of goods or services to a customer.
type SaleEvent struct {
	EventHeader
	Amount         decimal.Decimal  `json:"amount" validate:"gt=0"`
	PaymentMethod  PaymentMethod    `json:"paymentMethod"`
	PaymentStatus  PaymentStatus    `json:"paymentStatus" validate:"required,oneof=paid unpaid partially_paid"`
	PaidAmount     decimal.Decimal  `json:"paidAmount" validate:"gte=0"`
	VATRate        *decimal.Decimal `json:"vatRate,omitempty" validate:"omitempty,gte=0,lt=1"`
	VATInclusive   bool             `json:"vatInclusive"`
	RevenueAccount string           `json:"revenueAccount,omitempty"`
}

// PurchaseEvent is a purchase from a supplier.
type PurchaseEvent struct {
	EventHeader
	Amount         decimal.Decimal  `json:"amount" validate:"gt=0"`
	PaymentMethod  PaymentMethod    `json:"paymentMethod"`
	PaymentStatus  PaymentStatus    `json:"paymentStatus" validate:"required,oneof=paid unpaid partially_paid"`
	PaidAmount     decimal.Decimal  `json:"paidAmount" validate:"gte=0"`
	VATRate        *decimal.Decimal `json:"vatRate,omitempty" validate:"omitempty,gte=0,lt=1"`
	VATInclusive   bool             `json:"vatInclusive"`
	ExpenseAccount string           `json:"expenseAccount,omitempty"`
}

// PayrollEvent is the salary payment of one employee for one period.
// PartyID holds the employee id.
type PayrollEvent struct {
	EventHeader
	GrossSalary   decimal.Decimal `json:"grossSalary" validate:"gt=0"`
	PAYE          decimal.Decimal `json:"paye" validate:"gte=0"`
	RSSBEmployee  decimal.Decimal `json:"rssbEmployee" validate:"gte=0"`
	RSSBEmployer  decimal.Decimal `json:"rssbEmployer" validate:"gte=0"`
	NetSalary     decimal.Decimal `json:"netSalary" validate:"gte=0"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" validate:"required"`
}

// CapitalContributionEvent is cash paid in by a shareholder in exchange for shares.
type CapitalContributionEvent struct {
	EventHeader
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Shares        int64           `json:"shares" validate:"gt=0"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" validate:"required"`
}

// ShareIssuanceEvent is an issue of shares at or above par value.
type ShareIssuanceEvent struct {
	EventHeader
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	ParValue      decimal.Decimal `json:"parValue" validate:"gt=0"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" validate:"required"`
}

// SharesIssued returns floor(amount / par value).
func (e ShareIssuanceEvent) SharesIssued() int64 {
	if !e.ParValue.IsPositive() {
		return 0
	}
	return e.Amount.Div(e.ParValue).Floor().IntPart()
}

// DividendDeclarationEvent moves the declared pool out of retained earnings.
type DividendDeclarationEvent struct {
	EventHeader
	DeclarationID string          `json:"declarationID" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
}

// DividendPaymentEvent settles one shareholder's dividend. PartyID holds the shareholder id.
type DividendPaymentEvent struct {
	EventHeader
	DeclarationID string          `json:"declarationID" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" validate:"required"`
}

// AssetAcquisitionEvent is a purchase of a long-lived asset.
type AssetAcquisitionEvent struct {
	EventHeader
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	AssetAccount  string          `json:"assetAccount,omitempty"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" validate:"required"`
}

// EquityAdjustmentEvent moves value between two accounts, at least one of them equity.
// Direction is taken as given.
type EquityAdjustmentEvent struct {
	EventHeader
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	DebitAccount  string          `json:"debitAccount" validate:"required"`
	CreditAccount string          `json:"creditAccount" validate:"required,nefield=DebitAccount"`
}

// TransferEvent moves funds from one account to another.
type TransferEvent struct {
	EventHeader
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	FromAccount string          `json:"fromAccount" validate:"required"`
	ToAccount   string          `json:"toAccount" validate:"required,nefield=FromAccount"`
}

func (SaleEvent) SourceType() SourceType                { return SourceInvoice }
func (PurchaseEvent) SourceType() SourceType            { return SourcePurchase }
func (PayrollEvent) SourceType() SourceType             { return SourcePayroll }
func (CapitalContributionEvent) SourceType() SourceType { return SourceCapitalContribution }
func (ShareIssuanceEvent) SourceType() SourceType       { return SourceShareIssuance }
func (DividendDeclarationEvent) SourceType() SourceType { return SourceDividendDeclaration }
func (DividendPaymentEvent) SourceType() SourceType     { return SourceDividendPayment }
func (AssetAcquisitionEvent) SourceType() SourceType    { return SourceAssetAcquisition }
func (EquityAdjustmentEvent) SourceType() SourceType    { return SourceEquityAdjustment }
func (TransferEvent) SourceType() SourceType            { return SourceTransfer }

func (SaleEvent) isBusinessEvent()                {}
func (PurchaseEvent) isBusinessEvent()            {}
func (PayrollEvent) isBusinessEvent()             {}
func (CapitalContributionEvent) isBusinessEvent() {}
func (ShareIssuanceEvent) isBusinessEvent()       {}
func (DividendDeclarationEvent) isBusinessEvent() {}
func (DividendPaymentEvent) isBusinessEvent()     {}
func (AssetAcquisitionEvent) isBusinessEvent()    {}
func (EquityAdjustmentEvent) isBusinessEvent()    {}
func (TransferEvent) isBusinessEvent()            {}
