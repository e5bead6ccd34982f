package services

import (
	"fmt"
	"strings"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// eventEncoder implements the EventEncoderSvc interface. It holds no mutable
// state, so Encode is safe for concurrent use and deterministic.
type eventEncoder struct {
	validate       *validator.Validate
	chart          *domain.ChartOfAccounts
	places         int32
	defaultVATRate decimal.Decimal
}

// NewEventEncoder creates an encoder. Amounts derived by the encoder (VAT,
// share capital) are rounded to places. defaultVATRate applies to
// VAT-inclusive events that do not state a rate.
func NewEventEncoder(chart *domain.ChartOfAccounts, places int32, defaultVATRate decimal.Decimal) portssvc.EventEncoderSvc {
	return &eventEncoder{
		validate:       newValidator(),
		chart:          chart,
		places:         places,
		defaultVATRate: defaultVATRate,
	}
}

var _ portssvc.EventEncoderSvc = (*eventEncoder)(nil)

func (e *eventEncoder) Validate(event domain.BusinessEvent) error {
	_, err := e.Encode(event)
	return err
}

// Encode maps a business event to a balanced posting request.
func (e *eventEncoder) Encode(event domain.BusinessEvent) (domain.Transaction, error) {
	event = concreteEvent(event)
	if event == nil {
		return domain.Transaction{}, apperrors.NewValidationError("event", "is required")
	}
	if err := validateStruct(e.validate, event); err != nil {
		return domain.Transaction{}, err
	}

	h := event.Header()
	tx := domain.Transaction{
		CompanyID:   h.CompanyID,
		Date:        domain.DateOnly(h.Date),
		Reference:   h.Reference,
		Description: h.Description,
		SourceID:    h.SourceID,
		SourceType:  event.SourceType(),
		CreatedBy:   h.CreatedBy,
	}
	if tx.Description == "" {
		tx.Description = defaultDescription(event.SourceType(), h.PartyName)
	}

	var (
		lines []domain.EntryLine
		err   error
	)
	switch ev := event.(type) {
	case domain.SaleEvent:
		lines, err = e.encodeSale(ev)
	case domain.PurchaseEvent:
		lines, err = e.encodePurchase(ev)
	case domain.PayrollEvent:
		lines, err = e.encodePayroll(ev)
	case domain.CapitalContributionEvent:
		lines, err = e.encodeCapitalContribution(ev)
	case domain.ShareIssuanceEvent:
		lines, err = e.encodeShareIssuance(ev)
	case domain.DividendDeclarationEvent:
		lines = []domain.EntryLine{
			domain.DebitLine(domain.AccountRetainedEarnings, ev.Amount),
			domain.CreditLine(domain.AccountDividendPayable, ev.Amount),
		}
	case domain.DividendPaymentEvent:
		lines, err = e.encodeDividendPayment(ev)
	case domain.AssetAcquisitionEvent:
		lines, err = e.encodeAssetAcquisition(ev)
	case domain.EquityAdjustmentEvent:
		lines, err = e.encodeEquityAdjustment(ev)
	case domain.TransferEvent:
		lines, err = e.encodeTransfer(ev)
	default:
		return domain.Transaction{}, apperrors.NewValidationError("type", fmt.Sprintf("unsupported event type %T", event))
	}
	if err != nil {
		return domain.Transaction{}, err
	}
	tx.Lines = lines

	if !tx.IsBalanced() {
		d, c := tx.Totals()
		return domain.Transaction{}, &apperrors.ImbalanceError{Debits: d, Credits: c}
	}
	return tx, nil
}

// concreteEvent unwraps pointer events so the encoder only matches value types.
func concreteEvent(event domain.BusinessEvent) domain.BusinessEvent {
	switch ev := event.(type) {
	case *domain.SaleEvent:
		if ev != nil {
			return *ev
		}
	case *domain.PurchaseEvent:
		if ev != nil {
			return *ev
		}
	case *domain.PayrollEvent:
		if ev != nil {
			return *ev
		}
	case *domain.CapitalContributionEvent:
		if ev != nil {
			return *ev
		}
	case *domain.ShareIssuanceEvent:
		if ev != nil {
			return *ev
		}
	case *domain.DividendDeclarationEvent:
		if ev != nil {
			return *ev
		}
	case *domain.DividendPaymentEvent:
		if ev != nil {
			return *ev
		}
	case *domain.AssetAcquisitionEvent:
		if ev != nil {
			return *ev
		}
	case *domain.EquityAdjustmentEvent:
		if ev != nil {
			return *ev
		}
	case *domain.TransferEvent:
		if ev != nil {
			return *ev
		}
	default:
		return event
	}
	return nil
}

func defaultDescription(st domain.SourceType, party string) string {
	d := strings.ReplaceAll(string(st), "_", " ")
	d = strings.ToUpper(d[:1]) + d[1:]
	if party != "" {
		d += " - " + party
	}
	return d
}

// cashAccount resolves the account a payment method settles through.
func cashAccount(method domain.PaymentMethod) (string, error) {
	code, ok := domain.PaymentAccount(method)
	if !ok {
		if method == "" {
			return "", apperrors.NewValidationError("paymentMethod", "is required")
		}
		return "", apperrors.NewValidationError("paymentMethod", fmt.Sprintf("unknown payment method %q", method))
	}
	return code, nil
}

// account checks that code is in the chart and belongs to one of cats.
func (e *eventEncoder) account(field, code string, cats ...domain.AccountCategory) error {
	acc, ok := e.chart.Lookup(code)
	if !ok {
		return &apperrors.UnknownAccountError{Code: code}
	}
	for _, c := range cats {
		if acc.Category == c {
			return nil
		}
	}
	if len(cats) == 0 {
		return nil
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return apperrors.NewValidationError(field, fmt.Sprintf("account %s is %s, expected %s", code, acc.Category, strings.Join(names, " or ")))
}

// splitVAT returns net, vat and gross for an amount that is either VAT
// inclusive (amount is the gross) or exclusive (amount is the net). A nil
// rate on an inclusive amount takes the default rate; an explicit zero is an
// exempt supply.
func (e *eventEncoder) splitVAT(amount decimal.Decimal, stated *decimal.Decimal, inclusive bool) (net, vat, gross decimal.Decimal) {
	var rate decimal.Decimal
	switch {
	case stated != nil:
		rate = *stated
	case inclusive:
		rate = e.defaultVATRate
	}
	if rate.IsZero() {
		return amount, decimal.Zero, amount
	}
	if inclusive {
		net = amount.Div(decimal.NewFromInt(1).Add(rate)).Round(e.places)
		return net, amount.Sub(net), amount
	}
	vat = amount.Mul(rate).Round(e.places)
	return amount, vat, amount.Add(vat)
}

// settlementLines splits gross between the cash account and the open-item
// account (receivable or payable) according to the payment status.
func settlementLines(gross, paid decimal.Decimal, status domain.PaymentStatus, method domain.PaymentMethod, openItem string) ([]settlement, error) {
	switch status {
	case domain.PaymentPaid:
		cash, err := cashAccount(method)
		if err != nil {
			return nil, err
		}
		return []settlement{{cash, gross}}, nil
	case domain.PaymentUnpaid:
		return []settlement{{openItem, gross}}, nil
	case domain.PaymentPartiallyPaid:
		if !paid.IsPositive() || !paid.LessThan(gross) {
			return nil, apperrors.NewValidationError("paidAmount",
				fmt.Sprintf("must be greater than 0 and less than the gross amount %s for a partial payment, got %s", gross, paid))
		}
		cash, err := cashAccount(method)
		if err != nil {
			return nil, err
		}
		return []settlement{{cash, paid}, {openItem, gross.Sub(paid)}}, nil
	default:
		return nil, apperrors.NewValidationError("paymentStatus", fmt.Sprintf("unknown payment status %q", status))
	}
}

type settlement struct {
	account string
	amount  decimal.Decimal
}

func (e *eventEncoder) encodeSale(ev domain.SaleEvent) ([]domain.EntryLine, error) {
	revenue := domain.AccountSalesRevenue
	if ev.RevenueAccount != "" {
		if err := e.account("revenueAccount", ev.RevenueAccount, domain.Revenue); err != nil {
			return nil, err
		}
		revenue = ev.RevenueAccount
	}
	net, vat, gross := e.splitVAT(ev.Amount, ev.VATRate, ev.VATInclusive)
	settle, err := settlementLines(gross, ev.PaidAmount, ev.PaymentStatus, ev.PaymentMethod, domain.AccountReceivable)
	if err != nil {
		return nil, err
	}

	var lines []domain.EntryLine
	for _, st := range settle {
		lines = append(lines, domain.DebitLine(st.account, st.amount).WithParty(ev.PartyID))
	}
	lines = append(lines, domain.CreditLine(revenue, net).WithParty(ev.PartyID))
	if vat.IsPositive() {
		lines = append(lines, domain.CreditLine(domain.AccountVATPayable, vat).WithParty(ev.PartyID))
	}
	return lines, nil
}

func (e *eventEncoder) encodePurchase(ev domain.PurchaseEvent) ([]domain.EntryLine, error) {
	expense := domain.AccountPurchases
	if ev.ExpenseAccount != "" {
		if err := e.account("expenseAccount", ev.ExpenseAccount, domain.Expense, domain.Asset); err != nil {
			return nil, err
		}
		expense = ev.ExpenseAccount
	}
	net, vat, gross := e.splitVAT(ev.Amount, ev.VATRate, ev.VATInclusive)
	settle, err := settlementLines(gross, ev.PaidAmount, ev.PaymentStatus, ev.PaymentMethod, domain.AccountPayable)
	if err != nil {
		return nil, err
	}

	lines := []domain.EntryLine{domain.DebitLine(expense, net).WithParty(ev.PartyID)}
	if vat.IsPositive() {
		lines = append(lines, domain.DebitLine(domain.AccountVATInput, vat).WithParty(ev.PartyID))
	}
	for _, st := range settle {
		lines = append(lines, domain.CreditLine(st.account, st.amount).WithParty(ev.PartyID))
	}
	return lines, nil
}

func (e *eventEncoder) encodePayroll(ev domain.PayrollEvent) ([]domain.EntryLine, error) {
	b := domain.PayrollBreakdown{
		GrossSalary:  ev.GrossSalary,
		PAYE:         ev.PAYE,
		RSSBEmployee: ev.RSSBEmployee,
		RSSBEmployer: ev.RSSBEmployer,
		NetSalary:    ev.NetSalary,
	}
	if err := b.Check(); err != nil {
		return nil, apperrors.NewValidationError("netSalary", err.Error())
	}
	if ev.PartyID == "" {
		return nil, apperrors.NewValidationError("partyID", "employee id is required for payroll")
	}
	cash, err := cashAccount(ev.PaymentMethod)
	if err != nil {
		return nil, err
	}

	lines := []domain.EntryLine{domain.DebitLine(domain.AccountSalariesAndWages, b.EmployerCost())}
	if ev.NetSalary.IsPositive() {
		lines = append(lines, domain.CreditLine(cash, ev.NetSalary))
	}
	if ev.PAYE.IsPositive() {
		lines = append(lines, domain.CreditLine(domain.AccountPAYEPayable, ev.PAYE))
	}
	if rssb := ev.RSSBEmployee.Add(ev.RSSBEmployer); rssb.IsPositive() {
		lines = append(lines, domain.CreditLine(domain.AccountRSSBPayable, rssb))
	}
	for i := range lines {
		lines[i].PartyID = ev.PartyID
	}
	return lines, nil
}

// requireShareholder keeps issued shares fully held: every capital event names its holder.
func requireShareholder(h domain.EventHeader) error {
	if h.PartyID == "" {
		return apperrors.NewValidationError("partyID", "shareholder id is required for share capital events")
	}
	return nil
}

func (e *eventEncoder) encodeCapitalContribution(ev domain.CapitalContributionEvent) ([]domain.EntryLine, error) {
	if err := requireShareholder(ev.EventHeader); err != nil {
		return nil, err
	}
	cash, err := cashAccount(ev.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return []domain.EntryLine{
		domain.DebitLine(cash, ev.Amount).WithParty(ev.PartyID),
		domain.CreditLine(domain.AccountShareCapital, ev.Amount).WithParty(ev.PartyID),
	}, nil
}

func (e *eventEncoder) encodeShareIssuance(ev domain.ShareIssuanceEvent) ([]domain.EntryLine, error) {
	if err := requireShareholder(ev.EventHeader); err != nil {
		return nil, err
	}
	shares := ev.SharesIssued()
	if shares < 1 {
		return nil, apperrors.NewValidationError("amount",
			fmt.Sprintf("amount %s is below the par value %s of a single share", ev.Amount, ev.ParValue))
	}
	cash, err := cashAccount(ev.PaymentMethod)
	if err != nil {
		return nil, err
	}
	capital := decimal.NewFromInt(shares).Mul(ev.ParValue)
	premium := ev.Amount.Sub(capital)

	lines := []domain.EntryLine{
		domain.DebitLine(cash, ev.Amount).WithParty(ev.PartyID),
		domain.CreditLine(domain.AccountShareCapital, capital).WithParty(ev.PartyID),
	}
	if premium.IsPositive() {
		lines = append(lines, domain.CreditLine(domain.AccountSharePremium, premium).WithParty(ev.PartyID))
	}
	return lines, nil
}

func (e *eventEncoder) encodeDividendPayment(ev domain.DividendPaymentEvent) ([]domain.EntryLine, error) {
	cash, err := cashAccount(ev.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return []domain.EntryLine{
		domain.DebitLine(domain.AccountDividendPayable, ev.Amount).WithParty(ev.PartyID),
		domain.CreditLine(cash, ev.Amount).WithParty(ev.PartyID),
	}, nil
}

func (e *eventEncoder) encodeAssetAcquisition(ev domain.AssetAcquisitionEvent) ([]domain.EntryLine, error) {
	asset := domain.AccountFixedAssets
	if ev.AssetAccount != "" {
		if err := e.account("assetAccount", ev.AssetAccount, domain.Asset); err != nil {
			return nil, err
		}
		asset = ev.AssetAccount
	}
	cash, err := cashAccount(ev.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return []domain.EntryLine{
		domain.DebitLine(asset, ev.Amount).WithParty(ev.PartyID),
		domain.CreditLine(cash, ev.Amount).WithParty(ev.PartyID),
	}, nil
}

func (e *eventEncoder) encodeEquityAdjustment(ev domain.EquityAdjustmentEvent) ([]domain.EntryLine, error) {
	if err := e.account("debitAccount", ev.DebitAccount); err != nil {
		return nil, err
	}
	if err := e.account("creditAccount", ev.CreditAccount); err != nil {
		return nil, err
	}
	dr, _ := e.chart.Lookup(ev.DebitAccount)
	cr, _ := e.chart.Lookup(ev.CreditAccount)
	if dr.Category != domain.Equity && cr.Category != domain.Equity {
		return nil, apperrors.NewValidationError("debitAccount",
			fmt.Sprintf("an equity adjustment must touch an equity account, got %s (%s) and %s (%s)", dr.Code, dr.Category, cr.Code, cr.Category))
	}
	return []domain.EntryLine{
		domain.DebitLine(ev.DebitAccount, ev.Amount).WithParty(ev.PartyID),
		domain.CreditLine(ev.CreditAccount, ev.Amount).WithParty(ev.PartyID),
	}, nil
}

func (e *eventEncoder) encodeTransfer(ev domain.TransferEvent) ([]domain.EntryLine, error) {
	if err := e.account("fromAccount", ev.FromAccount); err != nil {
		return nil, err
	}
	if err := e.account("toAccount", ev.ToAccount); err != nil {
		return nil, err
	}
	return []domain.EntryLine{
		domain.DebitLine(ev.ToAccount, ev.Amount).WithParty(ev.PartyID),
		domain.CreditLine(ev.FromAccount, ev.Amount).WithParty(ev.PartyID),
	}, nil
}
