package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-01-15"`), &d))
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), d.Time)

	require.NoError(t, json.Unmarshal([]byte(`"2025-01-15T23:30:00Z"`), &d))
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), d.Time)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-01-15"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"15/01/2025"`), &d))
	assert.Nil(t, Date{}.Ptr())
}

func TestRecordEventRequest_ToBusinessEvent(t *testing.T) {
	body := `{
		"type": "sale",
		"date": "2025-01-15",
		"sourceID": "INV-1",
		"partyName": "Acme",
		"data": {"amount": "118000", "paymentMethod": "cash", "paymentStatus": "paid", "vatRate": "0.18", "vatInclusive": true}
	}`
	var req RecordEventRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	ev, err := req.ToBusinessEvent("co-1", "user-1")
	require.NoError(t, err)
	sale, ok := ev.(domain.SaleEvent)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, "co-1", sale.CompanyID)
	assert.Equal(t, "INV-1", sale.SourceID)
	assert.Equal(t, "user-1", sale.CreatedBy)
	assert.Equal(t, "Acme", sale.PartyName)
	assert.True(t, sale.Amount.Equal(decimal.NewFromInt(118000)))
	assert.True(t, sale.VATInclusive)
	require.NotNil(t, sale.VATRate)
	assert.True(t, sale.VATRate.Equal(decimal.RequireFromString("0.18")))
	assert.Equal(t, domain.SourceInvoice, ev.SourceType())
}

func TestRecordEventRequest_EveryType(t *testing.T) {
	types := []EventType{
		EventSale, EventPurchase, EventPayroll, EventCapitalContribution, EventShareIssuance,
		EventDividendDeclaration, EventDividendPayment, EventAssetAcquisition, EventEquityAdjustment, EventTransfer,
	}
	seen := map[domain.SourceType]bool{}
	for _, typ := range types {
		ev, err := RecordEventRequest{Type: typ, SourceID: "x"}.ToBusinessEvent("co-1", "u")
		require.NoError(t, err, typ)
		assert.Equal(t, "x", ev.Header().SourceID)
		seen[ev.SourceType()] = true
	}
	assert.Len(t, seen, len(types))
}

func TestRecordEventRequest_Rejects(t *testing.T) {
	_, err := RecordEventRequest{Type: "gift", SourceID: "x"}.ToBusinessEvent("co-1", "u")
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "type")

	_, err = RecordEventRequest{Type: EventSale, SourceID: "x", Data: json.RawMessage(`{"amount": "abc"}`)}.ToBusinessEvent("co-1", "u")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "data")
}

func TestPostTransactionRequest_DefaultsToManual(t *testing.T) {
	req := PostTransactionRequest{
		SourceID: "J-1",
		Lines: []EntryLineRequest{
			{AccountCode: "1000", Debit: decimal.NewFromInt(5)},
			{AccountCode: "3000", Credit: decimal.NewFromInt(5)},
		},
	}
	tx := req.ToTransaction("co-1", "user-1")
	assert.Equal(t, domain.SourceManual, tx.SourceType)
	assert.Len(t, tx.Lines, 2)
	assert.True(t, tx.IsBalanced())
}

func TestPeriodParams_ToPeriod(t *testing.T) {
	q, err := PeriodParams{Year: 2025, Quarter: 2}.ToPeriod()
	require.NoError(t, err)
	assert.Equal(t, "2025-04-01..2025-06-30", q.String())

	m, err := PeriodParams{Year: 2024, Month: 2}.ToPeriod()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01..2024-02-29", m.String())

	y, err := PeriodParams{Year: 2025}.ToPeriod()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01..2025-12-31", y.String())

	from, _ := ParseDate("2025-03-01")
	to, _ := ParseDate("2025-03-10")
	r, err := PeriodParams{From: from, To: to}.ToPeriod()
	require.NoError(t, err)
	assert.True(t, r.Contains(to.Time))

	for name, p := range map[string]PeriodParams{
		"empty":         {},
		"half range":    {From: from},
		"reversed":      {From: to, To: from},
		"quarter+month": {Year: 2025, Quarter: 1, Month: 1},
	} {
		_, err := p.ToPeriod()
		assert.ErrorIs(t, err, apperrors.ErrValidation, name)
	}
}
