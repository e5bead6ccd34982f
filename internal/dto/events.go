package dto

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
)

// EventType names a business event on the wire.
type EventType string

const (
	EventSale                EventType = "sale"
	EventPurchase            EventType = "purchase"
	EventPayroll             EventType = "payroll"
	EventCapitalContribution EventType = "capital_contribution"
	EventShareIssuance       EventType = "share_issuance"
	EventDividendDeclaration EventType = "dividend_declaration"
	EventDividendPayment     EventType = "dividend_payment"
	EventAssetAcquisition    EventType = "asset_acquisition"
	EventEquityAdjustment    EventType = "equity_adjustment"
	EventTransfer            EventType = "transfer"
)

// RecordEventRequest is the envelope of a business event. The shared header
// fields sit at the top level; the type-specific fields go in Data.
type RecordEventRequest struct {
	Type        EventType       `json:"type" binding:"required"`
	Date        Date            `json:"date"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	SourceID    string          `json:"sourceID" binding:"required"`
	PartyID     string          `json:"partyID"`
	PartyName   string          `json:"partyName"`
	Data        json.RawMessage `json:"data"`
}

// ToBusinessEvent decodes Data into the concrete event for Type and fills its header.
func (r RecordEventRequest) ToBusinessEvent(companyID, userID string) (domain.BusinessEvent, error) {
	header := domain.EventHeader{
		CompanyID:   companyID,
		Date:        r.Date.Time,
		Reference:   r.Reference,
		Description: r.Description,
		SourceID:    r.SourceID,
		PartyID:     r.PartyID,
		PartyName:   r.PartyName,
		CreatedBy:   userID,
	}

	switch r.Type {
	case EventSale:
		return decodeEvent(r.Data, header, func(e *domain.SaleEvent) *domain.EventHeader { return &e.EventHeader })
	case EventPurchase:
		return decodeEvent(r.Data, header, func(e *domain.PurchaseEvent) *domain.EventHeader { return &e.EventHeader })
	case EventPayroll:
		return decodeEvent(r.Data, header, func(e *domain.PayrollEvent) *domain.EventHeader { return &e.EventHeader })
	case EventCapitalContribution:
		return decodeEvent(r.Data, header, func(e *domain.CapitalContributionEvent) *domain.EventHeader { return &e.EventHeader })
	case EventShareIssuance:
		return decodeEvent(r.Data, header, func(e *domain.ShareIssuanceEvent) *domain.EventHeader { return &e.EventHeader })
	case EventDividendDeclaration:
		return decodeEvent(r.Data, header, func(e *domain.DividendDeclarationEvent) *domain.EventHeader { return &e.EventHeader })
	case EventDividendPayment:
		return decodeEvent(r.Data, header, func(e *domain.DividendPaymentEvent) *domain.EventHeader { return &e.EventHeader })
	case EventAssetAcquisition:
		return decodeEvent(r.Data, header, func(e *domain.AssetAcquisitionEvent) *domain.EventHeader { return &e.EventHeader })
	case EventEquityAdjustment:
		return decodeEvent(r.Data, header, func(e *domain.EquityAdjustmentEvent) *domain.EventHeader { return &e.EventHeader })
	case EventTransfer:
		return decodeEvent(r.Data, header, func(e *domain.TransferEvent) *domain.EventHeader { return &e.EventHeader })
	default:
		return nil, apperrors.NewValidationError("type", fmt.Sprintf("unknown event type %q", r.Type))
	}
}

// decodeEvent unmarshals data into a fresh E and overwrites its header.
func decodeEvent[E domain.BusinessEvent](data json.RawMessage, header domain.EventHeader, headerOf func(*E) *domain.EventHeader) (domain.BusinessEvent, error) {
	var ev E
	if len(data) > 0 {
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, apperrors.NewValidationError("data", err.Error())
		}
	}
	*headerOf(&ev) = header
	return ev, nil
}
