package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// eventService implements the EventRecorderSvc interface
type eventService struct {
	BaseService
	encoder portssvc.EventEncoderSvc
	posting portssvc.PostingSvc
	capital portssvc.ShareCapitalSvc
}

// NewEventService creates a recorder that encodes events and posts them.
// Capital events go through the share capital service so the authorized
// ceiling is checked before anything reaches the ledger.
func NewEventService(encoder portssvc.EventEncoderSvc, posting portssvc.PostingSvc, capital portssvc.ShareCapitalSvc) portssvc.EventRecorderSvc {
	return &eventService{
		BaseService: newBaseService(),
		encoder:     encoder,
		posting:     posting,
		capital:     capital,
	}
}

var _ portssvc.EventRecorderSvc = (*eventService)(nil)

func (s *eventService) Record(ctx context.Context, event domain.BusinessEvent) (domain.PostResult, error) {
	event = concreteEvent(event)
	tx, err := s.encoder.Encode(event)
	if err != nil {
		s.LogDebug(ctx, "Event rejected by encoder", slog.String("error", err.Error()))
		return domain.PostResult{}, err
	}

	h := event.Header()
	switch ev := event.(type) {
	case domain.CapitalContributionEvent:
		return s.capital.IssueShares(ctx, tx, h.PartyID, h.PartyName, ev.Shares, ev.Amount)
	case domain.ShareIssuanceEvent:
		shares := ev.SharesIssued()
		paidUp := decimal.NewFromInt(shares).Mul(ev.ParValue)
		return s.capital.IssueShares(ctx, tx, h.PartyID, h.PartyName, shares, paidUp)
	default:
		return s.posting.Post(ctx, tx)
	}
}
