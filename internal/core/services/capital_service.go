package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// capitalService implements the CapitalSvcFacade interface. Every mutation
// runs under a per-company lock; the store's version check catches writers
// outside this process.
type capitalService struct {
	BaseService
	capitalRepo  portsrepo.CapitalRepositoryFacade
	encoder      portssvc.EventEncoderSvc
	posting      portssvc.PostingSvc
	places       int32
	companyLocks *keyedMutex
}

// NewCapitalService creates a new capital service. places is the rounding
// precision of dividend amounts.
func NewCapitalService(repo portsrepo.CapitalRepositoryFacade, encoder portssvc.EventEncoderSvc, posting portssvc.PostingSvc, places int32, options ...BaseOption) portssvc.CapitalSvcFacade {
	svc := &capitalService{
		BaseService:  newBaseService(),
		capitalRepo:  repo,
		encoder:      encoder,
		posting:      posting,
		places:       places,
		companyLocks: newKeyedMutex(),
	}
	for _, option := range options {
		option(&svc.BaseService)
	}
	return svc
}

var _ portssvc.CapitalSvcFacade = (*capitalService)(nil)

func (s *capitalService) lock(companyID string) func() {
	return s.companyLocks.Lock(companyID)
}

func (s *capitalService) findCapital(ctx context.Context, companyID string) (*domain.CompanyCapital, error) {
	c, err := s.capitalRepo.FindCapital(ctx, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: share capital is not configured for company %s", apperrors.ErrNotFound, companyID)
		}
		s.LogError(ctx, err, "Failed to load capital", slog.String("company_id", companyID))
		return nil, err
	}
	return c, nil
}

func (s *capitalService) ConfigureCapital(ctx context.Context, companyID string, authorizedShares int64, sharePrice decimal.Decimal) (*domain.CompanyCapital, error) {
	errs := fieldErrors{}
	if companyID == "" {
		errs.add("companyID", "is required")
	}
	if authorizedShares <= 0 {
		errs.add("authorizedShares", "must be greater than 0, got %d", authorizedShares)
	}
	if !sharePrice.IsPositive() {
		errs.add("sharePrice", "must be greater than 0, got %s", sharePrice)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	defer s.lock(companyID)()

	current, err := s.capitalRepo.FindCapital(ctx, companyID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to load capital", slog.String("company_id", companyID))
		return nil, err
	}
	next := domain.CompanyCapital{CompanyID: companyID, PaidUpCapital: decimal.Zero}
	var version int64
	if current != nil {
		if authorizedShares < current.IssuedShares {
			return nil, apperrors.NewValidationError("authorizedShares",
				fmt.Sprintf("cannot be below the %d shares already issued, got %d", current.IssuedShares, authorizedShares))
		}
		next = *current
		version = current.Version
	}
	next.AuthorizedShares = authorizedShares
	next.SharePrice = sharePrice
	next.UpdatedAt = s.Now()

	if err := s.capitalRepo.SaveCapital(ctx, next, version, nil, ""); err != nil {
		s.LogError(ctx, err, "Failed to save capital", slog.String("company_id", companyID))
		return nil, err
	}
	next.Version = version + 1
	s.LogInfo(ctx, "Share capital configured",
		slog.String("company_id", companyID),
		slog.Int64("authorized_shares", authorizedShares),
		slog.String("share_price", sharePrice.String()))
	return &next, nil
}

func (s *capitalService) GetCapital(ctx context.Context, companyID string) (*domain.CompanyCapital, error) {
	return s.findCapital(ctx, companyID)
}

// capitalSaveAttempts bounds the re-read and retry of a share issue whose
// version check lost to another writer.
const capitalSaveAttempts = 3

func validateIssue(shareholderID string, shares int64) error {
	errs := fieldErrors{}
	if shareholderID == "" {
		errs.add("shareholderID", "is required so issued shares stay fully held")
	}
	if shares <= 0 {
		errs.add("shares", "must be greater than 0, got %d", shares)
	}
	return errs.err()
}

// AllocateShares issues shares without touching the ledger or paid up capital.
func (s *capitalService) AllocateShares(ctx context.Context, companyID, shareholderID string, shares int64) (*domain.CompanyCapital, error) {
	if err := validateIssue(shareholderID, shares); err != nil {
		return nil, err
	}
	defer s.lock(companyID)()

	c, err := s.findCapital(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := c.CheckAllocation(shares); err != nil {
		s.LogWarn(ctx, "Share allocation rejected", slog.String("company_id", companyID), slog.String("error", err.Error()))
		return nil, err
	}
	return s.issueWithRetry(ctx, *c, "", shareholderID, "", shares, decimal.Zero)
}

// IssueShares is the ledger-backed allocation used by capital contribution and
// share issuance events. The posting commits first and the capital change
// records the posting key, so a replay of a posting whose capital update was
// lost applies it instead of skipping it.
func (s *capitalService) IssueShares(ctx context.Context, tx domain.Transaction, shareholderID, shareholderName string, shares int64, paidUp decimal.Decimal) (domain.PostResult, error) {
	if err := validateIssue(shareholderID, shares); err != nil {
		return domain.PostResult{}, err
	}
	defer s.lock(tx.CompanyID)()

	key := tx.Key().String()
	applied, err := s.capitalRepo.CapitalPostingApplied(ctx, tx.CompanyID, key)
	if err != nil {
		s.LogError(ctx, err, "Failed to check capital posting", slog.String("key", key))
		return domain.PostResult{}, err
	}
	if applied {
		return s.posting.Post(ctx, tx)
	}

	c, err := s.findCapital(ctx, tx.CompanyID)
	if err != nil {
		return domain.PostResult{}, err
	}
	if err := c.CheckAllocation(shares); err != nil {
		s.LogWarn(ctx, "Share issue rejected", slog.String("company_id", tx.CompanyID), slog.String("error", err.Error()))
		return domain.PostResult{}, err
	}

	res, err := s.posting.Post(ctx, tx)
	if err != nil {
		return domain.PostResult{}, err
	}
	if res.Skipped() {
		s.LogWarn(ctx, "Share issue was posted without its capital update, applying it now", slog.String("key", key))
	}
	if _, err := s.issueWithRetry(ctx, *c, key, shareholderID, shareholderName, shares, paidUp); err != nil {
		s.LogError(ctx, err, "Posted share issue but failed to update capital", slog.String("key", key))
		return domain.PostResult{}, err
	}
	return res, nil
}

// issueWithRetry applies a share issue, re-reading the capital and checking
// the ceiling again when the version check fails.
func (s *capitalService) issueWithRetry(ctx context.Context, c domain.CompanyCapital, postingKey, shareholderID, shareholderName string, shares int64, paidUp decimal.Decimal) (*domain.CompanyCapital, error) {
	for attempt := 1; ; attempt++ {
		out, err := s.applyIssue(ctx, c, postingKey, shareholderID, shareholderName, shares, paidUp)
		if !errors.Is(err, apperrors.ErrConflict) || attempt == capitalSaveAttempts {
			return out, err
		}
		s.LogWarn(ctx, "Capital changed concurrently, retrying share issue",
			slog.String("company_id", c.CompanyID),
			slog.Int("attempt", attempt))

		fresh, err := s.findCapital(ctx, c.CompanyID)
		if err != nil {
			return nil, err
		}
		if err := fresh.CheckAllocation(shares); err != nil {
			return nil, err
		}
		c = *fresh
	}
}

// applyIssue adds shares to the company and to the holder, then recomputes
// every holder's percentage. Callers hold the company lock.
func (s *capitalService) applyIssue(ctx context.Context, c domain.CompanyCapital, postingKey, shareholderID, shareholderName string, shares int64, paidUp decimal.Decimal) (*domain.CompanyCapital, error) {
	holders, err := s.capitalRepo.ListShareholders(ctx, c.CompanyID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	found := false
	for i := range holders {
		if holders[i].ShareholderID == shareholderID {
			holders[i].SharesHeld += shares
			holders[i].UpdatedAt = now
			if holders[i].Name == "" {
				holders[i].Name = shareholderName
			}
			found = true
			break
		}
	}
	if !found {
		holders = append(holders, domain.Shareholder{
			ShareholderID: shareholderID,
			CompanyID:     c.CompanyID,
			Name:          shareholderName,
			SharesHeld:    shares,
			UpdatedAt:     now,
		})
	}

	version := c.Version
	c.IssuedShares += shares
	c.PaidUpCapital = c.PaidUpCapital.Add(paidUp)
	c.UpdatedAt = now
	domain.RecomputeOwnership(holders, c.IssuedShares)
	domain.SortShareholders(holders)

	if err := s.capitalRepo.SaveCapital(ctx, c, version, holders, postingKey); err != nil {
		s.LogError(ctx, err, "Failed to save capital", slog.String("company_id", c.CompanyID))
		return nil, err
	}
	c.Version = version + 1
	s.LogInfo(ctx, "Shares issued",
		slog.String("company_id", c.CompanyID),
		slog.String("shareholder_id", shareholderID),
		slog.Int64("shares", shares),
		slog.Int64("issued_shares", c.IssuedShares),
		slog.String("paid_up_capital", c.PaidUpCapital.String()))
	return &c, nil
}

func (s *capitalService) RegisterShareholder(ctx context.Context, companyID, shareholderID, name string) (*domain.Shareholder, error) {
	errs := fieldErrors{}
	if companyID == "" {
		errs.add("companyID", "is required")
	}
	if shareholderID == "" {
		errs.add("shareholderID", "is required")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	defer s.lock(companyID)()

	h, err := s.capitalRepo.FindShareholder(ctx, companyID, shareholderID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		h = &domain.Shareholder{ShareholderID: shareholderID, CompanyID: companyID, OwnershipPercentage: decimal.Zero}
	case err != nil:
		s.LogError(ctx, err, "Failed to load shareholder", slog.String("shareholder_id", shareholderID))
		return nil, err
	}
	h.Name = name
	h.UpdatedAt = s.Now()
	if err := s.capitalRepo.SaveShareholder(ctx, *h); err != nil {
		s.LogError(ctx, err, "Failed to save shareholder", slog.String("shareholder_id", shareholderID))
		return nil, err
	}
	return h, nil
}

func (s *capitalService) ListShareholders(ctx context.Context, companyID string) ([]domain.Shareholder, error) {
	return s.capitalRepo.ListShareholders(ctx, companyID)
}

func (s *capitalService) UpsertBeneficialOwner(ctx context.Context, owner domain.BeneficialOwner) (*domain.BeneficialOwner, error) {
	errs := fieldErrors{}
	if owner.CompanyID == "" {
		errs.add("companyID", "is required")
	}
	if owner.OwnerID == "" {
		errs.add("ownerID", "is required")
	}
	checkPercent := func(field string, v decimal.Decimal) {
		if v.IsNegative() || v.GreaterThan(hundredPercent) {
			errs.add(field, "must be between 0 and 100, got %s", v)
		}
	}
	checkPercent("ownershipPercentage", owner.OwnershipPercentage)
	checkPercent("controlPercentage", owner.ControlPercentage)
	if err := errs.err(); err != nil {
		return nil, err
	}

	defer s.lock(owner.CompanyID)()

	existing, err := s.capitalRepo.ListBeneficialOwners(ctx, owner.CompanyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list beneficial owners", slog.String("company_id", owner.CompanyID))
		return nil, err
	}
	if err := domain.CheckOwnershipCeiling(existing, owner); err != nil {
		s.LogWarn(ctx, "Beneficial owner rejected", slog.String("owner_id", owner.OwnerID), slog.String("error", err.Error()))
		return nil, err
	}
	owner.RecomputeControl()
	owner.UpdatedAt = s.Now()
	if err := s.capitalRepo.SaveBeneficialOwner(ctx, owner); err != nil {
		s.LogError(ctx, err, "Failed to save beneficial owner", slog.String("owner_id", owner.OwnerID))
		return nil, err
	}
	return &owner, nil
}

var hundredPercent = decimal.NewFromInt(100)

func (s *capitalService) ListBeneficialOwners(ctx context.Context, companyID string) ([]domain.BeneficialOwner, error) {
	return s.capitalRepo.ListBeneficialOwners(ctx, companyID)
}

func (s *capitalService) DeclareDividend(ctx context.Context, companyID string, date time.Time, profit, percentage decimal.Decimal, userID string) (*domain.DividendDeclaration, error) {
	errs := fieldErrors{}
	if companyID == "" {
		errs.add("companyID", "is required")
	}
	if date.IsZero() {
		errs.add("declarationDate", "is required")
	}
	if !profit.IsPositive() {
		errs.add("profitAmount", "must be greater than 0, got %s", profit)
	}
	if !percentage.IsPositive() || percentage.GreaterThan(hundredPercent) {
		errs.add("dividendPercentage", "must be greater than 0 and at most 100, got %s", percentage)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	pool := domain.DividendPool(profit, percentage, s.places)
	if !pool.IsPositive() {
		return nil, apperrors.NewValidationError("dividendPercentage",
			fmt.Sprintf("pool of %s%% of %s rounds to %s", percentage, profit, pool))
	}

	decl := domain.DividendDeclaration{
		DeclarationID:      s.NewID(),
		CompanyID:          companyID,
		DeclarationDate:    domain.DateOnly(date),
		ProfitAmount:       profit,
		DividendPercentage: percentage,
		DividendPool:       pool,
		Status:             domain.DividendDraft,
	}
	decl.Stamp(userID, s.Now())
	if err := s.capitalRepo.SaveDividend(ctx, decl, nil); err != nil {
		s.LogError(ctx, err, "Failed to save dividend declaration", slog.String("company_id", companyID))
		return nil, err
	}
	s.LogInfo(ctx, "Dividend declared",
		slog.String("company_id", companyID),
		slog.String("declaration_id", decl.DeclarationID),
		slog.String("pool", pool.String()))
	return &decl, nil
}

func (s *capitalService) findDividend(ctx context.Context, companyID, declarationID string, want domain.DividendStatus) (*domain.DividendDeclaration, error) {
	decl, err := s.capitalRepo.FindDividend(ctx, companyID, declarationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: dividend declaration %s", apperrors.ErrNotFound, declarationID)
		}
		return nil, err
	}
	if decl.Status != want {
		return nil, fmt.Errorf("%w: dividend declaration %s is %s, expected %s", apperrors.ErrConflict, declarationID, decl.Status, want)
	}
	return decl, nil
}

// ConfirmDividend moves the pool from retained earnings to dividends payable.
func (s *capitalService) ConfirmDividend(ctx context.Context, companyID, declarationID, userID string) (*domain.DividendDeclaration, error) {
	defer s.lock(companyID)()

	decl, err := s.findDividend(ctx, companyID, declarationID, domain.DividendDraft)
	if err != nil {
		return nil, err
	}
	ev := domain.DividendDeclarationEvent{
		EventHeader: domain.EventHeader{
			CompanyID:   companyID,
			Date:        decl.DeclarationDate,
			Reference:   "DIV-" + declarationID,
			Description: "Dividend declaration " + declarationID,
			SourceID:    declarationID,
			CreatedBy:   userID,
		},
		DeclarationID: declarationID,
		Amount:        decl.DividendPool,
	}
	if _, err := s.post(ctx, ev); err != nil {
		return nil, err
	}

	decl.Status = domain.DividendConfirmed
	decl.Touch(userID, s.Now())
	if err := s.capitalRepo.SaveDividend(ctx, *decl, nil); err != nil {
		s.LogError(ctx, err, "Failed to confirm dividend", slog.String("declaration_id", declarationID))
		return nil, err
	}
	s.LogInfo(ctx, "Dividend confirmed", slog.String("declaration_id", declarationID))
	return decl, nil
}

func (s *capitalService) post(ctx context.Context, ev domain.BusinessEvent) (domain.PostResult, error) {
	tx, err := s.encoder.Encode(ev)
	if err != nil {
		return domain.PostResult{}, err
	}
	return s.posting.Post(ctx, tx)
}

// DistributeDividend splits the pool over the current register. It can be
// rerun until the first payment, replacing the previous split.
func (s *capitalService) DistributeDividend(ctx context.Context, companyID, declarationID string) ([]domain.DividendDistribution, error) {
	defer s.lock(companyID)()

	decl, err := s.findDividend(ctx, companyID, declarationID, domain.DividendConfirmed)
	if err != nil {
		return nil, err
	}
	current, err := s.capitalRepo.ListDistributions(ctx, companyID, declarationID)
	if err != nil {
		return nil, err
	}
	for _, d := range current {
		if d.IsPaid {
			return nil, fmt.Errorf("%w: dividend %s already has paid distributions", apperrors.ErrConflict, declarationID)
		}
	}

	holders, err := s.capitalRepo.ListShareholders(ctx, companyID)
	if err != nil {
		return nil, err
	}
	dists, err := domain.DistributePool(decl.DividendPool, holders, s.places)
	if err != nil {
		return nil, err
	}
	for i := range dists {
		dists[i].DistributionID = s.NewID()
		dists[i].DeclarationID = declarationID
		dists[i].CompanyID = companyID
	}
	if err := s.capitalRepo.SaveDividend(ctx, *decl, dists); err != nil {
		s.LogError(ctx, err, "Failed to save distributions", slog.String("declaration_id", declarationID))
		return nil, err
	}
	s.LogInfo(ctx, "Dividend distributed",
		slog.String("declaration_id", declarationID),
		slog.Int("shareholders", len(dists)))
	return dists, nil
}

// PayDividend pays every unpaid distribution. Each payment is its own posting,
// so a failed run can be retried without paying anyone twice.
func (s *capitalService) PayDividend(ctx context.Context, companyID, declarationID string, method domain.PaymentMethod, date time.Time, userID string) (*domain.DividendDeclaration, error) {
	if _, ok := domain.PaymentAccount(method); !ok {
		return nil, apperrors.NewValidationError("paymentMethod", fmt.Sprintf("unknown payment method %q", method))
	}
	defer s.lock(companyID)()

	decl, err := s.findDividend(ctx, companyID, declarationID, domain.DividendConfirmed)
	if err != nil {
		return nil, err
	}
	dists, err := s.capitalRepo.ListDistributions(ctx, companyID, declarationID)
	if err != nil {
		return nil, err
	}
	if len(dists) == 0 {
		return nil, fmt.Errorf("%w: dividend %s has not been distributed", apperrors.ErrConflict, declarationID)
	}
	if date.IsZero() {
		date = s.Now()
	}

	for i := range dists {
		d := &dists[i]
		if d.IsPaid {
			continue
		}
		if d.Amount.IsPositive() {
			ev := domain.DividendPaymentEvent{
				EventHeader: domain.EventHeader{
					CompanyID:   companyID,
					Date:        date,
					Reference:   "DIV-" + declarationID,
					Description: "Dividend payment " + declarationID,
					SourceID:    declarationID + ":" + d.ShareholderID,
					PartyID:     d.ShareholderID,
					CreatedBy:   userID,
				},
				DeclarationID: declarationID,
				Amount:        d.Amount,
				PaymentMethod: method,
			}
			if _, err := s.post(ctx, ev); err != nil {
				s.LogError(ctx, err, "Dividend payment failed",
					slog.String("declaration_id", declarationID),
					slog.String("shareholder_id", d.ShareholderID))
				return nil, err
			}
		}
		paidAt := s.Now()
		d.IsPaid = true
		d.PaidAt = &paidAt
		if err := s.capitalRepo.SaveDividend(ctx, *decl, dists); err != nil {
			return nil, err
		}
	}

	decl.Status = domain.DividendPaid
	decl.Touch(userID, s.Now())
	if err := s.capitalRepo.SaveDividend(ctx, *decl, nil); err != nil {
		s.LogError(ctx, err, "Failed to mark dividend paid", slog.String("declaration_id", declarationID))
		return nil, err
	}
	s.LogInfo(ctx, "Dividend paid",
		slog.String("declaration_id", declarationID),
		slog.Int("shareholders", len(dists)))
	return decl, nil
}

func (s *capitalService) ListDistributions(ctx context.Context, companyID, declarationID string) ([]domain.DividendDistribution, error) {
	if _, err := s.capitalRepo.FindDividend(ctx, companyID, declarationID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: dividend declaration %s", apperrors.ErrNotFound, declarationID)
		}
		return nil, err
	}
	return s.capitalRepo.ListDistributions(ctx, companyID, declarationID)
}
