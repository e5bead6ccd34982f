package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CapitalServiceTestSuite struct {
	suite.Suite
	env     *testEnv
	capital portssvc.CapitalSvcFacade
	ctx     context.Context
}

func (s *CapitalServiceTestSuite) SetupTest() {
	s.env = newTestEnv()
	s.capital = s.env.svcs.Capital
	s.ctx = context.Background()
	_, err := s.capital.ConfigureCapital(s.ctx, testCompany, 10000, dec("1000"))
	s.Require().NoError(err)
}

func TestCapitalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CapitalServiceTestSuite))
}

func (s *CapitalServiceTestSuite) contribution(sourceID, holder string, shares int64) domain.CapitalContributionEvent {
	h := header(sourceID, date(2025, 1, 5))
	h.PartyID = holder
	h.PartyName = "Holder " + holder
	return domain.CapitalContributionEvent{
		EventHeader:   h,
		Amount:        decimal.NewFromInt(shares).Mul(dec("1000")),
		Shares:        shares,
		PaymentMethod: domain.PaymentBank,
	}
}

func (s *CapitalServiceTestSuite) TestContribution_CeilingScenario() {
	res, err := s.env.svcs.Events.Record(s.ctx, s.contribution("CC-1", "sh-1", 3000))
	s.Require().NoError(err)
	s.Equal(domain.PostStatusCommitted, res.Status)

	c, err := s.capital.GetCapital(s.ctx, testCompany)
	s.Require().NoError(err)
	s.Equal(int64(3000), c.IssuedShares)
	s.True(c.PaidUpCapital.Equal(dec("3000000")))

	_, err = s.env.svcs.Events.Record(s.ctx, s.contribution("CC-2", "sh-2", 8000))
	var limit *apperrors.CapitalLimitExceededError
	s.Require().ErrorAs(err, &limit)
	s.Equal(int64(3000), limit.Issued)
	s.Equal(int64(8000), limit.Requested)
	s.Equal(int64(10000), limit.Authorized)
	s.Contains(err.Error(), "11000")

	after, err := s.capital.GetCapital(s.ctx, testCompany)
	s.Require().NoError(err)
	s.Equal(int64(3000), after.IssuedShares)
	s.True(after.PaidUpCapital.Equal(dec("3000000")))

	entries, _, err := s.env.svcs.Ledger.ListEntries(s.ctx, testCompany, portssvc.EntryQuery{})
	s.Require().NoError(err)
	s.Len(entries, 2, "the rejected contribution must not reach the ledger")
}

func (s *CapitalServiceTestSuite) TestContribution_ReplayDoesNotReissue() {
	ev := s.contribution("CC-1", "sh-1", 100)
	_, err := s.env.svcs.Events.Record(s.ctx, ev)
	s.Require().NoError(err)
	res, err := s.env.svcs.Events.Record(s.ctx, ev)
	s.Require().NoError(err)
	s.True(res.Skipped())

	c, err := s.capital.GetCapital(s.ctx, testCompany)
	s.Require().NoError(err)
	s.Equal(int64(100), c.IssuedShares)

	holders, err := s.capital.ListShareholders(s.ctx, testCompany)
	s.Require().NoError(err)
	s.Require().Len(holders, 1)
	s.Equal(int64(100), holders[0].SharesHeld)
	s.Equal("Holder sh-1", holders[0].Name)
	s.True(holders[0].OwnershipPercentage.Equal(dec("100")))
}

func (s *CapitalServiceTestSuite) TestShareIssuance_PaidUpAtPar() {
	h := header("SI-1", date(2025, 2, 1))
	h.PartyID = "sh-9"
	_, err := s.env.svcs.Events.Record(s.ctx, domain.ShareIssuanceEvent{
		EventHeader:   h,
		Amount:        dec("10500"),
		ParValue:      dec("1000"),
		PaymentMethod: domain.PaymentBank,
	})
	s.Require().NoError(err)
	c, err := s.capital.GetCapital(s.ctx, testCompany)
	s.Require().NoError(err)
	s.Equal(int64(10), c.IssuedShares)
	s.True(c.PaidUpCapital.Equal(dec("10000")))
}

func (s *CapitalServiceTestSuite) TestAllocateShares_Ownership() {
	_, err := s.capital.AllocateShares(s.ctx, testCompany, "a", 1000)
	s.Require().NoError(err)
	_, err = s.capital.AllocateShares(s.ctx, testCompany, "b", 3000)
	s.Require().NoError(err)
	c, err := s.capital.AllocateShares(s.ctx, testCompany, "", 0)
	s.Nil(c)
	s.ErrorIs(err, apperrors.ErrValidation)

	holders, err := s.capital.ListShareholders(s.ctx, testCompany)
	s.Require().NoError(err)
	s.Require().Len(holders, 2)
	s.True(holders[0].OwnershipPercentage.Equal(dec("25")))
	s.True(holders[1].OwnershipPercentage.Equal(dec("75")))

	c, err = s.capital.GetCapital(s.ctx, testCompany)
	s.Require().NoError(err)
	s.True(c.PaidUpCapital.IsZero())

	_, err = s.capital.AllocateShares(s.ctx, testCompany, "a", 6001)
	s.ErrorIs(err, apperrors.ErrCapitalLimitExceeded)

	_, err = s.capital.ConfigureCapital(s.ctx, testCompany, 3999, dec("1000"))
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *CapitalServiceTestSuite) TestIssuedSharesStayFullyHeld() {
	_, err := s.env.svcs.Events.Record(s.ctx, s.contribution("CC-1", "sh-1", 300))
	s.Require().NoError(err)
	assertFullyHeld(s.T(), s.env.store, 300)

	h := header("SI-1", date(2025, 2, 1))
	h.PartyID = "sh-2"
	_, err = s.env.svcs.Events.Record(s.ctx, domain.ShareIssuanceEvent{EventHeader: h, Amount: dec("5000"), ParValue: dec("1000"), PaymentMethod: domain.PaymentBank})
	s.Require().NoError(err)
	assertFullyHeld(s.T(), s.env.store, 305)

	_, err = s.capital.AllocateShares(s.ctx, testCompany, "sh-1", 95)
	s.Require().NoError(err)
	assertFullyHeld(s.T(), s.env.store, 400)

	_, err = s.capital.AllocateShares(s.ctx, testCompany, "", 10)
	var verr *apperrors.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "shareholderID")

	_, err = s.env.svcs.Events.Record(s.ctx, s.contribution("CC-2", "", 10))
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "partyID")
	assertFullyHeld(s.T(), s.env.store, 400)

	// With every share held, the split follows shares over issued shares.
	decl, err := s.capital.DeclareDividend(s.ctx, testCompany, date(2025, 6, 1), dec("4000"), dec("10"), "user-1")
	s.Require().NoError(err)
	_, err = s.capital.ConfirmDividend(s.ctx, testCompany, decl.DeclarationID, "user-1")
	s.Require().NoError(err)
	dists, err := s.capital.DistributeDividend(s.ctx, testCompany, decl.DeclarationID)
	s.Require().NoError(err)
	s.Require().Len(dists, 2)
	byHolder := map[string]decimal.Decimal{}
	for _, d := range dists {
		byHolder[d.ShareholderID] = d.Amount
	}
	s.True(byHolder["sh-1"].Equal(dec("395")), "sh-1 got %s", byHolder["sh-1"])
	s.True(byHolder["sh-2"].Equal(dec("5")), "sh-2 got %s", byHolder["sh-2"])
}

func (s *CapitalServiceTestSuite) TestAllocateShares_ConcurrentNeverExceedsCeiling() {
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.capital.AllocateShares(s.ctx, testCompany, "h", 300)
		}()
	}
	wg.Wait()
	c, err := s.capital.GetCapital(s.ctx, testCompany)
	s.Require().NoError(err)
	s.Equal(int64(9900), c.IssuedShares)
}

func (s *CapitalServiceTestSuite) TestCapitalNotConfigured() {
	_, err := s.capital.AllocateShares(s.ctx, "no-capital", "a", 1)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *CapitalServiceTestSuite) TestBeneficialOwners() {
	owner := func(id, own, ctl string) domain.BeneficialOwner {
		return domain.BeneficialOwner{OwnerID: id, CompanyID: testCompany, Name: id, OwnershipPercentage: dec(own), ControlPercentage: dec(ctl)}
	}
	a, err := s.capital.UpsertBeneficialOwner(s.ctx, owner("a", "60", "0"))
	s.Require().NoError(err)
	s.True(a.HasSignificantControl)

	b, err := s.capital.UpsertBeneficialOwner(s.ctx, owner("b", "10", "30"))
	s.Require().NoError(err)
	s.True(b.HasSignificantControl)

	_, err = s.capital.UpsertBeneficialOwner(s.ctx, owner("c", "31", "0"))
	var ceiling *apperrors.OwnershipCeilingExceededError
	s.Require().ErrorAs(err, &ceiling)
	s.True(ceiling.Current.Equal(dec("70")))

	// replacing an owner's own share does not count it twice
	a, err = s.capital.UpsertBeneficialOwner(s.ctx, owner("a", "90", "0"))
	s.Require().NoError(err)
	s.True(a.OwnershipPercentage.Equal(dec("90")))

	small, err := s.capital.UpsertBeneficialOwner(s.ctx, owner("b", "10", "24.99"))
	s.Require().NoError(err)
	s.False(small.HasSignificantControl)

	_, err = s.capital.UpsertBeneficialOwner(s.ctx, owner("d", "-1", "0"))
	s.ErrorIs(err, apperrors.ErrValidation)

	list, err := s.capital.ListBeneficialOwners(s.ctx, testCompany)
	s.Require().NoError(err)
	s.Len(list, 2)
}

func (s *CapitalServiceTestSuite) TestDividendLifecycle() {
	for _, a := range []struct {
		id     string
		shares int64
	}{{"sh-a", 1}, {"sh-b", 1}, {"sh-c", 1}} {
		_, err := s.capital.AllocateShares(s.ctx, testCompany, a.id, a.shares)
		s.Require().NoError(err)
	}

	decl, err := s.capital.DeclareDividend(s.ctx, testCompany, date(2025, 6, 1), dec("1000"), dec("10"), "user-1")
	s.Require().NoError(err)
	s.Equal(domain.DividendDraft, decl.Status)
	s.True(decl.DividendPool.Equal(dec("100")))

	_, err = s.capital.DistributeDividend(s.ctx, testCompany, decl.DeclarationID)
	s.ErrorIs(err, apperrors.ErrConflict, "draft dividends cannot be distributed")

	confirmed, err := s.capital.ConfirmDividend(s.ctx, testCompany, decl.DeclarationID, "user-1")
	s.Require().NoError(err)
	s.Equal(domain.DividendConfirmed, confirmed.Status)

	dists, err := s.capital.DistributeDividend(s.ctx, testCompany, decl.DeclarationID)
	s.Require().NoError(err)
	s.Require().Len(dists, 3)
	total := decimal.Zero
	for _, d := range dists {
		total = total.Add(d.Amount)
	}
	s.True(total.Equal(dec("100")), "distributions sum to %s", total)
	s.True(dists[0].Amount.Equal(dec("34")), "residual goes to the lowest id on a tie")

	paid, err := s.capital.PayDividend(s.ctx, testCompany, decl.DeclarationID, domain.PaymentBank, date(2025, 6, 15), "user-1")
	s.Require().NoError(err)
	s.Equal(domain.DividendPaid, paid.Status)

	dists, err = s.capital.ListDistributions(s.ctx, testCompany, decl.DeclarationID)
	s.Require().NoError(err)
	for _, d := range dists {
		s.True(d.IsPaid)
		s.NotNil(d.PaidAt)
	}

	payable, err := s.env.svcs.Reporting.AccountBalance(s.ctx, testCompany, domain.AccountDividendPayable, date(2025, 12, 31))
	s.Require().NoError(err)
	s.True(payable.Balance.IsZero())
	retained, err := s.env.svcs.Reporting.AccountBalance(s.ctx, testCompany, domain.AccountRetainedEarnings, date(2025, 12, 31))
	s.Require().NoError(err)
	s.True(retained.Balance.Equal(dec("100")))

	_, err = s.capital.PayDividend(s.ctx, testCompany, decl.DeclarationID, domain.PaymentBank, date(2025, 6, 15), "user-1")
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.capital.ListDistributions(s.ctx, testCompany, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *CapitalServiceTestSuite) TestPayDividend_RequiresDistribution() {
	_, err := s.capital.AllocateShares(s.ctx, testCompany, "sh-a", 10)
	s.Require().NoError(err)
	decl, err := s.capital.DeclareDividend(s.ctx, testCompany, date(2025, 6, 1), dec("500"), dec("20"), "user-1")
	s.Require().NoError(err)
	_, err = s.capital.ConfirmDividend(s.ctx, testCompany, decl.DeclarationID, "user-1")
	s.Require().NoError(err)

	_, err = s.capital.PayDividend(s.ctx, testCompany, decl.DeclarationID, domain.PaymentBank, date(2025, 6, 2), "user-1")
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.capital.ConfirmDividend(s.ctx, testCompany, decl.DeclarationID, "user-1")
	s.ErrorIs(err, apperrors.ErrConflict)
}
