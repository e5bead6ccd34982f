package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/statutory_ledger/internal/repositories/database/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	store *memory.Store
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	s.store = memory.New()
	s.ctx = context.Background()
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func entries(company string, date time.Time, sourceID string, amount int64, debit, credit string) (domain.IdempotencyKey, []domain.LedgerEntry) {
	key := domain.IdempotencyKey{CompanyID: company, SourceType: domain.SourceManual, SourceID: sourceID}
	created := time.Now()
	amt := decimal.NewFromInt(amount)
	return key, []domain.LedgerEntry{
		{EntryID: uuid.NewString(), CompanyID: company, Date: date, AccountCode: debit, Debit: amt, SourceID: sourceID, SourceType: domain.SourceManual, LineNo: 1, CreatedAt: created},
		{EntryID: uuid.NewString(), CompanyID: company, Date: date, AccountCode: credit, Credit: amt, SourceID: sourceID, SourceType: domain.SourceManual, LineNo: 2, CreatedAt: created},
	}
}

func (s *StoreTestSuite) append(company string, date time.Time, sourceID string, amount int64, debit, credit string) bool {
	key, es := entries(company, date, sourceID, amount, debit, credit)
	ok, err := s.store.AppendTransaction(s.ctx, key, es)
	s.Require().NoError(err)
	return ok
}

func (s *StoreTestSuite) TestAppendTransaction_Idempotent() {
	s.True(s.append("c1", day(2025, 1, 5), "s1", 100, "1000", "4000"))
	s.False(s.append("c1", day(2025, 1, 5), "s1", 999, "1000", "4000"))

	all, err := s.store.ListEntries(s.ctx, "c1", portsrepo.EntryFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)
	s.True(all[0].Debit.Equal(decimal.NewFromInt(100)))

	// same source id under another company is a different key
	s.True(s.append("c2", day(2025, 1, 5), "s1", 5, "1000", "4000"))
}

func (s *StoreTestSuite) TestListEntries_OrderAndFilters() {
	s.append("c1", day(2025, 3, 1), "march", 30, "1100", "4000")
	s.append("c1", day(2025, 1, 1), "jan", 10, "1000", "4000")
	s.append("c1", day(2025, 2, 1), "feb", 20, "1000", "4100")

	all, err := s.store.ListEntries(s.ctx, "c1", portsrepo.EntryFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 6)
	s.Equal("jan", all[0].SourceID)
	s.Equal(1, all[0].LineNo)
	s.Equal("march", all[5].SourceID)

	from, to := day(2025, 2, 1), day(2025, 2, 28)
	feb, err := s.store.ListEntries(s.ctx, "c1", portsrepo.EntryFilter{From: &from, To: &to})
	s.Require().NoError(err)
	s.Len(feb, 2)

	cash, err := s.store.ListEntries(s.ctx, "c1", portsrepo.EntryFilter{AccountCodes: []string{"1000", "1100", "1000"}})
	s.Require().NoError(err)
	s.Require().Len(cash, 3)
	s.Equal("jan", cash[0].SourceID)
	s.Equal("feb", cash[1].SourceID)
	s.Equal("march", cash[2].SourceID)

	upToJan := day(2025, 1, 31)
	rev, err := s.store.ListEntries(s.ctx, "c1", portsrepo.EntryFilter{AccountCodes: []string{"4000"}, To: &upToJan})
	s.Require().NoError(err)
	s.Len(rev, 1)

	none, err := s.store.ListEntries(s.ctx, "other", portsrepo.EntryFilter{})
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreTestSuite) TestListEntries_CursorPaging() {
	for i := 1; i <= 5; i++ {
		s.append("c1", day(2025, 1, i), fmt.Sprintf("s%d", i), int64(i), "1000", "4000")
	}
	var seen []string
	var after *portsrepo.EntryCursor
	for {
		page, err := s.store.ListEntries(s.ctx, "c1", portsrepo.EntryFilter{Limit: 3, After: after})
		s.Require().NoError(err)
		if len(page) == 0 {
			break
		}
		for _, e := range page {
			seen = append(seen, e.EntryID)
		}
		last := page[len(page)-1]
		after = &portsrepo.EntryCursor{Date: last.Date, CreatedAt: last.CreatedAt, LineNo: last.LineNo, EntryID: last.EntryID}
	}
	s.Len(seen, 10)
	uniq := map[string]struct{}{}
	for _, id := range seen {
		uniq[id] = struct{}{}
	}
	s.Len(uniq, 10)
}

func (s *StoreTestSuite) TestEntriesBySource() {
	s.append("c1", day(2025, 1, 1), "s1", 10, "1000", "4000")
	got, err := s.store.EntriesBySource(s.ctx, domain.IdempotencyKey{CompanyID: "c1", SourceType: domain.SourceManual, SourceID: "s1"})
	s.Require().NoError(err)
	s.Len(got, 2)

	got, err = s.store.EntriesBySource(s.ctx, domain.IdempotencyKey{CompanyID: "c1", SourceType: domain.SourceInvoice, SourceID: "s1"})
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *StoreTestSuite) TestSaveCapital_CompareAndSwap() {
	_, err := s.store.FindCapital(s.ctx, "c1")
	s.ErrorIs(err, apperrors.ErrNotFound)

	c := domain.CompanyCapital{CompanyID: "c1", AuthorizedShares: 100}
	s.Require().NoError(s.store.SaveCapital(s.ctx, c, 0, nil, ""))
	s.ErrorIs(s.store.SaveCapital(s.ctx, c, 0, nil, ""), apperrors.ErrConflict)

	stored, err := s.store.FindCapital(s.ctx, "c1")
	s.Require().NoError(err)
	s.Equal(int64(1), stored.Version)

	stored.IssuedShares = 10
	holders := []domain.Shareholder{{ShareholderID: "h1", CompanyID: "c1", SharesHeld: 10}}
	s.Require().NoError(s.store.SaveCapital(s.ctx, *stored, stored.Version, holders, "c1/capital_contribution/CC-1"))

	list, err := s.store.ListShareholders(s.ctx, "c1")
	s.Require().NoError(err)
	s.Len(list, 1)

	s.ErrorIs(s.store.SaveCapital(s.ctx, *stored, 1, nil, "c1/capital_contribution/CC-2"), apperrors.ErrConflict)

	applied, err := s.store.CapitalPostingApplied(s.ctx, "c1", "c1/capital_contribution/CC-1")
	s.Require().NoError(err)
	s.True(applied)
	applied, err = s.store.CapitalPostingApplied(s.ctx, "c1", "c1/capital_contribution/CC-2")
	s.Require().NoError(err)
	s.False(applied, "a rejected save must not record its posting")
}

func (s *StoreTestSuite) TestPayrollAndQIT() {
	rec := domain.PayrollRecord{RecordID: "r1", CompanyID: "c1", EmployeeID: "e2", Period: "2025-01"}
	ok, err := s.store.SavePayrollRecord(s.ctx, rec)
	s.Require().NoError(err)
	s.True(ok)
	ok, err = s.store.SavePayrollRecord(s.ctx, rec)
	s.Require().NoError(err)
	s.False(ok)

	rec2 := domain.PayrollRecord{RecordID: "r2", CompanyID: "c1", EmployeeID: "e1", Period: "2025-01"}
	_, err = s.store.SavePayrollRecord(s.ctx, rec2)
	s.Require().NoError(err)
	list, err := s.store.ListPayrollRecords(s.ctx, "c1", "2025-01")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("e1", list[0].EmployeeID)

	found, err := s.store.FindPayrollRecord(s.ctx, "c1", "2025-01", "e2")
	s.Require().NoError(err)
	s.Equal("r1", found.RecordID)
	_, err = s.store.FindPayrollRecord(s.ctx, "c1", "2025-02", "e2")
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.store.FindQITReturn(s.ctx, "c1", 2025, 1)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Require().NoError(s.store.SaveQITReturn(s.ctx, domain.QITReturn{CompanyID: "c1", Year: 2025, Quarter: 1, TaxDue: decimal.NewFromInt(7)}))
	q, err := s.store.FindQITReturn(s.ctx, "c1", 2025, 1)
	s.Require().NoError(err)
	s.True(q.TaxDue.Equal(decimal.NewFromInt(7)))
}

func (s *StoreTestSuite) TestDividends() {
	decl := domain.DividendDeclaration{DeclarationID: "d1", CompanyID: "c1", Status: domain.DividendDraft}
	s.Require().NoError(s.store.SaveDividend(s.ctx, decl, nil))
	dists := []domain.DividendDistribution{{DistributionID: "x", DeclarationID: "d1", ShareholderID: "h1"}}
	decl.Status = domain.DividendConfirmed
	s.Require().NoError(s.store.SaveDividend(s.ctx, decl, dists))

	// nil keeps existing distributions
	s.Require().NoError(s.store.SaveDividend(s.ctx, decl, nil))
	got, err := s.store.ListDistributions(s.ctx, "c1", "d1")
	s.Require().NoError(err)
	s.Len(got, 1)

	found, err := s.store.FindDividend(s.ctx, "c1", "d1")
	s.Require().NoError(err)
	s.Equal(domain.DividendConfirmed, found.Status)
	_, err = s.store.FindDividend(s.ctx, "c2", "d1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func TestAppendTransaction_ConcurrentSameKey(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	var wg sync.WaitGroup
	var mu sync.Mutex
	committed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, es := entries("c1", day(2025, 1, 1), "same", 10, "1000", "4000")
			ok, err := store.AppendTransaction(ctx, key, es)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				committed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, committed)
	all, err := store.ListEntries(ctx, "c1", portsrepo.EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
