package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCategoryForCode(t *testing.T) {
	cases := map[string]domain.AccountCategory{
		"1000": domain.Asset,
		"2210": domain.Liability,
		"3100": domain.Equity,
		"4900": domain.Revenue,
		"5400": domain.Expense,
	}
	for code, want := range cases {
		got, err := domain.CategoryForCode(code)
		require.NoError(t, err, code)
		assert.Equal(t, want, got, code)
	}

	_, err := domain.CategoryForCode("9000")
	assert.Error(t, err)
	_, err = domain.CategoryForCode("")
	assert.Error(t, err)
}

func TestDefaultChart(t *testing.T) {
	chart := domain.DefaultChart()

	acc, ok := chart.Lookup(domain.AccountVATPayable)
	require.True(t, ok)
	assert.Equal(t, "VAT Payable", acc.Name)
	assert.Equal(t, domain.Liability, acc.Category)

	accounts := chart.Accounts()
	assert.Len(t, accounts, len(domain.DefaultChartEntries))
	for i := 1; i < len(accounts); i++ {
		assert.Less(t, accounts[i-1].Code, accounts[i].Code)
	}
	assert.Equal(t, []string{"4000", "4100", "4900"}, chart.CodesInCategory(domain.Revenue))

	_, ok = chart.Lookup("1999")
	assert.False(t, ok)
}

func TestNewChartOfAccounts_Rejects(t *testing.T) {
	_, err := domain.NewChartOfAccounts([]domain.Account{{Code: "1000"}, {Code: "1000"}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = domain.NewChartOfAccounts([]domain.Account{{Code: "1000", Category: domain.Expense}})
	assert.ErrorContains(t, err, "implies")

	_, err = domain.NewChartOfAccounts([]domain.Account{{Code: "7000"}})
	assert.Error(t, err)
}

func TestPaymentAccount(t *testing.T) {
	code, ok := domain.PaymentAccount(domain.PaymentCash)
	assert.True(t, ok)
	assert.Equal(t, domain.AccountPettyCash, code)

	for _, m := range []domain.PaymentMethod{domain.PaymentBank, domain.PaymentBankTransfer, domain.PaymentCheque, domain.PaymentCard} {
		code, ok = domain.PaymentAccount(m)
		assert.True(t, ok)
		assert.Equal(t, domain.AccountBank, code)
	}

	code, _ = domain.PaymentAccount(domain.PaymentMobileMoney)
	assert.Equal(t, domain.AccountMobileMoney, code)

	_, ok = domain.PaymentAccount("barter")
	assert.False(t, ok)
}

func TestTransaction_IsBalanced(t *testing.T) {
	tx := domain.Transaction{Lines: []domain.EntryLine{
		domain.DebitLine("1000", d("100.00")),
		domain.CreditLine("4000", d("99.995")),
	}}
	assert.True(t, tx.IsBalanced())

	tx.Lines[1] = domain.CreditLine("4000", d("99.98"))
	assert.False(t, tx.IsBalanced())
	debits, credits := tx.Totals()
	assert.True(t, debits.Equal(d("100")))
	assert.True(t, credits.Equal(d("99.98")))
}

func TestPeriods(t *testing.T) {
	feb := domain.MonthPeriod(2024, time.February)
	assert.Equal(t, "2024-02-29", feb.End.Format(time.DateOnly))
	assert.True(t, feb.Contains(time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)))
	assert.False(t, feb.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	due := map[int]string{1: "2025-03-31", 2: "2025-06-30", 3: "2025-09-30", 4: "2025-12-31"}
	for q, want := range due {
		got, err := domain.QuarterDueDate(2025, q)
		require.NoError(t, err)
		assert.Equal(t, want, got.Format(time.DateOnly))
	}
	_, err := domain.QuarterPeriod(2025, 5)
	assert.Error(t, err)

	_, err = domain.NewPeriod(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)

	p, err := domain.ParsePayrollPeriod("2025-04")
	require.NoError(t, err)
	assert.Equal(t, "2025-04-30", p.End.Format(time.DateOnly))
	_, err = domain.ParsePayrollPeriod("April")
	assert.Error(t, err)
}

func TestPayrollBreakdown_Check(t *testing.T) {
	b := domain.PayrollBreakdown{
		GrossSalary:  d("500000"),
		PAYE:         d("70500"),
		RSSBEmployee: d("37500"),
		RSSBEmployer: d("37500"),
		NetSalary:    d("392000"),
	}
	assert.NoError(t, b.Check())
	assert.True(t, b.EmployerCost().Equal(d("537500")))

	b.NetSalary = d("392001")
	assert.Error(t, b.Check())

	_, err := domain.NewPayrollRecord("r1", "c1", domain.Employee{EmployeeID: "e1"}, "2025-01", b, domain.PaymentBank, time.Now())
	assert.Error(t, err)
}

func TestCompanyCapital_CheckAllocation(t *testing.T) {
	c := domain.CompanyCapital{AuthorizedShares: 10000, IssuedShares: 3000}
	assert.NoError(t, c.CheckAllocation(7000))

	err := c.CheckAllocation(8000)
	var limitErr *apperrors.CapitalLimitExceededError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, int64(3000), limitErr.Issued)
	assert.Equal(t, int64(8000), limitErr.Requested)
	assert.ErrorIs(t, err, apperrors.ErrCapitalLimitExceeded)
	assert.Contains(t, err.Error(), "11000")
}

func TestRecomputeOwnership(t *testing.T) {
	holders := []domain.Shareholder{{ShareholderID: "a", SharesHeld: 1}, {ShareholderID: "b", SharesHeld: 2}}
	domain.RecomputeOwnership(holders, 3)
	assert.Equal(t, "33.3333", holders[0].OwnershipPercentage.String())
	assert.Equal(t, "66.6667", holders[1].OwnershipPercentage.String())

	domain.RecomputeOwnership(holders, 0)
	assert.True(t, holders[0].OwnershipPercentage.IsZero())
}

func TestBeneficialOwner_Control(t *testing.T) {
	o := domain.BeneficialOwner{OwnershipPercentage: d("10"), ControlPercentage: d("25")}
	o.RecomputeControl()
	assert.True(t, o.HasSignificantControl)

	o.ControlPercentage = d("24.99")
	o.RecomputeControl()
	assert.False(t, o.HasSignificantControl)
}

func TestCheckOwnershipCeiling(t *testing.T) {
	existing := []domain.BeneficialOwner{
		{OwnerID: "a", OwnershipPercentage: d("60")},
		{OwnerID: "b", OwnershipPercentage: d("30")},
	}
	assert.NoError(t, domain.CheckOwnershipCeiling(existing, domain.BeneficialOwner{OwnerID: "c", OwnershipPercentage: d("10")}))
	// replacing b's share is measured without b's old value
	assert.NoError(t, domain.CheckOwnershipCeiling(existing, domain.BeneficialOwner{OwnerID: "b", OwnershipPercentage: d("40")}))

	err := domain.CheckOwnershipCeiling(existing, domain.BeneficialOwner{OwnerID: "c", OwnershipPercentage: d("10.01")})
	assert.ErrorIs(t, err, apperrors.ErrOwnershipCeilingExceeded)
	assert.Contains(t, err.Error(), "100.01")
}

func TestDistributePool_Conservation(t *testing.T) {
	holders := []domain.Shareholder{
		{ShareholderID: "c", SharesHeld: 1},
		{ShareholderID: "a", SharesHeld: 1},
		{ShareholderID: "b", SharesHeld: 1},
		{ShareholderID: "z", SharesHeld: 0},
	}
	dists, err := domain.DistributePool(d("100"), holders, 0)
	require.NoError(t, err)
	require.Len(t, dists, 3)

	sum := decimal.Zero
	for _, dist := range dists {
		sum = sum.Add(dist.Amount)
	}
	assert.True(t, sum.Equal(d("100")), sum.String())
	// tie on shares: residual lands on the lowest id
	assert.Equal(t, "a", dists[0].ShareholderID)
	assert.Equal(t, "34", dists[0].Amount.String())
}

func TestDistributePool_ResidualToLargestHolder(t *testing.T) {
	pools := []string{"1000", "999.99", "7", "1234567.89", "0.01"}
	holders := []domain.Shareholder{
		{ShareholderID: "h1", SharesHeld: 7},
		{ShareholderID: "h2", SharesHeld: 13},
		{ShareholderID: "h3", SharesHeld: 29},
	}
	for _, p := range pools {
		dists, err := domain.DistributePool(d(p), holders, 2)
		require.NoError(t, err)
		sum := decimal.Zero
		for _, dist := range dists {
			sum = sum.Add(dist.Amount)
		}
		assert.True(t, sum.Equal(d(p)), "pool %s summed to %s", p, sum)
	}

	dists, err := domain.DistributePool(d("10"), holders, 0)
	require.NoError(t, err)
	// 1.43 -> 1, 2.65 -> 3, 5.92 -> 6 sums to 10 already; h3 keeps its share
	assert.Equal(t, "6", dists[2].Amount.String())
}

func TestDistributePool_NoShares(t *testing.T) {
	_, err := domain.DistributePool(d("10"), nil, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestShareIssuanceEvent_SharesIssued(t *testing.T) {
	e := domain.ShareIssuanceEvent{Amount: d("2500"), ParValue: d("1000")}
	assert.Equal(t, int64(2), e.SharesIssued())
	e.ParValue = decimal.Zero
	assert.Equal(t, int64(0), e.SharesIssued())
}
