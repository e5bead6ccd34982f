package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Well-known account codes used by the event encoder.
const (
	AccountPettyCash        = "1000"
	AccountBank             = "1100"
	AccountMobileMoney      = "1110"
	AccountReceivable       = "1200"
	AccountVATInput         = "1300"
	AccountInventory        = "1400"
	AccountFixedAssets      = "1500"
	AccountPayable          = "2000"
	AccountVATPayable       = "2100"
	AccountPAYEPayable      = "2200"
	AccountRSSBPayable      = "2210"
	AccountDividendPayable  = "2300"
	AccountCITPayable       = "2400"
	AccountShareCapital     = "3000"
	AccountSharePremium     = "3100"
	AccountRetainedEarnings = "3200"
	AccountOwnersEquity     = "3300"
	AccountSalesRevenue     = "4000"
	AccountServiceRevenue   = "4100"
	AccountOtherIncome      = "4900"
	AccountPurchases        = "5000"
	AccountSalariesAndWages = "5100"
	AccountRent             = "5200"
	AccountUtilities        = "5300"
	AccountDepreciation     = "5400"
	AccountGeneralExpenses  = "5900"
)

// DefaultChartEntries is the chart every company starts with.
var DefaultChartEntries = []Account{
	{Code: AccountPettyCash, Name: "Petty Cash"},
	{Code: AccountBank, Name: "Bank Account"},
	{Code: AccountMobileMoney, Name: "Mobile Money"},
	{Code: AccountReceivable, Name: "Accounts Receivable"},
	{Code: AccountVATInput, Name: "VAT Input (Recoverable)"},
	{Code: AccountInventory, Name: "Inventory"},
	{Code: AccountFixedAssets, Name: "Fixed Assets"},

	{Code: AccountPayable, Name: "Accounts Payable"},
	{Code: AccountVATPayable, Name: "VAT Payable"},
	{Code: AccountPAYEPayable, Name: "PAYE Payable"},
	{Code: AccountRSSBPayable, Name: "RSSB Payable"},
	{Code: AccountDividendPayable, Name: "Dividend Payable"},
	{Code: AccountCITPayable, Name: "CIT Payable"},

	{Code: AccountShareCapital, Name: "Share Capital"},
	{Code: AccountSharePremium, Name: "Share Premium"},
	{Code: AccountRetainedEarnings, Name: "Retained Earnings"},
	{Code: AccountOwnersEquity, Name: "Owner's Equity"},

	{Code: AccountSalesRevenue, Name: "Sales Revenue"},
	{Code: AccountServiceRevenue, Name: "Service Revenue"},
	{Code: AccountOtherIncome, Name: "Other Income"},

	{Code: AccountPurchases, Name: "Purchases"},
	{Code: AccountSalariesAndWages, Name: "Salaries & Wages"},
	{Code: AccountRent, Name: "Rent"},
	{Code: AccountUtilities, Name: "Utilities"},
	{Code: AccountDepreciation, Name: "Depreciation"},
	{Code: AccountGeneralExpenses, Name: "General Expenses"},
}

// ChartOfAccounts is an immutable lookup of accounts by code.
type ChartOfAccounts struct {
	accounts map[string]Account
	codes    []string
}

// NewChartOfAccounts builds a chart, deriving each category from its code.
// Entries with a category already set must agree with the code.
func NewChartOfAccounts(entries []Account) (*ChartOfAccounts, error) {
	c := &ChartOfAccounts{accounts: make(map[string]Account, len(entries))}
	for _, e := range entries {
		code := strings.TrimSpace(e.Code)
		cat, err := CategoryForCode(code)
		if err != nil {
			return nil, err
		}
		if e.Category != "" && e.Category != cat {
			return nil, fmt.Errorf("account %s declares category %s but code implies %s", code, e.Category, cat)
		}
		if _, dup := c.accounts[code]; dup {
			return nil, fmt.Errorf("duplicate account code %s", code)
		}
		c.accounts[code] = Account{Code: code, Name: e.Name, Category: cat}
		c.codes = append(c.codes, code)
	}
	sort.Strings(c.codes)
	return c, nil
}

// DefaultChart returns the chart built from DefaultChartEntries.
func DefaultChart() *ChartOfAccounts {
	c, err := NewChartOfAccounts(DefaultChartEntries)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the account for a code.
func (c *ChartOfAccounts) Lookup(code string) (Account, bool) {
	a, ok := c.accounts[code]
	return a, ok
}

// Accounts returns all accounts ordered by code.
func (c *ChartOfAccounts) Accounts() []Account {
	out := make([]Account, 0, len(c.codes))
	for _, code := range c.codes {
		out = append(out, c.accounts[code])
	}
	return out
}

// CodesInCategory returns the codes of every account in a category.
func (c *ChartOfAccounts) CodesInCategory(cat AccountCategory) []string {
	var out []string
	for _, code := range c.codes {
		if c.accounts[code].Category == cat {
			out = append(out, code)
		}
	}
	return out
}
