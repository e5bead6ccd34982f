package domain

import (
	"fmt"
	"strings"
)

// AccountCategory defines the fundamental accounting type of an account.
type AccountCategory string

const (
	Asset     AccountCategory = "ASSET"
	Liability AccountCategory = "LIABILITY"
	Equity    AccountCategory = "EQUITY"
	Revenue   AccountCategory = "REVENUE"
	Expense   AccountCategory = "EXPENSE"
)

// Account is a chart of accounts entry. Accounts are reference data and never change at runtime.
type Account struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Category AccountCategory `json:"category"`
}

// CategoryForCode derives the category from the first digit of an account code.
func CategoryForCode(code string) (AccountCategory, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("empty account code")
	}
	switch code[0] {
	case '1':
		return Asset, nil
	case '2':
		return Liability, nil
	case '3':
		return Equity, nil
	case '4':
		return Revenue, nil
	case '5':
		return Expense, nil
	default:
		return "", fmt.Errorf("account code %q must start with 1-5", code)
	}
}

// IsDebitNormal reports whether the category increases on the debit side.
func (c AccountCategory) IsDebitNormal() bool {
	return c == Asset || c == Expense
}
