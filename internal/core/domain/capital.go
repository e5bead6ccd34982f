package domain

import (
	"sort"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// SignificantControlThreshold is the ownership or control percentage that makes a beneficial owner significant.
var SignificantControlThreshold = decimal.NewFromInt(25)

var hundred = decimal.NewFromInt(100)

// percentPlaces is the precision of stored ownership percentages.
const percentPlaces = 4

// CompanyCapital is the share capital position of a company.
// Version is bumped on every successful update and backs compare-and-swap in the store.
type CompanyCapital struct {
	CompanyID        string          `json:"companyID"`
	AuthorizedShares int64           `json:"authorizedShares"`
	SharePrice       decimal.Decimal `json:"sharePrice"`
	IssuedShares     int64           `json:"issuedShares"`
	PaidUpCapital    decimal.Decimal `json:"paidUpCapital"`
	Version          int64           `json:"version"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// CheckAllocation returns a CapitalLimitExceededError if issuing shares more would pass the authorized total.
func (c CompanyCapital) CheckAllocation(shares int64) error {
	if c.IssuedShares+shares > c.AuthorizedShares {
		return &apperrors.CapitalLimitExceededError{
			Issued:     c.IssuedShares,
			Requested:  shares,
			Authorized: c.AuthorizedShares,
		}
	}
	return nil
}

// RemainingShares is the number of authorized shares not yet issued.
func (c CompanyCapital) RemainingShares() int64 {
	return c.AuthorizedShares - c.IssuedShares
}

// Shareholder is a registered holder of issued shares.
type Shareholder struct {
	ShareholderID       string          `json:"shareholderID"`
	CompanyID           string          `json:"companyID"`
	Name                string          `json:"name"`
	SharesHeld          int64           `json:"sharesHeld"`
	OwnershipPercentage decimal.Decimal `json:"ownershipPercentage"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// RecomputeOwnership sets every holder's percentage to shares_held / issued * 100.
func RecomputeOwnership(holders []Shareholder, issued int64) {
	for i := range holders {
		if issued <= 0 {
			holders[i].OwnershipPercentage = decimal.Zero
			continue
		}
		holders[i].OwnershipPercentage = decimal.NewFromInt(holders[i].SharesHeld).
			Mul(hundred).
			Div(decimal.NewFromInt(issued)).
			Round(percentPlaces)
	}
}

// BeneficialOwner is a natural person who ultimately owns or controls a company.
type BeneficialOwner struct {
	OwnerID               string          `json:"ownerID"`
	CompanyID             string          `json:"companyID"`
	Name                  string          `json:"name"`
	Nationality           string          `json:"nationality,omitempty"`
	OwnershipPercentage   decimal.Decimal `json:"ownershipPercentage"`
	ControlPercentage     decimal.Decimal `json:"controlPercentage"`
	HasSignificantControl bool            `json:"hasSignificantControl"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// RecomputeControl derives HasSignificantControl from the two percentages.
func (b *BeneficialOwner) RecomputeControl() {
	b.HasSignificantControl = b.OwnershipPercentage.GreaterThanOrEqual(SignificantControlThreshold) ||
		b.ControlPercentage.GreaterThanOrEqual(SignificantControlThreshold)
}

// CheckOwnershipCeiling verifies that replacing (or adding) candidate keeps the
// company's total ownership at or below 100%.
func CheckOwnershipCeiling(existing []BeneficialOwner, candidate BeneficialOwner) error {
	others := decimal.Zero
	for _, o := range existing {
		if o.OwnerID == candidate.OwnerID {
			continue
		}
		others = others.Add(o.OwnershipPercentage)
	}
	if others.Add(candidate.OwnershipPercentage).GreaterThan(hundred) {
		return &apperrors.OwnershipCeilingExceededError{Current: others, Requested: candidate.OwnershipPercentage}
	}
	return nil
}

// SortShareholders orders holders by id so every computation over them is deterministic.
func SortShareholders(holders []Shareholder) {
	sort.Slice(holders, func(i, j int) bool { return holders[i].ShareholderID < holders[j].ShareholderID })
}
