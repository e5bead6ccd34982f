package domain

import (
	"time"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DividendStatus is the lifecycle state of a declaration: draft -> confirmed -> paid.
type DividendStatus string

const (
	DividendDraft     DividendStatus = "draft"
	DividendConfirmed DividendStatus = "confirmed"
	DividendPaid      DividendStatus = "paid"
)

// DividendDeclaration is a decision to distribute part of profit to shareholders.
type DividendDeclaration struct {
	DeclarationID      string          `json:"declarationID"`
	CompanyID          string          `json:"companyID"`
	DeclarationDate    time.Time       `json:"declarationDate"`
	ProfitAmount       decimal.Decimal `json:"profitAmount"`
	DividendPercentage decimal.Decimal `json:"dividendPercentage"`
	DividendPool       decimal.Decimal `json:"dividendPool"`
	Status             DividendStatus  `json:"status"`
	AuditFields
}

// DividendPool returns profit * percentage / 100 rounded to places.
func DividendPool(profit, percentage decimal.Decimal, places int32) decimal.Decimal {
	return profit.Mul(percentage).Div(hundred).Round(places)
}

// DividendDistribution is one shareholder's share of a declaration.
type DividendDistribution struct {
	DistributionID   string          `json:"distributionID"`
	DeclarationID    string          `json:"declarationID"`
	CompanyID        string          `json:"companyID"`
	ShareholderID    string          `json:"shareholderID"`
	SharesHeldAtTime int64           `json:"sharesHeldAtTime"`
	Amount           decimal.Decimal `json:"amount"`
	IsPaid           bool            `json:"isPaid"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
}

// DistributePool splits pool pro rata over the holders' shares. Each amount is
// shares * pool / total rounded to places; whatever rounding leaves over goes to
// the largest holder (lowest id on ties), so the amounts always sum to pool.
// Holders without shares receive nothing. DistributionID is left empty.
func DistributePool(pool decimal.Decimal, holders []Shareholder, places int32) ([]DividendDistribution, error) {
	eligible := make([]Shareholder, 0, len(holders))
	var total int64
	for _, h := range holders {
		if h.SharesHeld > 0 {
			eligible = append(eligible, h)
			total += h.SharesHeld
		}
	}
	if total == 0 {
		return nil, apperrors.NewValidationError("shareholders", "no shareholder holds shares")
	}
	SortShareholders(eligible)

	totalShares := decimal.NewFromInt(total)
	out := make([]DividendDistribution, len(eligible))
	allocated := decimal.Zero
	largest := 0
	for i, h := range eligible {
		shares := decimal.NewFromInt(h.SharesHeld)
		amount := shares.Mul(pool).Div(totalShares).Round(places)
		out[i] = DividendDistribution{
			CompanyID:        h.CompanyID,
			ShareholderID:    h.ShareholderID,
			SharesHeldAtTime: h.SharesHeld,
			Amount:           amount,
		}
		allocated = allocated.Add(amount)
		if h.SharesHeld > eligible[largest].SharesHeld {
			largest = i
		}
	}
	if left := pool.Sub(allocated); !left.IsZero() {
		out[largest].Amount = out[largest].Amount.Add(left)
	}
	return out, nil
}
