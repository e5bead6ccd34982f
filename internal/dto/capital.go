package dto

import (
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ConfigureCapitalRequest sets a company's authorized share capital.
type ConfigureCapitalRequest struct {
	AuthorizedShares int64           `json:"authorizedShares" binding:"required,gt=0"`
	SharePrice       decimal.Decimal `json:"sharePrice"`
}

// AllocateSharesRequest issues shares without a cash movement.
type AllocateSharesRequest struct {
	ShareholderID string `json:"shareholderID" binding:"required"`
	Shares        int64  `json:"shares" binding:"required,gt=0"`
}

// RegisterShareholderRequest creates or renames a shareholder.
type RegisterShareholderRequest struct {
	Name string `json:"name" binding:"required"`
}

// BeneficialOwnerRequest defines the data of a beneficial owner.
type BeneficialOwnerRequest struct {
	Name                string          `json:"name" binding:"required"`
	Nationality         string          `json:"nationality"`
	OwnershipPercentage decimal.Decimal `json:"ownershipPercentage"`
	ControlPercentage   decimal.Decimal `json:"controlPercentage"`
}

// ToBeneficialOwner converts the request for the given company and owner id.
func (r BeneficialOwnerRequest) ToBeneficialOwner(companyID, ownerID string) domain.BeneficialOwner {
	return domain.BeneficialOwner{
		OwnerID:             ownerID,
		CompanyID:           companyID,
		Name:                r.Name,
		Nationality:         r.Nationality,
		OwnershipPercentage: r.OwnershipPercentage,
		ControlPercentage:   r.ControlPercentage,
	}
}

// DeclareDividendRequest drafts a dividend as a percentage of profit.
type DeclareDividendRequest struct {
	DeclarationDate    Date            `json:"declarationDate"`
	ProfitAmount       decimal.Decimal `json:"profitAmount"`
	DividendPercentage decimal.Decimal `json:"dividendPercentage"`
}

// PayDividendRequest settles every distribution of a declaration.
type PayDividendRequest struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" binding:"required"`
	PaymentDate   Date                 `json:"paymentDate"` // Optional, defaults to today
}
