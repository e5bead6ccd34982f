package services

import (
	"context"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ShareCapitalSvc manages authorized and issued share capital.
type ShareCapitalSvc interface {
	ConfigureCapital(ctx context.Context, companyID string, authorizedShares int64, sharePrice decimal.Decimal) (*domain.CompanyCapital, error)
	GetCapital(ctx context.Context, companyID string) (*domain.CompanyCapital, error)

	// AllocateShares issues shares to shareholderID without a ledger posting.
	AllocateShares(ctx context.Context, companyID, shareholderID string, shares int64) (*domain.CompanyCapital, error)

	// IssueShares checks the authorized ceiling, posts tx and adds shares and
	// paidUp to the company's capital exactly once per posting key, also when
	// a replay finds the posting committed but the capital not yet updated.
	// The whole sequence runs under the company lock.
	IssueShares(ctx context.Context, tx domain.Transaction, shareholderID, shareholderName string, shares int64, paidUp decimal.Decimal) (domain.PostResult, error)
}

// OwnershipSvc manages the share and beneficial ownership registers.
type OwnershipSvc interface {
	RegisterShareholder(ctx context.Context, companyID, shareholderID, name string) (*domain.Shareholder, error)
	ListShareholders(ctx context.Context, companyID string) ([]domain.Shareholder, error)
	UpsertBeneficialOwner(ctx context.Context, owner domain.BeneficialOwner) (*domain.BeneficialOwner, error)
	ListBeneficialOwners(ctx context.Context, companyID string) ([]domain.BeneficialOwner, error)
}

// DividendSvc runs the draft -> confirmed -> paid dividend lifecycle.
type DividendSvc interface {
	DeclareDividend(ctx context.Context, companyID string, date time.Time, profit, percentage decimal.Decimal, userID string) (*domain.DividendDeclaration, error)
	ConfirmDividend(ctx context.Context, companyID, declarationID, userID string) (*domain.DividendDeclaration, error)
	DistributeDividend(ctx context.Context, companyID, declarationID string) ([]domain.DividendDistribution, error)
	PayDividend(ctx context.Context, companyID, declarationID string, method domain.PaymentMethod, date time.Time, userID string) (*domain.DividendDeclaration, error)
	ListDistributions(ctx context.Context, companyID, declarationID string) ([]domain.DividendDistribution, error)
}

// CapitalSvcFacade combines capital, ownership and dividend operations.
type CapitalSvcFacade interface {
	ShareCapitalSvc
	OwnershipSvc
	DividendSvc
}
