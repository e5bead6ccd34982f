package repositories

import (
	"context"

	"github.com/SscSPs/statutory_ledger/internal/core/domain"
)

// CapitalReader defines read operations for share capital and ownership records.
type CapitalReader interface {
	// FindCapital returns apperrors.ErrNotFound when the company has no capital configured.
	FindCapital(ctx context.Context, companyID string) (*domain.CompanyCapital, error)
	ListShareholders(ctx context.Context, companyID string) ([]domain.Shareholder, error)
	FindShareholder(ctx context.Context, companyID, shareholderID string) (*domain.Shareholder, error)
	ListBeneficialOwners(ctx context.Context, companyID string) ([]domain.BeneficialOwner, error)

	// CapitalPostingApplied reports whether SaveCapital recorded postingKey.
	CapitalPostingApplied(ctx context.Context, companyID, postingKey string) (bool, error)
}

// CapitalWriter defines write operations for share capital and ownership records.
type CapitalWriter interface {
	// SaveCapital stores capital together with the given shareholders if the
	// stored version still equals expectedVersion (0 when creating). On a
	// version mismatch nothing is written and apperrors.ErrConflict is returned.
	// The stored record carries expectedVersion+1. A non-empty postingKey names
	// the ledger posting this change applies and is recorded in the same write.
	SaveCapital(ctx context.Context, capital domain.CompanyCapital, expectedVersion int64, holders []domain.Shareholder, postingKey string) error

	// SaveShareholder inserts or replaces a shareholder.
	SaveShareholder(ctx context.Context, holder domain.Shareholder) error

	// SaveBeneficialOwner inserts or replaces a beneficial owner.
	SaveBeneficialOwner(ctx context.Context, owner domain.BeneficialOwner) error
}

// DividendReader defines read operations for dividend declarations.
type DividendReader interface {
	FindDividend(ctx context.Context, companyID, declarationID string) (*domain.DividendDeclaration, error)
	ListDistributions(ctx context.Context, companyID, declarationID string) ([]domain.DividendDistribution, error)
}

// DividendWriter defines write operations for dividend declarations.
type DividendWriter interface {
	// SaveDividend inserts or replaces a declaration and, when dists is not nil,
	// replaces its distributions in the same unit of work.
	SaveDividend(ctx context.Context, decl domain.DividendDeclaration, dists []domain.DividendDistribution) error
}

// CapitalRepositoryFacade combines all capital, ownership and dividend operations.
type CapitalRepositoryFacade interface {
	CapitalReader
	CapitalWriter
	DividendReader
	DividendWriter
}
