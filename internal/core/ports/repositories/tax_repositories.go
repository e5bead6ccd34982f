package repositories

import (
	"context"

	"github.com/SscSPs/statutory_ledger/internal/core/domain"
)

// TaxFilingRepositoryFacade stores filed returns that are not derived from the ledger.
type TaxFilingRepositoryFacade interface {
	// SaveQITReturn inserts or replaces the filing for (company, year, quarter).
	SaveQITReturn(ctx context.Context, r domain.QITReturn) error

	// FindQITReturn returns apperrors.ErrNotFound when nothing was filed.
	FindQITReturn(ctx context.Context, companyID string, year, quarter int) (*domain.QITReturn, error)
}
