package services

import (
	"context"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingSvc derives statements and tax returns from the ledger on every call.
type ReportingSvc interface {
	// TrialBalance summarises every account with activity up to asOf.
	TrialBalance(ctx context.Context, companyID string, asOf time.Time) (*domain.TrialBalance, error)

	// AccountBalance returns a single account's position as of asOf.
	AccountBalance(ctx context.Context, companyID, accountCode string, asOf time.Time) (*domain.AccountBalance, error)

	VATReturn(ctx context.Context, companyID string, period domain.Period) (*domain.VATReturn, error)
	PAYEReturn(ctx context.Context, companyID string, period domain.Period) (*domain.PAYEReturn, error)
	CITReturn(ctx context.Context, companyID string, year int) (*domain.CITReturn, error)

	// FileQITReturn stores a quarterly estimate. A zero taxRate uses the configured default.
	FileQITReturn(ctx context.Context, companyID string, year, quarter int, estimatedIncome, taxRate decimal.Decimal, userID string) (*domain.QITReturn, error)
	QITReturn(ctx context.Context, companyID string, year, quarter int) (*domain.QITReturn, error)
}
