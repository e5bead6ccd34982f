package services

import (
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/SscSPs/statutory_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...BaseOption) *portssvc.ServiceContainer {
	chart := domain.DefaultChart()
	tax := cfg.Tax

	container := &portssvc.ServiceContainer{}

	// The posting engine is the only writer to the ledger; everything else goes through it.
	container.Ledger = NewPostingService(repos.LedgerRepo, chart, options...)
	container.Encoder = NewEventEncoder(chart, tax.CurrencyDecimals, tax.VATRate)

	container.Capital = NewCapitalService(repos.CapitalRepo, container.Encoder, container.Ledger, tax.CurrencyDecimals, options...)
	container.Events = NewEventService(container.Encoder, container.Ledger, container.Capital)
	container.Reporting = NewReportingService(repos.LedgerRepo, repos.TaxFilingRepo, chart, tax, options...)
	container.Payroll = NewPayrollService(repos.PayrollRepo, container.Encoder, container.Ledger, tax, options...)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.LedgerSvcFacade  = (*postingService)(nil)
	_ portssvc.CapitalSvcFacade = (*capitalService)(nil)
)
