package handlers

import (
	"net/http"
	"time"

	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/SscSPs/statutory_ledger/internal/middleware"
	"github.com/SscSPs/statutory_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// now supplies "today" for requests that omit a date.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	now func() time.Time,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(middleware.MetricsHandler()))

	setupAPIV1Routes(r, cfg, services, now)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	now func() time.Time,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	v1.GET("/chart-of-accounts", newLedgerHandler(services.Ledger, services.Events).getChartOfAccounts)

	// Everything else is scoped to one company
	company := v1.Group("/companies/:company_id", middleware.RequireCompanyAccess("company_id"))
	registerLedgerRoutes(company, services.Ledger, services.Events)
	registerReportingRoutes(company, services.Reporting, now)
	registerPayrollRoutes(company, services.Payroll)
	registerCapitalRoutes(company, services.Capital, now)
}
