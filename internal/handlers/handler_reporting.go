package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/SscSPs/statutory_ledger/internal/dto"
	"github.com/SscSPs/statutory_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for statements and tax returns.
type reportingHandler struct {
	reportingService portssvc.ReportingSvc
	now              func() time.Time
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingSvc, now func() time.Time) *reportingHandler {
	return &reportingHandler{reportingService: rs, now: now}
}

// registerReportingRoutes registers the report routes of a company.
func registerReportingRoutes(company *gin.RouterGroup, rs portssvc.ReportingSvc, now func() time.Time) {
	h := newReportingHandler(rs, now)

	reports := company.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/accounts/:code/balance", h.getAccountBalance)
		reports.GET("/vat", h.getVATReturn)
		reports.GET("/paye", h.getPAYEReturn)
		reports.GET("/cit", h.getCITReturn)
		reports.POST("/qit", h.fileQITReturn)
		reports.GET("/qit", h.getQITReturn)
	}
}

// asOf returns the requested cut-off day, or today.
func (h *reportingHandler) asOf(c *gin.Context) (time.Time, bool) {
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return time.Time{}, false
	}
	if params.AsOf.IsZero() {
		return h.now().UTC(), true
	}
	return params.AsOf.Time, true
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Generates a trial balance report as of a specific date
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} domain.TrialBalance
// @Failure 400 {object} errorResponse "Invalid input"
// @Security BearerAuth
// @Router /companies/{company_id}/reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	tb, err := h.reportingService.TrialBalance(c.Request.Context(), c.Param("company_id"), asOf)
	if err != nil {
		respondError(c, err, "generate trial balance report")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Trial balance report generated", slog.Int("row_count", len(tb.Rows)))
	c.JSON(http.StatusOK, tb)
}

// getAccountBalance godoc
// @Summary Get the balance of one account
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Param code path string true "Account code"
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} domain.AccountBalance
// @Failure 422 {object} errorResponse "Unknown account"
// @Security BearerAuth
// @Router /companies/{company_id}/reports/accounts/{code}/balance [get]
func (h *reportingHandler) getAccountBalance(c *gin.Context) {
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	bal, err := h.reportingService.AccountBalance(c.Request.Context(), c.Param("company_id"), c.Param("code"), asOf)
	if err != nil {
		respondError(c, err, "get account balance")
		return
	}
	c.JSON(http.StatusOK, bal)
}

// getVATReturn godoc
// @Summary Compute the VAT return of a period
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Param year query int false "Year"
// @Param quarter query int false "Quarter 1-4"
// @Param month query int false "Month 1-12"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} domain.VATReturn
// @Security BearerAuth
// @Router /companies/{company_id}/reports/vat [get]
func (h *reportingHandler) getVATReturn(c *gin.Context) {
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	period, err := params.ToPeriod()
	if err != nil {
		respondError(c, err, "compute VAT return")
		return
	}

	r, err := h.reportingService.VATReturn(c.Request.Context(), c.Param("company_id"), period)
	if err != nil {
		respondError(c, err, "compute VAT return")
		return
	}
	c.JSON(http.StatusOK, r)
}

// getPAYEReturn godoc
// @Summary Compute the PAYE return of a period
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Param year query int false "Year"
// @Param month query int false "Month 1-12"
// @Success 200 {object} domain.PAYEReturn
// @Security BearerAuth
// @Router /companies/{company_id}/reports/paye [get]
func (h *reportingHandler) getPAYEReturn(c *gin.Context) {
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	period, err := params.ToPeriod()
	if err != nil {
		respondError(c, err, "compute PAYE return")
		return
	}

	r, err := h.reportingService.PAYEReturn(c.Request.Context(), c.Param("company_id"), period)
	if err != nil {
		respondError(c, err, "compute PAYE return")
		return
	}
	c.JSON(http.StatusOK, r)
}

// getCITReturn godoc
// @Summary Compute the corporate income tax return of a year
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Param year query int true "Tax year"
// @Success 200 {object} domain.CITReturn
// @Security BearerAuth
// @Router /companies/{company_id}/reports/cit [get]
func (h *reportingHandler) getCITReturn(c *gin.Context) {
	var params dto.YearParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	r, err := h.reportingService.CITReturn(c.Request.Context(), c.Param("company_id"), params.Year)
	if err != nil {
		respondError(c, err, "compute CIT return")
		return
	}
	c.JSON(http.StatusOK, r)
}

// fileQITReturn godoc
// @Summary File a quarterly income tax estimate
// @Tags reports
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param filing body dto.FileQITRequest true "Estimate"
// @Success 201 {object} domain.QITReturn
// @Security BearerAuth
// @Router /companies/{company_id}/reports/qit [post]
func (h *reportingHandler) fileQITReturn(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.FileQITRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	r, err := h.reportingService.FileQITReturn(c.Request.Context(), c.Param("company_id"), req.Year, req.Quarter, req.EstimatedIncome, req.TaxRate, userID)
	if err != nil {
		respondError(c, err, "file QIT return")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("QIT return filed",
		slog.Int("year", r.Year), slog.Int("quarter", r.Quarter), slog.String("tax_due", r.TaxDue.String()))
	c.JSON(http.StatusCreated, r)
}

// getQITReturn godoc
// @Summary Get a filed quarterly income tax estimate
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Param year query int true "Year"
// @Param quarter query int true "Quarter 1-4"
// @Success 200 {object} domain.QITReturn
// @Failure 404 {object} errorResponse "Nothing filed"
// @Security BearerAuth
// @Router /companies/{company_id}/reports/qit [get]
func (h *reportingHandler) getQITReturn(c *gin.Context) {
	var params dto.QuarterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	r, err := h.reportingService.QITReturn(c.Request.Context(), c.Param("company_id"), params.Year, params.Quarter)
	if err != nil {
		respondError(c, err, "get QIT return")
		return
	}
	c.JSON(http.StatusOK, r)
}
