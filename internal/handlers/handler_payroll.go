package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/SscSPs/statutory_ledger/internal/dto"
	"github.com/SscSPs/statutory_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type payrollHandler struct {
	payrollService portssvc.PayrollSvc
}

func newPayrollHandler(ps portssvc.PayrollSvc) *payrollHandler {
	return &payrollHandler{payrollService: ps}
}

// registerPayrollRoutes registers the payroll routes of a company.
func registerPayrollRoutes(company *gin.RouterGroup, ps portssvc.PayrollSvc) {
	h := newPayrollHandler(ps)

	payroll := company.Group("/payroll")
	{
		payroll.POST("/calculate", h.calculate)
		payroll.POST("/runs", h.runPayroll)
		payroll.GET("/records", h.listRecords)
	}
}

// calculate godoc
// @Summary Compute the gross to net breakdown of a salary
// @Tags payroll
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param salary body dto.CalculatePayrollRequest true "Gross salary"
// @Success 200 {object} domain.PayrollBreakdown
// @Security BearerAuth
// @Router /companies/{company_id}/payroll/calculate [post]
func (h *payrollHandler) calculate(c *gin.Context) {
	var req dto.CalculatePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	b, err := h.payrollService.Calculate(req.GrossSalary)
	if err != nil {
		respondError(c, err, "calculate payroll")
		return
	}
	c.JSON(http.StatusOK, b)
}

// runPayroll godoc
// @Summary Run payroll for a month
// @Description Computes, stores and posts each employee's salary. Running the same month again posts nothing new.
// @Tags payroll
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param run body dto.RunPayrollRequest true "Payroll run"
// @Success 200 {object} portssvc.PayrollRunResult
// @Security BearerAuth
// @Router /companies/{company_id}/payroll/runs [post]
func (h *payrollHandler) runPayroll(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.RunPayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.payrollService.RunPayroll(c.Request.Context(), c.Param("company_id"), req.Period, req.ToEmployees(), req.PaymentMethod, userID)
	if err != nil {
		respondError(c, err, "run payroll")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Payroll run completed",
		slog.String("period", res.Period), slog.Int("posted", res.Posted), slog.Int("skipped", res.Skipped))
	c.JSON(http.StatusOK, res)
}

// listRecords godoc
// @Summary List stored payroll records
// @Tags payroll
// @Produce json
// @Param company_id path string true "Company ID"
// @Param period query string false "Period (YYYY-MM)"
// @Success 200 {array} domain.PayrollRecord
// @Security BearerAuth
// @Router /companies/{company_id}/payroll/records [get]
func (h *payrollHandler) listRecords(c *gin.Context) {
	var params dto.ListPayrollRecordsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	recs, err := h.payrollService.ListPayrollRecords(c.Request.Context(), c.Param("company_id"), params.Period)
	if err != nil {
		respondError(c, err, "list payroll records")
		return
	}
	c.JSON(http.StatusOK, recs)
}
