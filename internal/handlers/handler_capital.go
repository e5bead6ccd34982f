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

// capitalHandler handles share capital, ownership register and dividend requests.
type capitalHandler struct {
	capitalService portssvc.CapitalSvcFacade
	now            func() time.Time
}

func newCapitalHandler(cs portssvc.CapitalSvcFacade, now func() time.Time) *capitalHandler {
	return &capitalHandler{capitalService: cs, now: now}
}

// registerCapitalRoutes registers capital, ownership and dividend routes of a company.
func registerCapitalRoutes(company *gin.RouterGroup, cs portssvc.CapitalSvcFacade, now func() time.Time) {
	h := newCapitalHandler(cs, now)

	capital := company.Group("/capital")
	{
		capital.PUT("", h.configureCapital)
		capital.GET("", h.getCapital)
		capital.POST("/allocations", h.allocateShares)
	}

	shareholders := company.Group("/shareholders")
	{
		shareholders.GET("", h.listShareholders)
		shareholders.PUT("/:shareholder_id", h.registerShareholder)
	}

	owners := company.Group("/beneficial-owners")
	{
		owners.GET("", h.listBeneficialOwners)
		owners.PUT("/:owner_id", h.upsertBeneficialOwner)
	}

	dividends := company.Group("/dividends")
	{
		dividends.POST("", h.declareDividend)
		dividends.POST("/:declaration_id/confirm", h.confirmDividend)
		dividends.POST("/:declaration_id/distribute", h.distributeDividend)
		dividends.POST("/:declaration_id/pay", h.payDividend)
		dividends.GET("/:declaration_id/distributions", h.listDistributions)
	}
}

func (h *capitalHandler) dayOrToday(d dto.Date) time.Time {
	if d.IsZero() {
		return h.now().UTC()
	}
	return d.Time
}

// configureCapital godoc
// @Summary Set authorized share capital
// @Tags capital
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param capital body dto.ConfigureCapitalRequest true "Authorized capital"
// @Success 200 {object} domain.CompanyCapital
// @Security BearerAuth
// @Router /companies/{company_id}/capital [put]
func (h *capitalHandler) configureCapital(c *gin.Context) {
	var req dto.ConfigureCapitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	capital, err := h.capitalService.ConfigureCapital(c.Request.Context(), c.Param("company_id"), req.AuthorizedShares, req.SharePrice)
	if err != nil {
		respondError(c, err, "configure capital")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Capital configured",
		slog.Int64("authorized_shares", capital.AuthorizedShares), slog.Int64("version", capital.Version))
	c.JSON(http.StatusOK, capital)
}

// getCapital godoc
// @Summary Get share capital
// @Tags capital
// @Produce json
// @Param company_id path string true "Company ID"
// @Success 200 {object} domain.CompanyCapital
// @Failure 404 {object} errorResponse "Capital not configured"
// @Security BearerAuth
// @Router /companies/{company_id}/capital [get]
func (h *capitalHandler) getCapital(c *gin.Context) {
	capital, err := h.capitalService.GetCapital(c.Request.Context(), c.Param("company_id"))
	if err != nil {
		respondError(c, err, "get capital")
		return
	}
	c.JSON(http.StatusOK, capital)
}

// allocateShares godoc
// @Summary Issue shares without a cash movement
// @Tags capital
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param allocation body dto.AllocateSharesRequest true "Allocation"
// @Success 200 {object} domain.CompanyCapital
// @Failure 409 {object} errorResponse "Capital limit exceeded"
// @Security BearerAuth
// @Router /companies/{company_id}/capital/allocations [post]
func (h *capitalHandler) allocateShares(c *gin.Context) {
	var req dto.AllocateSharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	capital, err := h.capitalService.AllocateShares(c.Request.Context(), c.Param("company_id"), req.ShareholderID, req.Shares)
	if err != nil {
		respondError(c, err, "allocate shares")
		return
	}
	c.JSON(http.StatusOK, capital)
}

func (h *capitalHandler) listShareholders(c *gin.Context) {
	holders, err := h.capitalService.ListShareholders(c.Request.Context(), c.Param("company_id"))
	if err != nil {
		respondError(c, err, "list shareholders")
		return
	}
	c.JSON(http.StatusOK, holders)
}

func (h *capitalHandler) registerShareholder(c *gin.Context) {
	var req dto.RegisterShareholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	holder, err := h.capitalService.RegisterShareholder(c.Request.Context(), c.Param("company_id"), c.Param("shareholder_id"), req.Name)
	if err != nil {
		respondError(c, err, "register shareholder")
		return
	}
	c.JSON(http.StatusOK, holder)
}

func (h *capitalHandler) listBeneficialOwners(c *gin.Context) {
	owners, err := h.capitalService.ListBeneficialOwners(c.Request.Context(), c.Param("company_id"))
	if err != nil {
		respondError(c, err, "list beneficial owners")
		return
	}
	c.JSON(http.StatusOK, owners)
}

// upsertBeneficialOwner godoc
// @Summary Create or replace a beneficial owner
// @Description Total ownership across owners may not exceed 100%.
// @Tags capital
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param owner_id path string true "Owner ID"
// @Param owner body dto.BeneficialOwnerRequest true "Owner"
// @Success 200 {object} domain.BeneficialOwner
// @Failure 409 {object} errorResponse "Ownership ceiling exceeded"
// @Security BearerAuth
// @Router /companies/{company_id}/beneficial-owners/{owner_id} [put]
func (h *capitalHandler) upsertBeneficialOwner(c *gin.Context) {
	var req dto.BeneficialOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	owner, err := h.capitalService.UpsertBeneficialOwner(c.Request.Context(), req.ToBeneficialOwner(c.Param("company_id"), c.Param("owner_id")))
	if err != nil {
		respondError(c, err, "save beneficial owner")
		return
	}
	c.JSON(http.StatusOK, owner)
}

// declareDividend godoc
// @Summary Draft a dividend declaration
// @Tags dividends
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param declaration body dto.DeclareDividendRequest true "Declaration"
// @Success 201 {object} domain.DividendDeclaration
// @Security BearerAuth
// @Router /companies/{company_id}/dividends [post]
func (h *capitalHandler) declareDividend(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.DeclareDividendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	decl, err := h.capitalService.DeclareDividend(c.Request.Context(), c.Param("company_id"),
		h.dayOrToday(req.DeclarationDate), req.ProfitAmount, req.DividendPercentage, userID)
	if err != nil {
		respondError(c, err, "declare dividend")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Dividend declared",
		slog.String("declaration_id", decl.DeclarationID), slog.String("pool", decl.DividendPool.String()))
	c.JSON(http.StatusCreated, decl)
}

func (h *capitalHandler) confirmDividend(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	decl, err := h.capitalService.ConfirmDividend(c.Request.Context(), c.Param("company_id"), c.Param("declaration_id"), userID)
	if err != nil {
		respondError(c, err, "confirm dividend")
		return
	}
	c.JSON(http.StatusOK, decl)
}

func (h *capitalHandler) distributeDividend(c *gin.Context) {
	dists, err := h.capitalService.DistributeDividend(c.Request.Context(), c.Param("company_id"), c.Param("declaration_id"))
	if err != nil {
		respondError(c, err, "distribute dividend")
		return
	}
	c.JSON(http.StatusOK, dists)
}

// payDividend godoc
// @Summary Pay every distribution of a confirmed dividend
// @Tags dividends
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param declaration_id path string true "Declaration ID"
// @Param payment body dto.PayDividendRequest true "Payment"
// @Success 200 {object} domain.DividendDeclaration
// @Failure 409 {object} errorResponse "Not distributed or already paid"
// @Security BearerAuth
// @Router /companies/{company_id}/dividends/{declaration_id}/pay [post]
func (h *capitalHandler) payDividend(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.PayDividendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	decl, err := h.capitalService.PayDividend(c.Request.Context(), c.Param("company_id"), c.Param("declaration_id"),
		req.PaymentMethod, h.dayOrToday(req.PaymentDate), userID)
	if err != nil {
		respondError(c, err, "pay dividend")
		return
	}
	c.JSON(http.StatusOK, decl)
}

func (h *capitalHandler) listDistributions(c *gin.Context) {
	dists, err := h.capitalService.ListDistributions(c.Request.Context(), c.Param("company_id"), c.Param("declaration_id"))
	if err != nil {
		respondError(c, err, "list distributions")
		return
	}
	c.JSON(http.StatusOK, dists)
}
