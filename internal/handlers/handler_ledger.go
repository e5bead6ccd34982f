package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/SscSPs/statutory_ledger/internal/dto"
	"github.com/SscSPs/statutory_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests that post to or read the ledger.
type ledgerHandler struct {
	ledger portssvc.LedgerSvcFacade
	events portssvc.EventRecorderSvc
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ledger portssvc.LedgerSvcFacade, events portssvc.EventRecorderSvc) *ledgerHandler {
	return &ledgerHandler{ledger: ledger, events: events}
}

// registerLedgerRoutes registers the posting and ledger read routes of a company.
func registerLedgerRoutes(company *gin.RouterGroup, ledger portssvc.LedgerSvcFacade, events portssvc.EventRecorderSvc) {
	h := newLedgerHandler(ledger, events)

	transactions := company.Group("/transactions")
	{
		transactions.POST("", h.postTransaction)
		transactions.POST("/reverse", h.reverseTransaction)
	}
	company.POST("/events", h.recordEvent)
	company.GET("/entries", h.listEntries)
}

// postResultStatus is 201 for a new posting and 200 for a replay.
func postResultStatus(r domain.PostResult) int {
	if r.Skipped() {
		return http.StatusOK
	}
	return http.StatusCreated
}

// postTransaction godoc
// @Summary Post a balanced transaction
// @Description Validates a set of debit/credit lines and commits them atomically. Replaying a sourceType/sourceID pair is a no-op.
// @Tags ledger
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param transaction body dto.PostTransactionRequest true "Transaction"
// @Success 201 {object} dto.PostResultResponse "Committed"
// @Success 200 {object} dto.PostResultResponse "Duplicate skipped"
// @Failure 400 {object} errorResponse "Invalid transaction"
// @Failure 422 {object} errorResponse "Imbalanced or unknown account"
// @Security BearerAuth
// @Router /companies/{company_id}/transactions [post]
func (h *ledgerHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.ledger.Post(c.Request.Context(), req.ToTransaction(c.Param("company_id"), userID))
	if err != nil {
		respondError(c, err, "post transaction")
		return
	}

	logger.Info("Transaction posted", slog.String("key", res.Key), slog.String("status", string(res.Status)))
	c.JSON(postResultStatus(res), dto.ToPostResultResponse(res))
}

// reverseTransaction godoc
// @Summary Reverse a committed transaction
// @Tags ledger
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param reversal body dto.ReverseTransactionRequest true "Posting to reverse"
// @Success 201 {object} dto.PostResultResponse
// @Failure 404 {object} errorResponse "Posting not found"
// @Security BearerAuth
// @Router /companies/{company_id}/transactions/reverse [post]
func (h *ledgerHandler) reverseTransaction(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	key := domain.IdempotencyKey{CompanyID: c.Param("company_id"), SourceType: req.SourceType, SourceID: req.SourceID}
	res, err := h.ledger.Reverse(c.Request.Context(), key, req.Date.Time, userID)
	if err != nil {
		respondError(c, err, "reverse transaction")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Transaction reversed",
		slog.String("original", key.String()), slog.String("key", res.Key), slog.String("status", string(res.Status)))
	c.JSON(postResultStatus(res), dto.ToPostResultResponse(res))
}

// recordEvent godoc
// @Summary Record a business event
// @Description Encodes a sale, purchase, payroll, capital or transfer event into ledger entries and posts them.
// @Tags ledger
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param event body dto.RecordEventRequest true "Business event"
// @Success 201 {object} dto.PostResultResponse
// @Success 200 {object} dto.PostResultResponse "Duplicate skipped"
// @Failure 400 {object} errorResponse "Invalid event"
// @Failure 409 {object} errorResponse "Capital limit exceeded"
// @Security BearerAuth
// @Router /companies/{company_id}/events [post]
func (h *ledgerHandler) recordEvent(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	event, err := req.ToBusinessEvent(c.Param("company_id"), userID)
	if err != nil {
		respondError(c, err, "record event")
		return
	}

	res, err := h.events.Record(c.Request.Context(), event)
	if err != nil {
		respondError(c, err, "record event")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Event recorded",
		slog.String("type", string(req.Type)), slog.String("key", res.Key), slog.String("status", string(res.Status)))
	c.JSON(postResultStatus(res), dto.ToPostResultResponse(res))
}

// listEntries godoc
// @Summary List ledger entries
// @Description Lists committed entries in ledger order, filtered and paginated with an opaque token.
// @Tags ledger
// @Produce json
// @Param company_id path string true "Company ID"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param accountCode query string false "Account code"
// @Param sourceType query string false "Source type"
// @Param partyID query string false "Counterparty"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Security BearerAuth
// @Router /companies/{company_id}/entries [get]
func (h *ledgerHandler) listEntries(c *gin.Context) {
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	entries, next, err := h.ledger.ListEntries(c.Request.Context(), c.Param("company_id"), params.ToEntryQuery())
	if err != nil {
		respondError(c, err, "list entries")
		return
	}

	c.JSON(http.StatusOK, dto.ListEntriesResponse{Entries: dto.ToLedgerEntryResponses(entries), NextToken: next})
}

// getChartOfAccounts godoc
// @Summary List the chart of accounts
// @Tags ledger
// @Produce json
// @Success 200 {array} dto.AccountResponse
// @Security BearerAuth
// @Router /chart-of-accounts [get]
func (h *ledgerHandler) getChartOfAccounts(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToAccountResponses(h.ledger.Chart().Accounts()))
}
