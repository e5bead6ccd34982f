package dto

import (
	"time"

	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one line of a manual posting. Exactly one of Debit and Credit must be positive.
type EntryLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required,len=4,numeric"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	PartyID     string          `json:"partyID"`
}

// PostTransactionRequest defines the data needed to post a balanced transaction directly.
type PostTransactionRequest struct {
	Date        Date               `json:"date"`
	Reference   string             `json:"reference"`
	Description string             `json:"description"`
	SourceID    string             `json:"sourceID" binding:"required"`
	SourceType  domain.SourceType  `json:"sourceType" binding:"omitempty,eq=manual"` // Optional; event source types are reserved for the encoder
	Lines       []EntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ToTransaction converts the request into a posting request for companyID.
func (r PostTransactionRequest) ToTransaction(companyID, userID string) domain.Transaction {
	sourceType := r.SourceType
	if sourceType == "" {
		sourceType = domain.SourceManual
	}
	lines := make([]domain.EntryLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.EntryLine{AccountCode: l.AccountCode, Debit: l.Debit, Credit: l.Credit, PartyID: l.PartyID}
	}
	return domain.Transaction{
		CompanyID:   companyID,
		Date:        r.Date.Time,
		Reference:   r.Reference,
		Description: r.Description,
		SourceID:    r.SourceID,
		SourceType:  sourceType,
		Lines:       lines,
		CreatedBy:   userID,
	}
}

// ReverseTransactionRequest identifies a committed posting to reverse.
type ReverseTransactionRequest struct {
	SourceType domain.SourceType `json:"sourceType" binding:"required"`
	SourceID   string            `json:"sourceID" binding:"required"`
	Date       Date              `json:"date"` // Optional, defaults to today
}

// ListEntriesParams defines the query parameters for listing ledger entries.
type ListEntriesParams struct {
	From        Date              `form:"from"`
	To          Date              `form:"to"`
	AccountCode string            `form:"accountCode"`
	SourceType  domain.SourceType `form:"sourceType"`
	PartyID     string            `form:"partyID"`
	Limit       int               `form:"limit" binding:"omitempty,min=1,max=500"`
	NextToken   *string           `form:"nextToken"`
}

// ToEntryQuery converts the params into a service query.
func (p ListEntriesParams) ToEntryQuery() portssvc.EntryQuery {
	return portssvc.EntryQuery{
		From:        p.From.Ptr(),
		To:          p.To.Ptr(),
		AccountCode: p.AccountCode,
		SourceType:  p.SourceType,
		PartyID:     p.PartyID,
		Limit:       p.Limit,
		NextToken:   p.NextToken,
	}
}

// LedgerEntryResponse defines the data returned for a committed entry.
type LedgerEntryResponse struct {
	EntryID     string            `json:"entryID"`
	Date        Date              `json:"date"`
	AccountCode string            `json:"accountCode"`
	Debit       decimal.Decimal   `json:"debit"`
	Credit      decimal.Decimal   `json:"credit"`
	Reference   string            `json:"reference"`
	Description string            `json:"description"`
	SourceType  domain.SourceType `json:"sourceType"`
	SourceID    string            `json:"sourceID"`
	PartyID     string            `json:"partyID,omitempty"`
	LineNo      int               `json:"lineNo"`
	CreatedAt   time.Time         `json:"createdAt"`
	CreatedBy   string            `json:"createdBy,omitempty"`
}

// ListEntriesResponse is one page of ledger entries.
type ListEntriesResponse struct {
	Entries   []LedgerEntryResponse `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// PostResultResponse reports what the posting engine did.
type PostResultResponse struct {
	Status  domain.PostStatus     `json:"status"`
	Key     string                `json:"key"`
	Entries []LedgerEntryResponse `json:"entries,omitempty"`
	Debits  decimal.Decimal       `json:"debits"`
	Credits decimal.Decimal       `json:"credits"`
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to its response DTO.
func ToLedgerEntryResponse(e domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:     e.EntryID,
		Date:        Date{e.Date},
		AccountCode: e.AccountCode,
		Debit:       e.Debit,
		Credit:      e.Credit,
		Reference:   e.Reference,
		Description: e.Description,
		SourceType:  e.SourceType,
		SourceID:    e.SourceID,
		PartyID:     e.PartyID,
		LineNo:      e.LineNo,
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
	}
}

// ToLedgerEntryResponses converts a slice of entries.
func ToLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ToLedgerEntryResponse(e)
	}
	return out
}

// ToPostResultResponse converts a domain.PostResult.
func ToPostResultResponse(r domain.PostResult) PostResultResponse {
	resp := PostResultResponse{Status: r.Status, Key: r.Key, Debits: r.Debits, Credits: r.Credits}
	if len(r.Entries) > 0 {
		resp.Entries = ToLedgerEntryResponses(r.Entries)
	}
	return resp
}

// AccountResponse describes one account of the chart.
type AccountResponse struct {
	Code          string                 `json:"code"`
	Name          string                 `json:"name"`
	Category      domain.AccountCategory `json:"category"`
	NormalBalance string                 `json:"normalBalance"`
}

// ToAccountResponses converts the chart of accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		normal := "credit"
		if a.Category.IsDebitNormal() {
			normal = "debit"
		}
		out[i] = AccountResponse{Code: a.Code, Name: a.Name, Category: a.Category, NormalBalance: normal}
	}
	return out
}
