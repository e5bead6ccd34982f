package mapping

import (
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	"github.com/SscSPs/statutory_ledger/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry.
// Exactly one of Debit and Credit is positive on a committed entry.
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	m := models.LedgerEntry{
		EntryID:     d.EntryID,
		CompanyID:   d.CompanyID,
		EntryDate:   d.Date,
		AccountCode: d.AccountCode,
		Amount:      d.Debit,
		EntryType:   models.Debit,
		Reference:   d.Reference,
		Description: d.Description,
		SourceType:  string(d.SourceType),
		SourceID:    d.SourceID,
		LineNo:      d.LineNo,
		CreatedAt:   d.CreatedAt,
		CreatedBy:   d.CreatedBy,
	}
	if d.Credit.IsPositive() {
		m.Amount = d.Credit
		m.EntryType = models.Credit
	}
	if d.PartyID != "" {
		party := d.PartyID
		m.PartyID = &party
	}
	return m
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	d := domain.LedgerEntry{
		EntryID:     m.EntryID,
		CompanyID:   m.CompanyID,
		Date:        m.EntryDate.UTC(),
		AccountCode: m.AccountCode,
		Debit:       decimal.Zero,
		Credit:      decimal.Zero,
		Reference:   m.Reference,
		Description: m.Description,
		SourceType:  domain.SourceType(m.SourceType),
		SourceID:    m.SourceID,
		LineNo:      m.LineNo,
		CreatedAt:   m.CreatedAt.UTC(),
		CreatedBy:   m.CreatedBy,
	}
	if m.EntryType == models.Credit {
		d.Credit = m.Amount
	} else {
		d.Debit = m.Amount
	}
	if m.PartyID != nil {
		d.PartyID = *m.PartyID
	}
	return d
}

// ToDomainLedgerEntrySlice converts a slice of model entries to domain entries
func ToDomainLedgerEntrySlice(ms []models.LedgerEntry) []domain.LedgerEntry {
	if ms == nil {
		return nil
	}
	ds := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerEntry(m)
	}
	return ds
}
