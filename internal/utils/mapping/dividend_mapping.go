package mapping

import (
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	"github.com/SscSPs/statutory_ledger/internal/models"
)

// ToModelDividendDeclaration converts a domain DividendDeclaration to a model DividendDeclaration
func ToModelDividendDeclaration(d domain.DividendDeclaration) models.DividendDeclaration {
	return models.DividendDeclaration{
		DeclarationID:      d.DeclarationID,
		CompanyID:          d.CompanyID,
		DeclarationDate:    d.DeclarationDate,
		ProfitAmount:       d.ProfitAmount,
		DividendPercentage: d.DividendPercentage,
		DividendPool:       d.DividendPool,
		Status:             string(d.Status),
		AuditFields:        models.AuditFields(d.AuditFields),
	}
}

// ToDomainDividendDeclaration converts a model DividendDeclaration to a domain DividendDeclaration
func ToDomainDividendDeclaration(m models.DividendDeclaration) domain.DividendDeclaration {
	return domain.DividendDeclaration{
		DeclarationID:      m.DeclarationID,
		CompanyID:          m.CompanyID,
		DeclarationDate:    m.DeclarationDate.UTC(),
		ProfitAmount:       m.ProfitAmount,
		DividendPercentage: m.DividendPercentage,
		DividendPool:       m.DividendPool,
		Status:             domain.DividendStatus(m.Status),
		AuditFields:        auditFieldsUTC(domain.AuditFields(m.AuditFields)),
	}
}

// auditFieldsUTC normalises timestamps read back from TIMESTAMPTZ columns.
func auditFieldsUTC(a domain.AuditFields) domain.AuditFields {
	a.CreatedAt = a.CreatedAt.UTC()
	a.LastUpdatedAt = a.LastUpdatedAt.UTC()
	return a
}
