package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DividendDeclaration is one row of the dividend_declarations table.
type DividendDeclaration struct {
	DeclarationID      string          `db:"declaration_id"`
	CompanyID          string          `db:"company_id"`
	DeclarationDate    time.Time       `db:"declaration_date"`
	ProfitAmount       decimal.Decimal `db:"profit_amount"`
	DividendPercentage decimal.Decimal `db:"dividend_percentage"`
	DividendPool       decimal.Decimal `db:"dividend_pool"`
	Status             string          `db:"status"`
	AuditFields
}
