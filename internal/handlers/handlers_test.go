package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/SscSPs/statutory_ledger/internal/core/services"
	"github.com/SscSPs/statutory_ledger/internal/handlers"
	"github.com/SscSPs/statutory_ledger/internal/platform/config"
	"github.com/SscSPs/statutory_ledger/internal/repositories/database/memory"
	"github.com/SscSPs/statutory_ledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	testSecret  = "test-secret-key-that-is-long-enough"
	testIssuer  = "ledger-test"
	testCompany = "co-1"
)

var fixedNow = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

// --- Mock PayrollService ---
type MockPayrollService struct {
	mock.Mock
}

func (m *MockPayrollService) Calculate(gross decimal.Decimal) (domain.PayrollBreakdown, error) {
	args := m.Called(gross)
	return args.Get(0).(domain.PayrollBreakdown), args.Error(1)
}
func (m *MockPayrollService) RunPayroll(ctx context.Context, companyID, period string, employees []domain.Employee, method domain.PaymentMethod, userID string) (*portssvc.PayrollRunResult, error) {
	args := m.Called(ctx, companyID, period, employees, method, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.PayrollRunResult), args.Error(1)
}
func (m *MockPayrollService) ListPayrollRecords(ctx context.Context, companyID, period string) ([]domain.PayrollRecord, error) {
	args := m.Called(ctx, companyID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PayrollRecord), args.Error(1)
}

var _ portssvc.PayrollSvc = (*MockPayrollService)(nil)

// --- Test Suite ---
type HandlersTestSuite struct {
	suite.Suite
	router      *gin.Engine
	svcs        *portssvc.ServiceContainer
	mockPayroll *MockPayrollService
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: testSecret, JWTIssuer: testIssuer, Tax: config.DefaultTaxConfig()}
	var seq atomic.Int64
	s.svcs = services.NewServiceContainer(cfg, memory.NewRepositoryProvider(memory.New()),
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithIDGenerator(func() string { return fmt.Sprintf("id-%04d", seq.Add(1)) }),
	)
	s.mockPayroll = new(MockPayrollService)

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, s.svcs, func() time.Time { return fixedNow })
}

// token signs a JWT for user, optionally scoped to companies.
func (s *HandlersTestSuite) token(user string, companies ...string) string {
	signed, err := utils.GenerateJWT(user, companies, testSecret, time.Hour, testIssuer)
	s.Require().NoError(err)
	return signed
}

func (s *HandlersTestSuite) do(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) call(method, path string, body any) *httptest.ResponseRecorder {
	return s.do(s.router, method, "/api/v1/companies/"+testCompany+path, s.token("user-1"), body)
}

func (s *HandlersTestSuite) decode(w *httptest.ResponseRecorder, into any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), into), w.Body.String())
}

func (s *HandlersTestSuite) TestHealthIsPublic() {
	w := s.do(s.router, http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
}

func (s *HandlersTestSuite) TestAuthRequired() {
	w := s.do(s.router, http.MethodGet, "/api/v1/chart-of-accounts", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(s.router, http.MethodGet, "/api/v1/chart-of-accounts", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlersTestSuite) TestCompanyScope() {
	w := s.do(s.router, http.MethodGet, "/api/v1/companies/co-2/entries", s.token("user-1", testCompany), nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(s.router, http.MethodGet, "/api/v1/companies/"+testCompany+"/entries", s.token("user-1", testCompany), nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestChartOfAccounts() {
	w := s.do(s.router, http.MethodGet, "/api/v1/chart-of-accounts", s.token("user-1"), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var accounts []map[string]any
	s.decode(w, &accounts)
	s.NotEmpty(accounts)
	s.Equal("1000", accounts[0]["code"])
	s.Equal("debit", accounts[0]["normalBalance"])
}

func (s *HandlersTestSuite) TestPostTransaction_CommitThenSkip() {
	body := map[string]any{
		"date":     "2025-03-01",
		"sourceID": "J-1",
		"lines": []map[string]any{
			{"accountCode": "1100", "debit": "5000"},
			{"accountCode": "3000", "credit": "5000"},
		},
	}
	w := s.call(http.MethodPost, "/transactions", body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var res map[string]any
	s.decode(w, &res)
	s.Equal(string(domain.PostStatusCommitted), res["status"])
	s.Equal("co-1/manual/J-1", res["key"])

	w = s.call(http.MethodPost, "/transactions", body)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &res)
	s.Equal(string(domain.PostStatusDuplicateSkipped), res["status"])

	w = s.call(http.MethodGet, "/entries?accountCode=1100", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page struct {
		Entries []map[string]any `json:"entries"`
	}
	s.decode(w, &page)
	s.Len(page.Entries, 1)
	s.Equal("2025-03-01", page.Entries[0]["date"])
}

func (s *HandlersTestSuite) TestPostTransaction_Imbalance() {
	w := s.call(http.MethodPost, "/transactions", map[string]any{
		"date":     "2025-03-01",
		"sourceID": "J-2",
		"lines": []map[string]any{
			{"accountCode": "1100", "debit": "100"},
			{"accountCode": "3000", "credit": "90"},
		},
	})
	s.Require().Equal(http.StatusUnprocessableEntity, w.Code)
	var res map[string]any
	s.decode(w, &res)
	s.Equal("imbalance", res["code"])
	s.Contains(res["error"], "100")
	s.Contains(res["error"], "90")
	details := res["details"].(map[string]any)
	s.Equal("100", details["debits"])
	s.Equal("90", details["credits"])
}

func (s *HandlersTestSuite) TestPostTransaction_BindErrors() {
	w := s.call(http.MethodPost, "/transactions", map[string]any{"sourceID": "J-3", "lines": []map[string]any{{"accountCode": "1100"}}})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.call(http.MethodPost, "/transactions", map[string]any{
		"date": "2025-03-01", "sourceID": "J-3",
		"lines": []map[string]any{{"accountCode": "9999", "debit": "1"}, {"accountCode": "3000", "credit": "1"}},
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	var res map[string]any
	s.decode(w, &res)
	s.Equal("unknown_account", res["code"])
}

func (s *HandlersTestSuite) TestPostTransaction_EventSourceTypesAreReserved() {
	lines := []map[string]any{
		{"accountCode": "1100", "debit": "1000"},
		{"accountCode": "3000", "credit": "1000"},
	}
	for _, st := range []domain.SourceType{domain.SourceCapitalContribution, domain.SourceReversal, domain.SourceInvoice, domain.SourcePayroll} {
		w := s.call(http.MethodPost, "/transactions", map[string]any{
			"date": "2025-03-01", "sourceID": "CC-1", "sourceType": st, "lines": lines,
		})
		s.Require().Equal(http.StatusBadRequest, w.Code, "source type %s", st)
		var res map[string]any
		s.decode(w, &res)
		s.Equal("validation", res["code"])
		s.Contains(res["details"], "SourceType")
	}

	w := s.call(http.MethodPost, "/transactions", map[string]any{
		"date": "2025-03-01", "sourceID": "CC-1", "sourceType": "manual", "lines": lines,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var res map[string]any
	s.decode(w, &res)
	s.Equal("co-1/manual/CC-1", res["key"])
}

func (s *HandlersTestSuite) TestRecordEvent_SaleAndVATReport() {
	w := s.call(http.MethodPost, "/events", map[string]any{
		"type":     "sale",
		"date":     "2025-01-15",
		"sourceID": "INV-1",
		"data": map[string]any{
			"amount": "118000", "paymentMethod": "cash", "paymentStatus": "paid",
			"vatRate": "0.18", "vatInclusive": true,
		},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.call(http.MethodGet, "/reports/vat?year=2025&quarter=1", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var vat domain.VATReturn
	s.decode(w, &vat)
	s.True(vat.SalesVAT.Equal(decimal.NewFromInt(18000)))

	w = s.call(http.MethodGet, "/reports/trial-balance?asOf=2025-01-31", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var tb domain.TrialBalance
	s.decode(w, &tb)
	s.True(tb.TotalDebits.Equal(tb.TotalCredits))

	w = s.call(http.MethodGet, "/reports/accounts/1000/balance", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.call(http.MethodGet, "/reports/vat", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.call(http.MethodPost, "/events", map[string]any{"type": "gift", "sourceID": "G-1"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestReverseTransaction() {
	w := s.call(http.MethodPost, "/transactions/reverse", map[string]any{"sourceType": "manual", "sourceID": "missing"})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.call(http.MethodPost, "/transactions", map[string]any{
		"date": "2025-03-01", "sourceID": "J-9",
		"lines": []map[string]any{{"accountCode": "1100", "debit": "10"}, {"accountCode": "3000", "credit": "10"}},
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.call(http.MethodPost, "/transactions/reverse", map[string]any{"sourceType": "manual", "sourceID": "J-9", "date": "2025-03-02"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.call(http.MethodGet, "/reports/accounts/1100/balance?asOf=2025-12-31", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var bal domain.AccountBalance
	s.decode(w, &bal)
	s.True(bal.Balance.IsZero())
}

func (s *HandlersTestSuite) TestCapitalFlow() {
	w := s.call(http.MethodPut, "/capital", map[string]any{"authorizedShares": 10000, "sharePrice": "1000"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	contribution := func(id string, shares int64) *httptest.ResponseRecorder {
		return s.call(http.MethodPost, "/events", map[string]any{
			"type": "capital_contribution", "date": "2025-01-05", "sourceID": id, "partyID": "sh-" + id,
			"data": map[string]any{"amount": decimal.NewFromInt(shares * 1000), "shares": shares, "paymentMethod": "bank"},
		})
	}
	s.Require().Equal(http.StatusCreated, contribution("CC-1", 3000).Code)

	w = contribution("CC-2", 8000)
	s.Require().Equal(http.StatusConflict, w.Code)
	var res map[string]any
	s.decode(w, &res)
	s.Equal("capital_limit_exceeded", res["code"])
	s.Contains(res["error"], "11000")

	w = s.call(http.MethodGet, "/capital", nil)
	var capital domain.CompanyCapital
	s.decode(w, &capital)
	s.Equal(int64(3000), capital.IssuedShares)

	w = s.call(http.MethodGet, "/shareholders", nil)
	var holders []domain.Shareholder
	s.decode(w, &holders)
	s.Len(holders, 1)
}

func (s *HandlersTestSuite) TestBeneficialOwnerCeiling() {
	w := s.call(http.MethodPut, "/beneficial-owners/a", map[string]any{"name": "A", "ownershipPercentage": "80", "controlPercentage": "0"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.call(http.MethodPut, "/beneficial-owners/b", map[string]any{"name": "B", "ownershipPercentage": "30", "controlPercentage": "0"})
	s.Require().Equal(http.StatusConflict, w.Code)
	var res map[string]any
	s.decode(w, &res)
	s.Equal("ownership_ceiling_exceeded", res["code"])
}

func (s *HandlersTestSuite) TestDividendEndpoints() {
	s.Require().Equal(http.StatusOK, s.call(http.MethodPut, "/capital", map[string]any{"authorizedShares": 100, "sharePrice": "10"}).Code)
	s.Require().Equal(http.StatusOK, s.call(http.MethodPost, "/capital/allocations", map[string]any{"shareholderID": "sh-1", "shares": 10}).Code)

	w := s.call(http.MethodPost, "/dividends", map[string]any{"declarationDate": "2025-06-01", "profitAmount": "1000", "dividendPercentage": "10"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var decl domain.DividendDeclaration
	s.decode(w, &decl)

	base := "/dividends/" + decl.DeclarationID
	s.Equal(http.StatusConflict, s.call(http.MethodPost, base+"/distribute", nil).Code)
	s.Require().Equal(http.StatusOK, s.call(http.MethodPost, base+"/confirm", nil).Code)
	s.Require().Equal(http.StatusOK, s.call(http.MethodPost, base+"/distribute", nil).Code)

	w = s.call(http.MethodPost, base+"/pay", map[string]any{"paymentMethod": "bank"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &decl)
	s.Equal(domain.DividendPaid, decl.Status)

	w = s.call(http.MethodGet, base+"/distributions", nil)
	var dists []domain.DividendDistribution
	s.decode(w, &dists)
	s.Require().Len(dists, 1)
	s.True(dists[0].IsPaid)
}

func (s *HandlersTestSuite) TestPayrollEndpoints() {
	w := s.call(http.MethodPost, "/payroll/calculate", map[string]any{"grossSalary": "500000"})
	s.Require().Equal(http.StatusOK, w.Code)
	var b domain.PayrollBreakdown
	s.decode(w, &b)
	s.True(b.PAYE.Equal(decimal.NewFromInt(70500)))

	run := map[string]any{
		"period": "2025-01", "paymentMethod": "bank",
		"employees": []map[string]any{{"employeeID": "emp-1", "name": "Alice", "grossSalary": "500000"}},
	}
	w = s.call(http.MethodPost, "/payroll/runs", run)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var res portssvc.PayrollRunResult
	s.decode(w, &res)
	s.Equal(1, res.Posted)

	w = s.call(http.MethodGet, "/reports/paye?year=2025&month=1", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var paye domain.PAYEReturn
	s.decode(w, &paye)
	s.True(paye.TotalPAYE.Equal(decimal.NewFromInt(70500)))

	w = s.call(http.MethodGet, "/payroll/records?period=2025-01", nil)
	var recs []domain.PayrollRecord
	s.decode(w, &recs)
	s.Len(recs, 1)

	s.Equal(http.StatusBadRequest, s.call(http.MethodPost, "/payroll/runs", map[string]any{"period": "2025-01"}).Code)
}

func (s *HandlersTestSuite) TestQITEndpoints() {
	s.Equal(http.StatusNotFound, s.call(http.MethodGet, "/reports/qit?year=2025&quarter=2", nil).Code)

	w := s.call(http.MethodPost, "/reports/qit", map[string]any{"year": 2025, "quarter": 2, "estimatedIncome": "400000"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.call(http.MethodGet, "/reports/qit?year=2025&quarter=2", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var q domain.QITReturn
	s.decode(w, &q)
	s.True(q.TaxDue.Equal(decimal.NewFromInt(120000)))

	w = s.call(http.MethodGet, "/reports/cit?year=2025", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(http.StatusBadRequest, s.call(http.MethodGet, "/reports/cit", nil).Code)
}

func (s *HandlersTestSuite) TestInternalErrorsAreNotLeaked() {
	s.mockPayroll.On("ListPayrollRecords", mock.Anything, testCompany, "").
		Return(nil, errors.New("connection reset by peer")).Once()

	svcs := *s.svcs
	svcs.Payroll = s.mockPayroll
	router := gin.New()
	handlers.RegisterRoutes(router, &config.Config{JWTSecret: testSecret, JWTIssuer: testIssuer}, &svcs, func() time.Time { return fixedNow })

	w := s.do(router, http.MethodGet, "/api/v1/companies/"+testCompany+"/payroll/records", s.token("user-1"), nil)
	s.Require().Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "connection reset")
	s.mockPayroll.AssertExpectations(s.T())
}

func (s *HandlersTestSuite) TestStoreFailuresWrappingDomainErrorsStayInternal() {
	storeErr := apperrors.NewAppError(http.StatusInternalServerError, "failed to list payroll records for company "+testCompany,
		fmt.Errorf("%w: lookup cancelled mid-scan", apperrors.ErrNotFound))
	s.mockPayroll.On("ListPayrollRecords", mock.Anything, testCompany, "").Return(nil, storeErr).Once()

	svcs := *s.svcs
	svcs.Payroll = s.mockPayroll
	router := gin.New()
	handlers.RegisterRoutes(router, &config.Config{JWTSecret: testSecret, JWTIssuer: testIssuer}, &svcs, func() time.Time { return fixedNow })

	w := s.do(router, http.MethodGet, "/api/v1/companies/"+testCompany+"/payroll/records", s.token("user-1"), nil)
	s.Require().Equal(http.StatusInternalServerError, w.Code)
	var res map[string]any
	s.decode(w, &res)
	s.Equal("internal", res["code"])
	s.NotContains(w.Body.String(), "mid-scan")
	s.mockPayroll.AssertExpectations(s.T())
}
