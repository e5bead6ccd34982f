package services_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/SscSPs/statutory_ledger/internal/core/services"
	"github.com/SscSPs/statutory_ledger/internal/platform/config"
	"github.com/SscSPs/statutory_ledger/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const testCompany = "co-1"

var fixedNow = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

// testEnv wires every service over a fresh memory store.
type testEnv struct {
	store *memory.Store
	svcs  *portssvc.ServiceContainer
}

func newTestEnv() *testEnv {
	store := memory.New()
	cfg := &config.Config{Tax: config.DefaultTaxConfig()}
	var seq atomic.Int64
	svcs := services.NewServiceContainer(cfg, memory.NewRepositoryProvider(store),
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithIDGenerator(func() string { return fmt.Sprintf("id-%04d", seq.Add(1)) }),
	)
	return &testEnv{store: store, svcs: svcs}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func rate(s string) *decimal.Decimal {
	r := dec(s)
	return &r
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func header(sourceID string, day time.Time) domain.EventHeader {
	return domain.EventHeader{CompanyID: testCompany, Date: day, SourceID: sourceID, CreatedBy: "user-1"}
}

func manualTx(sourceID string, day time.Time, lines ...domain.EntryLine) domain.Transaction {
	return domain.Transaction{
		CompanyID:  testCompany,
		Date:       day,
		SourceID:   sourceID,
		SourceType: domain.SourceManual,
		Lines:      lines,
	}
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) ListEntries(ctx context.Context, companyID string, filter portsrepo.EntryFilter) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) EntriesBySource(ctx context.Context, key domain.IdempotencyKey) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) AppendTransaction(ctx context.Context, key domain.IdempotencyKey, entries []domain.LedgerEntry) (bool, error) {
	args := m.Called(ctx, key, entries)
	return args.Bool(0), args.Error(1)
}
