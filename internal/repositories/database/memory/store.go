// Package memory provides an in-memory implementation of every repository, used
// for development, tests and single-process deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
)

// companyLedger is one tenant's bucket. entries is kept in ledger order and
// byAccount holds the same entries split per account code, also ordered.
type companyLedger struct {
	mu        sync.RWMutex
	entries   []domain.LedgerEntry
	byAccount map[string][]domain.LedgerEntry
	bySource  map[domain.IdempotencyKey][]domain.LedgerEntry
}

func newCompanyLedger() *companyLedger {
	return &companyLedger{
		byAccount: make(map[string][]domain.LedgerEntry),
		bySource:  make(map[domain.IdempotencyKey][]domain.LedgerEntry),
	}
}

type qitKey struct {
	companyID     string
	year, quarter int
}

// Store is guarded by an RWMutex for tenant maps; each ledger bucket has its own lock.
type Store struct {
	mu            sync.RWMutex
	ledgers       map[string]*companyLedger
	capital       map[string]domain.CompanyCapital
	applied       map[string]map[string]struct{}
	shareholders  map[string]map[string]domain.Shareholder
	owners        map[string]map[string]domain.BeneficialOwner
	dividends     map[string]map[string]domain.DividendDeclaration
	distributions map[string]map[string][]domain.DividendDistribution
	payroll       map[string]map[string]domain.PayrollRecord
	qit           map[qitKey]domain.QITReturn
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		ledgers:       make(map[string]*companyLedger),
		capital:       make(map[string]domain.CompanyCapital),
		applied:       make(map[string]map[string]struct{}),
		shareholders:  make(map[string]map[string]domain.Shareholder),
		owners:        make(map[string]map[string]domain.BeneficialOwner),
		dividends:     make(map[string]map[string]domain.DividendDeclaration),
		distributions: make(map[string]map[string][]domain.DividendDistribution),
		payroll:       make(map[string]map[string]domain.PayrollRecord),
		qit:           make(map[qitKey]domain.QITReturn),
	}
}

// Close releases nothing; it exists so the composition root treats both stores alike.
func (s *Store) Close() {}

var (
	_ portsrepo.LedgerRepositoryFacade    = (*Store)(nil)
	_ portsrepo.CapitalRepositoryFacade   = (*Store)(nil)
	_ portsrepo.PayrollRepositoryFacade   = (*Store)(nil)
	_ portsrepo.TaxFilingRepositoryFacade = (*Store)(nil)
)

// NewRepositoryProvider exposes the store through every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:    s,
		CapitalRepo:   s,
		PayrollRepo:   s,
		TaxFilingRepo: s,
	}
}

func (s *Store) bucket(companyID string, create bool) *companyLedger {
	s.mu.RLock()
	b := s.ledgers[companyID]
	s.mu.RUnlock()
	if b != nil || !create {
		return b
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b = s.ledgers[companyID]; b == nil {
		b = newCompanyLedger()
		s.ledgers[companyID] = b
	}
	return b
}

func entryLess(a, b domain.LedgerEntry) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	if a.LineNo != b.LineNo {
		return a.LineNo < b.LineNo
	}
	return a.EntryID < b.EntryID
}

func insertSorted(list []domain.LedgerEntry, e domain.LedgerEntry) []domain.LedgerEntry {
	i := sort.Search(len(list), func(i int) bool { return entryLess(e, list[i]) })
	list = append(list, domain.LedgerEntry{})
	copy(list[i+1:], list[i:])
	list[i] = e
	return list
}

// AppendTransaction implements portsrepo.LedgerWriter.
func (s *Store) AppendTransaction(_ context.Context, key domain.IdempotencyKey, entries []domain.LedgerEntry) (bool, error) {
	b := s.bucket(key.CompanyID, true)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.bySource[key]; exists {
		return false, nil
	}
	stored := make([]domain.LedgerEntry, len(entries))
	copy(stored, entries)
	for _, e := range stored {
		b.entries = insertSorted(b.entries, e)
		b.byAccount[e.AccountCode] = insertSorted(b.byAccount[e.AccountCode], e)
	}
	b.bySource[key] = stored
	return true, nil
}

// EntriesBySource implements portsrepo.LedgerReader.
func (s *Store) EntriesBySource(_ context.Context, key domain.IdempotencyKey) ([]domain.LedgerEntry, error) {
	b := s.bucket(key.CompanyID, false)
	if b == nil {
		return []domain.LedgerEntry{}, nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.LedgerEntry, len(b.bySource[key]))
	copy(out, b.bySource[key])
	return out, nil
}

// ListEntries implements portsrepo.LedgerReader. It scans the per-account
// index when the filter names accounts and the full ledger otherwise.
func (s *Store) ListEntries(_ context.Context, companyID string, f portsrepo.EntryFilter) ([]domain.LedgerEntry, error) {
	b := s.bucket(companyID, false)
	if b == nil {
		return []domain.LedgerEntry{}, nil
	}
	b.mu.RLock()
	var candidates []domain.LedgerEntry
	if len(f.AccountCodes) > 0 {
		seen := make(map[string]struct{}, len(f.AccountCodes))
		for _, code := range f.AccountCodes {
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			candidates = append(candidates, scanRange(b.byAccount[code], f)...)
		}
	} else {
		candidates = scanRange(b.entries, f)
	}
	b.mu.RUnlock()

	if len(f.AccountCodes) > 1 {
		sort.Slice(candidates, func(i, j int) bool { return entryLess(candidates[i], candidates[j]) })
	}
	out := make([]domain.LedgerEntry, 0, len(candidates))
	for _, e := range candidates {
		if f.SourceType != "" && e.SourceType != f.SourceType {
			continue
		}
		if f.PartyID != "" && e.PartyID != f.PartyID {
			continue
		}
		if f.After != nil && !afterCursor(e, *f.After) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// scanRange copies the entries of an ordered list whose date lies in [From, To].
func scanRange(list []domain.LedgerEntry, f portsrepo.EntryFilter) []domain.LedgerEntry {
	start := 0
	if f.From != nil {
		from := domain.DateOnly(*f.From)
		start = sort.Search(len(list), func(i int) bool { return !list[i].Date.Before(from) })
	}
	end := len(list)
	if f.To != nil {
		to := domain.DateOnly(*f.To)
		end = sort.Search(len(list), func(i int) bool { return list[i].Date.After(to) })
	}
	if start >= end {
		return nil
	}
	out := make([]domain.LedgerEntry, end-start)
	copy(out, list[start:end])
	return out
}

func afterCursor(e domain.LedgerEntry, c portsrepo.EntryCursor) bool {
	return entryLess(domain.LedgerEntry{Date: c.Date, CreatedAt: c.CreatedAt, LineNo: c.LineNo, EntryID: c.EntryID}, e)
}

// FindCapital implements portsrepo.CapitalReader.
func (s *Store) FindCapital(_ context.Context, companyID string) (*domain.CompanyCapital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.capital[companyID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

// SaveCapital implements portsrepo.CapitalWriter with compare-and-swap on Version.
func (s *Store) SaveCapital(_ context.Context, capital domain.CompanyCapital, expectedVersion int64, holders []domain.Shareholder, postingKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.capital[capital.CompanyID]
	switch {
	case !ok && expectedVersion != 0:
		return apperrors.ErrConflict
	case ok && current.Version != expectedVersion:
		return apperrors.ErrConflict
	}
	capital.Version = expectedVersion + 1
	s.capital[capital.CompanyID] = capital
	for _, h := range holders {
		s.putShareholderLocked(h)
	}
	if postingKey != "" {
		keys, ok := s.applied[capital.CompanyID]
		if !ok {
			keys = make(map[string]struct{})
			s.applied[capital.CompanyID] = keys
		}
		keys[postingKey] = struct{}{}
	}
	return nil
}

// CapitalPostingApplied implements portsrepo.CapitalReader.
func (s *Store) CapitalPostingApplied(_ context.Context, companyID, postingKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.applied[companyID][postingKey]
	return ok, nil
}

func (s *Store) putShareholderLocked(h domain.Shareholder) {
	m, ok := s.shareholders[h.CompanyID]
	if !ok {
		m = make(map[string]domain.Shareholder)
		s.shareholders[h.CompanyID] = m
	}
	m[h.ShareholderID] = h
}

// ListShareholders implements portsrepo.CapitalReader.
func (s *Store) ListShareholders(_ context.Context, companyID string) ([]domain.Shareholder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Shareholder, 0, len(s.shareholders[companyID]))
	for _, h := range s.shareholders[companyID] {
		out = append(out, h)
	}
	domain.SortShareholders(out)
	return out, nil
}

// FindShareholder implements portsrepo.CapitalReader.
func (s *Store) FindShareholder(_ context.Context, companyID, shareholderID string) (*domain.Shareholder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.shareholders[companyID][shareholderID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &h, nil
}

// SaveShareholder implements portsrepo.CapitalWriter.
func (s *Store) SaveShareholder(_ context.Context, holder domain.Shareholder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putShareholderLocked(holder)
	return nil
}

// ListBeneficialOwners implements portsrepo.CapitalReader.
func (s *Store) ListBeneficialOwners(_ context.Context, companyID string) ([]domain.BeneficialOwner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.BeneficialOwner, 0, len(s.owners[companyID]))
	for _, o := range s.owners[companyID] {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OwnerID < out[j].OwnerID })
	return out, nil
}

// SaveBeneficialOwner implements portsrepo.CapitalWriter.
func (s *Store) SaveBeneficialOwner(_ context.Context, owner domain.BeneficialOwner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.owners[owner.CompanyID]
	if !ok {
		m = make(map[string]domain.BeneficialOwner)
		s.owners[owner.CompanyID] = m
	}
	m[owner.OwnerID] = owner
	return nil
}

// FindDividend implements portsrepo.DividendReader.
func (s *Store) FindDividend(_ context.Context, companyID, declarationID string) (*domain.DividendDeclaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	decl, ok := s.dividends[companyID][declarationID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &decl, nil
}

// ListDistributions implements portsrepo.DividendReader.
func (s *Store) ListDistributions(_ context.Context, companyID, declarationID string) ([]domain.DividendDistribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.distributions[companyID][declarationID]
	out := make([]domain.DividendDistribution, len(src))
	copy(out, src)
	return out, nil
}

// SaveDividend implements portsrepo.DividendWriter.
func (s *Store) SaveDividend(_ context.Context, decl domain.DividendDeclaration, dists []domain.DividendDistribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dividends[decl.CompanyID]; !ok {
		s.dividends[decl.CompanyID] = make(map[string]domain.DividendDeclaration)
		s.distributions[decl.CompanyID] = make(map[string][]domain.DividendDistribution)
	}
	s.dividends[decl.CompanyID][decl.DeclarationID] = decl
	if dists != nil {
		stored := make([]domain.DividendDistribution, len(dists))
		copy(stored, dists)
		s.distributions[decl.CompanyID][decl.DeclarationID] = stored
	}
	return nil
}

// SavePayrollRecord implements portsrepo.PayrollRepositoryFacade.
func (s *Store) SavePayrollRecord(_ context.Context, rec domain.PayrollRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.payroll[rec.CompanyID]
	if !ok {
		m = make(map[string]domain.PayrollRecord)
		s.payroll[rec.CompanyID] = m
	}
	key := domain.PayrollSourceID(rec.Period, rec.EmployeeID)
	if _, exists := m[key]; exists {
		return false, nil
	}
	m[key] = rec
	return true, nil
}

// FindPayrollRecord implements portsrepo.PayrollRepositoryFacade.
func (s *Store) FindPayrollRecord(_ context.Context, companyID, period, employeeID string) (*domain.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.payroll[companyID][domain.PayrollSourceID(period, employeeID)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rec, nil
}

// ListPayrollRecords implements portsrepo.PayrollRepositoryFacade.
func (s *Store) ListPayrollRecords(_ context.Context, companyID, period string) ([]domain.PayrollRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PayrollRecord, 0)
	for _, rec := range s.payroll[companyID] {
		if period == "" || rec.Period == period {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

// SaveQITReturn implements portsrepo.TaxFilingRepositoryFacade.
func (s *Store) SaveQITReturn(_ context.Context, r domain.QITReturn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qit[qitKey{r.CompanyID, r.Year, r.Quarter}] = r
	return nil
}

// FindQITReturn implements portsrepo.TaxFilingRepositoryFacade.
func (s *Store) FindQITReturn(_ context.Context, companyID string, year, quarter int) (*domain.QITReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.qit[qitKey{companyID, year, quarter}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &r, nil
}
