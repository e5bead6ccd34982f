package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/apperrors"
	"github.com/SscSPs/statutory_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/statutory_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/statutory_ledger/internal/core/ports/services"
	"github.com/SscSPs/statutory_ledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const (
	defaultEntryPageSize = 50
	maxEntryPageSize     = 500
)

// postingService implements the LedgerSvcFacade interface
type postingService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepositoryFacade
	chart      *domain.ChartOfAccounts
	keyLocks   *keyedMutex
}

// NewPostingService creates the posting engine over a ledger store.
func NewPostingService(repo portsrepo.LedgerRepositoryFacade, chart *domain.ChartOfAccounts, options ...BaseOption) portssvc.LedgerSvcFacade {
	svc := &postingService{
		BaseService: newBaseService(),
		ledgerRepo:  repo,
		chart:       chart,
		keyLocks:    newKeyedMutex(),
	}
	for _, option := range options {
		option(&svc.BaseService)
	}
	return svc
}

// Ensure postingService implements the LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*postingService)(nil)

func (s *postingService) Chart() *domain.ChartOfAccounts { return s.chart }

// Post validates tx, then appends it under its idempotency key.
func (s *postingService) Post(ctx context.Context, tx domain.Transaction) (domain.PostResult, error) {
	if err := validateTransaction(tx); err != nil {
		s.LogDebug(ctx, "Rejected malformed transaction", slog.String("error", err.Error()))
		return domain.PostResult{}, err
	}
	for _, l := range tx.Lines {
		if _, ok := s.chart.Lookup(l.AccountCode); !ok {
			err := &apperrors.UnknownAccountError{Code: l.AccountCode}
			s.LogDebug(ctx, "Rejected transaction with unknown account", slog.String("account_code", l.AccountCode))
			return domain.PostResult{}, err
		}
	}
	debits, credits := tx.Totals()
	if debits.Sub(credits).Abs().GreaterThan(domain.BalanceTolerance) {
		err := &apperrors.ImbalanceError{Debits: debits, Credits: credits}
		s.LogDebug(ctx, "Rejected unbalanced transaction", slog.String("error", err.Error()))
		return domain.PostResult{}, err
	}

	key := tx.Key()
	result := domain.PostResult{Key: key.String(), Debits: debits, Credits: credits}

	unlock := s.keyLocks.Lock(key.String())
	defer unlock()

	now := s.Now()
	date := domain.DateOnly(tx.Date)
	entries := make([]domain.LedgerEntry, len(tx.Lines))
	for i, l := range tx.Lines {
		entries[i] = domain.LedgerEntry{
			EntryID:     s.NewID(),
			CompanyID:   tx.CompanyID,
			Date:        date,
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Reference:   tx.Reference,
			Description: tx.Description,
			SourceID:    tx.SourceID,
			SourceType:  tx.SourceType,
			PartyID:     l.PartyID,
			LineNo:      i + 1,
			CreatedAt:   now,
			CreatedBy:   tx.CreatedBy,
		}
	}

	appended, err := s.ledgerRepo.AppendTransaction(ctx, key, entries)
	if err != nil {
		s.LogError(ctx, err, "Failed to append transaction", slog.String("key", key.String()))
		return domain.PostResult{}, err
	}
	if !appended {
		s.LogWarn(ctx, "Duplicate posting skipped", slog.String("key", key.String()))
		result.Status = domain.PostStatusDuplicateSkipped
		return result, nil
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.String("key", key.String()),
		slog.Int("lines", len(entries)),
		slog.String("amount", debits.String()))
	result.Status = domain.PostStatusCommitted
	result.Entries = entries
	return result, nil
}

func validateTransaction(tx domain.Transaction) error {
	errs := fieldErrors{}
	if tx.CompanyID == "" {
		errs.add("companyID", "is required")
	}
	if tx.Date.IsZero() {
		errs.add("date", "is required")
	}
	if tx.SourceType == "" {
		errs.add("sourceType", "is required")
	}
	if tx.SourceID == "" {
		errs.add("sourceID", "is required")
	}
	if len(tx.Lines) < 2 {
		errs.add("lines", "at least two lines are required, got %d", len(tx.Lines))
	}
	for i, l := range tx.Lines {
		field := "lines[" + strconv.Itoa(i) + "]"
		switch {
		case l.AccountCode == "":
			errs.add(field+".accountCode", "is required")
		case l.Debit.IsNegative() || l.Credit.IsNegative():
			errs.add(field, "amounts must not be negative (debit %s, credit %s)", l.Debit, l.Credit)
		case l.Debit.IsPositive() && l.Credit.IsPositive():
			errs.add(field, "only one of debit %s and credit %s may be set", l.Debit, l.Credit)
		case l.Debit.IsZero() && l.Credit.IsZero():
			errs.add(field, "either debit or credit must be set")
		}
	}
	return errs.err()
}

// Reverse posts a transaction that swaps every debit and credit of original.
// The reversal is itself idempotent: reversing the same posting twice is skipped.
func (s *postingService) Reverse(ctx context.Context, original domain.IdempotencyKey, date time.Time, userID string) (domain.PostResult, error) {
	if original.CompanyID == "" || original.SourceType == "" || original.SourceID == "" {
		return domain.PostResult{}, apperrors.NewValidationError("original", "company, source type and source id are required")
	}
	if original.SourceType == domain.SourceReversal {
		return domain.PostResult{}, apperrors.NewValidationError("original", "a reversal cannot be reversed; post the original again under a new source id")
	}
	entries, err := s.ledgerRepo.EntriesBySource(ctx, original)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transaction to reverse", slog.String("key", original.String()))
		return domain.PostResult{}, err
	}
	if len(entries) == 0 {
		return domain.PostResult{}, fmt.Errorf("%w: no posting for %s", apperrors.ErrNotFound, original)
	}
	if date.IsZero() {
		date = s.Now()
	}

	tx := domain.Transaction{
		CompanyID:   original.CompanyID,
		Date:        date,
		Reference:   "REV-" + entries[0].Reference,
		Description: "Reversal of " + original.String(),
		SourceID:    original.String(),
		SourceType:  domain.SourceReversal,
		CreatedBy:   userID,
	}
	for _, e := range entries {
		tx.Lines = append(tx.Lines, domain.EntryLine{
			AccountCode: e.AccountCode,
			Debit:       e.Credit,
			Credit:      e.Debit,
			PartyID:     e.PartyID,
		})
	}
	return s.Post(ctx, tx)
}

// ListEntries returns one page of ledger entries in ledger order.
func (s *postingService) ListEntries(ctx context.Context, companyID string, q portssvc.EntryQuery) ([]domain.LedgerEntry, *string, error) {
	if companyID == "" {
		return nil, nil, apperrors.NewValidationError("companyID", "is required")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultEntryPageSize
	}
	if limit > maxEntryPageSize {
		limit = maxEntryPageSize
	}

	filter := portsrepo.EntryFilter{
		From:       q.From,
		To:         q.To,
		SourceType: q.SourceType,
		PartyID:    q.PartyID,
		Limit:      limit + 1, // one extra to know whether another page exists
	}
	if q.AccountCode != "" {
		if _, ok := s.chart.Lookup(q.AccountCode); !ok {
			return nil, nil, &apperrors.UnknownAccountError{Code: q.AccountCode}
		}
		filter.AccountCodes = []string{q.AccountCode}
	}
	if q.NextToken != nil && *q.NextToken != "" {
		cursor, err := decodeEntryCursor(*q.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("nextToken", err.Error())
		}
		filter.After = cursor
	}

	entries, err := s.ledgerRepo.ListEntries(ctx, companyID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries", slog.String("company_id", companyID))
		return nil, nil, err
	}

	var next *string
	if len(entries) > limit {
		entries = entries[:limit]
		token := encodeEntryCursor(entries[limit-1])
		next = &token
	}
	return entries, next, nil
}

func encodeEntryCursor(e domain.LedgerEntry) string {
	return pagination.EncodeMultiFieldToken(
		e.Date.Format(time.RFC3339Nano),
		e.CreatedAt.Format(time.RFC3339Nano),
		strconv.Itoa(e.LineNo),
		e.EntryID,
	)
}

func decodeEntryCursor(token string) (*portsrepo.EntryCursor, error) {
	fields, err := pagination.DecodeMultiFieldToken(token)
	if err != nil {
		return nil, err
	}
	if len(fields) != 4 {
		return nil, errors.New("invalid pagination token format (field count)")
	}
	date, err := time.Parse(time.RFC3339Nano, fields[0])
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields[1])
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}
	lineNo, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (line parse): %w", err)
	}
	return &portsrepo.EntryCursor{Date: date, CreatedAt: createdAt, LineNo: lineNo, EntryID: fields[3]}, nil
}

// sumSides totals debits and credits of entries.
func sumSides(entries []domain.LedgerEntry) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
	}
	return debits, credits
}
