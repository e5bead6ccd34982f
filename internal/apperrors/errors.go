package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a concurrent modification or a state transition that is not allowed.
var ErrConflict = errors.New("conflict")

// ErrForbidden indicates that the caller may not perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal matches infrastructure failures whose cause is hidden from callers.
// Any AppError with a 5xx code matches it.
var ErrInternal = errors.New("internal error")

// ErrImbalance indicates debits and credits of a posting do not match.
var ErrImbalance = errors.New("debits and credits do not balance")

// ErrUnknownAccount indicates an account code missing from the chart of accounts.
var ErrUnknownAccount = errors.New("unknown account code")

// ErrCapitalLimitExceeded indicates an allocation would exceed authorized shares.
var ErrCapitalLimitExceeded = errors.New("capital limit exceeded")

// ErrOwnershipCeilingExceeded indicates beneficial ownership would exceed 100%.
var ErrOwnershipCeilingExceeded = errors.New("ownership ceiling exceeded")

// AppError wraps an underlying error with an HTTP-ish status code and a safe message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInternal and e is a server side failure.
func (e *AppError) Is(target error) bool {
	return target == ErrInternal && e.Code >= 500
}

// ValidationError lists the fields of a request that failed validation.
// Keys are field names, values describe the violated rule.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ImbalanceError carries both totals of an unbalanced posting.
type ImbalanceError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e *ImbalanceError) Error() string {
	return fmt.Sprintf("%s: debits sum is %s and credits sum is %s (difference %s)",
		ErrImbalance, e.Debits.String(), e.Credits.String(), e.Debits.Sub(e.Credits).Abs().String())
}

func (e *ImbalanceError) Unwrap() error { return ErrImbalance }

// UnknownAccountError names the account code that is not in the chart.
type UnknownAccountError struct {
	Code string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownAccount, e.Code)
}

func (e *UnknownAccountError) Unwrap() error { return ErrUnknownAccount }

// CapitalLimitExceededError reports the share counts involved in a rejected allocation.
type CapitalLimitExceededError struct {
	Issued     int64
	Requested  int64
	Authorized int64
}

func (e *CapitalLimitExceededError) Error() string {
	return fmt.Sprintf("%s: issued %d + requested %d = %d exceeds authorized %d",
		ErrCapitalLimitExceeded, e.Issued, e.Requested, e.Issued+e.Requested, e.Authorized)
}

func (e *CapitalLimitExceededError) Unwrap() error { return ErrCapitalLimitExceeded }

// OwnershipCeilingExceededError reports the ownership totals of a rejected upsert.
type OwnershipCeilingExceededError struct {
	Current   decimal.Decimal // sum over the other owners
	Requested decimal.Decimal
}

func (e *OwnershipCeilingExceededError) Error() string {
	return fmt.Sprintf("%s: other owners hold %s%% and requested %s%% totals %s%% (max 100%%)",
		ErrOwnershipCeilingExceeded, e.Current.String(), e.Requested.String(), e.Current.Add(e.Requested).String())
}

func (e *OwnershipCeilingExceededError) Unwrap() error { return ErrOwnershipCeilingExceeded }
