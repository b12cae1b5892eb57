package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the resource is in a state that does not allow the requested operation.
var ErrConflict = errors.New("resource state conflict")

// ErrRejected indicates a business rule rejected the operation; an administrator has to act before it can succeed.
var ErrRejected = errors.New("rejected by business rule")

// ErrTransient indicates a temporary failure. The identical call can be retried.
var ErrTransient = errors.New("transient failure")

// ErrInternal indicates an unexpected failure inside the engine or its storage.
var ErrInternal = errors.New("internal error")

// ledgerError is a named failure that also matches one or more of the generic sentinels above.
type ledgerError struct {
	msg   string
	kinds []error
}

func (e *ledgerError) Error() string   { return e.msg }
func (e *ledgerError) Unwrap() []error { return e.kinds }

func newLedgerError(msg string, kinds ...error) error {
	return &ledgerError{msg: msg, kinds: kinds}
}

// Validation errors.
var (
	ErrUnbalancedEntry = newLedgerError("journal entry is not balanced", ErrValidation)
	ErrAccountNotFound = newLedgerError("account not found", ErrNotFound, ErrValidation)
	ErrInvalidParent   = newLedgerError("invalid parent account", ErrValidation)
	ErrDuplicateCode   = newLedgerError("account code already exists", ErrDuplicate, ErrValidation)
	ErrInvalidAmount   = newLedgerError("invalid amount", ErrValidation)
	ErrInvalidLines    = newLedgerError("invalid journal lines", ErrValidation)
)

// State errors.
var (
	ErrEntryNotEditable       = newLedgerError("journal entry is not editable", ErrConflict)
	ErrAlreadyPosted          = newLedgerError("journal entry already posted", ErrConflict)
	ErrNotPosted              = newLedgerError("journal entry is not posted", ErrConflict)
	ErrCannotReverseReversal  = newLedgerError("a reversal entry cannot be reversed", ErrConflict)
	ErrNonZeroBalance         = newLedgerError("account balance is not zero", ErrConflict)
	ErrHasChildren            = newLedgerError("account has child accounts", ErrConflict)
	ErrEntryNotFound          = newLedgerError("journal entry not found", ErrNotFound)
	ErrFiscalPeriodNotFound   = newLedgerError("fiscal period not found", ErrNotFound)
	ErrFiscalPeriodOverlap    = newLedgerError("fiscal period overlaps an existing period", ErrValidation)
	ErrFiscalPeriodInvalidDay = newLedgerError("fiscal period start date is after end date", ErrValidation)
)

// Resource errors.
var (
	ErrPeriodClosed       = newLedgerError("fiscal period is closed", ErrRejected)
	ErrNoPeriodDefined    = newLedgerError("no fiscal period covers the date", ErrRejected)
	ErrOverlappingPeriods = newLedgerError("more than one fiscal period covers the date", ErrRejected)
)

// ErrLockTimeout is returned when posting could not acquire its account locks in time.
var ErrLockTimeout = newLedgerError("timed out waiting for account locks", ErrTransient)

// Category groups errors by how a caller is expected to react to them.
type Category string

const (
	CategoryValidation Category = "VALIDATION"
	CategoryNotFound   Category = "NOT_FOUND"
	CategoryState      Category = "STATE"
	CategoryResource   Category = "RESOURCE"
	CategoryTransient  Category = "TRANSIENT"
	CategoryInternal   Category = "INTERNAL"
)

// CategoryOf classifies err. Unknown errors are internal.
func CategoryOf(err error) Category {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransient):
		return CategoryTransient
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicate):
		return CategoryValidation
	case errors.Is(err, ErrConflict):
		return CategoryState
	case errors.Is(err, ErrRejected):
		return CategoryResource
	default:
		return CategoryInternal
	}
}

// IsRetryable reports whether re-issuing the identical call may succeed.
func IsRetryable(err error) bool {
	return CategoryOf(err) == CategoryTransient
}

// AppError carries a status code alongside the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError wraps err with a code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
