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

// ErrConflict indicates the operation is not allowed in the resource's current state.
var ErrConflict = errors.New("resource state conflict")

// ErrInternal hides an unexpected failure from the caller.
var ErrInternal = errors.New("internal error")

// Ledger errors. Each one is returned before any balance is touched.
var (
	ErrUnbalancedEntry      = errors.New("journal entry is unbalanced")
	ErrUnknownAccount       = errors.New("unknown account")
	ErrEmptyEntry           = errors.New("journal entry has no lines")
	ErrAccountInUse         = errors.New("account is referenced by journal lines")
	ErrDuplicateAccountCode = fmt.Errorf("%w: account code", ErrDuplicate)
	ErrInsufficientCredit   = errors.New("insufficient credit hours")
	ErrAmbiguousMatch       = errors.New("reconciliation match is ambiguous")
)

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError. err may be nil.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}
