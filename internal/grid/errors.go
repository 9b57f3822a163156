package grid

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes grid errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a sequence, position or handle is absent.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidStateTransition indicates a row state change that is not permitted.
	ErrCodeInvalidStateTransition ErrorCode = "INVALID_STATE_TRANSITION"

	// ErrCodeInvariantViolation indicates the index maps disagree with the row set.
	ErrCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"

	// ErrCodeInvalidRow indicates a row passed in by the caller is malformed.
	ErrCodeInvalidRow ErrorCode = "INVALID_ROW"

	// ErrCodeInvalidOption indicates an unknown option path or a value of the wrong type.
	ErrCodeInvalidOption ErrorCode = "INVALID_OPTION"

	// ErrCodeDisposed indicates the grid was disposed.
	ErrCodeDisposed ErrorCode = "DISPOSED"
)

// Error is the error type returned by grid operations.
// All grid errors are local and recoverable; callers branch on Code.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a description for logs, not for end users.
	Message string

	// Grid is the instance sequence the error came from.
	Grid int64

	// Seq is the row sequence involved, 0 if none.
	Seq int64

	// Field is the field or option path involved, empty if none.
	Field string
}

// Sentinels for errors.Is. Only the Code is compared.
var (
	ErrNotFound               = &Error{Code: ErrCodeNotFound}
	ErrInvalidStateTransition = &Error{Code: ErrCodeInvalidStateTransition}
	ErrInvariantViolation     = &Error{Code: ErrCodeInvariantViolation}
	ErrInvalidRow             = &Error{Code: ErrCodeInvalidRow}
	ErrInvalidOption          = &Error{Code: ErrCodeInvalidOption}
	ErrDisposed               = &Error{Code: ErrCodeDisposed}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	switch {
	case e.Seq != 0 && e.Field != "":
		return fmt.Sprintf("%s (grid=%d, seq=%d, field=%s)", msg, e.Grid, e.Seq, e.Field)
	case e.Seq != 0:
		return fmt.Sprintf("%s (grid=%d, seq=%d)", msg, e.Grid, e.Seq)
	case e.Field != "":
		return fmt.Sprintf("%s (grid=%d, field=%s)", msg, e.Grid, e.Field)
	case e.Grid != 0:
		return fmt.Sprintf("%s (grid=%d)", msg, e.Grid)
	}
	return msg
}

// Is reports whether target is a grid error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// IsNotFound returns true if err is a NOT_FOUND grid error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsInvalidTransition returns true if err is an INVALID_STATE_TRANSITION grid error.
func IsInvalidTransition(err error) bool {
	return hasCode(err, ErrCodeInvalidStateTransition)
}

// IsInvariantViolation returns true if err is an INVARIANT_VIOLATION grid error.
func IsInvariantViolation(err error) bool {
	return hasCode(err, ErrCodeInvariantViolation)
}

// IsInvalidOption returns true if err is an INVALID_OPTION grid error.
func IsInvalidOption(err error) bool {
	return hasCode(err, ErrCodeInvalidOption)
}

// IsDisposed returns true if err is a DISPOSED grid error.
func IsDisposed(err error) bool {
	return hasCode(err, ErrCodeDisposed)
}

func hasCode(err error, code ErrorCode) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}

func (g *Grid) errorf(code ErrorCode, seq int64, field, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Grid:    g.seq,
		Seq:     seq,
		Field:   field,
	}
}
