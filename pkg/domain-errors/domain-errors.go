// Package domainerrors carries failure categories from the service layer to
// the transport without either side knowing about the other.
package domainerrors

import "errors"

// Code names a failure category. Handlers map codes to HTTP statuses.
type Code string

// Request problems.
const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
)

// Registration outcomes.
const (
	CodeCapacityExceeded Code = "capacity_exceeded"
	CodeStoreUnavailable Code = "store_unavailable"
)

// Everything else.
const (
	CodeTimeout  Code = "timeout"
	CodeInternal Code = "internal_error"
)

// Error pairs a Code with a caller-safe message and the underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a domain error with the same code, so
// errors.Is(err, &Error{Code: CodeConflict}) works through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches msg to err. A domain error keeps its own code; anything else
// takes code.
func Wrap(err error, code Code, msg string) error {
	if existing, ok := CodeOf(err); ok {
		code = existing
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the first domain error in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

func HasCode(err error, code Code) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}
