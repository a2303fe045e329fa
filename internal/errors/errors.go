package errors

import (
	stderrors "errors"
	"fmt"
)

// Error kinds. Every *Error wraps exactly one of these so callers can branch
// with errors.Is without knowing the concrete code.
var (
	ErrValidation = stderrors.New("validation error")
	ErrFormat     = stderrors.New("format error")
	ErrIO         = stderrors.New("io failure")
)

// Error is a classified failure carrying a stable code and the underlying cause
type Error struct {
	Code    ErrorCode
	Message string
	Field   string
	Err     error

	kind error
}

// NewValidationError reports an invalid value supplied when creating a transaction
func NewValidationError(code ErrorCode, field, message string) *Error {
	return &Error{Code: code, Field: field, Message: message, kind: ErrValidation}
}

// NewFormatError reports a document or record that does not match the persisted schema
func NewFormatError(code ErrorCode, field string, err error) *Error {
	return &Error{Code: code, Field: field, Err: err, kind: ErrFormat}
}

// NewIOError reports a storage read or write that could not complete
func NewIOError(code ErrorCode, err error) *Error {
	return &Error{Code: code, Err: err, kind: ErrIO}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = GetErrorMessage(e.Code)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %q)", msg, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// WithIndex returns a copy of a format error annotated with the entry position
func (e *Error) WithIndex(index int) *Error {
	cp := *e
	base := e.Message
	if base == "" {
		base = GetErrorMessage(e.Code)
	}
	cp.Message = fmt.Sprintf("%s at entry %d", base, index)
	return &cp
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return stderrors.Is(err, ErrValidation)
}

// IsFormat reports whether err is a format error
func IsFormat(err error) bool {
	return stderrors.Is(err, ErrFormat)
}

// IsIO reports whether err is a storage failure
func IsIO(err error) bool {
	return stderrors.Is(err, ErrIO)
}

// CodeOf returns the code of the first *Error in the chain, or SystemUnexpectedError
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return SystemUnexpectedError
}
