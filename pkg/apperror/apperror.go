package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to react to it (e.g. the HTTP layer).
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindForbidden
	KindNotFound
	KindInvalidTransition
	KindModificationConflict
	KindFundNotFound
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindModificationConflict:
		return "modification_conflict"
	case KindFundNotFound:
		return "fund_not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error is the single error type returned by the service layer.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds field-level messages for validation errors.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrForbidden) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation           = &Error{Kind: KindValidation}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrInvalidTransition    = &Error{Kind: KindInvalidTransition}
	ErrModificationConflict = &Error{Kind: KindModificationConflict}
	ErrFundNotFound         = &Error{Kind: KindFundNotFound}
	ErrInternal             = &Error{Kind: KindInternal}
	ErrUnauthenticated      = &Error{Kind: KindUnauthenticated}
)

func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func ValidationField(field, message string) *Error {
	return Validation(map[string]string{field: message})
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func InvalidTransition(message string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: message}
}

func ModificationConflict(message string) *Error {
	return &Error{Kind: KindModificationConflict, Message: message}
}

func FundNotFound(message string) *Error {
	return &Error{Kind: KindFundNotFound, Message: message}
}

// Unauthenticated reports missing or wrong credentials
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Internal wraps an unexpected failure. The message is meant for logs, not for clients.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of err; errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldsOf returns validation field messages carried by err, if any.
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
