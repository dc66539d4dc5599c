// Package errs defines the typed failures the resonance pipeline can return.
// Every failure carries a Kind so callers can branch with errors.Is against the
// sentinels below without parsing messages.
package errs

import (
	"errors"
	"fmt"
)

// #region kind

// Kind classifies a failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindMissingInput Kind = "missing_input"
	KindUpstream     Kind = "upstream"
	KindInvariant    Kind = "invariant"
)

// Sentinels for errors.Is matching. Only the Kind is compared.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrMissingInput = &Error{Kind: KindMissingInput}
	ErrUpstream     = &Error{Kind: KindUpstream}
	ErrInvariant    = &Error{Kind: KindInvariant}
)

// #endregion kind

// #region error

// Error is the single failure type of the pipeline.
type Error struct {
	Kind    Kind
	Field   string // offending field, body or quantity; may be empty
	Message string
	Cause   error
}

// Error formats as "<kind>: <field>: <message>: <cause>", omitting empty parts.
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// #endregion error

// #region constructors

// Validation reports an out-of-range, malformed or missing input value.
func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// MissingInput reports a required body absent from a position set.
func MissingInput(chart, body string) *Error {
	return &Error{
		Kind:    KindMissingInput,
		Field:   body,
		Message: fmt.Sprintf("required body %s absent from %s positions", body, chart),
	}
}

// Upstream wraps a Position Source failure. op names the call that failed.
func Upstream(op string, cause error) *Error {
	return &Error{Kind: KindUpstream, Field: op, Message: "position source failed", Cause: cause}
}

// UpstreamValue reports a non-finite or otherwise unusable value returned upstream.
func UpstreamValue(field, format string, args ...any) *Error {
	return &Error{Kind: KindUpstream, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Invariant reports a computed quantity outside its documented range.
func Invariant(quantity string, value, lo, hi float64) *Error {
	return &Error{
		Kind:    KindInvariant,
		Field:   quantity,
		Message: fmt.Sprintf("value %g outside [%g, %g]", value, lo, hi),
	}
}

// #endregion constructors

// #region helpers

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// FieldOf returns the Field of the first *Error in err's chain, or "" if none.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// #endregion helpers
