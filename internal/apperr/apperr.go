// Package apperr defines the typed errors the ledger core reports to callers.
// Every business-rule failure maps to exactly one Kind so that the transport
// layer can translate it without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Validation: malformed or out-of-range input (non-positive amount,
	// missing reason, mixed-tender sums that do not add up).
	Validation Kind = iota
	// Conflict: state-machine violation (second open shift on a register,
	// closing a shift that is not OPEN).
	Conflict
	// NotFound: unknown shift / credit / product / movement id.
	NotFound
	// InsufficientFunds: cash shortfall exceeding the client's available credit.
	InsufficientFunds
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case InsufficientFunds:
		return "insufficient_funds"
	}
	return "unknown"
}

// Error is the single error type crossing the service boundary.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from an error chain. Errors that did not originate
// in this package report ok=false and must be treated as internal.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
