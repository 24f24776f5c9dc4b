// Package domainerr defines the machine-readable business errors returned by
// the ledger core. Handlers map the Kind to an HTTP status; the Code lets
// clients react programmatically (re-fetch state on conflicts, prompt for
// escalation on authorization failures) instead of parsing messages.
package domainerr

import "fmt"

// Kind partitions business failures per the error taxonomy:
// validation, state conflict, authorization, not found.
type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindForbidden
	KindNotFound
)

// Canonical codes. State-conflict codes name the expected-vs-actual state.
const (
	CodeAlreadyActive       = "ALREADY_ACTIVE"
	CodeAlreadyOpen         = "ALREADY_OPEN"
	CodeNotActive           = "NOT_ACTIVE"
	CodeNotOpen             = "NOT_OPEN"
	CodeNotSuspended        = "NOT_SUSPENDED"
	CodeNotPending          = "NOT_PENDING"
	CodeNotAuthorized       = "NOT_AUTHORIZED"
	CodeTurnosAbiertos      = "SHIFTS_STILL_OPEN"
	CodeYaCerrada           = "ALREADY_CLOSED"
	CodeYaArqueada          = "ALREADY_RECONCILED"
	CodeForbidden           = "FORBIDDEN"
	CodeRequiereAprobacion  = "APPROVAL_REQUIRED"
	CodeRequiereAutorizador = "AUTHORIZER_REQUIRED"
	CodeNotasInsuficientes  = "NOTES_TOO_SHORT"
	CodeMontoInvalido       = "INVALID_AMOUNT"
	CodeDesgloseInvalido    = "BREAKDOWN_MISMATCH"
	CodeNoEncontrado        = "NOT_FOUND"
)

// Error is a business-rule failure with a stable code.
type Error struct {
	Kind   Kind
	Code   string
	Detail string
	// Campo names the offending field for validation errors; empty otherwise.
	Campo string
}

func (e *Error) Error() string {
	if e.Campo != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Campo, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func Validation(code, campo, detail string) *Error {
	return &Error{Kind: KindValidation, Code: code, Campo: campo, Detail: detail}
}

func Conflict(code, detail string) *Error {
	return &Error{Kind: KindConflict, Code: code, Detail: detail}
}

func Forbidden(detail string) *Error {
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Detail: detail}
}

func NotFound(detail string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNoEncontrado, Detail: detail}
}

// Is lets errors.Is match on code equality so services can assert on
// specific failures without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
