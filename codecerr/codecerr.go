// Package codecerr defines the error taxonomy shared by the zen/legacy
// converters (see spec §7): InputMalformed, UnresolvedReference,
// CapacityExceeded, InvariantViolated and ExternalIO. Each variant wraps
// the underlying cause with github.com/pkg/errors so a %+v format still
// prints a stack trace, while still supporting errors.Is/errors.As against
// the sentinel Kind values below.
package codecerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error into one of the taxonomy buckets from spec §7.
type Kind int

const (
	// KindInputMalformed marks structurally invalid input bytes: truncated
	// sections or out-of-range indices. Always fatal.
	KindInputMalformed Kind = iota
	// KindUnresolvedReference marks an import that could not be resolved
	// against the script-objects database or foreign-package context.
	// Recoverable via the fallback policy; the caller degrades gracefully.
	KindUnresolvedReference
	// KindCapacityExceeded marks an index width overflow (e.g. more than
	// 2^31 entries). Always fatal.
	KindCapacityExceeded
	// KindInvariantViolated marks an internal post-remap check failure,
	// indicating a bug in the converter itself. Always fatal.
	KindInvariantViolated
	// KindExternalIO marks a read/write failure propagated verbatim from
	// the caller's I/O layer. Always fatal.
	KindExternalIO
)

func (k Kind) String() string {
	switch k {
	case KindInputMalformed:
		return "InputMalformed"
	case KindUnresolvedReference:
		return "UnresolvedReference"
	case KindCapacityExceeded:
		return "CapacityExceeded"
	case KindInvariantViolated:
		return "InvariantViolated"
	case KindExternalIO:
		return "ExternalIO"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type carried by every Kind. Section and
// Offset are best-effort diagnostic context (spec §7: "surfaced with
// offset and section") and may be zero-valued when not applicable.
type Error struct {
	Kind    Kind
	Section string
	Offset  int64
	cause   error
}

func (e *Error) Error() string {
	if e.Section == "" && e.Offset == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.cause)
	}
	return fmt.Sprintf("%s: %s (section=%s offset=%d)", e.Kind, e.cause, e.Section, e.Offset)
}

func (e *Error) Unwrap() error { return e.cause }

// Is allows errors.Is(err, codecerr.InputMalformed) style checks by
// comparing on Kind rather than identity.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind && other.cause == nil
}

func newKind(kind Kind, msg string) *Error {
	return &Error{Kind: kind, cause: errors.WithStack(errors.New(msg))}
}

// sentinels usable with errors.Is: Error.Is treats a cause-less Error of
// matching Kind as a wildcard match.
var (
	InputMalformed      = &Error{Kind: KindInputMalformed}
	UnresolvedReference = &Error{Kind: KindUnresolvedReference}
	CapacityExceeded    = &Error{Kind: KindCapacityExceeded}
	InvariantViolated   = &Error{Kind: KindInvariantViolated}
	ExternalIO          = &Error{Kind: KindExternalIO}
)

// Malformed wraps cause as an InputMalformed error with section/offset context.
func Malformed(section string, offset int64, cause error) *Error {
	return &Error{Kind: KindInputMalformed, Section: section, Offset: offset, cause: errors.WithStack(cause)}
}

// Malformedf builds an InputMalformed error from a format string.
func Malformedf(section string, offset int64, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInputMalformed, Section: section, Offset: offset, cause: errors.WithStack(fmt.Errorf(format, args...))}
}

// Unresolved wraps cause as an UnresolvedReference error.
func Unresolved(context string, cause error) *Error {
	return &Error{Kind: KindUnresolvedReference, Section: context, cause: errors.WithStack(cause)}
}

// Unresolvedf builds an UnresolvedReference error from a format string.
func Unresolvedf(context string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnresolvedReference, Section: context, cause: errors.WithStack(fmt.Errorf(format, args...))}
}

// CapacityExceededf builds a CapacityExceeded error from a format string.
func CapacityExceededf(format string, args ...interface{}) *Error {
	return newKind(KindCapacityExceeded, fmt.Sprintf(format, args...))
}

// InvariantViolatedf builds an InvariantViolated error from a format string.
func InvariantViolatedf(format string, args ...interface{}) *Error {
	return newKind(KindInvariantViolated, fmt.Sprintf(format, args...))
}

// IO wraps cause as an ExternalIO error.
func IO(cause error) *Error {
	return &Error{Kind: KindExternalIO, cause: errors.WithStack(cause)}
}
