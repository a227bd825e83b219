// Package ndkerr implements the closed error-kind taxonomy of §7: every
// error the core returns carries one of a fixed set of Kinds, wraps its
// cause for %w unwrapping, and supports errors.Is/errors.As against either
// a bare kind or a kind+downstream-subkind pair.
package ndkerr

import (
	"errors"
	"fmt"
)

// Kind is one of the closed set of error kinds named in §7. Kinds, not Go
// types: callers switch on Kind rather than type-asserting concrete errors.
type Kind string

const (
	BadUri      Kind = "bad_uri"
	BadRequest  Kind = "bad_request"
	Unavailable Kind = "unavailable"
	Forbidden   Kind = "forbidden"
	Ingestion   Kind = "ingestion"
	Downstream  Kind = "downstream"
	Cancelled   Kind = "cancelled"
	Internal    Kind = "internal"
)

// Subkind discriminates which collaborator a Downstream error came from.
type Subkind string

const (
	Inference  Subkind = "inference"
	Downloader Subkind = "downloader"
	Storage    Subkind = "storage"
)

// Error is the concrete error value for every Kind. Reason is a short,
// human-readable description; Cause, if set, is the wrapped underlying
// error surfaced through Unwrap.
type Error struct {
	Kind    Kind
	Subkind Subkind // only meaningful when Kind == Downstream
	Reason  string
	Cause   error
}

func (e *Error) Error() string {
	if e.Kind == Downstream && e.Subkind != "" {
		if e.Reason == "" {
			return fmt.Sprintf("downstream(%s)", e.Subkind)
		}
		return fmt.Sprintf("downstream(%s): %s", e.Subkind, e.Reason)
	}
	if e.Reason == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches against a target built by Of/OfDownstream: it compares Kind,
// and Subkind only when the target sets one; the target's Reason and Cause
// are never compared, so errors.Is(err, ndkerr.Of(ndkerr.Unavailable))
// matches any Unavailable error regardless of its Reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Subkind != "" && t.Subkind != e.Subkind {
		return false
	}
	return true
}

// Of builds a bare-kind sentinel for errors.Is comparisons.
func Of(kind Kind) *Error { return &Error{Kind: kind} }

// OfDownstream builds a bare kind+subkind sentinel for errors.Is comparisons.
func OfDownstream(sub Subkind) *Error { return &Error{Kind: Downstream, Subkind: sub} }

// New builds an Error with no wrapped cause.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error carrying cause, surfaced through Unwrap and %w.
func Wrap(kind Kind, cause error, reason string) *Error {
	return &Error{Kind: kind, Reason: reason, Cause: cause}
}

// Wrapf is Wrap with fmt.Sprintf-style formatting.
func Wrapf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...), Cause: cause}
}

// DownstreamErr builds a Downstream error for the given collaborator
// subkind, wrapping its cause.
func DownstreamErr(sub Subkind, cause error, reason string) *Error {
	return &Error{Kind: Downstream, Subkind: sub, Reason: reason, Cause: cause}
}

// KindOf extracts the Kind of err if it (or something it wraps) is an
// *Error, reporting false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err's kind matches kind, whatever its subkind (use
// IsDownstream to also match a subkind). Convenience wrapper around
// errors.Is(err, Of(kind)).
func Is(err error, kind Kind) bool {
	return errors.Is(err, Of(kind))
}

// IsDownstream reports whether err is a Downstream error from the given
// collaborator subkind.
func IsDownstream(err error, sub Subkind) bool {
	return errors.Is(err, OfDownstream(sub))
}
