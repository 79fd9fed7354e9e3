// Package bgerrors defines the typed error kinds used across BuildGrid's
// component boundaries (spec §7). Components return these sentinel-wrapped
// errors; only pkg/api translates them to gRPC status codes.
package bgerrors

import "errors"

// Kind identifies which RPC status an error maps to at the API boundary.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindNotFound
	KindOutOfRange
	KindUpdateNotAllowed
	KindCancelled
	KindRetryExceeded
	KindBackendUnavailable
)

// Error is a typed, wrapped error carrying a Kind for status translation.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, msg string, wrapped error) error {
	return &Error{Kind: kind, Msg: msg, Err: wrapped}
}

func InvalidArgument(msg string) error       { return newErr(KindInvalidArgument, msg, nil) }
func InvalidArgumentf(msg string, err error) error {
	return newErr(KindInvalidArgument, msg, err)
}
func NotFound(msg string) error              { return newErr(KindNotFound, msg, nil) }
func OutOfRange(msg string) error            { return newErr(KindOutOfRange, msg, nil) }
func UpdateNotAllowed(msg string) error      { return newErr(KindUpdateNotAllowed, msg, nil) }
func Cancelled(msg string) error             { return newErr(KindCancelled, msg, nil) }
func RetryExceeded(msg string) error         { return newErr(KindRetryExceeded, msg, nil) }
func BackendUnavailable(msg string, err error) error {
	return newErr(KindBackendUnavailable, msg, err)
}

// KindOf extracts the Kind from err, walking the wrap chain. Returns
// KindUnknown if err does not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err (or anything it wraps) has the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
