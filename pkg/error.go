package pkg

import (
	"errors"
	"log/slog"
	"strings"
)

// Error is an error with an optional wrapped cause and structured logging
// attributes. It implements both error and slog.LogValuer.
//
// Errors derived from a sentinel with [Error.Wrap] or [Error.With] keep a
// reference to that sentinel, so errors.Is(derived, sentinel) holds.
type Error struct {
	msg      string
	err      error
	attrs    []slog.Attr
	root     *Error
	internal bool
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.root = e

	return e
}

// NewInternalError creates a new sentinel Error that marks a broken
// invariant of the implementation rather than a fault in user input.
func NewInternalError(msg string) *Error {
	e := NewError(msg)
	e.internal = true

	return e
}

// WrapError wraps a standard error into an Error.
// If err already is (or wraps) an Error, that Error is returned.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	e := &Error{err: err}
	e.root = e

	return e
}

// IsInternal reports whether err is or wraps an internal Error.
func IsInternal(err error) bool {
	for err != nil {
		var ee *Error
		if !errors.As(err, &ee) {
			return false
		}

		if ee.internal {
			return true
		}

		err = ee.err
	}

	return false
}

// Error implements the error interface.
func (e *Error) Error() string {
	// "<msg>: <err>", "<msg>", "<err>" or "", depending on which are set.
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	return e.root != nil && e.root == t.root
}

// Internal reports whether e marks a broken implementation invariant.
func (e *Error) Internal() bool { return e.internal }

// Attrs returns a copy of the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr {
	return append([]slog.Attr(nil), e.attrs...)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.internal {
		attrs = append(attrs, slog.Bool("internal", true))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:      e.msg,
		err:      err,
		attrs:    e.attrs,
		root:     e.root,
		internal: e.internal,
	}
}

// With adds attributes to the error for structured logging.
// The receiver is not modified.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(merged, e.attrs)
	copy(merged[len(e.attrs):], attrs)

	return &Error{
		msg:      e.msg,
		err:      e.err,
		attrs:    merged,
		root:     e.root,
		internal: e.internal,
	}
}

// Detail returns a copy of e whose message is extended with detail,
// as in "undefined variable 'x'". errors.Is still matches the sentinel.
func (e *Error) Detail(detail string) *Error {
	msg := e.msg
	if detail != "" {
		if msg != "" {
			msg += " "
		}

		msg += detail
	}

	return &Error{
		msg:      msg,
		err:      e.err,
		attrs:    e.attrs,
		root:     e.root,
		internal: e.internal,
	}
}
