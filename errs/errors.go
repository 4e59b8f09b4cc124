// Package errs defines the error taxonomy shared across the codec: every
// parser, renderer, body-framing, and session-adapter failure surfaces as a
// *Error carrying a Kind a caller can branch on with errors.As, instead of
// matching on message text.
//
// This generalizes the *ParseError{Message, Line, Position} shape used by
// github.com/shapestone/shape-http's pkg/http/errors.go with a Kind field:
// the streaming codec needs machine-checkable taxonomy (Overflow vs.
// Malformed vs. Misuse) to decide whether a session can resume or must be
// discarded, something a one-shot convenience parser never has to do.
package errs

import "fmt"

// Kind classifies an Error into one of the five buckets from the codec's
// error handling design.
type Kind int

const (
	// KindTransport covers peer-close and deadline-exceeded conditions
	// surfaced by the underlying stream.
	KindTransport Kind = iota
	// KindOverflow covers every "TooLong*" and scratch-buffer-overrun case.
	KindOverflow
	// KindMalformed covers lexically or semantically invalid wire bytes.
	KindMalformed
	// KindMisuse covers caller protocol violations (wrong state, body byte
	// count mismatch, reclaiming a stream with unparsed bytes left).
	KindMisuse
	// KindUnimplemented covers code paths the codec recognizes but does not
	// (yet, or ever) execute.
	KindUnimplemented
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindOverflow:
		return "overflow"
	case KindMalformed:
		return "malformed"
	case KindMisuse:
		return "misuse"
	case KindUnimplemented:
		return "unimplemented"
	default:
		return "unknown"
	}
}

// Error is the concrete error value returned by every package in this
// module.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("http1: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("http1: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a bare Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Well-known sentinel messages for the error taxonomy. Kept as named
// constructors so call sites read like the taxonomy itself.

// UnexpectedEOF reports a peer closing mid-message ("read 0").
func UnexpectedEOF(readN int) *Error {
	return Newf(KindTransport, "read %d", readN)
}

// OverflowScratch reports the scratch buffer filling before a head was
// accepted ("override buf").
func OverflowScratch() *Error {
	return New(KindOverflow, "override buf")
}

// TooLong reports a specific field exceeding its configured bound.
func TooLong(field string) *Error {
	return Newf(KindOverflow, "TooLong%s", field)
}

// InvalidCRLF reports an LF without a preceding CR where CRLF was required.
func InvalidCRLF() *Error {
	return New(KindMalformed, "InvalidCRLF")
}

// Invalid reports a named field failing lexical or semantic validation.
func Invalid(field string) *Error {
	return Newf(KindMalformed, "Invalid%s", field)
}

// StateShouldBe reports a caller driving the codec out of the required
// state.
func StateShouldBe(state string) *Error {
	return Newf(KindMisuse, "state should is %s", state)
}

// HasUnparsedBytes reports a stream reclaim attempted while the scratch
// buffer still holds bytes the caller never consumed.
func HasUnparsedBytes() *Error {
	return New(KindMisuse, "has unparsed bytes")
}

// Unimplemented reports a recognized-but-unimplemented code path.
func Unimplemented(what string) *Error {
	return Newf(KindUnimplemented, "%s unimplemented now", what)
}

// Is reports whether err is an *Error of the given kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
