// Package bterrors defines the fatal error kinds the engine can raise.
//
// Missing data and unrecognized-but-tolerable conditions never surface as
// one of these; they are absorbed into a false/empty result by the caller
// (see internal/tree). These types exist only for conditions that must
// abort a variant.
package bterrors

import "fmt"

// Kind identifies a fatal error category, reported verbatim in the
// error envelope of a sweep or backtest result.
type Kind string

const (
	KindInsufficientData Kind = "InsufficientDataError"
	KindUnknownTicker    Kind = "UnknownTickerError"
	KindMalformedTree    Kind = "MalformedTreeError"
	KindIndicator        Kind = "IndicatorError"
	KindCancelled        Kind = "CancelledError"
)

// Error is a typed, wrapped error carrying a Kind for errors.As dispatch.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func InsufficientData(format string, args ...any) *Error {
	return newErr(KindInsufficientData, format, args...)
}

func UnknownTicker(ticker string) *Error {
	return newErr(KindUnknownTicker, "unknown ticker %q", ticker)
}

func MalformedTree(format string, args ...any) *Error {
	return newErr(KindMalformedTree, format, args...)
}

func Indicator(format string, args ...any) *Error {
	return newErr(KindIndicator, format, args...)
}

func Cancelled(format string, args ...any) *Error {
	return newErr(KindCancelled, format, args...)
}

// Wrap attaches a Kind to an underlying error without discarding it.
func Wrap(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Message: msg, Err: err}
}
