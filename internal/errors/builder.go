package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorBuilder accumulates context on an error before it is marked.
type ErrorBuilder struct {
	err error
}

// NewError starts a builder from a new message.
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepth(1, msg)}
}

// NewErrorf starts a builder from a formatted message.
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepthf(1, format, args...)}
}

// WithError starts a builder that wraps an existing error.
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.NewWithDepth(1, "unknown error")
	}
	return &ErrorBuilder{err: err}
}

// WithMessage prefixes the error message.
func (b *ErrorBuilder) WithMessage(msg string) *ErrorBuilder {
	b.err = errors.WrapWithDepth(1, b.err, msg)
	return b
}

// WithHint attaches a user facing message.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.err = errors.WithHint(b.err, fmt.Sprintf(format, args...))
	return b
}

// WithReportableDetails attaches key/value details that are safe to return to
// the API caller.
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	if len(details) == 0 {
		return b
	}
	b.err = &detailsError{cause: b.err, details: details}
	return b
}

// Mark tags the error with a sentinel and returns it.
func (b *ErrorBuilder) Mark(reference error) error {
	return errors.Mark(b.err, reference)
}

// Err returns the accumulated error without a mark.
func (b *ErrorBuilder) Err() error {
	return b.err
}

type detailsError struct {
	cause   error
	details map[string]interface{}
}

func (e *detailsError) Error() string { return e.cause.Error() }
func (e *detailsError) Cause() error  { return e.cause }
func (e *detailsError) Unwrap() error { return e.cause }

// GetReportableDetails merges every details map on the chain. Outer wrappers win.
func GetReportableDetails(err error) map[string]interface{} {
	out := map[string]interface{}{}
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		if d, ok := e.(*detailsError); ok {
			for k, v := range d.details {
				if _, exists := out[k]; !exists {
					out[k] = v
				}
			}
		}
	}
	return out
}
