package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the machine-readable category of a domain error
type Kind string

const (
	KindValidation Kind = "VALIDATION_ERROR"
	KindConflict   Kind = "CONFLICT"
	KindNotFound   Kind = "NOT_FOUND"
	KindIntegrity  Kind = "INTEGRITY_ERROR"
	KindInternal   Kind = "INTERNAL_ERROR"
)

// Error is a typed domain error carrying one or more display messages
type Error struct {
	Kind     Kind
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if e.Err != nil {
		if msg == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a ValidationError with the given messages
func Validation(messages ...string) *Error {
	return &Error{Kind: KindValidation, Messages: messages}
}

// Validationf creates a ValidationError with a formatted message
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Conflictf creates a ConflictError with a formatted message
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Messages: []string{fmt.Sprintf(format, args...)}}
}

// NotFoundf creates a NotFoundError with a formatted message
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Messages: []string{fmt.Sprintf(format, args...)}}
}

// Integrity wraps a storage constraint violation that slipped past validation
func Integrity(err error, message string) *Error {
	return &Error{Kind: KindIntegrity, Messages: []string{message}, Err: err}
}

// Internal wraps an unexpected failure. The message is safe for display,
// the wrapped error is for operators only.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Messages: []string{message}, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when err carries no domain kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessagesOf returns the display messages of err. Errors without a domain
// kind yield a generic message so internal detail never leaks.
func MessagesOf(err error) []string {
	var e *Error
	if errors.As(err, &e) && len(e.Messages) > 0 {
		return e.Messages
	}
	return []string{"internal server error"}
}

// Collector accumulates validation messages and reports them together
type Collector struct {
	messages []string
}

// Addf records a validation message
func (c *Collector) Addf(format string, args ...any) {
	c.messages = append(c.messages, fmt.Sprintf(format, args...))
}

// Check records the message when cond is false
func (c *Collector) Check(cond bool, format string, args ...any) {
	if !cond {
		c.Addf(format, args...)
	}
}

// Err returns a ValidationError holding every recorded message, or nil
func (c *Collector) Err() error {
	if len(c.messages) == 0 {
		return nil
	}
	return Validation(c.messages...)
}
