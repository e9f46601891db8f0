// Package logerr defines the error taxonomy shared across the logging core
// and its appenders. Errors are grouped by phase rather than by concrete
// type, and a single Error can carry more than one underlying cause so
// that composite failures (for example a flush that failed for some but
// not all destination appenders) can be reported faithfully.
package logerr

import (
	"fmt"
	"strings"
)

// Kind classifies the phase in which an error originated.
type Kind string

const (
	// KindConfiguration covers empty filenames, invalid filter specs, and
	// re-installation of the global logger.
	KindConfiguration Kind = "configuration"
	// KindIO covers directory creation, file create/open, rename, remove,
	// write, and flush failures.
	KindIO Kind = "io"
	// KindChannel covers send-to-worker and receive-from-worker failures.
	KindChannel Kind = "channel"
	// KindLayout covers a layout refusing to format a record.
	KindLayout Kind = "layout"
	// KindVisitor covers a key-value visitor refusing a pair.
	KindVisitor Kind = "visitor"
)

// Error is the core error type. Message is free-form but SHOULD carry
// enough context (file path, directive text, destination name) for
// operator triage. Causes is an ordered list, not a single chain, so
// that a caller can ask "how many of N destinations failed" without
// unwrapping a linked list.
type Error struct {
	Kind    Kind
	Message string
	Causes  []error
}

// New creates an Error with no causes attached yet.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithCause appends a single cause and returns the receiver for chaining.
func (e *Error) WithCause(cause error) *Error {
	if cause == nil {
		return e
	}
	e.Causes = append(e.Causes, cause)
	return e
}

// WithCauses appends zero or more causes and returns the receiver.
func (e *Error) WithCauses(causes ...error) *Error {
	for _, c := range causes {
		e.WithCause(c)
	}
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	switch len(e.Causes) {
	case 0:
	case 1:
		fmt.Fprintf(&b, ": %s", e.Causes[0])
	default:
		fmt.Fprintf(&b, ": %d causes: ", len(e.Causes))
		parts := make([]string, len(e.Causes))
		for i, c := range e.Causes {
			parts[i] = c.Error()
		}
		b.WriteString(strings.Join(parts, "; "))
	}
	return b.String()
}

// Unwrap exposes the first cause so that errors.Is/errors.As keep working
// against the most common single-cause case.
func (e *Error) Unwrap() error {
	if len(e.Causes) == 0 {
		return nil
	}
	return e.Causes[0]
}

// Configuration builds a KindConfiguration error.
func Configuration(message string) *Error { return New(KindConfiguration, message) }

// IO builds a KindIO error.
func IO(message string) *Error { return New(KindIO, message) }

// Channel builds a KindChannel error.
func Channel(message string) *Error { return New(KindChannel, message) }

// Layout builds a KindLayout error.
func Layout(message string) *Error { return New(KindLayout, message) }

// Visitor builds a KindVisitor error.
func Visitor(message string) *Error { return New(KindVisitor, message) }
