// Package logappend defines the Appender contract: the consumer of
// records at the end of a dispatch. Appenders may buffer, serialize,
// perform I/O, or forward to another appender (as the async appender
// does). Named logappend rather than append so call sites can still use
// the builtin append() in the same file without an import alias.
package logappend

import (
	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
)

// Appender consumes records handed to it by a Dispatch. Append returns an
// error only to signal a synchronous, caller-thread failure; the Logger
// never propagates that error to application code — it routes it to the
// dispatch's Trap instead (spec.md §7). Flush blocks until any buffered
// state has been durably written or forwarded.
type Appender interface {
	Append(rec logcore.Record, diags []diagnostic.Diagnostic) error
	Flush() error
}

// Closer is implemented by appenders that hold resources (file handles,
// worker goroutines) needing an explicit release on shutdown, beyond what
// Flush covers.
type Closer interface {
	Close() error
}
