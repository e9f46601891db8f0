// Package async provides a composable appender that hands records to a
// single background worker goroutine, so the calling goroutine never
// blocks on the wrapped appenders' I/O (spec.md §4.6).
package async

import (
	"github.com/ssw-logs/logbroker/logcore"
)

// taskKind distinguishes the two things the worker goroutine can be
// asked to do. Kept as a closed two-value sum rather than an interface
// since a worker only ever does one of two things and a switch over an
// interface would just reinvent this enum with more allocations.
type taskKind uint8

const (
	taskLog taskKind = iota
	taskFlush
)

// task is the unit of work sent down the worker channel. For taskLog,
// rec and diags are populated; for taskFlush, done is the single-shot
// reply slot the worker sends the first flush error (or nil) through,
// per spec.md §4.6's synchronous flush barrier. diags is already a
// flattened, owned snapshot (spec.md §4.6 step 1) — the worker never
// touches the caller's original Diagnostic values.
type task struct {
	kind  taskKind
	rec   logcore.OwnedRecord
	diags logcore.KV
	done  chan<- error
}
