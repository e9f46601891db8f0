package logbroker

import (
	"sync"
	"sync/atomic"

	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/logerr"
)

// Logger fans out over a fixed, immutable set of dispatches. Dispatches
// are registered once at construction and never change afterward
// (spec.md's "Dispatches are immutable after installation" invariant).
type Logger struct {
	dispatches []*Dispatch
}

// New constructs a Logger over the given dispatches. The slice is copied
// so the caller's backing array can't mutate it afterward.
func New(dispatches ...*Dispatch) *Logger {
	cp := make([]*Dispatch, len(dispatches))
	copy(cp, dispatches)
	return &Logger{dispatches: cp}
}

// Enabled returns true iff at least one dispatch would accept a record at
// this metadata. It is pure: it MUST NOT allocate or block, matching
// spec.md §4.1 — the predicate is just the fan-out over each dispatch's
// cheap Enabled pre-check.
func (l *Logger) Enabled(meta logcore.Metadata) bool {
	for _, d := range l.dispatches {
		if d.enabled(meta) != logcore.Reject {
			return true
		}
	}
	return false
}

// Log runs rec through every dispatch in registration order. Within a
// dispatch, appenders run in registration order too. A single appender's
// error is routed to that dispatch's trap and never stops the fan-out to
// other appenders or other dispatches (spec.md's dispatch-isolation
// property).
func (l *Logger) Log(rec logcore.Record) {
	for _, d := range l.dispatches {
		d.dispatchRecord(rec)
	}
}

// Flush calls Flush on every appender across every dispatch. Errors are
// routed to each dispatch's trap, never returned to the caller.
func (l *Logger) Flush() {
	for _, d := range l.dispatches {
		d.flush()
	}
}

var (
	globalOnce   sync.Once
	globalLogger atomic.Pointer[Logger]
)

// Install performs the one-shot global logger installation spec.md §4.1
// and §5 describe: a one-shot cell with no way to unset or replace it.
// Re-installation returns an error; this is the one place application
// code is expected to handle a logging-core failure (spec.md §7).
func Install(l *Logger) error {
	installed := false
	globalOnce.Do(func() {
		globalLogger.Store(l)
		installed = true
	})
	if !installed {
		return logerr.Configuration("global logger already installed")
	}
	return nil
}

// Global returns the installed logger, or nil if Install has not been
// called yet.
func Global() *Logger {
	return globalLogger.Load()
}
