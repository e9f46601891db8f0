// Package logbroker is the dispatch core of a pluggable, composable
// in-process logging pipeline: a multi-branch fan-out that evaluates
// filters, attaches ambient diagnostic context, and invokes appenders
// with consistent error semantics. See SPEC_FULL.md for the full
// component map; this file implements the Dispatch type (spec.md §3/§4.1).
package logbroker

import (
	"github.com/ssw-logs/logbroker/logcore"
	logappend "github.com/ssw-logs/logbroker/logcore/append"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
	"github.com/ssw-logs/logbroker/logcore/filter"
	"github.com/ssw-logs/logbroker/logcore/logerr"
	"github.com/ssw-logs/logbroker/logcore/trap"
)

// Dispatch is one filtering branch of the fan-out: an ordered list of
// filters, a shared diagnostics vector, and a non-empty ordered list of
// appenders. Construction panics if appends is empty — spec.md §3 makes
// this a hard invariant, not a runtime-checked error, since an empty
// dispatch is always a configuration mistake caught at startup.
type Dispatch struct {
	filters     []filter.Filter
	diagnostics []diagnostic.Diagnostic
	appends     []logappend.Appender
	trap        trap.Trap
}

// DispatchOption configures a Dispatch at construction time.
type DispatchOption func(*Dispatch)

// WithFilters sets the ordered filter chain.
func WithFilters(filters ...filter.Filter) DispatchOption {
	return func(d *Dispatch) { d.filters = filters }
}

// WithDiagnostics sets the diagnostics shared by every record this
// dispatch delivers.
func WithDiagnostics(diags ...diagnostic.Diagnostic) DispatchOption {
	return func(d *Dispatch) { d.diagnostics = diags }
}

// WithTrap overrides the dispatch-level trap used for appender errors.
// Defaults to the Stderr trap if unset.
func WithTrap(t trap.Trap) DispatchOption {
	return func(d *Dispatch) { d.trap = t }
}

// NewDispatch constructs a Dispatch. appends must be non-empty.
func NewDispatch(appends []logappend.Appender, opts ...DispatchOption) *Dispatch {
	if len(appends) == 0 {
		panic("logbroker: Dispatch requires at least one appender")
	}
	d := &Dispatch{appends: appends, trap: trap.Stderr()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// enabled runs the Enabled pre-check across this dispatch's filter chain.
func (d *Dispatch) enabled(meta logcore.Metadata) logcore.FilterVerdict {
	return filter.EnabledChain(d.filters, meta, d.diagnostics)
}

// dispatchRecord runs the full filter chain against the built record and,
// if it passes, hands the record to every appender in registration order.
// Per-appender errors are routed to this dispatch's trap; they never stop
// delivery to subsequent appenders (spec.md's dispatch-isolation
// property).
func (d *Dispatch) dispatchRecord(rec logcore.Record) {
	meta := rec.Metadata()
	if v := d.enabled(meta); v == logcore.Reject {
		return
	} else if v == logcore.Neutral {
		if mv := filter.MatchesChain(d.filters, rec, d.diagnostics); mv == logcore.Reject {
			return
		}
	}
	// Accept short-circuits positively and falls through to delivery.

	for _, a := range d.appends {
		if err := a.Append(rec, d.diagnostics); err != nil {
			d.trap(logerr.IO("appender failed").WithCause(err))
		}
	}
}

// flush calls Flush on every appender in this dispatch, routing any error
// to the trap rather than returning it.
func (d *Dispatch) flush() {
	for _, a := range d.appends {
		if err := a.Flush(); err != nil {
			d.trap(logerr.IO("appender flush failed").WithCause(err))
		}
	}
}
