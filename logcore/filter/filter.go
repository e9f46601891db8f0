// Package filter provides the Filter contract and built-in primitives:
// LevelFilter, an environment-style directive filter, a target-prefix
// filter, and a Dedup filter. The level, directive and target-prefix
// predicates are deterministic and side effect free (spec.md §4.3);
// Dedup's Matches is not, since it records each record it passes in its
// seen-set.
package filter

import (
	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
)

// Filter is a predicate over (metadata, diagnostics) and, once the record
// is fully built, over (record, diagnostics). Enabled MUST be a cheap,
// side-effect-free pre-check; Matches is only evaluated after Enabled
// returns a non-Reject verdict.
type Filter interface {
	Enabled(meta logcore.Metadata, diags []diagnostic.Diagnostic) logcore.FilterVerdict
	Matches(rec logcore.Record, diags []diagnostic.Diagnostic) logcore.FilterVerdict
}

// EnabledChain evaluates an ordered list of filters' Enabled pre-checks,
// short-circuiting on the first non-Neutral result. If every filter is
// Neutral, the chain passes (implementation detail: a Neutral overall
// outcome is reported as Neutral, letting the caller decide what "no
// opinion" means for Enabled vs Matches).
func EnabledChain(filters []Filter, meta logcore.Metadata, diags []diagnostic.Diagnostic) logcore.FilterVerdict {
	for _, f := range filters {
		if v := f.Enabled(meta, diags); v != logcore.Neutral {
			return v
		}
	}
	return logcore.Neutral
}

// MatchesChain evaluates an ordered list of filters' Matches checks with
// the same short-circuit semantics as EnabledChain.
func MatchesChain(filters []Filter, rec logcore.Record, diags []diagnostic.Diagnostic) logcore.FilterVerdict {
	for _, f := range filters {
		if v := f.Matches(rec, diags); v != logcore.Neutral {
			return v
		}
	}
	return logcore.Neutral
}
