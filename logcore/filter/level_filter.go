package filter

import (
	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
)

// ByLevel adapts a logcore.LevelFilter into the Filter interface. Enabled
// returns Neutral if the candidate level satisfies the predicate, Reject
// otherwise; it never returns Accept, leaving room for later filters in
// the chain (e.g. a regex filter) to still apply.
type ByLevel struct {
	Predicate logcore.LevelFilter
}

func NewByLevel(predicate logcore.LevelFilter) ByLevel {
	return ByLevel{Predicate: predicate}
}

func (f ByLevel) Enabled(meta logcore.Metadata, _ []diagnostic.Diagnostic) logcore.FilterVerdict {
	if f.Predicate.Matches(meta.Level) {
		return logcore.Neutral
	}
	return logcore.Reject
}

func (f ByLevel) Matches(rec logcore.Record, diags []diagnostic.Diagnostic) logcore.FilterVerdict {
	return f.Enabled(rec.Metadata(), diags)
}
