package filter

import (
	"strings"

	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
)

// ByTarget rejects records whose target does not satisfy a per-prefix
// level requirement. LevelFor registers "records under this prefix must
// be at least this severe"; LevelForNot inverts the prefix match ("records
// NOT under this prefix must be at least this severe").
type ByTarget struct {
	rules []targetRule
}

type targetRule struct {
	prefix  string
	level   logcore.Level
	negate  bool
}

// NewByTarget constructs an empty target-prefix filter.
func NewByTarget() *ByTarget {
	return &ByTarget{}
}

// LevelFor requires records with a target starting with prefix to be at
// or more severe than level.
func (f *ByTarget) LevelFor(prefix string, level logcore.Level) *ByTarget {
	f.rules = append(f.rules, targetRule{prefix: prefix, level: level})
	return f
}

// LevelForNot requires records whose target does NOT start with prefix to
// be at or more severe than level.
func (f *ByTarget) LevelForNot(prefix string, level logcore.Level) *ByTarget {
	f.rules = append(f.rules, targetRule{prefix: prefix, level: level, negate: true})
	return f
}

func (f *ByTarget) Enabled(meta logcore.Metadata, _ []diagnostic.Diagnostic) logcore.FilterVerdict {
	for _, r := range f.rules {
		matchesPrefix := strings.HasPrefix(meta.Target, r.prefix)
		if r.negate {
			matchesPrefix = !matchesPrefix
		}
		if !matchesPrefix {
			continue
		}
		if meta.Level < r.level {
			return logcore.Reject
		}
	}
	return logcore.Neutral
}

func (f *ByTarget) Matches(rec logcore.Record, diags []diagnostic.Diagnostic) logcore.FilterVerdict {
	return f.Enabled(rec.Metadata(), diags)
}
