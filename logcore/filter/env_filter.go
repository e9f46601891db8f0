package filter

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
)

// EnvFilter parses a specification of the form
//
//	directive (',' directive)* ('/' regex)?
//
// where each directive is `[target '=']level`. A directive without a
// target sets the global default level. When multiple directives match a
// record's target, the one with the longest target prefix wins. An empty
// spec is equivalent to "error" (the global default). Invalid directives
// are reported as warnings through the supplied logrus.Logger and ignored
// individually rather than failing the whole parse.
type EnvFilter struct {
	directives []directive
	regex      *regexp.Regexp
}

type directive struct {
	target string // "" means the global default
	level  logcore.LevelFilter
}

// Parse builds an EnvFilter from spec. log may be nil, in which case
// warnings are discarded.
func Parse(spec string, log *logrus.Logger) (*EnvFilter, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = "error"
	}

	directivesPart := spec
	var regexPart string
	if idx := strings.LastIndex(spec, "/"); idx >= 0 {
		directivesPart = spec[:idx]
		regexPart = spec[idx+1:]
	}

	var directives []directive
	for _, raw := range strings.Split(directivesPart, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		d, err := parseDirective(raw)
		if err != nil {
			if log != nil {
				log.WithField("directive", raw).WithError(err).Warn("logcore: ignoring invalid env filter directive")
			}
			continue
		}
		directives = append(directives, d)
	}

	// Sort by target-length ascending; Matches iterates in reverse so the
	// longest (most specific) target is checked first.
	sort.SliceStable(directives, func(i, j int) bool {
		return len(directives[i].target) < len(directives[j].target)
	})

	f := &EnvFilter{directives: directives}
	if regexPart != "" {
		re, err := regexp.Compile(regexPart)
		if err != nil {
			return nil, err
		}
		f.regex = re
	}
	return f, nil
}

func parseDirective(raw string) (directive, error) {
	if idx := strings.Index(raw, "="); idx >= 0 {
		target := strings.TrimSpace(raw[:idx])
		levelName := strings.TrimSpace(raw[idx+1:])
		level, err := logcore.ParseLevel(levelName)
		if err != nil {
			return directive{}, err
		}
		return directive{target: target, level: logcore.LevelMoreSevereEqual(level)}, nil
	}
	level, err := logcore.ParseLevel(strings.TrimSpace(raw))
	if err != nil {
		return directive{}, err
	}
	return directive{target: "", level: logcore.LevelMoreSevereEqual(level)}, nil
}

// matchDirective finds the longest-target directive whose target prefixes
// meta.Target, falling back to the global-default directive if none
// match. Returns (directive, true) iff at least one directive applies.
func (f *EnvFilter) matchDirective(target string) (directive, bool) {
	for i := len(f.directives) - 1; i >= 0; i-- {
		d := f.directives[i]
		if d.target == "" {
			continue
		}
		if strings.HasPrefix(target, d.target) {
			return d, true
		}
	}
	for _, d := range f.directives {
		if d.target == "" {
			return d, true
		}
	}
	return directive{}, false
}

func (f *EnvFilter) Enabled(meta logcore.Metadata, _ []diagnostic.Diagnostic) logcore.FilterVerdict {
	d, ok := f.matchDirective(meta.Target)
	if !ok {
		return logcore.Neutral
	}
	if d.level.Matches(meta.Level) {
		return logcore.Neutral
	}
	return logcore.Reject
}

// Matches re-applies the level check and, if a regex suffix was given,
// matches it against the record's formatted message. The regex is only
// ever applied here, never in Enabled, since it needs the fully built
// message (spec.md §4.3 rule 3).
func (f *EnvFilter) Matches(rec logcore.Record, diags []diagnostic.Diagnostic) logcore.FilterVerdict {
	if v := f.Enabled(rec.Metadata(), diags); v == logcore.Reject {
		return logcore.Reject
	}
	if f.regex != nil && !f.regex.MatchString(rec.Message()) {
		return logcore.Reject
	}
	return logcore.Neutral
}
