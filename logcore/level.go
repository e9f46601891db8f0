package logcore

import (
	"fmt"
	"strings"
)

// Level is one of 24 ordered severities in six groups (Trace, Debug,
// Info, Warn, Error, Fatal), each with sub-levels 1-4. Higher ordinal
// means more severe.
type Level uint8

const (
	Trace Level = 1 + iota
	Trace2
	Trace3
	Trace4
	Debug
	Debug2
	Debug3
	Debug4
	Info
	Info2
	Info3
	Info4
	Warn
	Warn2
	Warn3
	Warn4
	Error
	Error2
	Error3
	Error4
	Fatal
	Fatal2
	Fatal3
	Fatal4
)

// Group names the six severity groups a Level belongs to.
type Group string

const (
	GroupTrace Group = "TRACE"
	GroupDebug Group = "DEBUG"
	GroupInfo  Group = "INFO"
	GroupWarn  Group = "WARN"
	GroupError Group = "ERROR"
	GroupFatal Group = "FATAL"
)

var groupNames = [6]Group{GroupTrace, GroupDebug, GroupInfo, GroupWarn, GroupError, GroupFatal}

// Group returns the severity group this level belongs to.
func (l Level) Group() Group {
	idx := (int(l) - 1) / 4
	if idx < 0 || idx >= len(groupNames) {
		return ""
	}
	return groupNames[idx]
}

// SubLevel returns the 1-4 sub-level within the group.
func (l Level) SubLevel() int {
	return (int(l)-1)%4 + 1
}

// Valid reports whether l is one of the 24 defined ordinals.
func (l Level) Valid() bool {
	return l >= Trace && l <= Fatal4
}

// String renders the uppercase group name for sub-level 1 (e.g. "INFO")
// and "INFO2"/"INFO3"/"INFO4" for higher sub-levels, per spec.md §4.2.
func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("LEVEL(%d)", uint8(l))
	}
	group := l.Group()
	sub := l.SubLevel()
	if sub == 1 {
		return string(group)
	}
	return fmt.Sprintf("%s%d", group, sub)
}

var levelNames = func() map[string]Level {
	m := make(map[string]Level, 24)
	for l := Trace; l <= Fatal4; l++ {
		m[strings.ToLower(l.String())] = l
	}
	return m
}()

// ParseLevel parses a level name case-insensitively, e.g. "info",
// "INFO", "Info2".
func ParseLevel(name string) (Level, error) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("logcore: unknown level %q", name)
	}
	return l, nil
}

// MustParseLevel is ParseLevel but panics on error; intended for
// compile-time-known level names in tests and static configuration.
func MustParseLevel(name string) Level {
	l, err := ParseLevel(name)
	if err != nil {
		panic(err)
	}
	return l
}

// FilterVerdict is the result of evaluating a filter predicate.
type FilterVerdict int

const (
	// Neutral passes the record through the remaining filter chain.
	Neutral FilterVerdict = iota
	// Accept short-circuits the chain positively.
	Accept
	// Reject drops the record immediately.
	Reject
)

// LevelFilter is a closed sum over level comparison predicates.
type LevelFilter struct {
	op    levelOp
	level Level
}

type levelOp int

const (
	opOff levelOp = iota
	opEqual
	opNotEqual
	opMoreSevere
	opMoreSevereEqual
	opMoreVerbose
	opMoreVerboseEqual
	opAll
)

func LevelOff() LevelFilter                   { return LevelFilter{op: opOff} }
func LevelAll() LevelFilter                   { return LevelFilter{op: opAll} }
func LevelEqual(l Level) LevelFilter           { return LevelFilter{op: opEqual, level: l} }
func LevelNotEqual(l Level) LevelFilter        { return LevelFilter{op: opNotEqual, level: l} }
func LevelMoreSevere(l Level) LevelFilter      { return LevelFilter{op: opMoreSevere, level: l} }
func LevelMoreSevereEqual(l Level) LevelFilter { return LevelFilter{op: opMoreSevereEqual, level: l} }
func LevelMoreVerbose(l Level) LevelFilter     { return LevelFilter{op: opMoreVerbose, level: l} }
func LevelMoreVerboseEqual(l Level) LevelFilter {
	return LevelFilter{op: opMoreVerboseEqual, level: l}
}

// Matches reports whether candidate satisfies the predicate. Ordering
// uses ordinal comparison: higher ordinal means more severe, so
// "MoreSevere" means "ordinal greater than", and "MoreVerbose" means
// "ordinal less than" (verbosity runs opposite severity).
func (f LevelFilter) Matches(candidate Level) bool {
	switch f.op {
	case opOff:
		return false
	case opAll:
		return true
	case opEqual:
		return candidate == f.level
	case opNotEqual:
		return candidate != f.level
	case opMoreSevere:
		return candidate > f.level
	case opMoreSevereEqual:
		return candidate >= f.level
	case opMoreVerbose:
		return candidate < f.level
	case opMoreVerboseEqual:
		return candidate <= f.level
	default:
		return false
	}
}
