// Package layout defines the pure (record, diagnostics) -> bytes contract
// and ships the plain-text reference layout. Concrete serializers beyond
// plain-text (JSON, logfmt, colored text) are out of scope per spec.md
// §1 — only the contract and one reference implementation live here.
package layout

import (
	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
)

// Layout is a pure function from a record and its dispatch's diagnostics
// to the bytes an appender should write. Implementations MUST iterate the
// record's own kv pairs before the diagnostics' kv pairs, preserving
// insertion order within each (spec.md §4.4). Layouts MUST NOT log —
// reentrance into the logging core from inside a format callback is
// prohibited (spec.md §5).
type Layout interface {
	Format(rec logcore.Record, diags []diagnostic.Diagnostic) ([]byte, error)
}

// Func adapts a plain function to the Layout interface.
type Func func(rec logcore.Record, diags []diagnostic.Diagnostic) ([]byte, error)

func (f Func) Format(rec logcore.Record, diags []diagnostic.Diagnostic) ([]byte, error) {
	return f(rec, diags)
}
