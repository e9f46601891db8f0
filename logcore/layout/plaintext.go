package layout

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
)

// PlainText is the reference layout required by spec.md §4.4:
//
//	<nanos_since_epoch> <LEVEL_RIGHT_ALIGNED_6> <target>: <file_basename>:<line> <message>[ k=v]*
//
// nanos_since_epoch is negative with a leading '-' if the record's time
// is before the Unix epoch.
type PlainText struct{}

// New constructs the plain-text reference layout.
func New() PlainText { return PlainText{} }

func (PlainText) Format(rec logcore.Record, diags []diagnostic.Diagnostic) ([]byte, error) {
	var b strings.Builder

	nanos := rec.Time().UnixNano()
	fmt.Fprintf(&b, "%d ", nanos)

	fmt.Fprintf(&b, "%6s ", rec.Level().String())

	fmt.Fprintf(&b, "%s: ", rec.Target())

	file, hasFile := rec.File()
	line, hasLine := rec.Line()
	if hasFile {
		base := filepath.Base(file)
		if hasLine {
			fmt.Fprintf(&b, "%s:%d ", base, line)
		} else {
			fmt.Fprintf(&b, "%s ", base)
		}
	}

	b.WriteString(rec.Message())

	visitor := logcore.VisitorFunc(func(key logcore.Key, value logcore.Value) error {
		fmt.Fprintf(&b, " %s=%s", key.Get(), value.String())
		return nil
	})

	if err := rec.KVs().Visit(visitor); err != nil {
		return nil, err
	}
	if err := diagnostic.VisitAll(diags, visitor); err != nil {
		return nil, err
	}

	return []byte(b.String()), nil
}
