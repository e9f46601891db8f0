package logappend

import (
	"io"
	"sync"

	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
	"github.com/ssw-logs/logbroker/logcore/layout"
	"github.com/ssw-logs/logbroker/logcore/logerr"
)

// Writer is the generic byte-writer appender: it formats each record with
// a Layout and writes the result, newline-terminated, to an underlying
// io.Writer. This is the one concrete sink spec.md §1 keeps inside the
// core (alongside rolling-file); stdout/stderr/syslog/journald/OTLP are
// all just a Writer (or, for rolling-file, appender/rollfile.Writer)
// wrapped around whatever io.Writer they expose.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	layout layout.Layout
}

// NewWriter builds a Writer appender over w using the given layout.
func NewWriter(w io.Writer, l layout.Layout) *Writer {
	return &Writer{w: w, layout: l}
}

func (a *Writer) Append(rec logcore.Record, diags []diagnostic.Diagnostic) error {
	buf, err := a.layout.Format(rec, diags)
	if err != nil {
		return logerr.Layout("failed to format record").WithCause(err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.w.Write(buf); err != nil {
		return logerr.IO("failed to write record").WithCause(err)
	}
	if _, err := a.w.Write([]byte("\n")); err != nil {
		return logerr.IO("failed to write record terminator").WithCause(err)
	}
	return nil
}

func (a *Writer) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f, ok := a.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return logerr.IO("failed to flush writer").WithCause(err)
		}
	} else if f, ok := a.w.(interface{ Sync() error }); ok {
		if err := f.Sync(); err != nil {
			return logerr.IO("failed to sync writer").WithCause(err)
		}
	}
	return nil
}
