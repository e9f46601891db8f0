// Package stdlog bridges Go's standard structured logging facade,
// log/slog, into a logbroker Logger — the Go analogue of
// original_source/core/src/bridge/log.rs, which implements the `log`
// crate's `Log` trait over a Logger. Go has no crate-level logging
// facade equivalent to `log`; log/slog's Handler interface is the
// closest stdlib counterpart (grounded on other_examples' slog-journal
// handler for the Handle/WithAttrs/WithGroup shape).
package stdlog

import (
	"context"
	"log/slog"

	"github.com/ssw-logs/logbroker"
	"github.com/ssw-logs/logbroker/logcore"
)

// Handler adapts slog's Handler contract to a *logbroker.Logger. Fields
// attached via WithAttrs/WithGroup are carried as a prefix-qualified,
// pre-flattened KV and replayed onto every record this handler builds.
type Handler struct {
	logger *logbroker.Logger
	attrs  logcore.KV
	group  string
}

var _ slog.Handler = (*Handler)(nil)

// New wraps logger as a slog.Handler.
func New(logger *logbroker.Logger) *Handler {
	return &Handler{logger: logger}
}

// Enabled reports whether logger has any dispatch that would accept a
// record at this level for the root target "slog".
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Enabled(logcore.Metadata{Level: fromSlogLevel(level), Target: "slog"})
}

// Handle builds a Record from r and logs it. The key ordering mirrors
// log.rs's bridge: handler-carried attrs first (oldest WithAttrs call
// first), then the record's own attrs, matching slog's documented
// "earlier attributes shadow later ones" only insofar as insertion order
// is preserved for a Layout to render.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	b := logcore.NewBuilder("slog").
		Time(r.Time).
		Level(fromSlogLevel(r.Level)).
		Message(r.Message)

	for _, p := range h.attrs {
		b.KV(p.Key.Get(), p.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(b, h.group, a)
		return true
	})

	h.logger.Log(b.Build())
	return nil
}

// WithAttrs returns a new Handler carrying attrs in addition to the
// receiver's, without mutating the receiver (slog.Handler's documented
// immutability contract).
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(logcore.KV(nil), h.attrs...)
	b := logcore.NewBuilder("slog")
	for _, a := range attrs {
		appendAttr(b, h.group, a)
	}
	cp.attrs = append(cp.attrs, b.Build().KVs()...)
	return &cp
}

// WithGroup returns a new Handler that prefixes subsequent attribute
// keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	if h.group == "" {
		cp.group = name
	} else {
		cp.group = h.group + "." + name
	}
	return &cp
}

func appendAttr(b *logcore.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			appendAttr(b, key, ga)
		}
		return
	}
	b.KV(key, fromSlogValue(a.Value))
}

func fromSlogValue(v slog.Value) logcore.Value {
	switch v.Kind() {
	case slog.KindBool:
		return logcore.BoolValue(v.Bool())
	case slog.KindInt64:
		return logcore.IntValue(v.Int64())
	case slog.KindUint64:
		return logcore.IntValue(int64(v.Uint64()))
	case slog.KindFloat64:
		return logcore.FloatValue(v.Float64())
	case slog.KindString:
		return logcore.StringValue(v.String())
	default:
		return logcore.StringValue(v.String())
	}
}

// fromSlogLevel maps slog's four-level scale onto the sub-level-1 member
// of the corresponding group; slog has no concept of the 24-level
// model's finer sub-levels.
func fromSlogLevel(level slog.Level) logcore.Level {
	switch {
	case level < slog.LevelInfo:
		return logcore.Debug
	case level < slog.LevelWarn:
		return logcore.Info
	case level < slog.LevelError:
		return logcore.Warn
	default:
		return logcore.Error
	}
}
