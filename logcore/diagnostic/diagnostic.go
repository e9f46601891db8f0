// Package diagnostic defines the ambient-context contract a Dispatch
// carries alongside its filters and appenders. A Diagnostic is owned by
// the dispatch, not by the record: every record emitted through a given
// dispatch sees the same set of diagnostics (spec.md §3).
package diagnostic

import "github.com/ssw-logs/logbroker/logcore"

// Diagnostic produces a sequence of (key, value) pairs representing
// ambient context when visited. The built-in variants (StaticMap,
// Goroutine) each keep their key/value store inside the Diagnostic value
// itself; Visit iterates over that store's current contents.
type Diagnostic interface {
	Visit(visitor logcore.Visitor) error
}

// Func adapts a plain function to the Diagnostic interface.
type Func func(visitor logcore.Visitor) error

func (f Func) Visit(visitor logcore.Visitor) error { return f(visitor) }

// VisitAll visits every diagnostic in order, stopping at the first error.
func VisitAll(diags []Diagnostic, visitor logcore.Visitor) error {
	for _, d := range diags {
		if err := d.Visit(visitor); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot collects every (key, value) pair produced by diags into an
// owned logcore.KV, the shape the async appender sends across its worker
// boundary (spec.md §4.6's "snapshot diagnostics into Vec<(owned_key,
// owned_value)>").
func Snapshot(diags []Diagnostic) (logcore.KV, error) {
	var kv logcore.KV
	collector := logcore.VisitorFunc(func(key logcore.Key, value logcore.Value) error {
		kv = append(kv, logcore.Pair{Key: key.ToOwned(), Value: value.ToOwned()})
		return nil
	})
	if err := VisitAll(diags, collector); err != nil {
		return nil, err
	}
	return kv, nil
}

// Replay turns a previously-snapshotted KV back into a single Diagnostic
// that replays the captured pairs in order. This is what the async
// worker reconstructs for each destination appender (spec.md §4.6 step 2).
func Replay(kv logcore.KV) Diagnostic {
	return Func(func(visitor logcore.Visitor) error {
		return kv.Visit(visitor)
	})
}
