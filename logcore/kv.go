package logcore

import "fmt"

// ValueKind discriminates the scalar variants a Value may hold.
type ValueKind int

const (
	KindBool ValueKind = iota
	KindInt64
	KindFloat64
	KindString
	KindBytes
	KindDisplay
)

// Value is a polymorphic scalar attached to a Key. It mirrors the closed
// set of variants spec.md §3 names: bool, int, float, string, bytes, or a
// display-formatter (anything implementing fmt.Stringer, formatted lazily
// so that expensive String() calls are skipped when the record is
// filtered out before reaching an appender).
type Value struct {
	kind    ValueKind
	boolV   bool
	intV    int64
	floatV  float64
	strV    Str
	bytesV  []byte
	display fmt.Stringer
}

func BoolValue(v bool) Value       { return Value{kind: KindBool, boolV: v} }
func IntValue(v int64) Value       { return Value{kind: KindInt64, intV: v} }
func FloatValue(v float64) Value   { return Value{kind: KindFloat64, floatV: v} }
func BytesValue(v []byte) Value    { return Value{kind: KindBytes, bytesV: v} }
func DisplayValue(v fmt.Stringer) Value {
	return Value{kind: KindDisplay, display: v}
}

// StringValue wraps a runtime string with no static fast path.
func StringValue(v string) Value { return Value{kind: KindString, strV: OwnedStr(v)} }

// StaticStringValue wraps a compile-time string literal, preserving the
// static fast path through AsStaticStr.
func StaticStringValue(v string) Value { return Value{kind: KindString, strV: StaticStr(v)} }

// Kind reports which variant this Value holds.
func (v Value) Kind() ValueKind { return v.kind }

// AsStaticStr returns the underlying static string iff this is a string
// Value built from a static Str. Non-string Values and owned strings both
// return ("", false).
func (v Value) AsStaticStr() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.strV.AsStaticStr()
}

// String renders the value for layout purposes regardless of variant.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.boolV {
			return "true"
		}
		return "false"
	case KindInt64:
		return fmt.Sprintf("%d", v.intV)
	case KindFloat64:
		return fmt.Sprintf("%g", v.floatV)
	case KindString:
		return v.strV.Get()
	case KindBytes:
		return fmt.Sprintf("%x", v.bytesV)
	case KindDisplay:
		if v.display == nil {
			return "<nil>"
		}
		return v.display.String()
	default:
		return ""
	}
}

// ToOwned returns a Value safe to retain past the lifetime of whatever
// produced it. For display values this forces the String() call now,
// since a fmt.Stringer captured by reference may become invalid once the
// emit site returns (e.g. it closes over a reused buffer).
func (v Value) ToOwned() Value {
	switch v.kind {
	case KindDisplay:
		return StringValue(v.String())
	case KindString:
		return Value{kind: KindString, strV: v.strV.ToOwned()}
	default:
		return v
	}
}

// Key is a small-string key, almost always static in practice (callers
// pass string literals as field names).
type Key = Str

// Pair is one (key, value) entry in an ordered KV sequence.
type Pair struct {
	Key   Key
	Value Value
}

// KV is an ordered sequence of key/value pairs. Insertion order is
// observable to visitors per spec.md §3/§4.2.
type KV []Pair

// Visitor receives (key, value) pairs in order. A Visitor may refuse a
// pair by returning an error, which aborts the remaining visitation (the
// KindVisitor error kind in logerr).
type Visitor interface {
	Visit(key Key, value Value) error
}

// VisitorFunc adapts a plain function to the Visitor interface.
type VisitorFunc func(key Key, value Value) error

func (f VisitorFunc) Visit(key Key, value Value) error { return f(key, value) }

// Visit feeds every pair in kv to the visitor in insertion order,
// stopping at the first error.
func (kv KV) Visit(visitor Visitor) error {
	for _, p := range kv {
		if err := visitor.Visit(p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// ToOwned deep-copies every pair so the sequence is safe to retain past
// the emit call (used when a record crosses into the async worker).
func (kv KV) ToOwned() KV {
	if kv == nil {
		return nil
	}
	out := make(KV, len(kv))
	for i, p := range kv {
		out[i] = Pair{Key: p.Key.ToOwned(), Value: p.Value.ToOwned()}
	}
	return out
}

// With returns a new KV with (key, value) appended. KV values are treated
// as immutable once handed to a Record, so builders append via With
// rather than mutating in place.
func (kv KV) With(key string, value Value) KV {
	return append(kv, Pair{Key: OwnedStr(key), Value: value})
}
