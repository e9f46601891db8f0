package logcore

// Str is the small-string representation shared by record payloads and
// key/value pairs. It deliberately keeps the "static vs owned" distinction
// explicit rather than collapsing into a single string: a Str built from a
// static string literal at the call site round-trips through ToOwned
// without ever allocating, which matters when a record crosses into the
// async appender's worker goroutine.
//
// Go strings are already immutable and reference-counted by the runtime,
// so there is no borrow-checker reason to distinguish "borrowed" from
// "owned" the way the Rust original does. What we do preserve is the
// static bit: whether the value originated from a `const`/literal the
// caller controls versus one built at runtime (fmt.Sprintf, string
// concatenation, a network read). That bit is the thing AsStaticStr
// reports, and it is the thing a deep-copying appender cares about when
// deciding whether a copy is actually necessary.
type Str struct {
	value  string
	static bool
}

// StaticStr wraps a compile-time-constant string. Prefer this for literal
// targets, level names, and other values that are never constructed at
// runtime.
func StaticStr(s string) Str {
	return Str{value: s, static: true}
}

// OwnedStr wraps a runtime-constructed string (the result of formatting,
// concatenation, or any computation). It carries no static fast path.
func OwnedStr(s string) Str {
	return Str{value: s, static: false}
}

// Get returns the underlying string value.
func (s Str) Get() string {
	return s.value
}

// IsStatic reports whether this Str was constructed via StaticStr.
func (s Str) IsStatic() bool {
	return s.static
}

// AsStaticStr returns (value, true) iff the original value was static,
// letting a caller skip an allocation/copy it would otherwise need to make
// defensively. It returns ("", false) for owned strings even though the Go
// string itself is perfectly safe to retain — the contract is about
// signaling provenance, not about memory safety.
func (s Str) AsStaticStr() (string, bool) {
	if s.static {
		return s.value, true
	}
	return "", false
}

// ToOwned returns a Str with the same contents whose static bit is
// preserved. This is the Go analogue of the original's to_owned(): since
// Go strings need no defensive copy to cross a goroutine boundary, "owned"
// here is a no-op over the value itself, but the static/owned distinction
// must still be observable afterward (spec.md's "static-payload
// preservation" property).
func (s Str) ToOwned() Str {
	return s
}

func (s Str) String() string {
	return s.value
}
