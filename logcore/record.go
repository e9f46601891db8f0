package logcore

import "time"

// Metadata is the cheap, copyable subset of a Record that a Filter's
// Enabled pre-check is evaluated against, before the full record (message,
// location, kvs) has necessarily been built.
type Metadata struct {
	Level  Level
	Target string
}

// Record is an immutable log payload: timestamp, level, target, optional
// source location, message, and an ordered sequence of key/value pairs.
// A Record built by the emit site is borrowed by the dispatch pipeline and
// must never outlive the emit call; ToOwned produces a deep copy safe to
// retain (for example across the async appender's goroutine boundary).
type Record struct {
	time       time.Time
	metadata   Metadata
	modulePath string
	hasModule  bool
	file       string
	hasFile    bool
	line       uint32
	hasLine    bool
	payload    Str
	kvs        KV
}

// Builder constructs a Record through typed setters. Time defaults to
// now() and Level defaults to Info if unset.
type Builder struct {
	r Record
	timeSet, levelSet bool
}

// NewBuilder starts a Record builder for the given target.
func NewBuilder(target string) *Builder {
	return &Builder{r: Record{metadata: Metadata{Target: target}}}
}

func (b *Builder) Time(t time.Time) *Builder {
	b.r.time = t
	b.timeSet = true
	return b
}

func (b *Builder) Level(l Level) *Builder {
	b.r.metadata.Level = l
	b.levelSet = true
	return b
}

func (b *Builder) ModulePath(path string) *Builder {
	b.r.modulePath = path
	b.r.hasModule = true
	return b
}

func (b *Builder) File(file string) *Builder {
	b.r.file = file
	b.r.hasFile = true
	return b
}

func (b *Builder) Line(line uint32) *Builder {
	b.r.line = line
	b.r.hasLine = true
	return b
}

// Message sets a runtime-built payload (no static fast path).
func (b *Builder) Message(msg string) *Builder {
	b.r.payload = OwnedStr(msg)
	return b
}

// StaticMessage sets a compile-time-literal payload, preserving the static
// fast path through ToOwned.
func (b *Builder) StaticMessage(msg string) *Builder {
	b.r.payload = StaticStr(msg)
	return b
}

func (b *Builder) KV(key string, value Value) *Builder {
	b.r.kvs = b.r.kvs.With(key, value)
	return b
}

// Build finalizes the record, applying the time=now()/level=Info defaults.
func (b *Builder) Build() Record {
	if !b.timeSet {
		b.r.time = time.Now()
	}
	if !b.levelSet {
		b.r.metadata.Level = Info
	}
	return b.r
}

// Time returns the timestamp captured at construction.
func (r Record) Time() time.Time { return r.time }

// Metadata returns the (level, target) pair.
func (r Record) Metadata() Metadata { return r.metadata }

// Level is a convenience accessor for Metadata().Level.
func (r Record) Level() Level { return r.metadata.Level }

// Target is a convenience accessor for Metadata().Target.
func (r Record) Target() string { return r.metadata.Target }

// ModulePath returns the optional module path and whether it was set.
func (r Record) ModulePath() (string, bool) { return r.modulePath, r.hasModule }

// File returns the optional source file and whether it was set.
func (r Record) File() (string, bool) { return r.file, r.hasFile }

// Line returns the optional source line and whether it was set.
func (r Record) Line() (uint32, bool) { return r.line, r.hasLine }

// Message returns the formatted payload string.
func (r Record) Message() string { return r.payload.Get() }

// StaticMessage returns the payload's static string iff it was built via
// StaticMessage, preserving the static-payload-preservation property even
// after a ToOwned round trip.
func (r Record) StaticMessage() (string, bool) { return r.payload.AsStaticStr() }

// KVs returns the record's own key/value pairs in insertion order. This
// does not include diagnostic kvs; a Layout is responsible for visiting
// both in the order spec.md §4.4 requires (record kvs first).
func (r Record) KVs() KV { return r.kvs }

// OwnedRecord is a deep copy of a Record safe to retain past the emit
// call, produced by ToOwned. AsRecord returns a borrowed view over it with
// the same semantics as the original.
type OwnedRecord struct {
	rec Record
}

// ToOwned deep-copies the record, promoting every borrowed key/value to an
// owned representation. The payload's static bit survives the copy.
func (r Record) ToOwned() OwnedRecord {
	cp := r
	cp.payload = r.payload.ToOwned()
	cp.kvs = r.kvs.ToOwned()
	return OwnedRecord{rec: cp}
}

// AsRecord returns a borrowed view over the owned copy.
func (o OwnedRecord) AsRecord() Record { return o.rec }
