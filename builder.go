package logbroker

// Builder accumulates Dispatches and produces a Logger, mirroring
// original_source/core/src/logger/builder.rs's fluent dispatch-then-build
// API adapted to Go's lack of closures-returning-typestate: each call to
// Dispatch stashes an already-built *Dispatch rather than a builder
// closure, since Go has no equivalent to the Rust version's
// const-generic-tracked "must append before build" typestate.
type Builder struct {
	dispatches []*Dispatch
}

// NewBuilder starts an empty logger builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Dispatch registers one fan-out branch.
func (b *Builder) Dispatch(d *Dispatch) *Builder {
	b.dispatches = append(b.dispatches, d)
	return b
}

// Build constructs the Logger from every registered dispatch.
func (b *Builder) Build() *Logger {
	return New(b.dispatches...)
}

// Apply builds the Logger and installs it as the process-global logger
// (spec.md's one-shot install). Returns an error if a global logger is
// already installed.
func (b *Builder) Apply() (*Logger, error) {
	l := b.Build()
	if err := Install(l); err != nil {
		return nil, err
	}
	return l, nil
}
