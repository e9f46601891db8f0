package async

import (
	"github.com/ssw-logs/logbroker/logcore"
	logappend "github.com/ssw-logs/logbroker/logcore/append"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
	"github.com/ssw-logs/logbroker/logcore/logerr"
	"github.com/ssw-logs/logbroker/logcore/trap"
)

// Overflow selects what happens when a bounded channel is full at send
// time. Only meaningful when Builder.BufferedLinesLimit was set; an
// unbounded channel never blocks or drops.
type Overflow uint8

const (
	// Block waits for room in the channel, applying backpressure to the
	// calling goroutine.
	Block Overflow = iota
	// DropIncoming silently discards the task instead of blocking. This
	// applies to Flush tasks too: a Flush enqueued while the channel is
	// full is dropped exactly like a Log task would be, with no error
	// and no retry (spec.md §4.6's documented, intentional behavior —
	// callers that need a guaranteed flush under DropIncoming should use
	// Block for the shutdown path instead).
	DropIncoming
)

var _ logappend.Appender = (*Async)(nil)
var _ logappend.Closer = (*Async)(nil)

// Async wraps one or more appenders so every Append call returns to its
// caller as soon as the task is handed off, with the actual I/O done on a
// dedicated worker goroutine (spec.md §4.6). Flush also runs on the
// worker, but waits for the worker's reply before returning.
type Async struct {
	appends  []logappend.Appender
	overflow Overflow

	// Exactly one of ch/queue is non-nil, selected at Build time by
	// whether a buffered-lines limit was configured.
	ch    chan task
	queue *unboundedQueue

	done chan struct{}
}

// Builder configures an Async appender. The zero value is not usable;
// construct one with NewBuilder.
type Builder struct {
	appends  []logappend.Appender
	limit    int
	hasLimit bool
	overflow Overflow
	trap     trap.Trap
}

// NewBuilder starts an async appender builder. Defaults to an unbounded
// channel and the Block overflow policy, matching the underlying
// worker's defaults.
func NewBuilder() *Builder {
	return &Builder{overflow: Block, trap: trap.Stderr()}
}

// Append adds a wrapped appender, delivered to in registration order for
// every task.
func (b *Builder) Append(a logappend.Appender) *Builder {
	b.appends = append(b.appends, a)
	return b
}

// BufferedLinesLimit bounds the task channel to limit entries. Leaving
// this unset (or passing a non-positive value) makes the channel
// unbounded, matching logforth's Option<usize> default.
func (b *Builder) BufferedLinesLimit(limit int) *Builder {
	b.limit = limit
	b.hasLimit = limit > 0
	return b
}

// OverflowBlock selects the Block overflow policy (the default).
func (b *Builder) OverflowBlock() *Builder {
	b.overflow = Block
	return b
}

// OverflowDropIncoming selects the DropIncoming overflow policy.
func (b *Builder) OverflowDropIncoming() *Builder {
	b.overflow = DropIncoming
	return b
}

// Trap overrides the trap the worker goroutine routes per-appender
// errors to. Defaults to trap.Stderr().
func (b *Builder) Trap(t trap.Trap) *Builder {
	b.trap = t
	return b
}

// Build starts the worker goroutine and returns the ready-to-use
// appender. Build panics if no appenders were registered, matching
// Dispatch's non-empty invariant.
func (b *Builder) Build() *Async {
	if len(b.appends) == 0 {
		panic("async: Builder requires at least one wrapped appender")
	}

	a := &Async{appends: b.appends, overflow: b.overflow, done: make(chan struct{})}

	var source taskSource
	if b.hasLimit {
		a.ch = make(chan task, b.limit)
		source = chanSource(a.ch)
	} else {
		a.queue = newUnboundedQueue()
		source = a.queue
	}

	w := newWorker(b.appends, source, b.trap)
	go func() {
		defer close(a.done)
		w.run()
	}()

	return a
}

// Append snapshots diags into an owned form and hands the record off to
// the worker goroutine, applying the configured overflow policy.
func (a *Async) Append(rec logcore.Record, diags []diagnostic.Diagnostic) error {
	snapshot, err := diagnostic.Snapshot(diags)
	if err != nil {
		return err
	}
	t := task{kind: taskLog, rec: rec.ToOwned(), diags: snapshot}
	_, err = a.send(t, "failed to send log task to async appender")
	return err
}

// Flush sends a flush task and blocks until the worker reports the
// first per-destination flush error (or nil), implementing spec.md
// §4.6's synchronous flush barrier: once Flush returns nil, every Log
// task this caller enqueued earlier has been observed by every
// destination appender. Under DropIncoming, a flush dropped because the
// channel was full resolves to a silent "no flush" (nil, nil) rather
// than an error — the documented, intentional surprise spec.md §8 calls
// out by name.
func (a *Async) Flush() error {
	done := make(chan error, 1)
	t := task{kind: taskFlush, done: done}

	enqueued, err := a.send(t, "failed to send flush task to async appender")
	if err != nil {
		return err
	}
	if !enqueued {
		return nil
	}
	return <-done
}

// send hands t to the worker per the configured overflow policy,
// reporting whether it was actually enqueued. The unbounded queue never
// blocks and never drops regardless of policy, since only a configured
// buffered-lines limit puts a bounded channel (and therefore a Full
// case) in play — matching logforth, where Overflow only has an
// observable effect on a bounded channel. Once Close has closed the
// unbounded queue, send fails with a channel error.
func (a *Async) send(t task, blockFailureMsg string) (enqueued bool, err error) {
	if a.queue != nil {
		if !a.queue.push(t) {
			return false, logerr.Channel(blockFailureMsg)
		}
		return true, nil
	}

	switch a.overflow {
	case DropIncoming:
		select {
		case a.ch <- t:
			return true, nil
		default:
			return false, nil
		}
	default:
		select {
		case a.ch <- t:
			return true, nil
		case <-a.done:
			return false, logerr.Channel(blockFailureMsg)
		}
	}
}

// Close drains pending tasks and stops the worker goroutine. It closes
// the task channel or queue, which lets the worker finish everything
// already queued before returning; it does not itself send a final
// Flush — call Flush before Close if a guaranteed final flush is
// required. Once the worker goroutine has exited, every wrapped
// appender that implements Closer is closed in turn, per spec.md §4.6
// step 4: destination appenders are dropped (and thus flushed) on
// worker exit, which for this Go port means Close, not a GC-driven drop.
func (a *Async) Close() error {
	if a.queue != nil {
		a.queue.close()
	} else {
		close(a.ch)
	}
	<-a.done

	var first error
	for _, app := range a.appends {
		closer, ok := app.(logappend.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
