package async

import (
	logappend "github.com/ssw-logs/logbroker/logcore/append"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
	"github.com/ssw-logs/logbroker/logcore/logerr"
	"github.com/ssw-logs/logbroker/logcore/trap"
)

// taskSource abstracts over the two queue implementations a worker can
// drain: a real Go channel (bounded case) or an unboundedQueue (the
// unbounded case, since Go has no native non-blocking-send channel).
type taskSource interface {
	next() (task, bool)
}

type chanSource <-chan task

func (c chanSource) next() (task, bool) {
	t, ok := <-c
	return t, ok
}

// worker owns the receiving end of the task queue and the wrapped
// appenders. It runs on its own goroutine for the appender's lifetime,
// processing tasks strictly in send order (spec.md §4.6's single-consumer
// guarantee: two Log tasks sent before a Flush are both durable once the
// Flush task itself completes).
type worker struct {
	appends []logappend.Appender
	source  taskSource
	trap    trap.Trap
}

func newWorker(appends []logappend.Appender, source taskSource, t trap.Trap) *worker {
	return &worker{appends: appends, source: source, trap: t}
}

// run drains the task source until it reports closed-and-empty, then
// returns. Closing the source (rather than sending a sentinel task) is
// what lets Close drain any already-queued work before the goroutine
// exits.
func (w *worker) run() {
	for {
		t, ok := w.source.next()
		if !ok {
			return
		}
		switch t.kind {
		case taskLog:
			w.handleLog(t)
		case taskFlush:
			w.handleFlush(t)
		}
	}
}

func (w *worker) handleLog(t task) {
	rec := t.rec.AsRecord()
	var diags []diagnostic.Diagnostic
	if len(t.diags) > 0 {
		diags = []diagnostic.Diagnostic{diagnostic.Replay(t.diags)}
	}
	for _, a := range w.appends {
		if err := a.Append(rec, diags); err != nil {
			w.trap(logerr.IO("async appender: failed to append record").WithCause(err))
		}
	}
}

// handleFlush flushes every destination appender and reports the first
// error (if any) back through t.done, unblocking the waiting caller.
// done is created with capacity 1 by Flush, so this send never blocks;
// the non-blocking select is just defense against a nil or already-
// satisfied channel (spec.md §4.6 step 3: "a missing receiver for done
// is not an error" — Go has no cancellable oneshot receiver to drop, but
// the non-blocking send preserves the same never-block guarantee).
func (w *worker) handleFlush(t task) {
	var first error
	for _, a := range w.appends {
		if err := a.Flush(); err != nil {
			wrapped := logerr.IO("async appender: failed to flush").WithCause(err)
			if first == nil {
				first = wrapped
			}
		}
	}
	if t.done == nil {
		return
	}
	select {
	case t.done <- first:
	default:
	}
}
