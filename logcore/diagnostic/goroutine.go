package diagnostic

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"

	"github.com/ssw-logs/logbroker/logcore"
)

// Goroutine is the closest Go analogue to the original's thread-local/
// fiber-local diagnostic variants: Go goroutines have no first-class
// identity to hang a map off of, so this keys a process-wide store by the
// calling goroutine's numeric id (parsed out of runtime.Stack, the same
// trick used by several goroutine-local-storage libraries predating
// context.Context). The store is owned by the Goroutine value itself (one
// map entry per goroutine id, guarded by mu), not by host-local storage.
//
// Prefer context.Context plumbing in new code; Goroutine exists for
// call sites that can't thread a context through (the common case for a
// logging facade retrofitted onto existing code).
type Goroutine struct {
	mu     sync.Mutex
	stacks map[int64][]logcore.KV
}

// NewGoroutine constructs an empty goroutine-local diagnostic store.
func NewGoroutine() *Goroutine {
	return &Goroutine{stacks: make(map[int64][]logcore.KV)}
}

func goroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	// runtime.Stack's first line is "goroutine <id> [state]:"
	fields := bytes.Fields(buf)
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Enter pushes a new scope of key/value pairs onto the calling goroutine's
// stack; Leave pops the most recently entered scope. Visit sees the union
// of all scopes currently on the stack, innermost pairs visited last so
// they can shadow outer ones in a layout that writes "last wins" for
// duplicate keys.
func (g *Goroutine) Enter(kv logcore.KV) (leave func()) {
	id := goroutineID()
	g.mu.Lock()
	g.stacks[id] = append(g.stacks[id], kv.ToOwned())
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		stack := g.stacks[id]
		if len(stack) == 0 {
			return
		}
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			delete(g.stacks, id)
		} else {
			g.stacks[id] = stack
		}
	}
}

// Visit implements Diagnostic by visiting every scope currently entered
// on the calling goroutine's stack, outermost first.
func (g *Goroutine) Visit(visitor logcore.Visitor) error {
	id := goroutineID()
	g.mu.Lock()
	stack := append([]logcore.KV(nil), g.stacks[id]...)
	g.mu.Unlock()

	for _, kv := range stack {
		if err := kv.Visit(visitor); err != nil {
			return err
		}
	}
	return nil
}
