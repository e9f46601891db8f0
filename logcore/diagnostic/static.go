package diagnostic

import (
	"sync"

	"github.com/ssw-logs/logbroker/logcore"
)

// StaticMap is a process-global static map diagnostic, modeled on
// original_source's diagnostic/static_global.rs. Every dispatch that
// shares a StaticMap instance observes the same live key/value set; it is
// intended for process-wide ambient fields (deployment, region, build
// version) set once at startup and rarely mutated afterward.
type StaticMap struct {
	mu   sync.RWMutex
	pairs logcore.KV
}

// NewStaticMap constructs an empty process-global diagnostic.
func NewStaticMap() *StaticMap {
	return &StaticMap{}
}

// Set inserts or replaces key's value. Existing insertion position is
// kept on replace; a new key is appended.
func (m *StaticMap) Set(key string, value logcore.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owned := value.ToOwned()
	for i, p := range m.pairs {
		if p.Key.Get() == key {
			m.pairs[i].Value = owned
			return
		}
	}
	m.pairs = m.pairs.With(key, owned)
}

// Delete removes key if present.
func (m *StaticMap) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.pairs {
		if p.Key.Get() == key {
			m.pairs = append(m.pairs[:i], m.pairs[i+1:]...)
			return
		}
	}
}

// Visit implements Diagnostic by visiting a consistent snapshot of the
// current map contents.
func (m *StaticMap) Visit(visitor logcore.Visitor) error {
	m.mu.RLock()
	snapshot := make(logcore.KV, len(m.pairs))
	copy(snapshot, m.pairs)
	m.mu.RUnlock()
	return snapshot.Visit(visitor)
}
