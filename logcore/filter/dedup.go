package filter

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
)

// Dedup is a domain-stack extension beyond spec.md's three mandated
// primitives: it rejects records that hash identically to one seen within
// the configured TTL, the Filter-shaped equivalent of the teacher's
// pkg/deduplication.DeduplicationManager, rebuilt around xxhash (a teacher
// dependency the core dispatch has no other use for) instead of SHA-256 —
// collision resistance does not matter for a best-effort seen-set, and
// xxhash is an order of magnitude cheaper per record.
type Dedup struct {
	ttl time.Duration

	mu   sync.Mutex
	seen map[uint64]time.Time
}

// NewDedup constructs a dedup filter that treats two records as duplicates
// if they hash identically and the first was seen within ttl.
func NewDedup(ttl time.Duration) *Dedup {
	return &Dedup{ttl: ttl, seen: make(map[uint64]time.Time)}
}

func hashRecord(rec logcore.Record) uint64 {
	h := xxhash.New()
	h.WriteString(rec.Target())
	h.WriteString(rec.Message())
	for _, p := range rec.KVs() {
		h.WriteString(p.Key.Get())
		h.WriteString(p.Value.String())
	}
	return h.Sum64()
}

// Enabled always returns Neutral: dedup needs the fully-built message, so
// it can only make a decision in Matches.
func (d *Dedup) Enabled(logcore.Metadata, []diagnostic.Diagnostic) logcore.FilterVerdict {
	return logcore.Neutral
}

func (d *Dedup) Matches(rec logcore.Record, _ []diagnostic.Diagnostic) logcore.FilterVerdict {
	key := hashRecord(rec)
	now := rec.Time()

	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.seen[key]; ok && now.Sub(last) < d.ttl {
		return logcore.Reject
	}
	d.seen[key] = now
	return logcore.Neutral
}

// Sweep evicts entries older than ttl. Callers run this periodically
// (e.g. from a time.Ticker) so the seen-set doesn't grow unbounded; it is
// not invoked automatically, and Matches only overwrites entries, never
// evicts them.
func (d *Dedup) Sweep(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, t := range d.seen {
		if now.Sub(t) >= d.ttl {
			delete(d.seen, k)
		}
	}
}
