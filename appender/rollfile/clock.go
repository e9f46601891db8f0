package rollfile

import "time"

// Clock is injectable for tests (spec.md §3's "clock: injectable for
// tests"). The default wraps time.Now; tests substitute a ManualClock to
// drive rotation deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production clock, backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// ManualClock is a test clock whose value only changes when Set is
// called.
type ManualClock struct {
	now time.Time
}

// NewManualClock constructs a ManualClock starting at now.
func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time { return c.now }

// Set advances (or rewinds) the manual clock.
func (c *ManualClock) Set(now time.Time) { c.now = now }
