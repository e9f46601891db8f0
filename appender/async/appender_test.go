package async

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
)

// TestMain verifies the worker goroutine every Builder.Build call starts
// always exits once its appender is closed. A leaked worker here would
// mean a Close call returned before the goroutine actually drained.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAppender struct {
	mu      sync.Mutex
	records []string
	flushes int
}

func (f *fakeAppender) Append(rec logcore.Record, diags []diagnostic.Diagnostic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec.Message())
	return nil
}

func (f *fakeAppender) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

func (f *fakeAppender) snapshot() ([]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.records))
	copy(out, f.records)
	return out, f.flushes
}

func buildRecord(msg string) logcore.Record {
	return logcore.NewBuilder("test.target").Message(msg).Build()
}

func TestAsync_AppendDeliversInOrder(t *testing.T) {
	inner := &fakeAppender{}
	a := NewBuilder().Append(inner).Build()
	defer a.Close()

	want := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		msg := "line-" + strconv.Itoa(i)
		want = append(want, msg)
		require.NoError(t, a.Append(buildRecord(msg), nil))
	}
	require.NoError(t, a.Flush())
	require.NoError(t, a.Close())

	got, flushes := inner.snapshot()
	assert.Equal(t, want, got)
	assert.Equal(t, 1, flushes)
}

// TestAsync_FlushWaitsForCompletion grounds spec.md §8 scenario 2: Flush
// must still be running while the destination's own flush is blocked on
// a barrier, and only return once that barrier is released.
func TestAsync_FlushWaitsForCompletion(t *testing.T) {
	barrier := &barrierFlushAppender{release: make(chan struct{})}
	a := NewBuilder().Append(barrier).Build()

	flushDone := make(chan error, 1)
	go func() { flushDone <- a.Flush() }()

	select {
	case <-flushDone:
		t.Fatal("Flush returned before the destination's barrier was released")
	case <-time.After(100 * time.Millisecond):
	}

	close(barrier.release)

	select {
	case err := <-flushDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Flush did not return after the barrier was released")
	}

	require.NoError(t, a.Close())
}

// TestAsync_FlushPropagatesErrors grounds spec.md §8 scenario 3.
func TestAsync_FlushPropagatesErrors(t *testing.T) {
	failing := &failingFlushAppender{}
	a := NewBuilder().Append(failing).Build()
	defer a.Close()

	err := a.Flush()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to flush")
	assert.Contains(t, err.Error(), "flush failed")
}

// TestAsync_DropIncomingSilentlyDropsFlush grounds spec.md §4.6/§8's
// documented open question: a Flush task dropped under DropIncoming
// because the channel is full resolves to "no flush" (nil), not an
// error, and this call must not block waiting for a reply nobody will
// ever send.
func TestAsync_DropIncomingSilentlyDropsFlush(t *testing.T) {
	blocking := &blockingAppender{started: make(chan struct{}), release: make(chan struct{})}
	a := NewBuilder().
		Append(blocking).
		BufferedLinesLimit(1).
		OverflowDropIncoming().
		Build()

	require.NoError(t, a.Append(buildRecord("a"), nil))
	<-blocking.started
	require.NoError(t, a.Append(buildRecord("b"), nil))

	flushDone := make(chan error, 1)
	go func() { flushDone <- a.Flush() }()

	select {
	case err := <-flushDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Flush blocked waiting for a reply that was never going to arrive")
	}

	close(blocking.release)
	require.NoError(t, a.Close())
}

func TestAsync_BoundedDropIncomingNeverBlocks(t *testing.T) {
	blocking := &blockingAppender{started: make(chan struct{}), release: make(chan struct{})}
	a := NewBuilder().
		Append(blocking).
		BufferedLinesLimit(1).
		OverflowDropIncoming().
		Build()

	// The first task is picked up by the worker and blocks there,
	// draining the channel; the second then fills its single slot. A
	// third must be dropped rather than block this goroutine.
	require.NoError(t, a.Append(buildRecord("a"), nil))
	<-blocking.started
	require.NoError(t, a.Append(buildRecord("b"), nil))

	done := make(chan struct{})
	go func() {
		_ = a.Append(buildRecord("c"), nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Append blocked under DropIncoming overflow policy")
	}

	close(blocking.release)
	require.NoError(t, a.Close())
}

func TestAsync_UnboundedNeverBlocksRegardlessOfPolicy(t *testing.T) {
	inner := &fakeAppender{}
	a := NewBuilder().Append(inner).OverflowBlock().Build()
	defer a.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			_ = a.Append(buildRecord("x"), nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("unbounded Async blocked its caller")
	}
}

func TestAsync_CloseDrainsPendingWork(t *testing.T) {
	inner := &fakeAppender{}
	a := NewBuilder().Append(inner).BufferedLinesLimit(4).Build()

	for i := 0; i < 10; i++ {
		require.NoError(t, a.Append(buildRecord("line"), nil))
	}
	require.NoError(t, a.Close())

	got, _ := inner.snapshot()
	assert.Len(t, got, 10)
}

func TestAsync_BuildPanicsWithoutAppenders(t *testing.T) {
	assert.Panics(t, func() {
		NewBuilder().Build()
	})
}

// TestAsync_CloseClosesWrappedCloserAppenders grounds spec.md §4.6 step
// 4 / §5: destination appenders that implement Closer (a rollfile.Writer
// holding an open file handle, for example) must be closed once the
// worker goroutine exits, not left open until the process happens to
// collect them.
func TestAsync_CloseClosesWrappedCloserAppenders(t *testing.T) {
	inner := &closeTrackingAppender{}
	a := NewBuilder().Append(inner).Build()

	require.NoError(t, a.Append(buildRecord("line"), nil))
	require.NoError(t, a.Close())

	assert.Equal(t, 1, inner.closes)
}

// closeTrackingAppender implements both logappend.Appender and
// logappend.Closer so Close-propagation can be asserted independently
// of Append/Flush behavior.
type closeTrackingAppender struct {
	mu     sync.Mutex
	closes int
}

func (c *closeTrackingAppender) Append(rec logcore.Record, diags []diagnostic.Diagnostic) error {
	return nil
}

func (c *closeTrackingAppender) Flush() error { return nil }

func (c *closeTrackingAppender) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

// blockingAppender signals started on its first Append call, then
// blocks until release is closed, letting tests fill a bounded channel
// deterministically.
type blockingAppender struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (b *blockingAppender) Append(rec logcore.Record, diags []diagnostic.Diagnostic) error {
	b.once.Do(func() {
		close(b.started)
		<-b.release
	})
	return nil
}

func (b *blockingAppender) Flush() error { return nil }

// barrierFlushAppender's Flush blocks until release is closed, letting a
// test observe that the caller's Flush() call is still in flight.
type barrierFlushAppender struct {
	release chan struct{}
}

func (f *barrierFlushAppender) Append(rec logcore.Record, diags []diagnostic.Diagnostic) error {
	return nil
}

func (f *barrierFlushAppender) Flush() error {
	<-f.release
	return nil
}

// failingFlushAppender's Flush always fails with a fixed message, for
// asserting that the async appender's Flush propagates the error text.
type failingFlushAppender struct{}

func (f *failingFlushAppender) Append(rec logcore.Record, diags []diagnostic.Diagnostic) error {
	return nil
}

func (f *failingFlushAppender) Flush() error {
	return errors.New("flush failed")
}
