package filetail

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssw-logs/logbroker"
	logappend "github.com/ssw-logs/logbroker/logcore/append"
	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
)

type recordingAppender struct {
	mu  sync.Mutex
	got []logcore.Record
}

func (a *recordingAppender) Append(rec logcore.Record, _ []diagnostic.Diagnostic) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.got = append(a.got, rec.ToOwned().AsRecord())
	return nil
}

func (a *recordingAppender) Flush() error { return nil }

func (a *recordingAppender) snapshot() []logcore.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := make([]logcore.Record, len(a.got))
	copy(cp, a.got)
	return cp
}

var _ logappend.Appender = (*recordingAppender)(nil)

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(Config{}, logbroker.New())
	require.Error(t, err)
}

func TestSource_TailsExistingContentFromStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte("first line\n"), 0o644))

	cap := &recordingAppender{}
	logger := logbroker.New(logbroker.NewDispatch([]logappend.Appender{cap}))

	src, err := New(Config{Path: path, Seek: SeekStart}, logger)
	require.NoError(t, err)
	defer src.Close()

	require.Eventually(t, func() bool {
		return len(cap.snapshot()) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	got := cap.snapshot()
	assert.Equal(t, "first line", got[0].Message())
}

func TestSource_TailsAppendedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(path, []byte{}, 0o644))

	cap := &recordingAppender{}
	logger := logbroker.New(logbroker.NewDispatch([]logappend.Appender{cap}))

	src, err := New(Config{Path: path, Seek: SeekEnd}, logger)
	require.NoError(t, err)
	defer src.Close()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("appended line\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		return len(cap.snapshot()) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	got := cap.snapshot()
	assert.Equal(t, "appended line", got[0].Message())
}
