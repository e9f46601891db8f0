package rollfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssw-logs/logbroker/logcore"
)

func line(msg string) logcore.Record {
	return logcore.NewBuilder("svc").Message(msg).Build()
}

func TestWriter_CreatesCurrentFileOnFirstOpen(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{BaseDir: dir, Filename: "app.log"})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append(line("hello"), nil))
	require.NoError(t, w.Flush())

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestWriter_ResumesExistingCurrentFileAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	w1, err := New(Config{BaseDir: dir, Filename: "app.log"})
	require.NoError(t, err)
	require.NoError(t, w1.Append(line("first"), nil))
	require.NoError(t, w1.Close())

	w2, err := New(Config{BaseDir: dir, Filename: "app.log"})
	require.NoError(t, err)
	defer w2.Close()
	require.NoError(t, w2.Append(line("second"), nil))
	require.NoError(t, w2.Flush())

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestWriter_SizeRotationArchivesAndCapsRetention(t *testing.T) {
	dir := t.TempDir()
	clock := NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	w, err := New(Config{
		BaseDir:  dir,
		Filename: "app.log",
		MaxSize:  10,
		MaxFiles: 2,
		Clock:    clock,
	})
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Append(line("0123456789"), nil))
	}
	require.NoError(t, w.Flush())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	// MaxFiles=2 means at most one archived file plus the current file.
	assert.LessOrEqual(t, len(entries), 2)

	var hasCurrent bool
	for _, e := range entries {
		if e.Name() == "app.log" {
			hasCurrent = true
		}
	}
	assert.True(t, hasCurrent)
}

func TestWriter_HourlyRotationRollsOnSlotBoundary(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)
	w, err := New(Config{
		BaseDir:  dir,
		Filename: "app.log",
		Rotation: Hourly,
		Clock:    clock,
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append(line("in first hour"), nil))

	clock.Set(start.Add(2 * time.Hour))
	require.NoError(t, w.Append(line("in third hour"), nil))
	require.NoError(t, w.Flush())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 2, "rotation should have produced an archived file plus the current file")

	var foundArchive bool
	for _, e := range entries {
		if e.Name() != "app.log" {
			foundArchive = true
		}
	}
	assert.True(t, foundArchive)
}

func TestWriter_NoRotationWhenNeverAndUnbounded(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{BaseDir: dir, Filename: "app.log"})
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 20; i++ {
		require.NoError(t, w.Append(line("line"), nil))
	}
	require.NoError(t, w.Flush())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// TestWriter_RotateRenameFailurePropagatesToWriteCaller grounds spec.md
// §4.5: a rename failure during rotation aborts the rotation and
// propagates to the caller of Write, instead of silently writing to a
// stale handle. With MaxFiles 1 rotation does no renumbering of existing
// archives, so pre-creating the archive-rename's destination as a
// directory makes os.Rename(currentPath, archivePath) fail deterministically.
func TestWriter_RotateRenameFailurePropagatesToWriteCaller(t *testing.T) {
	dir := t.TempDir()
	clock := NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	w, err := New(Config{
		BaseDir:  dir,
		Filename: "app.log",
		MaxSize:  5,
		MaxFiles: 1,
		Clock:    clock,
	})
	require.NoError(t, err)
	defer w.Close()

	// First write stays under MaxSize, so it lands with no rotation.
	_, err = w.Write([]byte("abcdef"))
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "app.log.1"), 0o755))

	// Second write observes currentFileSize >= MaxSize and rotates;
	// the archive-rename fails because app.log.1 is a directory.
	_, err = w.Write([]byte("ghijkl"))
	require.Error(t, err, "rotation's archive-rename should fail because app.log.1 is a directory")

	// The failed write must not have landed on a stale handle.
	data, readErr := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, readErr)
	assert.NotContains(t, string(data), "ghijkl")
}

func TestWriter_CompressConfigGzipsRotatedArchive(t *testing.T) {
	dir := t.TempDir()
	clock := NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	w, err := New(Config{
		BaseDir:  dir,
		Filename: "app.log",
		MaxSize:  5,
		Clock:    clock,
		Compress: CodecGzip,
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append(line("0123456789"), nil))
	require.NoError(t, w.Append(line("0123456789"), nil))
	require.NoError(t, w.Flush())

	require.Eventually(t, func() bool {
		_, statErr := os.Stat(filepath.Join(dir, "app.log.1.gz"))
		return statErr == nil
	}, 2*time.Second, 20*time.Millisecond, "rotated archive was not compressed in the background")
}

func TestWriter_SuffixAppendedToCurrentAndArchivedNames(t *testing.T) {
	dir := t.TempDir()
	clock := NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	w, err := New(Config{
		BaseDir:  dir,
		Filename: "app.log",
		Suffix:   "gz",
		MaxSize:  5,
		MaxFiles: 3,
		Clock:    clock,
	})
	require.NoError(t, err)
	defer w.Close()

	_, err = os.Stat(filepath.Join(dir, "app.log.gz"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Append(line("abcdef"), nil))
	}
	require.NoError(t, w.Flush())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var sawArchiveSuffix bool
	for _, e := range entries {
		if e.Name() != "app.log.gz" {
			assert.Contains(t, e.Name(), ".gz")
			sawArchiveSuffix = true
		}
	}
	assert.True(t, sawArchiveSuffix)
}
