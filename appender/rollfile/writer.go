package rollfile

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ssw-logs/logbroker/logcore"
	logappend "github.com/ssw-logs/logbroker/logcore/append"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
	"github.com/ssw-logs/logbroker/logcore/layout"
	"github.com/ssw-logs/logbroker/logcore/logerr"
	"github.com/ssw-logs/logbroker/logcore/trap"
)

// Config configures a Writer. BaseDir and Filename are required; the rest
// have the zero-value defaults spec.md §4.5 describes (Rotation=Never,
// no size/file cap).
type Config struct {
	BaseDir  string
	Filename string
	Suffix   string
	Rotation Rotation
	MaxSize  int64 // 0 means unbounded
	MaxFiles int   // 0 means unbounded
	Clock    Clock
	Trap     trap.Trap
	Layout   layout.Layout

	// Compress, when set to a codec other than CodecNone, compresses
	// each file in the background right after rotate archives it away.
	Compress Codec

	// WatchExternalChanges enables an fsnotify watch on BaseDir that
	// reopens the current file if something outside this writer removes
	// or renames it out from under the writer.
	WatchExternalChanges bool
}

// Writer is a synchronized, durable file writer that rotates by
// wall-clock bucket, by size, or both, and keeps at most MaxFiles
// archived files. The full state lives under one mutex, including the
// file handle: rotation decisions depend on observing (size, time,
// handle) as a single group, so splitting size into an atomic would be
// incorrect (spec.md §9).
type Writer struct {
	mu sync.Mutex

	baseDir  string
	filename string
	suffix   string
	rotation Rotation
	maxSize  int64
	maxFiles int
	clock    Clock
	trap     trap.Trap
	layout   layout.Layout
	compress Codec

	file            *os.File
	currentFileSize int64
	thisSlotTime    time.Time
	nextSlotMillis  int64
	hasNextSlot     bool

	watcher *fsnotify.Watcher
}

var _ logappend.Appender = (*Writer)(nil)
var _ logappend.Closer = (*Writer)(nil)

// New opens (or resumes) a rolling file writer per spec.md §4.5's
// open-on-construct algorithm.
func New(cfg Config) (*Writer, error) {
	if cfg.Filename == "" {
		return nil, logerr.Configuration("rolling file appender requires a non-empty filename")
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Trap == nil {
		cfg.Trap = trap.Stderr()
	}
	if cfg.Layout == nil {
		cfg.Layout = layout.New()
	}

	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, logerr.IO("failed to create log directory: " + cfg.BaseDir).WithCause(err)
	}

	w := &Writer{
		baseDir:      cfg.BaseDir,
		filename:     cfg.Filename,
		suffix:       cfg.Suffix,
		rotation:     cfg.Rotation,
		maxSize:      cfg.MaxSize,
		maxFiles:     cfg.MaxFiles,
		clock:        cfg.Clock,
		trap:         cfg.Trap,
		layout:       cfg.Layout,
		compress:     cfg.Compress,
		thisSlotTime: cfg.Clock.Now(),
	}
	w.nextSlotMillis, w.hasNextSlot = w.rotation.nextSlotMillis(w.thisSlotTime)

	files, err := listLogFiles(w.baseDir, w.filename, w.suffix, w.rotation)
	if err != nil {
		return nil, logerr.IO("failed to scan log directory: " + w.baseDir).WithCause(err)
	}
	sortOldestFirst(files)

	currentPath := filepath.Join(w.baseDir, currentFilename(w.filename, w.suffix))

	if len(files) == 0 {
		f, err := w.createExclusive(currentPath)
		if err != nil {
			return nil, err
		}
		w.file = f
		return w.finishOpen(cfg)
	}

	newest := files[len(files)-1]
	if !newest.isCurrent || newest.path != currentPath {
		f, err := w.createExclusive(currentPath)
		if err != nil {
			return nil, err
		}
		w.file = f
		return w.finishOpen(cfg)
	}

	f, err := os.OpenFile(currentPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, logerr.IO("failed to open current log: " + currentPath).WithCause(err)
	}
	w.file = f
	w.currentFileSize = newest.size
	w.thisSlotTime = newest.modTime
	w.nextSlotMillis, w.hasNextSlot = w.rotation.nextSlotMillis(newest.modTime)
	return w.finishOpen(cfg)
}

// finishOpen starts the optional external-change watch once the current
// file is open, rolling back the just-opened file on a watch-setup
// failure so New returns cleanly rather than leaking an fd.
func (w *Writer) finishOpen(cfg Config) (*Writer, error) {
	if !cfg.WatchExternalChanges {
		return w, nil
	}
	if err := w.watchExternalChanges(); err != nil {
		_ = w.file.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) createExclusive(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, logerr.IO("failed to create log file: " + path).WithCause(err)
	}
	return f, nil
}

// Append formats rec with the configured layout and writes it (newline
// terminated) through the write path below.
func (w *Writer) Append(rec logcore.Record, diags []diagnostic.Diagnostic) error {
	buf, err := w.layout.Format(rec, diags)
	if err != nil {
		return logerr.Layout("failed to format record").WithCause(err)
	}
	buf = append(buf, '\n')
	_, err = w.Write(buf)
	return err
}

// Write implements spec.md §4.5's write path: a single mutex, one call
// per append, evaluating time rotation before size rotation.
func (w *Writer) Write(buf []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock.Now()
	nowMillis := now.UnixMilli()

	if w.hasNextSlot && nowMillis >= w.nextSlotMillis {
		if err := w.rotate(now); err != nil {
			return 0, err
		}
		w.currentFileSize = 0
		w.nextSlotMillis, w.hasNextSlot = w.rotation.nextSlotMillis(now)
	} else if w.maxSize > 0 && w.currentFileSize >= w.maxSize {
		if err := w.rotate(now); err != nil {
			return 0, err
		}
		w.currentFileSize = 0
	}

	n, err := w.file.Write(buf)
	w.currentFileSize += int64(n)
	w.thisSlotTime = now

	if err != nil {
		return n, logerr.IO("failed to write to log file").WithCause(err)
	}
	return n, nil
}

// rotate implements spec.md §4.5's rotation algorithm. A rename failure
// (renumbering an archived file, or archiving the current file) aborts
// the rotation and returns the error to the caller of Write, which must
// not then write to the stale handle. A delete-oldest or
// new-writer-creation failure, in contrast, is routed to the trap and
// writing continues on the old (renumbering case) or pre-rotation
// (archiving case) handle, since neither leaves the writer in a state it
// can't keep operating from.
func (w *Writer) rotate(now time.Time) error {
	n := w.maxFiles
	if n <= 0 {
		n = int(^uint(0) >> 1) // effectively unbounded
	}

	type renamePair struct{ oldPath, newPath string }
	var renames []renamePair
	for i := 1; i < n; i++ {
		path := filepath.Join(w.baseDir, archivedFilename(w.rotation, w.filename, w.suffix, now, i))
		if _, err := os.Stat(path); err != nil {
			break
		}
		next := filepath.Join(w.baseDir, archivedFilename(w.rotation, w.filename, w.suffix, now, i+1))
		renames = append(renames, renamePair{path, next})
	}

	for i := len(renames) - 1; i >= 0; i-- {
		if err := os.Rename(renames[i].oldPath, renames[i].newPath); err != nil {
			return logerr.IO("failed to rotate log: " + renames[i].oldPath).WithCause(err)
		}
	}

	archivePath := filepath.Join(w.baseDir, archivedFilename(w.rotation, w.filename, w.suffix, now, 1))
	currentPath := filepath.Join(w.baseDir, currentFilename(w.filename, w.suffix))
	if err := os.Rename(currentPath, archivePath); err != nil {
		return logerr.IO("failed to archive log: " + currentPath).WithCause(err)
	}

	if w.compress != CodecNone {
		codec := w.compress
		go func() {
			if err := compressArchive(archivePath, codec); err != nil {
				w.trap(logerr.IO("failed to compress rotated log: " + archivePath).WithCause(err))
			}
		}()
	}

	if w.maxFiles > 0 {
		if err := w.deleteOldest(w.maxFiles); err != nil {
			w.trap(logerr.IO("failed to delete oldest logs").WithCause(err))
		}
	}

	newFile, err := w.createExclusive(currentPath)
	if err != nil {
		w.trap(logerr.IO("failed to create new log writer after rotation").WithCause(err))
		return nil
	}

	if err := w.file.Sync(); err != nil {
		w.trap(logerr.IO("failed to flush previous writer").WithCause(err))
	}
	_ = w.file.Close()
	w.file = newFile
	return nil
}

// deleteOldest removes files so that at most maxFiles-1 archived files
// remain after this rotation (the new current file becomes the n-th),
// per spec.md §4.5 step 5.
func (w *Writer) deleteOldest(maxFiles int) error {
	files, err := listLogFiles(w.baseDir, w.filename, w.suffix, w.rotation)
	if err != nil {
		return err
	}
	if len(files) < maxFiles {
		return nil
	}
	sortOldestFirst(files)

	toRemove := len(files) - (maxFiles - 1)
	for i := 0; i < toRemove && i < len(files); i++ {
		if files[i].isCurrent {
			continue
		}
		if err := os.Remove(files[i].path); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the active file to the OS.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.Sync(); err != nil {
		return logerr.IO("failed to flush log file").WithCause(err)
	}
	return nil
}

// Close performs a best-effort final flush, routing any error to the
// trap, matching spec.md §4.5's Drop semantics. It also stops the
// external-change watcher, if one was started, so its goroutine exits.
func (w *Writer) Close() error {
	w.mu.Lock()
	watcher := w.watcher
	w.mu.Unlock()

	if watcher != nil {
		_ = watcher.Close()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if syncErr := w.file.Sync(); syncErr != nil {
		w.trap(logerr.IO("failed to flush log file on shutdown").WithCause(syncErr))
	}
	err := w.file.Close()
	if err != nil {
		w.trap(logerr.IO("failed to close log file on shutdown").WithCause(err))
	}
	return err
}
