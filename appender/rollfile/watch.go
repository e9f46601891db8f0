package rollfile

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ssw-logs/logbroker/logcore/logerr"
)

// watchExternalChanges launches a goroutine that reconciles the active
// file against external removal or truncation-by-replacement (an
// operator running `rm app.log`, or a log-shipping tool that moves the
// file aside and expects the writer to start a fresh one) — the same
// watch-and-reconcile shape as
// pkg/hotreload/config_reloader.go's ConfigReloader, which watches
// config files for external edits and reloads instead of reopening.
// Exits when the watcher is closed by Writer.Close.
func (w *Writer) watchExternalChanges() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return logerr.IO("failed to start log directory watcher").WithCause(err)
	}
	if err := watcher.Add(w.baseDir); err != nil {
		watcher.Close()
		return logerr.IO("failed to watch log directory: " + w.baseDir).WithCause(err)
	}

	w.watcher = watcher
	go w.watchLoop(watcher)
	return nil
}

func (w *Writer) watchLoop(watcher *fsnotify.Watcher) {
	currentPath := filepath.Join(w.baseDir, currentFilename(w.filename, w.suffix))
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != currentPath {
				continue
			}
			if !event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			w.reopenAfterExternalChange(currentPath)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.trap(logerr.IO("log directory watch error").WithCause(err))
		}
	}
}

// reopenAfterExternalChange recreates the current file handle after
// noticing it was removed or renamed out from under the writer. It
// takes the same lock Write holds, so a concurrent rotation and an
// external-removal reconciliation can never race each other.
func (w *Writer) reopenAfterExternalChange(currentPath string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// rotate renames the current file away and creates a fresh one under
	// the same lock; if a current file exists again, there is nothing to
	// reopen.
	if _, err := os.Stat(currentPath); err == nil {
		return
	}

	newFile, err := w.createExclusive(currentPath)
	if err != nil {
		w.trap(logerr.IO("failed to reopen log after external change: " + currentPath).WithCause(err))
		return
	}
	_ = w.file.Close()
	w.file = newFile
	w.currentFileSize = 0
}
