package rollfile

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// logFile describes one file discovered in the base directory that
// matches this writer's naming pattern: either the current (unarchived)
// file or an archived file at a given rotation slot and count.
type logFile struct {
	path      string
	modTime   time.Time
	size      int64
	slotTime  time.Time
	count     int
	isCurrent bool
}

// currentFilename returns the active (unarchived) filename per spec.md
// §6.2: F, or F.S when a suffix is configured.
func currentFilename(filename, suffix string) string {
	if suffix == "" {
		return filename
	}
	return filename + "." + suffix
}

// archivedFilename returns the archived filename at count i for the given
// rotation slot, per spec.md §6.2's four-way grammar.
func archivedFilename(rotation Rotation, filename, suffix string, slot time.Time, count int) string {
	switch {
	case rotation == Never && suffix == "":
		return filename + "." + strconv.Itoa(count)
	case rotation == Never && suffix != "":
		return filename + "." + strconv.Itoa(count) + "." + suffix
	case rotation != Never && suffix == "":
		return filename + "." + slot.Format(rotation.dateFormat()) + "." + strconv.Itoa(count)
	default:
		return filename + "." + slot.Format(rotation.dateFormat()) + "." + strconv.Itoa(count) + "." + suffix
	}
}

// listLogFiles scans dir for files matching this writer's naming
// pattern, ignoring anything else. Scan parsing is the inverse of
// archivedFilename/currentFilename (spec.md §6.2).
func listLogFiles(dir, filename, suffix string, rotation Rotation) ([]logFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []logFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, filename) {
			continue
		}
		rest := name[len(filename):]

		if suffix != "" {
			if !strings.HasSuffix(rest, "."+suffix) {
				continue
			}
			rest = rest[:len(rest)-len(suffix)-1]
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if rest == "" {
			// the current, unarchived file
			out = append(out, logFile{
				path:      filepath.Join(dir, name),
				modTime:   info.ModTime(),
				size:      info.Size(),
				isCurrent: true,
			})
			continue
		}

		if !strings.HasPrefix(rest, ".") {
			continue
		}
		rest = rest[1:]

		var slot time.Time
		if rotation != Never {
			pos := strings.Index(rest, ".")
			if pos < 0 {
				continue
			}
			datePart := rest[:pos]
			parsed, err := time.ParseInLocation(rotation.dateFormat(), datePart, time.Local)
			if err != nil {
				continue
			}
			slot = parsed
			rest = rest[pos+1:]
		}

		count, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}

		out = append(out, logFile{
			path:     filepath.Join(dir, name),
			modTime:  info.ModTime(),
			size:     info.Size(),
			slotTime: slot,
			count:    count,
		})
	}

	return out, nil
}

// sortOldestFirst orders files oldest-first: by (slot-time asc, count
// desc within the same slot — rotate renumbers .i to .i+1 and archives
// the current file as .1, so a higher count is an older file within a
// slot, matching the original's "usize::MAX - count" reversal), with the
// current (unarchived) file always sorting as the newest entry.
func sortOldestFirst(files []logFile) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.isCurrent != b.isCurrent {
			return b.isCurrent // current sorts last (newest)
		}
		if a.isCurrent && b.isCurrent {
			return false
		}
		if !a.slotTime.Equal(b.slotTime) {
			return a.slotTime.Before(b.slotTime)
		}
		return a.count > b.count
	})
}
