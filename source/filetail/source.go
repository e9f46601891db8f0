// Package filetail is a Logger source collaborator: it tails a growing
// text file with github.com/nxadm/tail and emits one Record per line,
// grounded on internal/monitors/file_monitor.go's logTailer (tail.Config
// shape, ReOpen/Follow/seek-position handling) narrowed down to feeding a
// Logger instead of a dispatcher/worker-pool pipeline — batching and
// worker fan-out belong to the async appender, not the source.
package filetail

import (
	"fmt"
	"io"

	"github.com/nxadm/tail"

	"github.com/ssw-logs/logbroker"
	"github.com/ssw-logs/logbroker/logcore"
)

// SeekPosition selects where a newly opened tail starts reading from.
type SeekPosition int

const (
	// SeekEnd skips any content already in the file (the common case for
	// a log tailer attaching to a long-running process).
	SeekEnd SeekPosition = iota
	// SeekStart reads the file from byte zero.
	SeekStart
)

// Config configures a Source.
type Config struct {
	Path   string
	Target string
	Seek   SeekPosition
	// ReOpen keeps following the path across file rotation (the file is
	// recreated under the same name), matching tail.Config.ReOpen.
	ReOpen bool
}

// Source tails a file and logs each line it reads.
type Source struct {
	cfg    Config
	logger *logbroker.Logger
	tailer *tail.Tail
}

// New starts tailing cfg.Path, delivering each subsequent line to logger
// as a Record until Close is called.
func New(cfg Config, logger *logbroker.Logger) (*Source, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("filetail source: path is required")
	}
	target := cfg.Target
	if target == "" {
		target = "source.filetail"
	}

	var location *tail.SeekInfo
	if cfg.Seek == SeekEnd {
		location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(cfg.Path, tail.Config{
		Follow:   true,
		ReOpen:   cfg.ReOpen,
		Location: location,
		Poll:     false,
	})
	if err != nil {
		return nil, fmt.Errorf("filetail source: failed to tail %s: %w", cfg.Path, err)
	}

	s := &Source{cfg: Config{Path: cfg.Path, Target: target, Seek: cfg.Seek, ReOpen: cfg.ReOpen}, logger: logger, tailer: t}
	go s.run()
	return s, nil
}

func (s *Source) run() {
	for line := range s.tailer.Lines {
		if line.Err != nil {
			rec := logcore.NewBuilder(s.cfg.Target).
				Level(logcore.Error).
				Message("tail error").
				KV("error", logcore.StringValue(line.Err.Error())).
				KV("path", logcore.StringValue(s.cfg.Path)).
				Build()
			s.logger.Log(rec)
			continue
		}

		rec := logcore.NewBuilder(s.cfg.Target).
			Time(line.Time).
			Level(logcore.Info).
			Message(line.Text).
			KV("path", logcore.StringValue(s.cfg.Path)).
			Build()
		s.logger.Log(rec)
	}
}

// Close stops the tailer.
func (s *Source) Close() error {
	return s.tailer.Stop()
}
