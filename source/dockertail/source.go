// Package dockertail is a Logger source collaborator reading a single
// container's stdout/stderr via the Docker Engine API, grounded on
// internal/monitors/container_monitor.go's collector goroutine: dial the
// Engine API, open a follow-mode ContainerLogs stream, demultiplex it
// with stdcopy.StdCopy, and turn each line into a Record. Narrowed from
// the teacher's dispatcher-fan-out/metrics/circuit-breaker machinery down
// to the plain source-feeds-a-Logger shape this module needs.
package dockertail

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	dockertypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/ssw-logs/logbroker"
	"github.com/ssw-logs/logbroker/logcore"
)

// Config configures a Source.
type Config struct {
	ContainerID string
	// Target is the record target; defaults to "source.dockertail" if empty.
	Target string
}

// Source follows a single container's combined stdout/stderr stream and
// logs one Record per line, tagged with the originating stream name.
type Source struct {
	cli    *client.Client
	cfg    Config
	logger *logbroker.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// New dials the Docker Engine API (from the environment, like the Docker
// CLI) and starts following cfg.ContainerID's logs.
func New(cfg Config, logger *logbroker.Logger) (*Source, error) {
	if cfg.ContainerID == "" {
		return nil, fmt.Errorf("dockertail source: container id is required")
	}
	target := cfg.Target
	if target == "" {
		target = "source.dockertail"
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("dockertail source: failed to create docker client: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Source{
		cli:    cli,
		cfg:    Config{ContainerID: cfg.ContainerID, Target: target},
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	logStream, err := cli.ContainerLogs(ctx, cfg.ContainerID, dockertypes.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Timestamps: false,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dockertail source: failed to open log stream for %s: %w", cfg.ContainerID, err)
	}

	go s.run(logStream)
	return s, nil
}

func (s *Source) run(logStream io.ReadCloser) {
	defer close(s.done)
	defer logStream.Close()

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()

	go s.scan(stdoutR, "stdout")
	go s.scan(stderrR, "stderr")

	_, _ = stdcopy.StdCopy(stdoutW, stderrW, logStream)
	stdoutW.Close()
	stderrW.Close()
}

func (s *Source) scan(r io.Reader, stream string) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimRight(scanner.Bytes(), "\r")
		rec := logcore.NewBuilder(s.cfg.Target).
			Level(logcore.Info).
			Message(string(line)).
			KV("container_id", logcore.StringValue(s.cfg.ContainerID)).
			KV("stream", logcore.StringValue(stream)).
			Build()
		s.logger.Log(rec)
	}
}

// Close stops following the container's logs and releases the client.
func (s *Source) Close() error {
	s.cancel()
	<-s.done
	return s.cli.Close()
}
