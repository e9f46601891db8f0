package admin

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssw-logs/logbroker"
	logappend "github.com/ssw-logs/logbroker/logcore/append"
	"github.com/ssw-logs/logbroker/logcore"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
)

type countingAppender struct{ flushes int }

func (a *countingAppender) Append(logcore.Record, []diagnostic.Diagnostic) error { return nil }
func (a *countingAppender) Flush() error                                        { a.flushes++; return nil }

func TestServer_HealthzReturnsOK(t *testing.T) {
	addr := freeAddr(t)
	log := logrus.New()
	log.SetOutput(discardWriter{})
	logger := logbroker.New()

	s := New(addr, logger, log)
	require.NoError(t, s.Start())
	defer s.Stop()
	waitForServer(t, addr)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", addr))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_FlushTriggersLoggerFlush(t *testing.T) {
	addr := freeAddr(t)
	log := logrus.New()
	log.SetOutput(discardWriter{})

	cap := &countingAppender{}
	logger := logbroker.New(logbroker.NewDispatch([]logappend.Appender{cap}))

	s := New(addr, logger, log)
	require.NoError(t, s.Start())
	defer s.Stop()
	waitForServer(t, addr)

	resp, err := http.Post(fmt.Sprintf("http://%s/flush", addr), "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, cap.flushes)
}

func TestServer_FlushRejectsNonPost(t *testing.T) {
	addr := freeAddr(t)
	log := logrus.New()
	log.SetOutput(discardWriter{})
	logger := logbroker.New()

	s := New(addr, logger, log)
	require.NoError(t, s.Start())
	defer s.Stop()
	waitForServer(t, addr)

	resp, err := http.Get(fmt.Sprintf("http://%s/flush", addr))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func waitForServer(t *testing.T, addr string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			t.Fatalf("server at %s never became reachable", addr)
		default:
		}
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
