package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeRegister_TolerantOfDuplicateRegistration(t *testing.T) {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "logbroker_test_dup_counter_total"})
	assert.NotPanics(t, func() {
		safeRegister(c)
		safeRegister(c)
	})
}

func TestRecordDispatch_IncrementsLabeledCounter(t *testing.T) {
	before := testutil.ToFloat64(RecordsDispatched.WithLabelValues("svc.test", "accept"))
	RecordDispatch("svc.test", "accept")
	after := testutil.ToFloat64(RecordsDispatched.WithLabelValues("svc.test", "accept"))
	assert.Equal(t, before+1, after)
}

func TestRecordAppenderError_IncrementsLabeledCounter(t *testing.T) {
	before := testutil.ToFloat64(AppenderErrorsTotal.WithLabelValues("rollfile", "io"))
	RecordAppenderError("rollfile", "io")
	after := testutil.ToFloat64(AppenderErrorsTotal.WithLabelValues("rollfile", "io"))
	assert.Equal(t, before+1, after)
}

func TestServer_ServesMetricsAndHealthz(t *testing.T) {
	addr := freeAddr(t)
	log := logrus.New()
	log.SetOutput(discardWriter{})

	s := NewServer(addr, log)
	require.NoError(t, s.Start())
	defer s.Stop()

	waitForServer(t, addr)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", addr))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
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
