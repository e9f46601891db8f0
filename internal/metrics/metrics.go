// Package metrics defines Prometheus instrumentation for the logging
// core: records dispatched by filter verdict, appender errors, flush
// duration, the async appender's queue depth and drops, and rolling-file
// rotations and bytes written. Grounded on the teacher's metrics.go
// (promauto-registered vars, safeRegister's duplicate-registration guard,
// the ServeMux-based metrics/health surface), narrowed from hundreds of
// dispatcher/sink-specific metrics down to a handful named after this
// module's components. The core packages (Logger, Dispatch, rollfile,
// async) do not update these metrics; RecordDispatch and
// RecordAppenderError are the exported update helpers, and
// internal/admin's /flush handler observes FlushDurationSeconds.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	// RecordsDispatched counts records evaluated by a dispatch, labeled
	// by target and filter verdict; RecordDispatch increments it.
	RecordsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logbroker_records_dispatched_total",
			Help: "Total number of records evaluated by a dispatch, by filter verdict",
		},
		[]string{"target", "verdict"},
	)

	// AppenderErrorsTotal counts errors routed to a dispatch's trap.
	AppenderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logbroker_appender_errors_total",
			Help: "Total number of appender errors routed to a trap",
		},
		[]string{"appender", "kind"},
	)

	// FlushDurationSeconds observes how long a Flush call takes to
	// return, labeled by caller; internal/admin's /flush handler records
	// Logger.Flush under "admin".
	FlushDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logbroker_flush_duration_seconds",
			Help:    "Time spent in an appender's Flush call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"appender"},
	)

	// AsyncQueueDepth is a gauge for the async appender's backlog;
	// appender/async does not set it.
	AsyncQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "logbroker_async_queue_depth",
		Help: "Current number of tasks queued in the async appender",
	})

	// AsyncDroppedTotal counts tasks dropped under the DropIncoming
	// overflow policy.
	AsyncDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logbroker_async_dropped_total",
		Help: "Total number of tasks dropped by the async appender under DropIncoming",
	})

	// RollfileRotationsTotal counts rolling-file rotations, by trigger.
	RollfileRotationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logbroker_rollfile_rotations_total",
			Help: "Total number of rolling-file rotations",
		},
		[]string{"reason"},
	)

	// RollfileBytesWritten counts bytes written to the active rolling
	// file.
	RollfileBytesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logbroker_rollfile_bytes_written_total",
		Help: "Total bytes written to the active rolling-file destination",
	})
)

var registerOnce sync.Once

// safeRegister registers collector with the default registry, tolerating
// a duplicate-registration panic (the teacher's pattern for metrics that
// may be constructed more than once in tests).
func safeRegister(collector prometheus.Collector) {
	defer func() {
		_ = recover()
	}()
	prometheus.MustRegister(collector)
}

// Server exposes /metrics and /healthz over HTTP. It is a narrower sibling
// of internal/admin.Server — kept separate so a caller who only wants
// Prometheus scraping (no flush-trigger endpoint) doesn't need to pull in
// the admin surface's Logger dependency.
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// NewServer builds a metrics server bound to addr.
func NewServer(addr string, logger *logrus.Logger) *Server {
	registerOnce.Do(func() {
		safeRegister(RecordsDispatched)
		safeRegister(AppenderErrorsTotal)
		safeRegister(FlushDurationSeconds)
		safeRegister(AsyncQueueDepth)
		safeRegister(AsyncDroppedTotal)
		safeRegister(RollfileRotationsTotal)
		safeRegister(RollfileBytesWritten)
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{Addr: addr, Handler: mux},
		logger: logger,
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("starting metrics server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("metrics server error")
		}
	}()
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	s.logger.Info("stopping metrics server")
	return s.server.Close()
}

// RecordDispatch increments RecordsDispatched for (target, verdict).
func RecordDispatch(target, verdict string) {
	RecordsDispatched.WithLabelValues(target, verdict).Inc()
}

// RecordAppenderError increments AppenderErrorsTotal for (appender, kind).
func RecordAppenderError(appender, kind string) {
	AppenderErrorsTotal.WithLabelValues(appender, kind).Inc()
}
