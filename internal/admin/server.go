// Package admin exposes an HTTP surface over a running Logger: health,
// Prometheus metrics, and an on-demand flush trigger. Grounded on the
// teacher's use of github.com/gorilla/mux for its HTTP endpoints (the
// teacher registers per-concern routes on a mux.Router rather than a
// bare http.ServeMux); this module keeps that pattern for /healthz,
// /metrics, and /flush.
package admin

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ssw-logs/logbroker"
	"github.com/ssw-logs/logbroker/internal/metrics"
)

// Server is the admin HTTP surface for one Logger.
type Server struct {
	logger *logbroker.Logger
	log    *logrus.Logger
	server *http.Server
}

// New builds an admin Server bound to addr, serving routes over logger.
func New(addr string, logger *logbroker.Logger, log *logrus.Logger) *Server {
	s := &Server{logger: logger, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/flush", s.handleFlush).Methods(http.MethodPost)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleFlush triggers a synchronous flush of every dispatch registered
// with the Logger. Logger.Flush has no return value (appender flush
// errors go to each dispatch's trap, not back to the caller), so this
// always reports success once the call returns.
func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.logger.Flush()
	metrics.FlushDurationSeconds.WithLabelValues("admin").Observe(time.Since(start).Seconds())
	w.WriteHeader(http.StatusNoContent)
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	s.log.WithField("addr", s.server.Addr).Info("starting admin server")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("admin server error")
		}
	}()
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	s.log.Info("stopping admin server")
	return s.server.Close()
}
