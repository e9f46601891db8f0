// Package kafka is a narrow Appender collaborator that ships formatted
// records to a Kafka topic via github.com/IBM/sarama. Grounded on
// internal/sinks/kafka_sink.go's producer configuration and async-send
// shape, narrowed to the Appender contract (no batching/backpressure/DLQ
// machinery — that belongs to the async appender one layer up, per
// spec.md's layering where concrete sinks are plain Appenders).
package kafka

import (
	"strings"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/ssw-logs/logbroker/logcore"
	logappend "github.com/ssw-logs/logbroker/logcore/append"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
	"github.com/ssw-logs/logbroker/logcore/layout"
	"github.com/ssw-logs/logbroker/logcore/logerr"
)

// Compression selects the Sarama producer compression codec.
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionGZIP   Compression = "gzip"
	CompressionSnappy Compression = "snappy"
	CompressionLZ4    Compression = "lz4"
	CompressionZSTD   Compression = "zstd"
)

// Config configures the Kafka sink's connection and producer behavior.
type Config struct {
	Brokers      []string
	Topic        string
	Compression  Compression
	RequiredAcks sarama.RequiredAcks
	Timeout      time.Duration

	// Auth, if non-nil, configures SASL authentication (see sasl.go).
	Auth *SASLConfig
}

// Sink is an Appender that formats each record with a Layout and produces
// it as a Kafka message keyed by the record's target.
type Sink struct {
	config   Config
	layout   layout.Layout
	producer sarama.AsyncProducer

	mu       sync.Mutex
	lastErr  error
	closeErr chan error
}

var _ logappend.Appender = (*Sink)(nil)
var _ logappend.Closer = (*Sink)(nil)

// New dials the configured brokers and returns a ready-to-use sink. The
// caller owns the returned Sink's lifecycle and must Close it.
func New(cfg Config, l layout.Layout) (*Sink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, logerr.Configuration("kafka sink: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, logerr.Configuration("kafka sink: no topic configured")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = false
	saramaConfig.Producer.Return.Errors = true
	if cfg.RequiredAcks != 0 {
		saramaConfig.Producer.RequiredAcks = cfg.RequiredAcks
	}
	if cfg.Timeout > 0 {
		saramaConfig.Net.DialTimeout = cfg.Timeout
		saramaConfig.Net.ReadTimeout = cfg.Timeout
		saramaConfig.Net.WriteTimeout = cfg.Timeout
	}

	switch strings.ToLower(string(cfg.Compression)) {
	case string(CompressionGZIP):
		saramaConfig.Producer.Compression = sarama.CompressionGZIP
	case string(CompressionSnappy):
		saramaConfig.Producer.Compression = sarama.CompressionSnappy
	case string(CompressionLZ4):
		saramaConfig.Producer.Compression = sarama.CompressionLZ4
	case string(CompressionZSTD):
		saramaConfig.Producer.Compression = sarama.CompressionZSTD
	default:
		saramaConfig.Producer.Compression = sarama.CompressionNone
	}

	if cfg.Auth != nil {
		if err := cfg.Auth.apply(saramaConfig); err != nil {
			return nil, logerr.Configuration("kafka sink: invalid SASL config").WithCause(err)
		}
	}

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, logerr.IO("kafka sink: failed to create producer").WithCause(err)
	}

	s := &Sink{
		config:   cfg,
		layout:   l,
		producer: producer,
		closeErr: make(chan error, 1),
	}
	go s.drainErrors()
	return s, nil
}

// drainErrors records the most recent async producer error so the next
// Append/Flush call can surface it, mirroring the teacher's
// handleProducerResponses loop without its batching state.
func (s *Sink) drainErrors() {
	for perr := range s.producer.Errors() {
		s.mu.Lock()
		s.lastErr = perr.Err
		s.mu.Unlock()
	}
}

func (s *Sink) Append(rec logcore.Record, diags []diagnostic.Diagnostic) error {
	buf, err := s.layout.Format(rec, diags)
	if err != nil {
		return logerr.Layout("kafka sink: failed to format record").WithCause(err)
	}

	msg := &sarama.ProducerMessage{
		Topic: s.config.Topic,
		Key:   sarama.StringEncoder(rec.Target()),
		Value: sarama.ByteEncoder(buf),
	}

	select {
	case s.producer.Input() <- msg:
	default:
		return logerr.Channel("kafka sink: producer input queue full")
	}

	s.mu.Lock()
	pending := s.lastErr
	s.lastErr = nil
	s.mu.Unlock()
	if pending != nil {
		return logerr.IO("kafka sink: async produce failed").WithCause(pending)
	}
	return nil
}

// Flush reports the most recently observed async producer error, if any.
// Sarama's AsyncProducer has no true flush primitive; this surfaces
// backpressure the same way Append does rather than blocking.
func (s *Sink) Flush() error {
	s.mu.Lock()
	pending := s.lastErr
	s.lastErr = nil
	s.mu.Unlock()
	if pending != nil {
		return logerr.IO("kafka sink: async produce failed").WithCause(pending)
	}
	return nil
}

// Close shuts down the producer, waiting for in-flight messages to drain.
func (s *Sink) Close() error {
	if err := s.producer.Close(); err != nil {
		return logerr.IO("kafka sink: failed to close producer").WithCause(err)
	}
	return nil
}
