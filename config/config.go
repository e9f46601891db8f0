// Package config loads and validates the YAML configuration for a
// logbroker-based daemon: rolling-file destination, async appender
// policy, env-style filter directive, and admin/metrics listen addresses.
// Grounded on internal/config/config.go's defaults-then-validate shape
// (LoadConfig -> applyDefaults -> env overrides -> ValidateConfig,
// gopkg.in/yaml.v2 for the file, getEnv* helpers for overrides) narrowed
// to this module's own settings.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/ssw-logs/logbroker/appender/async"
	"github.com/ssw-logs/logbroker/appender/rollfile"
	"github.com/ssw-logs/logbroker/logcore/logerr"
)

// RollfileConfig mirrors rollfile.Config in a YAML-friendly shape.
type RollfileConfig struct {
	BaseDir  string `yaml:"base_dir"`
	Filename string `yaml:"filename"`
	Suffix   string `yaml:"suffix"`
	Rotation string `yaml:"rotation"` // never|minutely|hourly|daily
	MaxSize  int64  `yaml:"max_size_bytes"`
	MaxFiles int    `yaml:"max_files"`
	// Compress selects an archive codec applied to rotated-away files:
	// "", "gzip", "snappy", or "lz4". Empty leaves archives uncompressed.
	Compress string `yaml:"compress"`
	// WatchExternalChanges enables reopening the current file if
	// something outside this process removes or renames it.
	WatchExternalChanges bool `yaml:"watch_external_changes"`
}

// AsyncConfig mirrors async.Builder's options in a YAML-friendly shape.
type AsyncConfig struct {
	Enabled            bool `yaml:"enabled"`
	BufferedLinesLimit int  `yaml:"buffered_lines_limit"` // 0 = unbounded
	OverflowDrop       bool `yaml:"overflow_drop_incoming"`
}

// Config is the top-level configuration this module's daemon loads.
type Config struct {
	Rollfile    RollfileConfig `yaml:"rollfile"`
	Async       AsyncConfig    `yaml:"async"`
	FilterSpec  string         `yaml:"filter"`
	AdminAddr   string         `yaml:"admin_addr"`
	MetricsAddr string         `yaml:"metrics_addr"`
}

// Load reads path (if non-empty), applies defaults, then applies
// LOGBROKER_*-prefixed environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, logerr.Configuration("failed to read config file").WithCause(err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, logerr.Configuration("failed to parse config file").WithCause(err)
		}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Rollfile.Filename == "" {
		cfg.Rollfile.Filename = "app.log"
	}
	if cfg.Rollfile.Rotation == "" {
		cfg.Rollfile.Rotation = "daily"
	}
	if cfg.FilterSpec == "" {
		cfg.FilterSpec = "info"
	}
	if cfg.AdminAddr == "" {
		cfg.AdminAddr = ":9090"
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = cfg.AdminAddr
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOGBROKER_BASE_DIR"); v != "" {
		cfg.Rollfile.BaseDir = v
	}
	if v := os.Getenv("LOGBROKER_FILENAME"); v != "" {
		cfg.Rollfile.Filename = v
	}
	if v := os.Getenv("LOGBROKER_ROTATION"); v != "" {
		cfg.Rollfile.Rotation = v
	}
	if v := os.Getenv("LOGBROKER_MAX_SIZE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Rollfile.MaxSize = n
		}
	}
	if v := os.Getenv("LOGBROKER_MAX_FILES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Rollfile.MaxFiles = n
		}
	}
	if v := os.Getenv("LOGBROKER_ASYNC_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Async.Enabled = b
		}
	}
	if v := os.Getenv("LOGBROKER_ASYNC_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Async.BufferedLinesLimit = n
		}
	}
	if v := os.Getenv("LOGBROKER_FILTER"); v != "" {
		cfg.FilterSpec = v
	}
	if v := os.Getenv("LOGBROKER_ADMIN_ADDR"); v != "" {
		cfg.AdminAddr = v
	}
}

// Validate checks cfg for configuration mistakes that would otherwise
// surface later as a confusing runtime panic (an empty rolling-file
// filename, an unrecognized rotation policy, a negative buffer limit).
// Errors accumulate into a single *logerr.Error's ordered Causes, the
// same "report everything wrong at once" shape as the teacher's
// ConfigValidator.
func Validate(cfg *Config) error {
	err := logerr.Configuration("invalid configuration")
	var causes []error

	if cfg.Rollfile.BaseDir == "" {
		causes = append(causes, logerr.Configuration("rollfile.base_dir must not be empty"))
	}
	if cfg.Rollfile.Filename == "" {
		causes = append(causes, logerr.Configuration("rollfile.filename must not be empty"))
	}
	switch cfg.Rollfile.Rotation {
	case "never", "minutely", "hourly", "daily":
	default:
		causes = append(causes, logerr.Configuration("rollfile.rotation must be one of never|minutely|hourly|daily"))
	}
	if cfg.Rollfile.MaxSize < 0 {
		causes = append(causes, logerr.Configuration("rollfile.max_size_bytes must not be negative"))
	}
	if cfg.Rollfile.MaxFiles < 0 {
		causes = append(causes, logerr.Configuration("rollfile.max_files must not be negative"))
	}
	switch cfg.Rollfile.Compress {
	case "", "gzip", "snappy", "lz4":
	default:
		causes = append(causes, logerr.Configuration("rollfile.compress must be one of \"\"|gzip|snappy|lz4"))
	}
	if cfg.Async.BufferedLinesLimit < 0 {
		causes = append(causes, logerr.Configuration("async.buffered_lines_limit must not be negative"))
	}

	if len(causes) == 0 {
		return nil
	}
	return err.WithCauses(causes...)
}

// rotationPolicy converts the config's string rotation policy to a
// rollfile.Rotation. Validate must have already rejected unknown values.
func (c *RollfileConfig) rotationPolicy() rollfile.Rotation {
	switch c.Rotation {
	case "minutely":
		return rollfile.Minutely
	case "hourly":
		return rollfile.Hourly
	case "daily":
		return rollfile.Daily
	default:
		return rollfile.Never
	}
}

// compressCodec converts the config's string codec name to a
// rollfile.Codec. Validate must have already rejected unknown values.
func (c *RollfileConfig) compressCodec() rollfile.Codec {
	switch c.Compress {
	case "gzip":
		return rollfile.CodecGzip
	case "snappy":
		return rollfile.CodecSnappy
	case "lz4":
		return rollfile.CodecLZ4
	default:
		return rollfile.CodecNone
	}
}

// RollfileWriterConfig builds the appender/rollfile.Config this configuration
// describes.
func (c *Config) RollfileWriterConfig() rollfile.Config {
	return rollfile.Config{
		BaseDir:              c.Rollfile.BaseDir,
		Filename:             c.Rollfile.Filename,
		Suffix:               c.Rollfile.Suffix,
		Rotation:             c.Rollfile.rotationPolicy(),
		MaxSize:              c.Rollfile.MaxSize,
		MaxFiles:             c.Rollfile.MaxFiles,
		Compress:             c.Rollfile.compressCodec(),
		WatchExternalChanges: c.Rollfile.WatchExternalChanges,
	}
}

// ApplyAsyncOptions configures an async.Builder per this configuration's
// Async settings.
func (c *Config) ApplyAsyncOptions(b *async.Builder) *async.Builder {
	if c.Async.BufferedLinesLimit > 0 {
		b = b.BufferedLinesLimit(c.Async.BufferedLinesLimit)
	}
	if c.Async.OverflowDrop {
		b = b.OverflowDropIncoming()
	} else {
		b = b.OverflowBlock()
	}
	return b
}

// FlushInterval is exposed for callers that want to schedule a periodic
// Logger.Flush; this module (cmd/logbroker-demo included) does not run one
// itself, since the async appender's own Flush call is synchronous and
// callers are expected to trigger it (directly or via internal/admin's
// /flush endpoint) rather than have the library run a background timer.
func (c *Config) FlushInterval() time.Duration {
	return 30 * time.Second
}
