// Command logbroker-demo wires up a rolling-file destination (behind the
// async appender when async.enabled is set), filtered by an env-style
// directive, and exposes the
// admin HTTP surface over the result — the worked end-to-end example
// spec.md's original crate ships as examples/rolling_file.rs, grounded
// here in the teacher's cmd/main.go flag-and-config shape
// (flag.StringVar for -config, SSW_CONFIG_FILE env fallback,
// app.New/application.Run()).
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ssw-logs/logbroker"
	"github.com/ssw-logs/logbroker/appender/async"
	"github.com/ssw-logs/logbroker/appender/rollfile"
	"github.com/ssw-logs/logbroker/config"
	"github.com/ssw-logs/logbroker/internal/admin"
	"github.com/ssw-logs/logbroker/logcore/append"
	"github.com/ssw-logs/logbroker/logcore/filter"
	"github.com/ssw-logs/logbroker/logcore/layout"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "", "Path to configuration file")
	flag.Parse()

	if configFile == "" {
		configFile = os.Getenv("LOGBROKER_CONFIG_FILE")
	}

	log := logrus.New()

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("logbroker-demo exited with an error")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	writer, err := rollfile.New(rollfileConfigWithLayout(cfg))
	if err != nil {
		return fmt.Errorf("failed to build rolling file writer: %w", err)
	}
	defer writer.Close()

	var dest logappend.Appender = writer
	var closer logappend.Closer = writer
	if cfg.Async.Enabled {
		asyncAppender := cfg.ApplyAsyncOptions(async.NewBuilder().Append(writer)).Build()
		dest = asyncAppender
		closer = asyncAppender
	}
	defer closer.Close()

	envFilter, err := filter.Parse(cfg.FilterSpec, log)
	if err != nil {
		return fmt.Errorf("failed to parse filter %q: %w", cfg.FilterSpec, err)
	}

	dispatch := logbroker.NewDispatch(
		[]logappend.Appender{dest},
		logbroker.WithFilters(envFilter),
	)
	logger := logbroker.New(dispatch)
	if err := logbroker.Install(logger); err != nil {
		return fmt.Errorf("failed to install global logger: %w", err)
	}
	defer logger.Flush()

	adminServer := admin.New(cfg.AdminAddr, logger, log)
	if err := adminServer.Start(); err != nil {
		return fmt.Errorf("failed to start admin server: %w", err)
	}
	defer adminServer.Stop()

	log.WithField("addr", cfg.AdminAddr).Info("logbroker-demo running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	return nil
}

func rollfileConfigWithLayout(cfg *config.Config) rollfile.Config {
	wc := cfg.RollfileWriterConfig()
	wc.Layout = layout.New()
	return wc
}
