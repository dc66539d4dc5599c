// Command resonance computes profiles, coherence states and readings and
// prints them as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/config"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/engine"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/ephemeris"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/errs"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/logging"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/metrics"
)

// Exit codes.
const (
	exitFailure = 1
	exitUsage   = 2
	exitDrift   = 3
)

// #region main

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cli := &CLI{out: os.Stdout}
	err := newRootCommand(cli).ExecuteContext(ctx)
	cli.close()
	stop()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps caller mistakes to exitUsage, replay drift to exitDrift and
// everything else to exitFailure.
func exitCode(err error) int {
	var fail *replayFailure
	switch {
	case errors.As(err, &fail):
		return exitDrift
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrMissingInput):
		return exitUsage
	default:
		return exitFailure
	}
}

// #endregion main

// #region cli

// CLI holds what every subcommand shares. initialize fills it from the
// configuration once the flags are parsed.
type CLI struct {
	configPath string
	debug      bool

	out      io.Writer
	cfg      config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	src      ephemeris.Source
	svc      *engine.Service
	server   *http.Server
}

func newRootCommand(cli *CLI) *cobra.Command {
	root := &cobra.Command{
		Use:   "resonance",
		Short: "Compute resonance profiles, coherence states and readings",
		Long: `resonance derives a nine-slot profile from an event moment and place,
scores a subjective-state snapshot against it and prints the assembled
reading as JSON.

Settings come from --config (YAML) and RESONANCE_* environment variables.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cli.configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().BoolVar(&cli.debug, "debug", false, "log at debug level")

	root.AddCommand(
		newProfileCommand(cli),
		newStateCommand(cli),
		newReadingCommand(cli),
		newHistoryCommand(cli),
		newReplayCommand(cli),
	)
	return root
}

// initialize loads the configuration and builds the logger, metrics, position
// source and service.
func (c *CLI) initialize() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.debug {
		cfg.Log.Level = "debug"
	}
	c.cfg = cfg

	c.logger, err = logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(collectors.NewGoCollector())
	c.metrics = metrics.New(c.registry)
	if cfg.Metrics.Addr != "" {
		c.serveMetrics(cfg.Metrics.Addr)
	}

	c.src, err = openSource(cfg.Ephemeris)
	if err != nil {
		return err
	}

	sc := engine.DefaultServiceConfig()
	sc.DesignOffsetDeg = cfg.Ephemeris.DesignOffsetDeg
	sc.SourceTimeout = cfg.Ephemeris.Timeout
	c.svc, err = engine.NewService(sc, c.src, c.logger, c.metrics)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}
	c.logger.Debug("initialized",
		zap.String("ephemeris_mode", cfg.Ephemeris.Mode),
		zap.String("archive", cfg.Archive.Path))
	return nil
}

// openSource returns the position source selected by cfg.Mode.
func openSource(cfg config.EphemerisConfig) (ephemeris.Source, error) {
	switch cfg.Mode {
	case config.ModeGRPC:
		client, err := ephemeris.Dial(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("connect ephemeris: %w", err)
		}
		return client, nil
	default:
		return ephemeris.NewAnalytic(), nil
	}
}

// serveMetrics exposes the registry for the lifetime of the command.
func (c *CLI) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(c.registry))
	c.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	c.logger.Info("metrics listening", zap.String("addr", addr))
}

func (c *CLI) close() {
	if c.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = c.server.Shutdown(ctx)
		cancel()
	}
	if c.src != nil {
		if err := c.src.Close(); err != nil {
			c.logger.Warn("close source", zap.Error(err))
		}
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

// emit writes v to stdout as indented JSON.
func (c *CLI) emit(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// #endregion cli
