// Command ephemerisd serves the built-in analytic ephemeris over gRPC so that
// several resonance processes can share one position source.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/config"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/ephemeris"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/logging"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/metrics"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	listen := flag.String("listen", "", "override ephemeris.listen")
	flag.Parse()

	if err := run(*configPath, *listen); err != nil {
		fmt.Fprintf(os.Stderr, "ephemerisd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, listenOverride string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenOverride != "" {
		cfg.Ephemeris.Listen = listenOverride
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	lis, err := net.Listen("tcp", cfg.Ephemeris.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Ephemeris.Listen, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, lis, cfg, logger)
}

// #endregion main

// #region serve

// serve runs the gRPC server on lis until ctx is done, then drains in-flight
// calls.
func serve(ctx context.Context, lis net.Listener, cfg config.Config, logger *zap.Logger) error {
	src := ephemeris.NewAnalytic()
	defer src.Close()

	srv := grpc.NewServer()
	ephemeris.Register(srv, ephemeris.NewServer(src, logger))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		ms := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := ms.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer ms.Close()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(lis) }()
	logger.Info("ephemerisd listening", zap.String("addr", lis.Addr().String()))

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	hs.Shutdown()
	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		srv.Stop()
	}
	return nil
}

// #endregion serve
