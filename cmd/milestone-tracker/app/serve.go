package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/milestone-tracker/internal/api"
	v1 "github.com/stacklok/milestone-tracker/internal/api/v1"
	"github.com/stacklok/milestone-tracker/internal/lifecycle"
	"github.com/stacklok/milestone-tracker/internal/telemetry"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	serverRequestTimeout   = 15 * time.Second // a manual check may wait on one backend round trip
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 20 * time.Second // must exceed serverRequestTimeout
	serverIdleTimeout      = 60 * time.Second
	lifecycleBufferSize    = 16
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tracker with its control API",
		Long: `Run the milestone tracker as a long-lived process.

The control API starts and stops monitoring sessions, runs manual checks, accepts
lifecycle transitions and acknowledgements, and exposes /metrics when enabled.
Unfinished recordings from a previous run are retried at startup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, v)
		},
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	cmd.Flags().String("identity", "", "Start monitoring this identity immediately")

	return cmd
}

func runServe(ctx context.Context, v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	comps, err := buildComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
		defer cancel()
		comps.close(shutdownCtx)
	}()

	if n := comps.tracker.ReconcilePending(ctx); n > 0 {
		slog.Info("Recorded celebrations left pending by a previous run", "count", n)
	}

	bridge := lifecycle.New(comps.tracker, lifecycle.WithResumeDelay(cfg.GetResumeDelay()))
	feed := lifecycle.NewFeed(lifecycleBufferSize)
	go func() {
		if err := bridge.Run(ctx, feed); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Lifecycle bridge stopped", "error", err)
		}
	}()

	if identity := v.GetString("identity"); identity != "" {
		comps.tracker.StartMonitoring(ctx, identity)
	}

	httpMetrics, err := telemetry.NewHTTPMetrics(comps.telemetry.MeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	router := api.NewServer(comps.tracker,
		api.WithMiddlewares(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(serverRequestTimeout),
			telemetry.TracingMiddleware(comps.telemetry.TracerProvider()),
			httpMetrics.Middleware,
			api.LoggingMiddleware,
		),
		api.WithMetricsHandler(comps.telemetry.Handler()),
		api.WithReadinessCheck(func(context.Context) error {
			if state := comps.backend.BreakerState(); state == "open" {
				return fmt.Errorf("%w: backend circuit breaker is %s", v1.ErrNotReady, state)
			}
			return nil
		}),
		api.WithRouteOptions(
			v1.WithLifecycle(feed),
			v1.WithManualCheckLimit(cfg.GetManualCheckRate(), cfg.GetManualCheckBurst()),
		),
	)

	address := v.GetString("address")
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	comps.tracker.StopMonitoring()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}
