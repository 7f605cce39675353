package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/milestone-tracker/internal/backend"
	"github.com/stacklok/milestone-tracker/internal/config"
	"github.com/stacklok/milestone-tracker/internal/httpclient"
	"github.com/stacklok/milestone-tracker/internal/presentation"
	"github.com/stacklok/milestone-tracker/internal/status"
	"github.com/stacklok/milestone-tracker/internal/telemetry"
	"github.com/stacklok/milestone-tracker/internal/tracker"
	"github.com/stacklok/milestone-tracker/internal/versions"
)

// components is everything a command needs to run the tracker
type components struct {
	cfg       *config.Config
	telemetry *telemetry.Telemetry
	backend   *backend.Client
	tracker   *tracker.Tracker
}

// newViper binds cmd's flags and MILESTONE_* environment variables
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

func loadConfig(v *viper.Viper) (*config.Config, error) {
	configPath := v.GetString("config")
	if configPath == "" {
		return nil, fmt.Errorf("a configuration file is required (--config or %s_CONFIG)", config.EnvPrefix)
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Loaded configuration",
		"path", configPath,
		"endpoint", cfg.Backend.Endpoint,
		"interval", cfg.GetPollingInterval(),
		"max_attempts", cfg.GetMaxAttempts())
	return cfg, nil
}

// buildComponents wires the tracker and its collaborators from cfg. The caller must call close.
func buildComponents(ctx context.Context, cfg *config.Config) (*components, error) {
	tel, err := telemetry.New(ctx,
		telemetry.WithMetricsEnabled(cfg.MetricsEnabled()),
		telemetry.WithServiceVersion(versions.GetVersionInfo().Version),
		telemetry.WithTracing(
			telemetry.WithTracingEnabled(cfg.TracingEnabled()),
			telemetry.WithTracerEndpoint(cfg.GetTracingEndpoint()),
			telemetry.WithTracerInsecure(cfg.GetTracingInsecure()),
			telemetry.WithTracerSampling(cfg.GetTracingSampling())))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	trackerMetrics, err := telemetry.NewTrackerMetrics(tel.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create tracker metrics: %w", err)
	}
	backendMetrics, err := telemetry.NewBackendMetrics(tel.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create backend metrics: %w", err)
	}

	httpClient := httpclient.NewDefaultClient(cfg.GetRequestTimeout())

	client := backend.NewClient(httpClient, cfg.Backend.Endpoint,
		backend.WithCircuitBreaker(cfg.GetBreakerFailures(), cfg.GetBreakerOpenTimeout()),
		backend.WithRecordRetry(cfg.GetRecordMaxTries(), cfg.GetRecordInitialInterval()),
		backend.WithMetrics(backendMetrics),
		backend.WithTracer(tel.Tracer("github.com/stacklok/milestone-tracker/internal/backend")))

	t := tracker.New(client, client, presentation.NewPresenter(cfg, httpClient),
		tracker.WithInterval(cfg.GetPollingInterval()),
		tracker.WithMaxAttempts(cfg.GetMaxAttempts()),
		tracker.WithLedger(status.NewFileLedger(cfg.GetLedgerPath())),
		tracker.WithMetrics(trackerMetrics),
		tracker.WithTracer(tel.Tracer("github.com/stacklok/milestone-tracker/internal/tracker")))

	return &components{
		cfg:       cfg,
		telemetry: tel,
		backend:   client,
		tracker:   t,
	}, nil
}

func (c *components) close(ctx context.Context) {
	c.tracker.Close()
	if err := c.telemetry.Shutdown(ctx); err != nil {
		slog.Error("Failed to shutdown telemetry", "error", err)
	}
}
