// Package main is a connectivity and rate limit probe for the kord REST
// client. It authenticates against the API, issues a configurable number of
// calls through the admission gate, and reports how they were paced. Useful
// for verifying credentials and observing bucket behavior under load.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warriorzz/kord/internal/config"
	"github.com/warriorzz/kord/internal/logger"
	"github.com/warriorzz/kord/internal/observability"
	"github.com/warriorzz/kord/internal/version"
	"github.com/warriorzz/kord/ratelimit"
	"github.com/warriorzz/kord/rest"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file")
	showVersion = flag.Bool("version", false, "Print version and exit")
	channelID   = flag.String("channel", "", "Channel id to post probe messages to (optional)")
	rounds      = flag.Int("rounds", 1, "Number of probe rounds to run")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetInfo())
		return
	}

	// os.Exit skips deferred functions, so all cleanup lives in run and
	// has finished (log file closed, spans flushed) by the time we exit.
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	// Initialize structured logging
	log, closer, err := logger.Setup(cfg.Logging, version.GetInfo())
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		return 1
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	// Initialize observability (OpenTelemetry)
	otelProvider, err := observability.Setup(cfg.Metrics, cfg.Observability, version.GetInfo())
	if err != nil {
		slog.Error("Failed to initialize observability", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown observability", "error", err)
		}
	}()

	// Build the admission gate, instrumented when metrics are enabled
	limiterOpts := []ratelimit.Option{
		ratelimit.WithGlobalThrottle(cfg.RateLimit.GlobalRequestsPerSecond, cfg.RateLimit.GlobalBurst),
		ratelimit.WithLogger(log),
	}
	if cfg.Metrics.Enabled {
		sink, err := observability.NewLimiterMetrics()
		if err != nil {
			slog.Error("Failed to create limiter metrics", "error", err)
			return 1
		}
		limiterOpts = append(limiterOpts, ratelimit.WithMetricsSink(sink))
	}
	limiter := ratelimit.New(limiterOpts...)

	client, err := rest.New(rest.Config{
		Token:     cfg.REST.Token,
		BaseURL:   cfg.REST.BaseURL,
		UserAgent: cfg.REST.UserAgent,
		Timeout:   cfg.REST.Timeout,
		Limiter:   limiter,
		Logger:    log,
	})
	if err != nil {
		slog.Error("Failed to create client", "error", err)
		return 1
	}

	// Start metrics server if enabled
	var metricsServer *observability.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = observability.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, otelProvider)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Probes abort cleanly on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	if err := runProbes(ctx, client, *channelID, *rounds); err != nil {
		slog.Error("Probe failed", "error", err)
		exitCode = 1
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}

	return exitCode
}

// runProbes issues the probe calls round by round. Every call goes through
// the admission gate, so pacing under rate limits shows up as latency here.
func runProbes(ctx context.Context, client *rest.Client, channelID string, rounds int) error {
	gw, err := client.GetBotGateway(ctx)
	if err != nil {
		return fmt.Errorf("gateway probe: %w", err)
	}
	slog.Info("Gateway reachable",
		"url", gw.URL,
		"shards", gw.Shards,
		"sessions_remaining", gw.SessionStartLimit.Remaining,
	)

	me, err := client.GetCurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("identity probe: %w", err)
	}
	slog.Info("Authenticated", "user_id", me.ID, "username", me.Username)

	if channelID == "" {
		return nil
	}

	for i := 0; i < rounds; i++ {
		start := time.Now()
		msg, err := client.CreateMessage(ctx, channelID,
			fmt.Sprintf("kord probe round %d/%d", i+1, rounds))
		if err != nil {
			return fmt.Errorf("message probe round %d: %w", i+1, err)
		}
		slog.Info("Message posted",
			"round", i+1,
			"message_id", msg.ID,
			"elapsed", time.Since(start),
		)
	}
	return nil
}
