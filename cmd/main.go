package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/angeloszaimis/gemini-gateway/config"
	"github.com/angeloszaimis/gemini-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/gemini-gateway/internal/handler"
	"github.com/angeloszaimis/gemini-gateway/internal/healthcheck"
	"github.com/angeloszaimis/gemini-gateway/internal/httpserver"
	"github.com/angeloszaimis/gemini-gateway/internal/metrics"
	"github.com/angeloszaimis/gemini-gateway/internal/mirror"
	"github.com/angeloszaimis/gemini-gateway/internal/upstream"
	"github.com/angeloszaimis/gemini-gateway/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Server.Environment != config.EnvProd, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv, err := buildServer(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to build gateway", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		log.Info("Gateway listening",
			slog.String("addr", cfg.Server.Address),
			slog.Any("upstream", cfg.Upstream.BaseURLs))
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting gateway", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// buildServer wires every component from cfg. Background goroutines
// (metrics collector, health probes) stop when ctx is cancelled.
func buildServer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*httpserver.Server, error) {
	mux, err := buildRouter(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return httpserver.New(cfg.Server.Address, mux, httpserver.Options{
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout),
		IdleTimeout:  config.Duration(cfg.Server.IdleTimeout),
	})
}

func buildRouter(ctx context.Context, cfg *config.Config, log *slog.Logger) (http.Handler, error) {
	pool, err := mirror.NewPool(cfg.Upstream.BaseURLs, createStrategy(log, cfg.Upstream.Strategy))
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector(cfg.Metrics.BufferSize, log)
	collector.Start(ctx)

	var (
		breakers      *circuitbreaker.Registry
		breakerStates metrics.BreakerStates
	)
	if cfg.CircuitBreaker.Threshold > 0 {
		breakers = circuitbreaker.NewRegistry(cfg.CircuitBreaker.Threshold, config.Duration(cfg.CircuitBreaker.ResetTimeout))
		breakerStates = breakers
	}

	if interval := config.Duration(cfg.HealthCheck.Interval); interval > 0 {
		prober := healthcheck.New(cfg.HealthCheck.Path, interval, collector, log)
		for _, m := range pool.Mirrors() {
			go prober.Run(ctx, m)
		}
	}

	client := upstream.NewClient(http.DefaultClient, pool, upstream.Options{
		Timeout:      config.Duration(cfg.Upstream.Timeout),
		MaxBodyBytes: cfg.Upstream.MaxBodyBytes,
		Breakers:     breakers,
		Collector:    collector,
	}, log)

	gw := handler.NewGatewayHandler(log, client, cfg.Upstream.EscapeParams, collector)

	return setupRouter(gw, collector, breakerStates, cfg)
}

func createStrategy(log *slog.Logger, strategyType string) mirror.Strategy {
	switch strategyType {
	case config.StrategyRoundRobin:
		return mirror.NewRoundRobinStrategy()
	case config.StrategyRandom:
		return mirror.NewRandomStrategy()
	default:
		log.Warn("Unknown strategy, defaulting to round-robin", slog.String("requested", strategyType))
		return mirror.NewRoundRobinStrategy()
	}
}
