package healthcheck

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/gemini-gateway/internal/metrics"
	"github.com/angeloszaimis/gemini-gateway/internal/mirror"
)

// Prober checks mirrors on a fixed interval.
type Prober struct {
	client    *http.Client
	path      string
	interval  time.Duration
	collector *metrics.Collector
	logger    *slog.Logger
}

// New creates a Prober. collector may be nil.
func New(path string, interval time.Duration, collector *metrics.Collector, logger *slog.Logger) *Prober {
	if path == "" {
		path = "/"
	}

	return &Prober{
		client:    &http.Client{Timeout: 5 * time.Second},
		path:      path,
		interval:  interval,
		collector: collector,
		logger:    logger,
	}
}

// Run probes m every interval until ctx is cancelled.
func (p *Prober) Run(ctx context.Context, m *mirror.Mirror) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Health check stopped", slog.String("mirror", m.Name()))
			return

		case <-ticker.C:
			p.Check(ctx, m)
		}
	}
}

// Check probes m once and updates its health flag.
func (p *Prober) Check(ctx context.Context, m *mirror.Mirror) bool {
	healthy := p.probe(ctx, m)

	if m.SetHealthy(healthy) {
		if healthy {
			p.logger.Info("Mirror is back up", slog.String("mirror", m.Name()))
		} else {
			p.logger.Warn("Mirror is down", slog.String("mirror", m.Name()))
		}

		p.collector.Emit(metrics.MetricEvent{
			Type:    metrics.EventHealthChanged,
			Mirror:  m.Name(),
			Healthy: healthy,
		})
	}

	return healthy
}

func (p *Prober) probe(ctx context.Context, m *mirror.Mirror) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.Resolve(p.path, ""), nil)
	if err != nil {
		return false
	}

	res, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("Health probe failed", slog.String("mirror", m.Name()), slog.Any("err", err))
		return false
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	return res.StatusCode < http.StatusInternalServerError
}
