package metrics

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

type EventType string

const (
	EventRequestServed     EventType = "request_served"
	EventUpstreamCompleted EventType = "upstream_completed"
	EventHealthChanged     EventType = "health_changed"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Endpoint   string
	Mirror     string
	Code       string
	StatusCode int
	Duration   time.Duration
	Failed     bool
	Healthy    bool
}

type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	prom    *promMetrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(),
		prom:    newPromMetrics(),
		logger:  logger,
	}
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

// Emit queues an event without blocking. Events are dropped when the buffer
// is full. A nil collector ignores every event.
func (c *Collector) Emit(event MetricEvent) {
	if c == nil {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
		c.logger.Debug("Metrics buffer full, dropping event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventRequestServed:
		c.metrics.RecordRequest(event.Endpoint, event.Code)
		c.prom.requests.WithLabelValues(event.Endpoint, event.Code, strconv.Itoa(event.StatusCode)).Inc()

	case EventUpstreamCompleted:
		c.metrics.RecordUpstream(event.Endpoint, event.Mirror, event.Duration, event.Failed)
		outcome := "ok"
		if event.Failed {
			outcome = "error"
		}
		c.prom.upstreamCalls.WithLabelValues(event.Endpoint, event.Mirror, outcome).Inc()
		if event.Duration > 0 {
			c.prom.upstreamDuration.WithLabelValues(event.Endpoint).Observe(event.Duration.Seconds())
		}

	case EventHealthChanged:
		c.metrics.UpdateHealthStatus(event.Mirror, event.Healthy)
		healthy := 0.0
		if event.Healthy {
			healthy = 1
		}
		c.prom.mirrorHealthy.WithLabelValues(event.Mirror).Set(healthy)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot(strategy string) Snapshot {
	return c.metrics.Snapshot(strategy)
}
