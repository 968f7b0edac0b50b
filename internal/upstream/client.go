package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/gemini-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/gemini-gateway/internal/envelope"
	"github.com/angeloszaimis/gemini-gateway/internal/metrics"
	"github.com/angeloszaimis/gemini-gateway/internal/mirror"
)

var (
	ErrCircuitOpen  = errors.New("circuit breaker open")
	ErrBodyTooLarge = errors.New("upstream body too large")
)

// Doer is the part of *http.Client the caller needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	// Breakers is optional; nil disables circuit breaking.
	Breakers *circuitbreaker.Registry
	// Collector is optional.
	Collector *metrics.Collector
}

type Client struct {
	doer      Doer
	pool      *mirror.Pool
	breakers  *circuitbreaker.Registry
	collector *metrics.Collector
	timeout   time.Duration
	maxBody   int64
	logger    *slog.Logger
}

func NewClient(doer Doer, pool *mirror.Pool, opts Options, logger *slog.Logger) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}

	return &Client{
		doer:      doer,
		pool:      pool,
		breakers:  opts.Breakers,
		collector: opts.Collector,
		timeout:   opts.Timeout,
		maxBody:   opts.MaxBodyBytes,
		logger:    logger,
	}
}

// Fetch issues one GET to rawURL and decodes the body. The upstream HTTP
// status is not inspected: only the JSON body decides the outcome.
func (c *Client) Fetch(ctx context.Context, rawURL string) (Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.doer.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("call upstream: %w", err)
	}
	defer res.Body.Close()

	body, err := c.readBody(res.Body)
	if err != nil {
		return Response{}, err
	}

	return Decode(body)
}

// FetchAndFormat fetches rawURL and normalizes the outcome into an envelope.
func (c *Client) FetchAndFormat(ctx context.Context, rawURL string) envelope.Envelope {
	resp, err := c.Fetch(ctx, rawURL)
	return c.normalize(c.logger.With(slog.String("url", rawURL)), resp, err)
}

// Forward picks a healthy mirror, calls path?rawQuery on it and returns the
// envelope for the caller. endpoint labels logs and metrics.
func (c *Client) Forward(ctx context.Context, endpoint, path, rawQuery string) envelope.Envelope {
	log := c.logger.With(slog.String("endpoint", endpoint))

	m, err := c.pool.Next()
	if err != nil {
		log.Warn("No upstream mirror available", slog.Any("err", err))
		c.emit(endpoint, "", 0, true)
		return envelope.RequestError()
	}
	log = log.With(slog.String("mirror", m.Name()))

	var cb *circuitbreaker.CircuitBreaker
	if c.breakers != nil {
		cb = c.breakers.Breaker(m.Name())
		if !cb.Allow() {
			log.Warn("Upstream request refused", slog.Any("err", ErrCircuitOpen))
			c.emit(endpoint, m.Name(), 0, true)
			return envelope.RequestError()
		}
	}

	start := time.Now()
	resp, err := c.Fetch(ctx, m.Resolve(path, rawQuery))
	duration := time.Since(start)

	if cb != nil {
		switch {
		case ctx.Err() != nil:
			// A caller that went away says nothing about the mirror.
			cb.Release()
		case err != nil:
			cb.RecordFailure()
		default:
			cb.RecordSuccess()
		}
	}
	c.emit(endpoint, m.Name(), duration, err != nil)

	return c.normalize(log.With(slog.Duration("duration", duration)), resp, err)
}

// normalize logs the outcome of one upstream call and turns it into the
// caller's envelope.
func (c *Client) normalize(log *slog.Logger, resp Response, err error) envelope.Envelope {
	switch {
	case err != nil:
		log.Warn("Upstream request failed", slog.Any("err", err))
	case resp.Kind == KindUnexpected:
		log.Warn("Upstream answered with an unexpected shape")
	default:
		log.Debug("Upstream request completed", slog.String("kind", resp.Kind.String()))
	}
	return Format(resp, err)
}

func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.maxBody <= 0 {
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read upstream body: %w", err)
		}
		return body, nil
	}

	body, err := io.ReadAll(io.LimitReader(r, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

func (c *Client) emit(endpoint, mirrorName string, duration time.Duration, failed bool) {
	c.collector.Emit(metrics.MetricEvent{
		Type:     metrics.EventUpstreamCompleted,
		Endpoint: endpoint,
		Mirror:   mirrorName,
		Duration: duration,
		Failed:   failed,
	})
}
