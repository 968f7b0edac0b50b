package handler

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/angeloszaimis/gemini-gateway/internal/envelope"
	"github.com/angeloszaimis/gemini-gateway/internal/metrics"
	"github.com/angeloszaimis/gemini-gateway/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// Forwarder sends a validated request upstream. *upstream.Client implements it.
type Forwarder interface {
	Forward(ctx context.Context, endpoint, path, rawQuery string) envelope.Envelope
}

type GatewayHandler struct {
	logger           *slog.Logger
	forwarder        Forwarder
	escapeParams     bool
	metricsCollector *metrics.Collector
}

// NewGatewayHandler wires the endpoint handlers. collector may be nil.
func NewGatewayHandler(logger *slog.Logger, forwarder Forwarder, escapeParams bool, collector *metrics.Collector) *GatewayHandler {
	return &GatewayHandler{
		logger:           logger,
		forwarder:        forwarder,
		escapeParams:     escapeParams,
		metricsCollector: collector,
	}
}

// Endpoint returns the handler for one route. Any HTTP method is accepted.
func (g *GatewayHandler) Endpoint(rt Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := g.requestLogger(w, r)
		query := parseQuery(r.URL.RawQuery)

		if err := validateParams(rt, query); err != nil {
			log.Info("Rejected request", slog.String("endpoint", rt.Name), slog.String("reason", err.Error()))
			g.respond(w, log, rt.Name, http.StatusBadRequest, envelope.BadRequest(rt.Missing), start)
			return
		}

		env := g.forwarder.Forward(r.Context(), rt.Name, rt.UpstreamPath, rt.UpstreamQuery(query, g.escapeParams))
		g.respond(w, log, rt.Name, http.StatusOK, env, start)
	}
}

// NotFound answers every path no route claims.
func (g *GatewayHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	log := g.requestLogger(w, r)
	g.respond(w, log, "not_found", http.StatusNotFound, envelope.NotFound(), time.Now())
}

func (g *GatewayHandler) respond(w http.ResponseWriter, log *slog.Logger, endpoint string, status int, env envelope.Envelope, start time.Time) {
	if err := envelope.Write(w, status, env); err != nil {
		log.Error("Failed to write response", slog.Any("err", err))
	}

	log.Info("Served request",
		slog.String("endpoint", endpoint),
		slog.Int("status", status),
		slog.String("code", env.Code),
		slog.Duration("duration", time.Since(start)))

	g.metricsCollector.Emit(metrics.MetricEvent{
		Type:       metrics.EventRequestServed,
		Endpoint:   endpoint,
		Code:       env.Code,
		StatusCode: status,
		Duration:   time.Since(start),
	})
}

func (g *GatewayHandler) requestLogger(w http.ResponseWriter, r *http.Request) *slog.Logger {
	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, requestID)

	log := logger.WithRequest(g.logger, requestID, r.Method, r.URL.Path)
	log.Debug("Received request",
		slog.String("from", extractClientIP(r)),
		slog.String("proto", r.Proto),
		slog.String("user_agent", r.UserAgent()))
	return log
}

// validateParams requires every route parameter to be present and non-empty.
func validateParams(rt Route, query url.Values) error {
	errs := validation.Errors{}
	for _, p := range rt.Params {
		errs[p.Name] = validation.Validate(query.Get(p.Name), validation.Required)
	}
	return errs.Filter()
}

// parseQuery splits raw on '&' only. url.ParseQuery rejects pairs holding
// a ';', which would turn "prompt=a;b" into a missing prompt.
func parseQuery(raw string) url.Values {
	values := url.Values{}
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}

		key, value, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			continue
		}
		values.Add(key, value)
	}
	return values
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}
