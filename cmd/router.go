package main

import (
	"fmt"
	"net/http"
	"path"

	"github.com/angeloszaimis/gemini-gateway/config"
	"github.com/angeloszaimis/gemini-gateway/internal/handler"
	"github.com/angeloszaimis/gemini-gateway/internal/metrics"
)

// setupRouter mounts the gateway endpoints on exact paths and sends
// everything else to the not-found envelope. breakers may be nil.
func setupRouter(gw *handler.GatewayHandler, collector *metrics.Collector, breakers metrics.BreakerStates, cfg *config.Config) (http.Handler, error) {
	mux := http.NewServeMux()
	taken := make(map[string]string)

	mount := func(name, pattern string, h http.Handler) error {
		if pattern == "" {
			return nil
		}
		if other, ok := taken[pattern]; ok {
			return fmt.Errorf("path %s used by both %s and %s", pattern, other, name)
		}
		taken[pattern] = name
		mux.Handle(pattern, h)
		return nil
	}

	for _, rt := range handler.Routes {
		if err := mount(rt.Name, rt.Path, gw.Endpoint(rt)); err != nil {
			return nil, err
		}
	}

	if collector != nil {
		if err := mount("prometheus", cfg.Metrics.PrometheusPath, collector.PrometheusHandler()); err != nil {
			return nil, err
		}
		if err := mount("stats", cfg.Metrics.StatsPath, collector.Handler(cfg.Upstream.Strategy, breakers)); err != nil {
			return nil, err
		}
	}

	if err := mount("not_found", "/", http.HandlerFunc(gw.NotFound)); err != nil {
		return nil, err
	}

	return exactPaths(mux, gw.NotFound), nil
}

// exactPaths answers non-canonical paths such as "//gemini" or "/a/../gemini"
// with notFound. ServeMux would otherwise redirect them to a route.
func exactPaths(next http.Handler, notFound http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; p == "" || path.Clean(p) != p {
			notFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
