package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angeloszaimis/gemini-gateway/internal/circuitbreaker"
)

// BreakerStates is satisfied by *circuitbreaker.Registry.
type BreakerStates interface {
	States() map[string]circuitbreaker.State
}

// Handler serves the JSON snapshot. breakers may be nil.
func (c *Collector) Handler(strategy string, breakers BreakerStates) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := c.metrics.Snapshot(strategy)

		if breakers != nil {
			for mirror, state := range breakers.States() {
				mm := snap.Mirrors[mirror]
				mm.Breaker = state.String()
				snap.Mirrors[mirror] = mm
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

// PrometheusHandler exposes the collector registry in the text exposition format.
func (c *Collector) PrometheusHandler() http.Handler {
	return promhttp.HandlerFor(c.prom.registry, promhttp.HandlerOpts{})
}
