// Package metrics provides runtime metrics collection for the gateway.
//
// It uses a channel-based event pipeline to asynchronously collect:
//   - Request counts per endpoint and envelope code
//   - Upstream call counts, failures and latency percentiles (P50, P95, P99)
//   - Upstream mirror health
//
// The collector runs in a dedicated goroutine so request handlers never block
// on bookkeeping; events are sent with non-blocking semantics and dropped when
// the buffer is full. Every processed event also updates a private Prometheus
// registry.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	collector.EventChannel() <- metrics.MetricEvent{
//		Type:     metrics.EventUpstreamCompleted,
//		Endpoint: "gemini",
//		Mirror:   "https://api.example",
//		Duration: 850 * time.Millisecond,
//	}
//
//	snapshot := collector.Snapshot("round-robin")
package metrics
