package metrics

import (
	"sort"
	"sync"
	"time"
)

// maxSamples bounds the latency window kept per endpoint.
const maxSamples = 1000

type Metrics struct {
	mutex          sync.RWMutex
	requests       map[string]int64
	codes          map[string]map[string]int64
	upstreamCalls  map[string]int64
	upstreamErrors map[string]int64
	latencies      map[string][]time.Duration
	mirrorCalls    map[string]int64
	mirrorErrors   map[string]int64
	mirrorHealth   map[string]bool
	startTime      time.Time
}

type Snapshot struct {
	TotalRequests int64                      `json:"total_requests"`
	Uptime        time.Duration              `json:"uptime"`
	Strategy      string                     `json:"strategy"`
	Endpoints     map[string]EndpointMetrics `json:"endpoints"`
	Mirrors       map[string]MirrorMetrics   `json:"mirrors"`
}

type EndpointMetrics struct {
	Requests       int64            `json:"requests"`
	Codes          map[string]int64 `json:"codes"`
	UpstreamCalls  int64            `json:"upstream_calls"`
	UpstreamErrors int64            `json:"upstream_errors"`
	AvgUpstream    time.Duration    `json:"avg_upstream"`
	P50Upstream    time.Duration    `json:"p50_upstream"`
	P95Upstream    time.Duration    `json:"p95_upstream"`
	P99Upstream    time.Duration    `json:"p99_upstream"`
}

type MirrorMetrics struct {
	Healthy bool   `json:"healthy"`
	Calls   int64  `json:"calls"`
	Errors  int64  `json:"errors"`
	Breaker string `json:"breaker,omitempty"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests:       make(map[string]int64),
		codes:          make(map[string]map[string]int64),
		upstreamCalls:  make(map[string]int64),
		upstreamErrors: make(map[string]int64),
		latencies:      make(map[string][]time.Duration),
		mirrorCalls:    make(map[string]int64),
		mirrorErrors:   make(map[string]int64),
		mirrorHealth:   make(map[string]bool),
		startTime:      time.Now(),
	}
}

// RecordRequest counts one served request and the envelope code it produced.
func (m *Metrics) RecordRequest(endpoint, code string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.requests[endpoint]++
	if m.codes[endpoint] == nil {
		m.codes[endpoint] = make(map[string]int64)
	}
	m.codes[endpoint][code]++
}

// RecordUpstream counts one outbound call. Mirror may be empty when the call
// was refused before a mirror was picked.
func (m *Metrics) RecordUpstream(endpoint, mirror string, duration time.Duration, failed bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.upstreamCalls[endpoint]++
	if failed {
		m.upstreamErrors[endpoint]++
	}

	if mirror != "" {
		m.mirrorCalls[mirror]++
		if failed {
			m.mirrorErrors[mirror]++
		}
		if _, seen := m.mirrorHealth[mirror]; !seen {
			m.mirrorHealth[mirror] = true
		}
	}

	if duration > 0 {
		m.latencies[endpoint] = append(m.latencies[endpoint], duration)
		if len(m.latencies[endpoint]) > maxSamples {
			m.latencies[endpoint] = m.latencies[endpoint][1:]
		}
	}
}

func (m *Metrics) UpdateHealthStatus(mirror string, healthy bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.mirrorHealth[mirror] = healthy
}

func (m *Metrics) Snapshot(strategy string) Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:    time.Since(m.startTime),
		Strategy:  strategy,
		Endpoints: make(map[string]EndpointMetrics),
		Mirrors:   make(map[string]MirrorMetrics),
	}

	endpoints := make(map[string]struct{})
	for e := range m.requests {
		endpoints[e] = struct{}{}
	}
	for e := range m.upstreamCalls {
		endpoints[e] = struct{}{}
	}

	for endpoint := range endpoints {
		snap.TotalRequests += m.requests[endpoint]

		em := EndpointMetrics{
			Requests:       m.requests[endpoint],
			Codes:          make(map[string]int64, len(m.codes[endpoint])),
			UpstreamCalls:  m.upstreamCalls[endpoint],
			UpstreamErrors: m.upstreamErrors[endpoint],
		}
		for code, n := range m.codes[endpoint] {
			em.Codes[code] = n
		}

		if durations := m.latencies[endpoint]; len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			em.AvgUpstream = average(sorted)
			em.P50Upstream = percentile(sorted, 0.50)
			em.P95Upstream = percentile(sorted, 0.95)
			em.P99Upstream = percentile(sorted, 0.99)
		}

		snap.Endpoints[endpoint] = em
	}

	for mirror, healthy := range m.mirrorHealth {
		snap.Mirrors[mirror] = MirrorMetrics{
			Healthy: healthy,
			Calls:   m.mirrorCalls[mirror],
			Errors:  m.mirrorErrors[mirror],
		}
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
