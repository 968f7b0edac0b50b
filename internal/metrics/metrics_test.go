package metrics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/gemini-gateway/internal/metrics"
)

var _ = Describe("Metrics", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.NewMetrics()
	})

	Describe("RecordRequest", func() {
		It("should count requests and codes per endpoint", func() {
			m.RecordRequest("gemini", "200")
			m.RecordRequest("gemini", "400")
			m.RecordRequest("video", "200")

			snap := m.Snapshot("round-robin")
			Expect(snap.TotalRequests).To(Equal(int64(3)))
			Expect(snap.Endpoints["gemini"].Requests).To(Equal(int64(2)))
			Expect(snap.Endpoints["gemini"].Codes).To(Equal(map[string]int64{"200": 1, "400": 1}))
			Expect(snap.Endpoints["video"].Requests).To(Equal(int64(1)))
		})
	})

	Describe("RecordUpstream", func() {
		It("should track calls, errors and mirrors", func() {
			m.RecordUpstream("gemini", "https://api.example", 100*time.Millisecond, false)
			m.RecordUpstream("gemini", "https://api.example", 300*time.Millisecond, true)

			snap := m.Snapshot("round-robin")
			em := snap.Endpoints["gemini"]
			Expect(em.UpstreamCalls).To(Equal(int64(2)))
			Expect(em.UpstreamErrors).To(Equal(int64(1)))
			Expect(em.AvgUpstream).To(Equal(200 * time.Millisecond))

			mm := snap.Mirrors["https://api.example"]
			Expect(mm.Calls).To(Equal(int64(2)))
			Expect(mm.Errors).To(Equal(int64(1)))
			Expect(mm.Healthy).To(BeTrue())
		})

		It("should skip mirror accounting when no mirror was picked", func() {
			m.RecordUpstream("gemini", "", 0, true)

			snap := m.Snapshot("round-robin")
			Expect(snap.Endpoints["gemini"].UpstreamErrors).To(Equal(int64(1)))
			Expect(snap.Mirrors).To(BeEmpty())
		})

		It("should compute percentiles", func() {
			for i := 1; i <= 100; i++ {
				m.RecordUpstream("gemini", "https://api.example", time.Duration(i)*time.Millisecond, false)
			}

			em := m.Snapshot("round-robin").Endpoints["gemini"]
			Expect(em.P50Upstream).To(Equal(51 * time.Millisecond))
			Expect(em.P95Upstream).To(Equal(96 * time.Millisecond))
			Expect(em.P99Upstream).To(Equal(100 * time.Millisecond))
		})

		It("should keep a bounded latency window", func() {
			for range 1100 {
				m.RecordUpstream("gemini", "https://api.example", time.Second, false)
			}
			m.RecordUpstream("gemini", "https://api.example", time.Second, false)

			em := m.Snapshot("round-robin").Endpoints["gemini"]
			Expect(em.UpstreamCalls).To(Equal(int64(1101)))
			Expect(em.AvgUpstream).To(Equal(time.Second))
		})
	})

	Describe("UpdateHealthStatus", func() {
		It("should record mirror health", func() {
			m.UpdateHealthStatus("https://api.example", false)

			snap := m.Snapshot("round-robin")
			Expect(snap.Mirrors["https://api.example"].Healthy).To(BeFalse())
		})
	})

	Describe("Snapshot", func() {
		It("should carry the strategy and uptime", func() {
			snap := m.Snapshot("random")
			Expect(snap.Strategy).To(Equal("random"))
			Expect(snap.Uptime).To(BeNumerically(">=", 0))
		})
	})
})
