package circuitbreaker_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/gemini-gateway/internal/circuitbreaker"
)

var _ = Describe("CircuitBreaker", func() {
	var cb *circuitbreaker.CircuitBreaker

	trip := func() {
		cb.RecordFailure()
		cb.RecordFailure()
		cb.RecordFailure()
		Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
	}

	BeforeEach(func() {
		cb = circuitbreaker.NewCircuitBreaker(3, 100*time.Millisecond)
	})

	It("should start closed", func() {
		Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		Expect(cb.Allow()).To(BeTrue())
	})

	Context("when CLOSED", func() {
		It("should stay closed below the threshold", func() {
			cb.RecordFailure()
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
			Expect(cb.Allow()).To(BeTrue())
		})

		It("should open at the threshold", func() {
			trip()
		})

		It("should reset the failure count on success", func() {
			cb.RecordFailure()
			cb.RecordFailure()
			cb.RecordSuccess()
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		})
	})

	Context("when OPEN", func() {
		BeforeEach(trip)

		It("should reject calls", func() {
			Expect(cb.Allow()).To(BeFalse())
		})

		It("should stay open before the reset timeout", func() {
			time.Sleep(50 * time.Millisecond)
			Expect(cb.Allow()).To(BeFalse())
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should go half-open after the reset timeout", func() {
			time.Sleep(150 * time.Millisecond)
			Expect(cb.Allow()).To(BeTrue())
			Expect(cb.State()).To(Equal(circuitbreaker.StateHalfOpen))
		})
	})

	Context("when HALF-OPEN", func() {
		BeforeEach(func() {
			trip()
			time.Sleep(150 * time.Millisecond)
			Expect(cb.Allow()).To(BeTrue())
		})

		It("should let only one probe through", func() {
			Expect(cb.Allow()).To(BeFalse())
		})

		It("should close on success", func() {
			cb.RecordSuccess()
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
			Expect(cb.Allow()).To(BeTrue())
		})

		It("should reopen on failure", func() {
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
			Expect(cb.Allow()).To(BeFalse())
		})

		It("should reopen when the probe is released", func() {
			cb.Release()
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
			Expect(cb.Allow()).To(BeFalse())
		})

		It("should admit a new probe after a released one", func() {
			cb.Release()
			time.Sleep(150 * time.Millisecond)

			Expect(cb.Allow()).To(BeTrue())
			cb.RecordSuccess()
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		})
	})

	Context("when CLOSED and released", func() {
		It("should stay closed", func() {
			Expect(cb.Allow()).To(BeTrue())
			cb.Release()
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
			Expect(cb.Allow()).To(BeTrue())
		})
	})

	Describe("State.String", func() {
		It("should return correct string representation", func() {
			Expect(circuitbreaker.StateClosed.String()).To(Equal("CLOSED"))
			Expect(circuitbreaker.StateOpen.String()).To(Equal("OPEN"))
			Expect(circuitbreaker.StateHalfOpen.String()).To(Equal("HALF-OPEN"))
			Expect(circuitbreaker.State(42).String()).To(Equal("UNKNOWN"))
		})
	})
})
