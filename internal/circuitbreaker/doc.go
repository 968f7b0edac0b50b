// Package circuitbreaker guards calls to upstream AI API mirrors.
//
// Each mirror gets its own breaker. After a run of consecutive failed calls
// the breaker opens and the gateway answers with the request error envelope
// without contacting the mirror. Once the reset timeout has passed a single
// probe call is let through (HALF-OPEN); its outcome closes or reopens the
// breaker.
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(5, 30*time.Second)
//	cb := registry.Breaker("https://api.example")
//	if cb.Allow() {
//	    // Call the mirror...
//	    if err != nil {
//	        cb.RecordFailure()
//	    } else {
//	        cb.RecordSuccess()
//	    }
//	}
package circuitbreaker
