package circuitbreaker

import (
	"sync"
	"time"
)

// Registry lazily creates one breaker per mirror name.
type Registry struct {
	mutex     sync.RWMutex
	breakers  map[string]*CircuitBreaker
	threshold int
	timeout   time.Duration
}

func NewRegistry(threshold int, timeout time.Duration) *Registry {
	return &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
		timeout:   timeout,
	}
}

func (r *Registry) Breaker(mirror string) *CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[mirror]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// another goroutine may have created it
	if cb, exists = r.breakers[mirror]; exists {
		return cb
	}

	cb = NewCircuitBreaker(r.threshold, r.timeout)
	r.breakers[mirror] = cb
	return cb
}

// States returns the current state of every breaker created so far.
func (r *Registry) States() map[string]State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	states := make(map[string]State, len(r.breakers))
	for name, cb := range r.breakers {
		states[name] = cb.State()
	}
	return states
}
