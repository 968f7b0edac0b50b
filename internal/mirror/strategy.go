package mirror

import (
	"math/rand/v2"
	"sync/atomic"
)

type roundRobinStrategy struct {
	current atomic.Uint64
}

func (rr *roundRobinStrategy) Select(mirrors []*Mirror) *Mirror {
	if len(mirrors) == 0 {
		return nil
	}

	n := rr.current.Add(1)
	return mirrors[(n-1)%uint64(len(mirrors))]
}

func NewRoundRobinStrategy() Strategy {
	return &roundRobinStrategy{}
}

type randomStrategy struct{}

func (r *randomStrategy) Select(mirrors []*Mirror) *Mirror {
	if len(mirrors) == 0 {
		return nil
	}

	return mirrors[rand.IntN(len(mirrors))]
}

func NewRandomStrategy() Strategy {
	return &randomStrategy{}
}
