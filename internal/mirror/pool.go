package mirror

import (
	"errors"
	"fmt"
	"net/url"
)

var ErrNoHealthyMirror = errors.New("no healthy upstream mirror")

// Strategy picks one mirror out of the healthy ones.
type Strategy interface {
	Select(mirrors []*Mirror) *Mirror
}

type Pool struct {
	mirrors  []*Mirror
	strategy Strategy
}

// NewPool parses every base URL into a Mirror. At least one URL is required.
func NewPool(baseURLs []string, strategy Strategy) (*Pool, error) {
	if len(baseURLs) == 0 {
		return nil, fmt.Errorf("mirror pool: %w", ErrNoHealthyMirror)
	}

	mirrors := make([]*Mirror, 0, len(baseURLs))
	for _, raw := range baseURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse upstream url %q: %w", raw, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("upstream url %q must be absolute", raw)
		}
		mirrors = append(mirrors, New(u))
	}

	return &Pool{mirrors: mirrors, strategy: strategy}, nil
}

// Mirrors returns every mirror, healthy or not.
func (p *Pool) Mirrors() []*Mirror {
	return p.mirrors
}

// Next returns a healthy mirror chosen by the pool strategy.
func (p *Pool) Next() (*Mirror, error) {
	healthy := make([]*Mirror, 0, len(p.mirrors))
	for _, m := range p.mirrors {
		if m.IsHealthy() {
			healthy = append(healthy, m)
		}
	}

	if len(healthy) == 0 {
		return nil, ErrNoHealthyMirror
	}

	chosen := p.strategy.Select(healthy)
	if chosen == nil {
		return nil, fmt.Errorf("strategy returned nil mirror")
	}

	return chosen, nil
}
