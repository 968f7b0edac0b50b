package mirror

import (
	"net/url"
	"strings"
	"sync"
)

// Mirror is one base URL of the upstream API.
type Mirror struct {
	url       *url.URL
	mutex     sync.Mutex
	isHealthy bool
}

// New creates a Mirror for the given base URL. Mirrors start healthy.
func New(u *url.URL) *Mirror {
	return &Mirror{
		url:       u,
		isHealthy: true,
	}
}

// URL returns the mirror base URL.
func (m *Mirror) URL() *url.URL {
	return m.url
}

// Name is the base URL without a trailing slash. Used as the key for
// breakers and metrics.
func (m *Mirror) Name() string {
	return strings.TrimSuffix(m.url.String(), "/")
}

// Resolve joins the base URL with an upstream path and raw query.
func (m *Mirror) Resolve(path, rawQuery string) string {
	s := m.Name() + path
	if rawQuery != "" {
		s += "?" + rawQuery
	}
	return s
}

func (m *Mirror) IsHealthy() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.isHealthy
}

// SetHealthy updates the health flag and reports whether it changed.
func (m *Mirror) SetHealthy(healthy bool) (changed bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.isHealthy == healthy {
		return false
	}

	m.isHealthy = healthy
	return true
}
