package circuitbreaker

import (
	"net/url"
	"strings"
	"sync"
)

// Group holds one breaker per upstream host, created on first use, so a
// failing publisher never blocks requests to the others.
type Group struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

func NewGroup(cfg Config) *Group {
	return &Group{cfg: cfg, breakers: make(map[string]*CircuitBreaker)}
}

// For returns the breaker guarding rawURL's host. URLs that do not parse
// share the breaker of the empty host.
func (g *Group) For(rawURL string) *CircuitBreaker {
	host := hostKey(rawURL)

	g.mu.Lock()
	defer g.mu.Unlock()
	if cb, ok := g.breakers[host]; ok {
		return cb
	}
	cfg := g.cfg
	if host != "" {
		cfg.Name = g.cfg.Name + "/" + host
	}
	cb := New(cfg)
	g.breakers[host] = cb
	return cb
}

func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.breakers)
}

func hostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
