package config

import (
	"sync/atomic"

	"github.com/papercomputeco/chatrelay/proxy"
)

// Store holds the current Config. It is safe for concurrent use and serves
// as the relay's proxy.UpstreamSource.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore returns a Store holding cfg.
func NewStore(cfg Config) *Store {
	s := &Store{}
	s.Set(cfg)
	return s
}

// Current returns the config in effect.
func (s *Store) Current() Config {
	return *s.current.Load()
}

// Set replaces the config in effect.
func (s *Store) Set(cfg Config) {
	s.current.Store(&cfg)
}

// Upstream implements proxy.UpstreamSource.
func (s *Store) Upstream() proxy.Upstream {
	up := s.Current().Upstream
	return proxy.Upstream{URL: up.URL, APIKey: up.APIKey}
}
