package proxy

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a single upstream call.
const DefaultTimeout = 2 * time.Minute

// Config is the relay server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// Route the relay is mounted on (default "/api/chat")
	Route string

	// Timeout for the upstream request, including reading the body.
	// Zero means DefaultTimeout.
	Timeout time.Duration

	// Transport overrides the upstream HTTP transport. Nil uses
	// http.DefaultTransport.
	Transport http.RoundTripper
}

// Upstream is the completion endpoint and the bearer credential used to
// reach it.
type Upstream struct {
	URL    string
	APIKey string
}

// Configured reports whether both values are present.
func (u Upstream) Configured() bool {
	return u.URL != "" && u.APIKey != ""
}

// UpstreamSource provides the upstream settings. It is consulted on every
// request so that the settings may change while the server runs.
type UpstreamSource interface {
	Upstream() Upstream
}

// UpstreamFunc adapts a function to an UpstreamSource.
type UpstreamFunc func() Upstream

func (f UpstreamFunc) Upstream() Upstream {
	return f()
}

// StaticUpstream is an UpstreamSource that never changes.
type StaticUpstream Upstream

func (s StaticUpstream) Upstream() Upstream {
	return Upstream(s)
}
