// Package proxy provides a chat relay that forwards client requests to an
// upstream AI completion API while keeping the API key server-side.
package proxy

import (
	"net"
	"net/http"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultRoute = "/api/chat"

	// requestIDKey is where the requestid middleware stores the id.
	requestIDKey = "requestid"
)

// Proxy is the relay server. It is stateless: every request is forwarded
// independently using the settings the UpstreamSource holds at that moment.
type Proxy struct {
	config     Config
	upstream   UpstreamSource
	logger     *zap.Logger
	httpClient *http.Client
	server     *fiber.App
}

// New creates a new Proxy.
func New(config Config, upstream UpstreamSource, logger *zap.Logger) (*Proxy, error) {
	if config.Route == "" {
		config.Route = defaultRoute
	}
	if !strings.HasPrefix(config.Route, "/") {
		config.Route = "/" + config.Route
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	p := &Proxy{
		config:   config,
		upstream: upstream,
		logger:   logger,
		server:   app,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: config.Transport,
		},
	}

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))

	// Registered for every method so that the relay answers 405 itself
	app.All(config.Route, p.handleRelay)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	return p, nil
}

// Run starts the relay server on the configured listening address.
func (p *Proxy) Run() error {
	p.logStart(p.config.ListenAddr)
	return p.server.Listen(p.config.ListenAddr)
}

// RunWithListener starts the relay server on an existing listener.
func (p *Proxy) RunWithListener(ln net.Listener) error {
	p.logStart(ln.Addr().String())
	return p.server.Listener(ln)
}

// Shutdown gracefully stops the server.
func (p *Proxy) Shutdown() error {
	return p.server.Shutdown()
}

// Handler exposes the relay as a net/http handler.
func (p *Proxy) Handler() http.Handler {
	return adaptor.FiberApp(p.server)
}

func (p *Proxy) logStart(addr string) {
	up := p.upstream.Upstream()
	p.logger.Info("starting relay server",
		zap.String("listen", addr),
		zap.String("route", p.config.Route),
		zap.String("upstream", up.URL),
		zap.Bool("api_key_set", up.APIKey != ""),
		zap.Duration("timeout", p.config.Timeout),
	)
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
