package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vango-dev/catsite/pkg/page"
	"github.com/vango-dev/catsite/pkg/protocol"
)

// Config holds server settings.
type Config struct {
	// Address is the address to listen on (e.g., ":8080").
	Address string

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the WebSocket request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// MaxSessions is the maximum number of concurrent sessions.
	// 0 means no limit.
	MaxSessions int

	// EventQueue is the per-session dispatch queue capacity.
	EventQueue int

	// ReadLimit is the largest client message accepted.
	ReadLimit int64

	// WriteTimeout bounds every WebSocket write.
	WriteTimeout time.Duration

	// PingInterval is the heartbeat period. PongTimeout is how long a
	// connection may stay silent before it is dropped.
	PingInterval time.Duration
	PongTimeout  time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration

	// H2C enables HTTP/2 over cleartext for deployments behind a proxy.
	H2C bool

	// MetricsPath is where Prometheus metrics are served. Empty disables
	// the endpoint.
	MetricsPath string

	// Page configures every session's page.
	Page page.Config
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:         ":8080",
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     SameOriginCheck,
		MaxSessions:     1000,
		EventQueue:      256,
		ReadLimit:       protocol.MaxMessageSize,
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		PongTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		H2C:             true,
		MetricsPath:     "/metrics",
		Page:            page.DefaultConfig(),
	}
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., same-origin request or curl)
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}
	return originURL.Host == host
}

// AllowOrigins accepts same-origin requests and requests from the listed
// origins ("https://example.com"). A "*" entry accepts every origin.
func AllowOrigins(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimSuffix(strings.ToLower(o), "/")] = true
	}
	return func(r *http.Request) bool {
		if allowed["*"] || SameOriginCheck(r) {
			return true
		}
		return allowed[strings.ToLower(r.Header.Get("Origin"))]
	}
}
