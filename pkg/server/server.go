package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/vango-dev/catsite/pkg/actions"
	"github.com/vango-dev/catsite/pkg/assets"
	"github.com/vango-dev/catsite/pkg/form"
	"github.com/vango-dev/catsite/pkg/middleware"
	"github.com/vango-dev/catsite/pkg/page"
	"github.com/vango-dev/catsite/pkg/protocol"
	"github.com/vango-dev/catsite/pkg/toast"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAssets sets the page source and its handler options.
// Default: assets.Embedded().
func WithAssets(src assets.Source, opts ...assets.HandlerOption) Option {
	return func(s *Server) {
		s.assets = src
		s.assetOpts = opts
	}
}

// WithActions sets the shared action table store, typically one that a
// file watcher keeps current.
func WithActions(store *actions.Store) Option {
	return func(s *Server) {
		s.actions = store
	}
}

// WithRegistry registers the server's metrics on reg and serves reg at
// Config.MetricsPath.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithMetricsNamespace sets the Prometheus namespace (default "catsite").
func WithMetricsNamespace(ns string) Option {
	return func(s *Server) {
		s.namespace = ns
	}
}

// WithTracing enables an OpenTelemetry span per event.
func WithTracing(opts ...middleware.OTelOption) Option {
	return func(s *Server) {
		s.tracing = true
		s.otelOpts = opts
	}
}

// WithMiddleware appends event middleware, innermost last.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(s *Server) {
		s.extra = append(s.extra, mws...)
	}
}

// Server is the HTTP and WebSocket host.
type Server struct {
	config    Config
	logger    *slog.Logger
	router    chi.Router
	upgrader  websocket.Upgrader
	sessions  *SessionManager
	assets    assets.Source
	assetOpts []assets.HandlerOption
	actions   *actions.Store

	registry  *prometheus.Registry
	namespace string
	metrics   *middleware.Metrics
	tracing   bool
	otelOpts  []middleware.OTelOption
	extra     []middleware.Middleware

	httpServer *http.Server
}

// New creates a server.
func New(config Config, opts ...Option) *Server {
	s := &Server{
		config:    config,
		logger:    slog.Default().With("component", "server"),
		namespace: "catsite",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config.CheckOrigin == nil {
		s.config.CheckOrigin = SameOriginCheck
	}
	if s.assets == nil {
		s.assets = assets.Embedded()
	}
	if s.actions == nil {
		s.actions = actions.NewStore(actions.Default())
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	s.metrics = middleware.NewMetrics(
		middleware.WithRegistry(s.registry),
		middleware.WithNamespace(s.namespace),
	)

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  s.config.ReadBufferSize,
		WriteBufferSize: s.config.WriteBufferSize,
		CheckOrigin:     s.config.CheckOrigin,
	}
	s.sessions = NewSessionManager(s.config.MaxSessions, s.logger)
	s.sessions.SetOnSessionCreate(func(*Session) { s.metrics.RecordSessionCreate() })
	s.sessions.SetOnSessionClose(func(*Session) { s.metrics.RecordSessionDestroy() })
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.HandleWebSocket)
	if s.config.MetricsPath != "" {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
			Registry: s.registry,
		}))
	}
	r.Handle("/*", assets.Handler(s.assets, append([]assets.HandlerOption{
		assets.WithHandlerLogger(s.logger),
	}, s.assetOpts...)...))
	return r
}

// Handler returns the server's HTTP handler, accepting HTTP/2 over
// cleartext when configured.
func (s *Server) Handler() http.Handler {
	if s.config.H2C {
		return h2c.NewHandler(s.router, &http2.Server{})
	}
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.sessions.Full() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("full\n"))
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}

// HandleWebSocket upgrades the request and serves a session on it until
// the connection closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Full() {
		s.metrics.RecordWebSocketError("session_limit")
		http.Error(w, "Too many sessions", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		s.metrics.RecordWebSocketError("upgrade")
		return
	}

	session := newSession(conn, &s.config, s.logger, s.sessionOptions())
	if err := s.sessions.Add(session); err != nil {
		s.metrics.RecordWebSocketError("session_limit")
		_ = session.Send(protocol.Reject(err))
		session.CloseWithMessage(websocket.CloseTryAgainLater, err.Error())
		return
	}
	defer s.sessions.Remove(session.ID)

	session.logger.Info("session started", "remote", r.RemoteAddr)
	// The request context ends when the handler returns, which is after
	// Serve; shutdown closes sessions through the manager.
	session.Serve(context.WithoutCancel(r.Context()))
}

func (s *Server) sessionOptions() sessionOptions {
	mws := []middleware.Middleware{
		middleware.Recover(s.logger),
		s.metrics.Middleware(),
	}
	if s.tracing {
		mws = append(mws, middleware.OpenTelemetry(s.otelOpts...))
	}
	mws = append(mws, s.extra...)

	return sessionOptions{
		pageOpts: []page.Option{
			page.WithActions(s.actions),
			page.WithToastHook(func(t *toast.Toast) {
				s.metrics.RecordToast(string(t.Severity))
			}),
			page.WithSubmitHook(func(c form.Contact) {
				s.metrics.RecordContactRequest()
				s.logger.Info("contact request", "name", c.FullName, "email", c.Email)
			}),
		},
		middlewares: mws,
		onCommand:   s.metrics.RecordCommand,
		onWSError:   s.metrics.RecordWebSocketError,
	}
}

// Run listens on Config.Address and serves until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops accepting connections and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.sessions.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Metrics returns the server's Prometheus metrics.
func (s *Server) Metrics() *middleware.Metrics {
	return s.metrics
}

// Config returns the server configuration.
func (s *Server) Config() Config {
	return s.config
}
