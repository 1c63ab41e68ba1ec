package server

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/middleware"
	"github.com/vango-dev/catsite/pkg/page"
	"github.com/vango-dev/catsite/pkg/protocol"
	"github.com/vango-dev/catsite/pkg/surface"
)

// Session is one browser tab connected over WebSocket.
type Session struct {
	// ID uniquely identifies the session.
	ID string

	// CreatedAt is when the connection was accepted.
	CreatedAt time.Time

	conn    *websocket.Conn
	config  *Config
	loop    *loop.Loop
	page    *page.Page
	handler middleware.Handler
	logger  *slog.Logger

	// writeMu serializes writes; gorilla connections allow one writer.
	writeMu sync.Mutex
	sendSeq atomic.Uint64

	lastActive atomic.Int64
	events     atomic.Uint64
	commands   atomic.Uint64

	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once

	onCommand func(protocol.Op)
	onWSError func(string)
}

// sessionOptions are the server-provided hooks for a new session.
type sessionOptions struct {
	pageOpts    []page.Option
	middlewares []middleware.Middleware
	onCommand   func(protocol.Op)
	onWSError   func(string)
}

func generateSessionID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

func newSession(conn *websocket.Conn, config *Config, logger *slog.Logger, opts sessionOptions) *Session {
	id := generateSessionID()
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      conn,
		config:    config,
		logger:    logger.With("session_id", id),
		done:      make(chan struct{}),
		onCommand: opts.onCommand,
		onWSError: opts.onWSError,
	}
	s.lastActive.Store(s.CreatedAt.UnixNano())
	s.loop = loop.New(loop.WithQueueSize(config.EventQueue), loop.WithLogger(s.logger))

	pageOpts := append([]page.Option{
		page.WithConfig(config.Page),
		page.WithLogger(s.logger),
	}, opts.pageOpts...)
	s.page = page.New(&wsSurface{session: s}, s.loop, pageOpts...)
	s.handler = middleware.Chain(s.page, opts.middlewares...)
	return s
}

// Serve runs the session until the connection drops or ctx is cancelled.
func (s *Session) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(middleware.WithSessionID(ctx, s.ID))
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = s.loop.Run(ctx)
	}()
	go s.writeLoop(ctx)
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	s.readLoop(ctx)
	s.Close()

	// The page is only touched from the loop; once the loop has exited
	// it can be closed here.
	s.loop.Close()
	<-loopDone
	s.page.Close()
	s.logger.Info("session ended",
		"events", s.events.Load(),
		"commands", s.commands.Load(),
		"duration", time.Since(s.CreatedAt).Round(time.Millisecond))
}

// readLoop reads client events until the connection fails.
func (s *Session) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(s.config.ReadLimit)
	s.conn.SetReadDeadline(time.Now().Add(s.config.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.touch()
		return s.conn.SetReadDeadline(time.Now().Add(s.config.PongTimeout))
	})

	for {
		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Warn("read error", "error", err)
				s.wsError("read")
			}
			return
		}
		s.touch()
		s.conn.SetReadDeadline(time.Now().Add(s.config.PongTimeout))

		if msgType != websocket.TextMessage {
			s.reject(protocol.ErrInvalidEvent)
			continue
		}
		e, err := protocol.DecodeEvent(msg)
		if err != nil {
			s.logger.Debug("event decode error", "error", err)
			s.wsError("decode")
			s.reject(err)
			continue
		}
		s.events.Add(1)

		err = s.loop.TryDispatch(func() {
			if err := s.handler.Handle(ctx, e); err != nil {
				s.logger.Debug("event rejected", "type", e.Type, "target", e.Target, "error", err)
				s.reject(err)
			}
		})
		switch {
		case err == nil:
		case errors.Is(err, loop.ErrQueueFull):
			s.wsError("queue_full")
			s.reject(ErrEventQueueFull)
		default:
			return
		}
	}
}

// writeLoop sends heartbeat pings until the session closes.
func (s *Session) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.ping(); err != nil {
				s.logger.Debug("ping failed", "error", err)
				s.wsError("ping")
				s.Close()
				return
			}
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.config.WriteTimeout))
}

// Send writes a command to the client, stamping its sequence number.
func (s *Session) Send(cmd protocol.Command) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}

	cmd.Seq = s.sendSeq.Add(1)
	data, err := cmd.Encode()
	if err != nil {
		return &SessionError{SessionID: s.ID, Op: "encode", Err: err}
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Warn("write error", "error", err)
		s.wsError("write")
		s.closeLocked()
		return &SessionError{SessionID: s.ID, Op: "write", Err: err}
	}
	s.commands.Add(1)
	if s.onCommand != nil {
		s.onCommand(cmd.Op)
	}
	return nil
}

func (s *Session) reject(err error) {
	if sendErr := s.Send(protocol.Reject(err)); sendErr != nil && !errors.Is(sendErr, ErrSessionClosed) {
		s.logger.Debug("reject not delivered", "error", sendErr)
	}
}

func (s *Session) wsError(kind string) {
	if s.onWSError != nil {
		s.onWSError(kind)
	}
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive returns when the client was last heard from.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Close closes the connection. It is safe to call more than once.
func (s *Session) Close() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.closeLocked()
}

// CloseWithMessage sends a close frame before closing.
func (s *Session) CloseWithMessage(code int, text string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.closed.Load() {
		msg := websocket.FormatCloseMessage(code, text)
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.config.WriteTimeout))
	}
	s.closeLocked()
}

func (s *Session) closeLocked() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
		s.conn.Close()
	})
}

// IsClosed reports whether the session has closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// wsSurface presents the page through the session's WebSocket.
type wsSurface struct {
	session *Session
}

func (w *wsSurface) send(cmd protocol.Command) error {
	err := w.session.Send(cmd)
	if errors.Is(err, ErrSessionClosed) {
		// Late timers after disconnect have nowhere to draw.
		return nil
	}
	return err
}

func (w *wsSurface) Render(n surface.Node) error {
	return w.send(protocol.Render(n))
}

func (w *wsSurface) SetVisualState(id surface.NodeID, st surface.State) error {
	return w.send(protocol.SetState(id, st))
}

func (w *wsSurface) Remove(id surface.NodeID) error {
	return w.send(protocol.Remove(id))
}

func (w *wsSurface) ScrollIntoView(id surface.NodeID) error {
	return w.send(protocol.Scroll(id))
}
