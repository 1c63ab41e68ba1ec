package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/vango-dev/catsite/pkg/protocol"
)

// Handler processes one client event.
type Handler interface {
	Handle(ctx context.Context, e *protocol.Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, e *protocol.Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, e *protocol.Event) error {
	return f(ctx, e)
}

// Middleware wraps a Handler.
type Middleware func(next Handler) Handler

// Chain wraps h so that the first middleware is outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// Recover turns a panic in the handler into an error.
func Recover(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default().With("component", "middleware")
	}
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, e *protocol.Event) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event handler panic",
						"type", e.Type,
						"target", e.Target,
						"panic", r,
						"stack", string(debug.Stack()),
					)
					err = fmt.Errorf("middleware: panic handling %s: %v", e.Type, r)
				}
			}()
			return next.Handle(ctx, e)
		})
	}
}

type sessionIDKey struct{}

// WithSessionID returns a context carrying the session ID.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionID returns the session ID carried by ctx, or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}
