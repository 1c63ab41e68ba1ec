package loop

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueSize is the dispatch queue capacity used when none is given.
const DefaultQueueSize = 256

var (
	// ErrClosed is returned when dispatching onto a closed loop.
	ErrClosed = errors.New("loop: closed")

	// ErrQueueFull is returned by TryDispatch when the queue has no room.
	ErrQueueFull = errors.New("loop: dispatch queue full")
)

// Cancel stops a scheduled callback. Calling it more than once is safe.
type Cancel func()

// Scheduler schedules callbacks. Callbacks scheduled through a Loop always
// run on the loop goroutine.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Cancel
	Every(d time.Duration, fn func()) Cancel
}

// Option configures a Loop.
type Option func(*Loop)

// WithQueueSize sets the dispatch queue capacity.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

// WithLogger sets the logger used for panic reports.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loop runs dispatched functions one at a time on a single goroutine.
type Loop struct {
	queueSize  int
	dispatchCh chan func()
	done       chan struct{}
	closeOnce  sync.Once
	closed     atomic.Bool
	logger     *slog.Logger
}

// New creates a loop. Call Run to start processing.
func New(opts ...Option) *Loop {
	l := &Loop{
		queueSize: DefaultQueueSize,
		done:      make(chan struct{}),
		logger:    slog.Default().With("component", "loop"),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.dispatchCh = make(chan func(), l.queueSize)
	return l
}

// Run processes dispatched functions until ctx is cancelled or Close is
// called. It returns ctx.Err() when stopped by the context.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.dispatchCh:
			l.execute(fn)
		case <-l.done:
			return nil
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		}
	}
}

// execute runs fn with panic recovery so one bad callback does not take
// the session down.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Dispatch queues fn to run on the loop, blocking while the queue is full.
// It must not be called from the loop goroutine itself; use TryDispatch there.
func (l *Loop) Dispatch(fn func()) error {
	if l.closed.Load() {
		return ErrClosed
	}
	select {
	case l.dispatchCh <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// TryDispatch queues fn without blocking.
func (l *Loop) TryDispatch(fn func()) error {
	if l.closed.Load() {
		return ErrClosed
	}
	select {
	case l.dispatchCh <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	default:
		l.logger.Warn("dispatch queue full, dropping callback")
		return ErrQueueFull
	}
}

// Close stops the loop. Queued functions that have not started are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}

// Done returns a channel closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Now returns the wall-clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc runs fn on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Cancel {
	var stopped atomic.Bool
	timer := time.AfterFunc(d, func() {
		if stopped.Load() {
			return
		}
		_ = l.Dispatch(func() {
			// The timer may have been cancelled while this was queued.
			if stopped.CompareAndSwap(false, true) {
				fn()
			}
		})
	})

	return func() {
		stopped.Store(true)
		timer.Stop()
	}
}

// Every runs fn on the loop each time d elapses until cancelled.
// It panics if d is not positive, like time.NewTicker.
func (l *Loop) Every(d time.Duration, fn func()) Cancel {
	if d <= 0 {
		panic("loop: non-positive interval for Every")
	}

	var stopped atomic.Bool
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				err := l.Dispatch(func() {
					if !stopped.Load() {
						fn()
					}
				})
				if err != nil {
					return
				}
			case <-stop:
				return
			case <-l.done:
				return
			}
		}
	}()

	return func() {
		stopped.Store(true)
		once.Do(func() { close(stop) })
	}
}
