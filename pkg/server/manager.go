package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SessionManager tracks live sessions and enforces the session limit.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
	closed   bool
	wg       sync.WaitGroup
	logger   *slog.Logger

	totalCreated int64
	totalClosed  int64
	peak         int

	onCreate func(*Session)
	onClose  func(*Session)
}

// ManagerStats is a snapshot of session counts.
type ManagerStats struct {
	Active       int
	TotalCreated int64
	TotalClosed  int64
	Peak         int
}

// NewSessionManager creates a manager allowing at most max sessions
// (0 means unlimited).
func NewSessionManager(max int, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default().With("component", "sessions")
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		max:      max,
		logger:   logger,
	}
}

// Full reports whether a new session would exceed the limit.
func (sm *SessionManager) Full() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.closed || (sm.max > 0 && len(sm.sessions) >= sm.max)
}

// Add registers a session.
func (sm *SessionManager) Add(s *Session) error {
	sm.mu.Lock()
	if sm.closed {
		sm.mu.Unlock()
		return ErrServerClosed
	}
	if sm.max > 0 && len(sm.sessions) >= sm.max {
		sm.mu.Unlock()
		return ErrMaxSessionsReached
	}
	sm.sessions[s.ID] = s
	sm.totalCreated++
	if len(sm.sessions) > sm.peak {
		sm.peak = len(sm.sessions)
	}
	sm.wg.Add(1)
	onCreate := sm.onCreate
	sm.mu.Unlock()

	if onCreate != nil {
		onCreate(s)
	}
	return nil
}

// Remove unregisters a session after it has finished serving.
func (sm *SessionManager) Remove(id string) {
	sm.mu.Lock()
	s, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
		sm.totalClosed++
	}
	onClose := sm.onClose
	sm.mu.Unlock()

	if !ok {
		return
	}
	if onClose != nil {
		onClose(s)
	}
	sm.wg.Done()
}

// Get returns a session by ID, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Stats returns a snapshot of session counts.
func (sm *SessionManager) Stats() ManagerStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return ManagerStats{
		Active:       len(sm.sessions),
		TotalCreated: sm.totalCreated,
		TotalClosed:  sm.totalClosed,
		Peak:         sm.peak,
	}
}

// ForEach calls fn for each session until fn returns false.
func (sm *SessionManager) ForEach(fn func(*Session) bool) {
	sm.mu.RLock()
	sessions := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	for _, s := range sessions {
		if !fn(s) {
			return
		}
	}
}

// SetOnSessionCreate sets a callback run after a session is added.
func (sm *SessionManager) SetOnSessionCreate(fn func(*Session)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onCreate = fn
}

// SetOnSessionClose sets a callback run after a session is removed.
func (sm *SessionManager) SetOnSessionClose(fn func(*Session)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onClose = fn
}

// Shutdown refuses new sessions, closes every open one, and waits for
// them to finish or for ctx to expire.
func (sm *SessionManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	sm.closed = true
	sm.mu.Unlock()

	count := 0
	sm.ForEach(func(s *Session) bool {
		s.CloseWithMessage(websocket.CloseGoingAway, "server shutting down")
		count++
		return true
	})

	done := make(chan struct{})
	go func() {
		sm.wg.Wait()
		close(done)
	}()

	start := time.Now()
	select {
	case <-done:
		sm.logger.Info("sessions closed", "count", count, "took", time.Since(start).Round(time.Millisecond))
		return nil
	case <-ctx.Done():
		sm.logger.Warn("sessions still open at shutdown deadline", "remaining", sm.Count())
		return ctx.Err()
	}
}
