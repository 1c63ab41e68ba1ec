package toast

import (
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/surface"
)

// Role is the surface role of toast nodes.
const Role = "toast"

// Severity is the kind of message a toast carries.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Error   Severity = "error"
)

// ParseSeverity maps a name to a Severity. Unknown names are Info.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case Success:
		return Success
	case Error:
		return Error
	default:
		return Info
	}
}

// Icon returns the glyph shown next to the message.
func (s Severity) Icon() string {
	switch s {
	case Success:
		return "✓"
	case Error:
		return "✗"
	default:
		return "ℹ"
	}
}

// Config holds the lifecycle timings.
type Config struct {
	EnterDelay time.Duration
	Display    time.Duration
	Exit       time.Duration
}

// DefaultConfig returns the standard timings.
func DefaultConfig() Config {
	return Config{
		EnterDelay: 100 * time.Millisecond,
		Display:    5 * time.Second,
		Exit:       300 * time.Millisecond,
	}
}

type phase int

const (
	phaseEntering phase = iota
	phaseVisible
	phaseLeaving
	phaseRemoved
)

// Toast is one message on its way through the lifecycle.
type Toast struct {
	ID        string
	Message   string
	Severity  Severity
	CreatedAt time.Time

	phase     phase
	cancelIn  loop.Cancel
	cancelOut loop.Cancel
	cancelEnd loop.Cancel
}

// NodeID returns the surface node that displays the toast.
func (t *Toast) NodeID() surface.NodeID {
	return surface.NodeID("toast-" + t.ID)
}

// Visible reports whether the toast has finished entering and is not yet
// leaving.
func (t *Toast) Visible() bool {
	return t.phase == phaseVisible
}

// Removed reports whether the toast is gone from the surface.
func (t *Toast) Removed() bool {
	return t.phase == phaseRemoved
}

func (t *Toast) stopTimers() {
	for _, c := range []loop.Cancel{t.cancelIn, t.cancelOut, t.cancelEnd} {
		if c != nil {
			c()
		}
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfig sets the lifecycle timings.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithShowHook registers a function called for every toast shown.
func WithShowHook(fn func(*Toast)) Option {
	return func(m *Manager) {
		m.onShow = fn
	}
}

// Manager shows toasts on a surface, at most one at a time.
type Manager struct {
	surface surface.Surface
	sched   loop.Scheduler
	config  Config
	logger  *slog.Logger
	onShow  func(*Toast)

	current *Toast
}

// NewManager creates a manager drawing on s with timers from sched.
func NewManager(s surface.Surface, sched loop.Scheduler, opts ...Option) *Manager {
	m := &Manager{
		surface: s,
		sched:   sched,
		config:  DefaultConfig(),
		logger:  slog.Default().With("component", "toast"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the manager's timings.
func (m *Manager) Config() Config {
	return m.config
}

// Current returns the toast on screen, or nil.
func (m *Manager) Current() *Toast {
	return m.current
}

// Notify shows message for the default display duration.
func (m *Manager) Notify(message string, severity Severity) *Toast {
	return m.NotifyFor(message, severity, m.config.Display)
}

// NotifyFor shows message for the given display duration.
func (m *Manager) NotifyFor(message string, severity Severity, display time.Duration) *Toast {
	if m.current != nil {
		m.remove(m.current)
	}

	severity = ParseSeverity(string(severity))
	t := &Toast{
		ID:        newID(),
		Message:   message,
		Severity:  severity,
		CreatedAt: m.sched.Now(),
	}

	node := surface.Node{
		ID:      t.NodeID(),
		Role:    Role,
		Classes: []string{"notification", string(severity)},
		Text:    message,
		Attrs:   map[string]string{"icon": severity.Icon()},
	}
	if err := m.surface.Render(node); err != nil {
		m.logger.Error("render toast", "id", t.ID, "error", err)
		return t
	}
	m.current = t

	t.cancelIn = m.sched.AfterFunc(m.config.EnterDelay, func() {
		if t.phase != phaseEntering {
			return
		}
		t.phase = phaseVisible
		m.setState(t, surface.Show())
	})
	t.cancelOut = m.sched.AfterFunc(display, func() {
		m.hide(t)
	})

	m.logger.Debug("toast shown", "id", t.ID, "severity", severity)
	if m.onShow != nil {
		m.onShow(t)
	}
	return t
}

// Success shows a success toast.
func (m *Manager) Success(message string) *Toast {
	return m.Notify(message, Success)
}

// Error shows an error toast.
func (m *Manager) Error(message string) *Toast {
	return m.Notify(message, Error)
}

// Info shows an info toast.
func (m *Manager) Info(message string) *Toast {
	return m.Notify(message, Info)
}

// Dismiss hides and then removes t ahead of its auto-dismiss timer.
// Dismissing a toast that is already leaving or gone does nothing.
func (m *Manager) Dismiss(t *Toast) {
	if t == nil {
		return
	}
	m.hide(t)
}

// DismissID dismisses the current toast if it has the given ID or node ID.
// It reports whether a toast matched.
func (m *Manager) DismissID(id string) bool {
	t := m.current
	if t == nil || (t.ID != id && string(t.NodeID()) != id) {
		return false
	}
	m.hide(t)
	return true
}

// Clear removes the current toast immediately and stops its timers.
func (m *Manager) Clear() {
	if m.current != nil {
		m.remove(m.current)
	}
}

func (m *Manager) hide(t *Toast) {
	if t.phase == phaseLeaving || t.phase == phaseRemoved {
		return
	}
	if t.cancelIn != nil {
		t.cancelIn()
	}
	if t.cancelOut != nil {
		t.cancelOut()
	}
	t.phase = phaseLeaving
	m.setState(t, surface.Hide())
	t.cancelEnd = m.sched.AfterFunc(m.config.Exit, func() {
		m.remove(t)
	})
}

func (m *Manager) remove(t *Toast) {
	if t.phase == phaseRemoved {
		return
	}
	t.stopTimers()
	t.phase = phaseRemoved
	if m.current == t {
		m.current = nil
	}
	if err := m.surface.Remove(t.NodeID()); err != nil {
		m.logger.Warn("remove toast", "id", t.ID, "error", err)
	}
}

func (m *Manager) setState(t *Toast, s surface.State) {
	if err := m.surface.SetVisualState(t.NodeID(), s); err != nil {
		m.logger.Warn("update toast", "id", t.ID, "error", err)
	}
}

// newID uses the wall clock even under a virtual scheduler; IDs only need
// to be unique.
func newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
