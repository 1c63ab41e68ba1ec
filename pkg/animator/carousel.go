package animator

import (
	"errors"
	"log/slog"
	"time"

	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/surface"
)

// ErrNoSteps is returned when a carousel is built without steps. Page
// wiring treats it as the feature being absent.
var ErrNoSteps = errors.New("animator: carousel has no steps")

// Mode selects how the active index is shown.
type Mode int

const (
	// Single marks only the active step.
	Single Mode = iota

	// Progressive marks every step up to and including the active one,
	// drawing a progress trail.
	Progressive
)

// CarouselOption configures a Carousel.
type CarouselOption func(*Carousel)

// WithMode sets how steps are marked.
func WithMode(m Mode) CarouselOption {
	return func(c *Carousel) {
		c.mode = m
	}
}

// WithControls sets the prev/next buttons disabled at the bounds.
func WithControls(prev, next surface.NodeID) CarouselOption {
	return func(c *Carousel) {
		c.prev = prev
		c.next = next
	}
}

// WithCarouselLogger sets the logger.
func WithCarouselLogger(logger *slog.Logger) CarouselOption {
	return func(c *Carousel) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Carousel is a navigable sequence of steps with one active index.
//
// Next and Prev clamp at the ends. The auto-advance timer wraps to the
// first step after the last; any manual navigation cancels it for good.
type Carousel struct {
	surface surface.Surface
	sched   loop.Scheduler
	logger  *slog.Logger

	steps  []surface.NodeID
	prev   surface.NodeID
	next   surface.NodeID
	mode   Mode
	active int

	auto        loop.Cancel
	autoStopped bool
}

// NewCarousel creates a carousel at index 0 and renders it.
func NewCarousel(s surface.Surface, sched loop.Scheduler, steps []surface.NodeID, opts ...CarouselOption) (*Carousel, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	c := &Carousel{
		surface: s,
		sched:   sched,
		logger:  slog.Default().With("component", "carousel"),
		steps:   append([]surface.NodeID(nil), steps...),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Render()
	return c, nil
}

// Len returns the number of steps.
func (c *Carousel) Len() int { return len(c.steps) }

// Active returns the active index.
func (c *Carousel) Active() int { return c.active }

// Mode returns how steps are marked.
func (c *Carousel) Mode() Mode { return c.mode }

// Steps returns the step IDs.
func (c *Carousel) Steps() []surface.NodeID {
	return append([]surface.NodeID(nil), c.steps...)
}

// IndexOf returns the index of a step, or -1.
func (c *Carousel) IndexOf(id surface.NodeID) int {
	for i, s := range c.steps {
		if s == id {
			return i
		}
	}
	return -1
}

// Next moves forward one step. At the last step it does nothing and
// returns false. It always cancels auto-advance.
func (c *Carousel) Next() bool {
	c.StopAuto()
	if c.active >= len(c.steps)-1 {
		return false
	}
	c.active++
	c.Render()
	return true
}

// Prev moves back one step. At the first step it does nothing and returns
// false. It always cancels auto-advance.
func (c *Carousel) Prev() bool {
	c.StopAuto()
	if c.active <= 0 {
		return false
	}
	c.active--
	c.Render()
	return true
}

// Select jumps to step i, as when a step is clicked. Out-of-range indices
// are ignored. It always cancels auto-advance.
func (c *Carousel) Select(i int) bool {
	c.StopAuto()
	if i < 0 || i >= len(c.steps) {
		return false
	}
	c.active = i
	c.Render()
	return true
}

// StartAuto advances every period, wrapping to the first step after the
// last. It does nothing if auto-advance is already running or has been
// cancelled by user interaction.
func (c *Carousel) StartAuto(period time.Duration) {
	if c.auto != nil || c.autoStopped || period <= 0 {
		return
	}
	c.auto = c.sched.Every(period, func() {
		if c.autoStopped {
			return
		}
		c.active = (c.active + 1) % len(c.steps)
		c.Render()
	})
	c.logger.Debug("carousel auto-advance started", "period", period, "steps", len(c.steps))
}

// StopAuto cancels auto-advance permanently.
func (c *Carousel) StopAuto() {
	c.autoStopped = true
	if c.auto != nil {
		c.auto()
		c.auto = nil
	}
}

// AutoRunning reports whether the auto-advance timer is live.
func (c *Carousel) AutoRunning() bool {
	return c.auto != nil
}

// Render pushes the current state to the surface.
func (c *Carousel) Render() {
	for i, step := range c.steps {
		on := i == c.active
		if c.mode == Progressive {
			on = i <= c.active
		}
		c.set(step, surface.Active(on))
	}
	if c.prev != "" {
		c.set(c.prev, controlState(c.active == 0))
	}
	if c.next != "" {
		c.set(c.next, controlState(c.active == len(c.steps)-1))
	}
}

func (c *Carousel) set(id surface.NodeID, s surface.State) {
	if err := c.surface.SetVisualState(id, s); err != nil {
		c.logger.Warn("update carousel element", "id", id, "error", err)
	}
}

func controlState(atBound bool) surface.State {
	opacity := "1"
	if atBound {
		opacity = "0.5"
	}
	return surface.Disabled(atBound).Merge(surface.Style("opacity", opacity))
}
