package animator

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/surface"
)

// Kind is the effect a subscription runs.
type Kind int

const (
	Reveal Kind = iota
	ProgressFill
	Counter
	CarouselAuto
	CarouselManual
	Stagger
)

var kindNames = map[Kind]string{
	Reveal:         "reveal",
	ProgressFill:   "progress-fill",
	Counter:        "counter",
	CarouselAuto:   "carousel-auto",
	CarouselManual: "carousel-manual",
	Stagger:        "stagger",
}

// String returns the kind's name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a name back to a Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Config holds thresholds and timings.
type Config struct {
	Threshold      float64
	FillDelay      time.Duration
	CounterTick    time.Duration
	CounterSteps   int
	CarouselPeriod time.Duration
	StaggerStep    time.Duration
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		Threshold:      0.1,
		FillDelay:      500 * time.Millisecond,
		CounterTick:    30 * time.Millisecond,
		CounterSteps:   50,
		CarouselPeriod: 3 * time.Second,
		StaggerStep:    500 * time.Millisecond,
	}
}

// Target is an element registered for a visibility effect.
type Target struct {
	ID surface.NodeID

	// Text is the counter's final display text, e.g. "250L+".
	Text string

	// Width is the progress bar's final width, e.g. "72%".
	Width string

	// Steps are the children activated one by one by Stagger.
	Steps []surface.NodeID

	// Carousel is the carousel started by CarouselAuto.
	Carousel *Carousel

	// Period overrides the configured carousel period when positive.
	Period time.Duration
}

// Entry is a viewport intersection report. Text and Width, when set,
// carry the element's declared final state at the time it was seen and
// take precedence over the Target's.
type Entry struct {
	ID    surface.NodeID
	Ratio float64
	Text  string
	Width string
}

// ObserveOption configures a single subscription.
type ObserveOption func(*Subscription)

// WithThreshold sets the visible fraction needed to fire.
func WithThreshold(ratio float64) ObserveOption {
	return func(s *Subscription) {
		s.threshold = ratio
	}
}

// WithHiddenStart renders the pre-reveal state (transparent, shifted down)
// at observe time, with the given transition delay. Used for lists that
// cascade in.
func WithHiddenStart(delay time.Duration) ObserveOption {
	return func(s *Subscription) {
		s.hiddenStart = true
		s.delay = delay
	}
}

// Subscription is one registered effect.
type Subscription struct {
	animator    *Animator
	target      Target
	kind        Kind
	threshold   float64
	hiddenStart bool
	delay       time.Duration
	active      bool
}

// Kind returns the subscription's effect.
func (s *Subscription) Kind() Kind { return s.kind }

// Active reports whether the subscription is still waiting to fire.
func (s *Subscription) Active() bool { return s.active }

// Unsubscribe stops observing. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if !s.active {
		return
	}
	s.active = false
	s.animator.detach(s)
}

// Option configures an Animator.
type Option func(*Animator)

// WithConfig sets the thresholds and timings.
func WithConfig(cfg Config) Option {
	return func(a *Animator) {
		a.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Animator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Animator runs visibility-triggered effects.
type Animator struct {
	surface surface.Surface
	sched   loop.Scheduler
	config  Config
	logger  *slog.Logger

	subs    map[surface.NodeID][]*Subscription
	running map[int]loop.Cancel
	nextRun int
	closed  bool
}

// New creates an animator drawing on s with timers from sched.
func New(s surface.Surface, sched loop.Scheduler, opts ...Option) *Animator {
	a := &Animator{
		surface: s,
		sched:   sched,
		config:  DefaultConfig(),
		logger:  slog.Default().With("component", "animator"),
		subs:    make(map[surface.NodeID][]*Subscription),
		running: make(map[int]loop.Cancel),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.config.CounterSteps <= 0 {
		a.config.CounterSteps = DefaultConfig().CounterSteps
	}
	return a
}

// Config returns the animator's settings.
func (a *Animator) Config() Config {
	return a.config
}

// Observe registers target for a visibility effect.
//
// CarouselManual has no viewport behaviour: it renders the carousel's
// current state and returns an already inactive subscription.
func (a *Animator) Observe(target Target, kind Kind, opts ...ObserveOption) *Subscription {
	sub := &Subscription{
		animator:  a,
		target:    target,
		kind:      kind,
		threshold: a.config.Threshold,
	}
	for _, opt := range opts {
		opt(sub)
	}

	if a.closed {
		return sub
	}

	if kind == CarouselManual {
		if target.Carousel != nil {
			target.Carousel.Render()
		}
		return sub
	}

	if sub.hiddenStart {
		a.set(target.ID, hiddenState(sub.delay))
	}

	sub.active = true
	a.subs[target.ID] = append(a.subs[target.ID], sub)
	return sub
}

// Observed reports how many subscriptions are waiting on id.
func (a *Animator) Observed(id surface.NodeID) int {
	return len(a.subs[id])
}

// Intersect handles a viewport report, firing every waiting subscription on
// the element whose threshold is met. It returns how many fired.
func (a *Animator) Intersect(e Entry) int {
	if a.closed {
		return 0
	}
	subs := append([]*Subscription(nil), a.subs[e.ID]...)
	fired := 0
	for _, sub := range subs {
		if !sub.active || e.Ratio <= 0 || e.Ratio < sub.threshold {
			continue
		}
		sub.Unsubscribe()
		a.fire(sub, e)
		fired++
	}
	return fired
}

// Close cancels every running animation and drops all subscriptions.
func (a *Animator) Close() {
	if a.closed {
		return
	}
	a.closed = true
	for _, cancel := range a.running {
		cancel()
	}
	a.running = nil
	for _, subs := range a.subs {
		for _, s := range subs {
			s.active = false
		}
	}
	a.subs = nil
}

// Running reports how many timer-driven animations are in flight.
func (a *Animator) Running() int {
	return len(a.running)
}

func (a *Animator) detach(s *Subscription) {
	subs := a.subs[s.target.ID]
	for i, other := range subs {
		if other == s {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(a.subs, s.target.ID)
	} else {
		a.subs[s.target.ID] = subs
	}
}

func (a *Animator) fire(sub *Subscription, e Entry) {
	t := sub.target
	a.logger.Debug("visibility effect", "id", t.ID, "kind", sub.kind)

	switch sub.kind {
	case Reveal:
		a.set(t.ID, revealedState())

	case ProgressFill:
		width := t.Width
		if e.Width != "" {
			width = e.Width
		}
		a.fill(t.ID, width)

	case Counter:
		text := t.Text
		if e.Text != "" {
			text = e.Text
		}
		a.count(t.ID, text)

	case CarouselAuto:
		if t.Carousel != nil {
			period := a.config.CarouselPeriod
			if t.Period > 0 {
				period = t.Period
			}
			t.Carousel.StartAuto(period)
		}

	case Stagger:
		a.set(t.ID, surface.Class("animate-in", true))
		a.stagger(t.Steps)
	}
}

func (a *Animator) fill(id surface.NodeID, width string) {
	if width == "" {
		return
	}
	a.set(id, surface.Width("0%"))
	a.track(func(done func()) loop.Cancel {
		return a.sched.AfterFunc(a.config.FillDelay, func() {
			done()
			a.set(id, surface.Width(width))
		})
	})
}

func (a *Animator) stagger(steps []surface.NodeID) {
	for i, step := range steps {
		step := step
		a.track(func(done func()) loop.Cancel {
			return a.sched.AfterFunc(time.Duration(i)*a.config.StaggerStep, func() {
				done()
				a.set(step, surface.Active(true))
			})
		})
	}
}

// track registers a timer so Close can cancel it. start receives a done
// function the timer calls when it finishes on its own.
func (a *Animator) track(start func(done func()) loop.Cancel) {
	a.nextRun++
	run := a.nextRun
	done := func() {
		if a.running != nil {
			delete(a.running, run)
		}
	}
	cancel := start(done)
	if a.running != nil {
		a.running[run] = cancel
	}
}

func (a *Animator) set(id surface.NodeID, s surface.State) {
	if err := a.surface.SetVisualState(id, s); err != nil {
		a.logger.Warn("update element", "id", id, "error", err)
	}
}

func hiddenState(delay time.Duration) surface.State {
	return surface.State{Style: map[string]string{
		"opacity":    "0",
		"transform":  "translateY(30px)",
		"transition": fmt.Sprintf("all 0.6s ease %gs", delay.Seconds()),
	}}
}

func revealedState() surface.State {
	return surface.Class("animate-in", true).Merge(surface.State{Style: map[string]string{
		"opacity":   "1",
		"transform": "translateY(0)",
	}})
}
