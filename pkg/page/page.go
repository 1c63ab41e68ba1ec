package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vango-dev/catsite/pkg/actions"
	"github.com/vango-dev/catsite/pkg/animator"
	"github.com/vango-dev/catsite/pkg/form"
	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/protocol"
	"github.com/vango-dev/catsite/pkg/surface"
	"github.com/vango-dev/catsite/pkg/toast"
	"github.com/vango-dev/catsite/pkg/widget"
)

var (
	// ErrNotInstalled is returned for events that arrive before hello.
	ErrNotInstalled = errors.New("page: no hello received")

	// ErrInstalled is returned for a second hello.
	ErrInstalled = errors.New("page: already installed")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("page: closed")
)

// MsgMissingSection is shown when an action scrolls to a section the page
// does not have.
const MsgMissingSection = "Sorry, that section is not available on this page"

// Config holds the page's timings and thresholds.
type Config struct {
	Toast    toast.Config
	Animator animator.Config

	SubmitDelay     time.Duration
	FeedbackRestore time.Duration

	// RevealThreshold applies to plain reveal elements and the journey
	// section; ProgressThreshold to progress bars.
	RevealThreshold   float64
	ProgressThreshold float64

	// FadeStep is the extra transition delay per element in a fade-in list.
	FadeStep time.Duration

	// MBAPeriod is the auto-advance period of the MBA timeline.
	MBAPeriod time.Duration
}

// DefaultConfig returns the standard page settings.
func DefaultConfig() Config {
	return Config{
		Toast:             toast.DefaultConfig(),
		Animator:          animator.DefaultConfig(),
		SubmitDelay:       form.DefaultSubmitDelay,
		FeedbackRestore:   widget.FeedbackRestore,
		RevealThreshold:   0.3,
		ProgressThreshold: 0.5,
		FadeStep:          100 * time.Millisecond,
		MBAPeriod:         4 * time.Second,
	}
}

// Option configures a Page.
type Option func(*Page)

// WithConfig sets the page settings.
func WithConfig(cfg Config) Option {
	return func(p *Page) {
		p.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Page) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithActions sets the label to action table. Without it the embedded
// default is used.
func WithActions(store *actions.Store) Option {
	return func(p *Page) {
		p.actions = store
	}
}

// WithToastHook registers a function called for every toast shown.
func WithToastHook(fn func(*toast.Toast)) Option {
	return func(p *Page) {
		p.onToast = fn
	}
}

// WithSubmitHook registers a function called for every completed contact
// submission.
func WithSubmitHook(fn func(form.Contact)) Option {
	return func(p *Page) {
		p.onSubmit = fn
	}
}

// Page is the interaction state of one browser page. It is not safe for
// concurrent use; the session calls it from its event loop.
type Page struct {
	surface  surface.Surface
	scroller surface.Scroller
	sched    loop.Scheduler
	config   Config
	logger   *slog.Logger
	actions  *actions.Store
	onToast  func(*toast.Toast)
	onSubmit func(form.Contact)

	manifest *protocol.Manifest
	roles    map[surface.NodeID][]string
	text     map[surface.NodeID]string
	closed   bool

	toasts    *toast.Manager
	anim      *animator.Animator
	feedback  *widget.Feedback
	menu      *widget.Menu
	nav       *widget.NavLinks
	faq       *widget.Accordion
	sections  *widget.Accordion
	tracker   *widget.ScrollTracker
	typer     *widget.Typewriter
	timeline  *animator.Carousel
	mba       *animator.Carousel
	submitter *form.Submitter
}

// New creates a page drawing on s. If s also implements
// surface.Scroller, scroll actions use it.
func New(s surface.Surface, sched loop.Scheduler, opts ...Option) *Page {
	p := &Page{
		surface: s,
		sched:   sched,
		config:  DefaultConfig(),
		logger:  slog.Default().With("component", "page"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.actions == nil {
		p.actions = actions.NewStore(actions.Default())
	}
	p.scroller, _ = s.(surface.Scroller)

	toastOpts := []toast.Option{toast.WithConfig(p.config.Toast), toast.WithLogger(p.logger)}
	if p.onToast != nil {
		toastOpts = append(toastOpts, toast.WithShowHook(p.onToast))
	}
	p.toasts = toast.NewManager(s, sched, toastOpts...)
	p.anim = animator.New(s, sched, animator.WithConfig(p.config.Animator), animator.WithLogger(p.logger))
	p.feedback = widget.NewFeedback(s, sched, p.config.FeedbackRestore, p.logger)
	return p
}

// Toasts returns the page's toast manager.
func (p *Page) Toasts() *toast.Manager { return p.toasts }

// Installed reports whether hello has been handled.
func (p *Page) Installed() bool { return p.manifest != nil }

// Handle routes one client event. Errors are returned only for malformed
// events and protocol misuse.
func (p *Page) Handle(ctx context.Context, e *protocol.Event) (err error) {
	if p.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if e.Type != protocol.EventHello && p.manifest == nil {
		return ErrNotInstalled
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("event handler panic", "type", e.Type, "target", e.Target, "panic", r)
			p.toasts.Error("Something went wrong. Please try again.")
			err = fmt.Errorf("page: %s handler panic: %v", e.Type, r)
		}
	}()

	switch e.Type {
	case protocol.EventHello:
		return p.Install(e.Manifest)
	case protocol.EventClick:
		p.click(e)
	case protocol.EventIntersect:
		p.anim.Intersect(animator.Entry{
			ID:    surface.NodeID(e.Target),
			Ratio: e.Ratio,
			Text:  e.Text,
			Width: e.Width,
		})
	case protocol.EventScroll:
		if p.tracker != nil {
			p.tracker.Update(e.ScrollY)
		}
	case protocol.EventSubmit:
		p.submit(e)
	case protocol.EventDismiss:
		p.toasts.DismissID(e.Target)
	}
	return nil
}

// Close cancels every timer the page owns and removes its toast.
func (p *Page) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.anim.Close()
	p.feedback.Close()
	if p.timeline != nil {
		p.timeline.StopAuto()
	}
	if p.mba != nil {
		p.mba.StopAuto()
	}
	if p.typer != nil {
		p.typer.Stop()
	}
	if p.submitter != nil {
		p.submitter.Close()
	}
	p.toasts.Clear()
}

func (p *Page) submit(e *protocol.Event) {
	if p.submitter == nil {
		p.logger.Debug("submit without contact form")
		return
	}
	err := p.submitter.Submit(form.ContactFromFields(e.Fields))
	switch {
	case err == nil:
	case errors.Is(err, form.ErrPending):
		p.logger.Debug("submit ignored while pending")
	default:
		p.logger.Debug("contact form rejected", "reason", form.ValidationMessage(err))
	}
}

// perform runs an action from the table.
func (p *Page) perform(a actions.Action) {
	switch a.Kind() {
	case actions.KindScroll:
		p.scrollTo(a.Scroll)
	default:
		display := a.DisplayFor()
		if display <= 0 {
			display = p.config.Toast.Display
		}
		p.toasts.NotifyFor(a.Notify, toast.ParseSeverity(a.Severity), display)
	}
}

func (p *Page) scrollTo(name string) {
	hook, ok := p.manifest.Named(protocol.RoleSection, name)
	if !ok || p.scroller == nil {
		p.logger.Warn("scroll target missing", "target", name)
		p.toasts.Error(MsgMissingSection)
		return
	}
	if err := p.scroller.ScrollIntoView(hook.NodeID()); err != nil {
		p.logger.Warn("scroll", "target", name, "error", err)
		p.toasts.Error(MsgMissingSection)
	}
}
