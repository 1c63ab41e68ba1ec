package form

import (
	"errors"
	"log/slog"
	"time"

	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/surface"
	"github.com/vango-dev/catsite/pkg/toast"
)

// ErrPending is returned when a submission arrives while another is still
// in flight.
var ErrPending = errors.New("form: submission pending")

// DefaultSubmitDelay is how long the simulated submission takes.
const DefaultSubmitDelay = 2 * time.Second

// SubmittingText is shown on the submit button while a submission is
// pending.
const SubmittingText = "Submitting..."

// Elements names the page elements a Submitter drives.
type Elements struct {
	Button     surface.NodeID
	ButtonText string
	Fields     []surface.NodeID
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithDelay sets the simulated submission delay.
func WithDelay(d time.Duration) SubmitterOption {
	return func(s *Submitter) {
		s.delay = d
	}
}

// WithSubmitLogger sets the logger.
func WithSubmitLogger(logger *slog.Logger) SubmitterOption {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSubmitHook registers a function called with every accepted contact
// once its submission completes.
func WithSubmitHook(fn func(Contact)) SubmitterOption {
	return func(s *Submitter) {
		s.onSubmit = fn
	}
}

// Submitter runs the contact form. Nothing is sent anywhere: an accepted
// request waits out the delay and then reports success.
type Submitter struct {
	surface  surface.Surface
	sched    loop.Scheduler
	toasts   *toast.Manager
	elems    Elements
	delay    time.Duration
	logger   *slog.Logger
	onSubmit func(Contact)

	cancel loop.Cancel
}

// NewSubmitter creates a Submitter for the given form elements.
func NewSubmitter(s surface.Surface, sched loop.Scheduler, toasts *toast.Manager, elems Elements, opts ...SubmitterOption) *Submitter {
	sub := &Submitter{
		surface: s,
		sched:   sched,
		toasts:  toasts,
		elems:   elems,
		delay:   DefaultSubmitDelay,
		logger:  slog.Default().With("component", "form"),
	}
	for _, opt := range opts {
		opt(sub)
	}
	return sub
}

// Pending reports whether a submission is in flight.
func (s *Submitter) Pending() bool {
	return s.cancel != nil
}

// Submit validates c. An invalid request shows an error toast and returns
// the validation error. A valid one disables the submit button until the
// delay has passed, then shows the success toast and resets the form.
func (s *Submitter) Submit(c Contact) error {
	if s.Pending() {
		return ErrPending
	}
	if err := c.Validate(); err != nil {
		s.toasts.Error(ValidationMessage(err))
		return err
	}

	if s.elems.Button != "" {
		s.set(s.elems.Button, surface.Text(SubmittingText).Merge(surface.Disabled(true)))
	}
	s.cancel = s.sched.AfterFunc(s.delay, func() {
		s.complete(c)
	})
	s.logger.Debug("contact submission started")
	return nil
}

// Close abandons a pending submission.
func (s *Submitter) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Submitter) complete(c Contact) {
	s.cancel = nil
	s.toasts.Success(MsgSubmitted)
	for _, id := range s.elems.Fields {
		s.set(id, surface.Value(""))
	}
	if s.elems.Button != "" {
		s.set(s.elems.Button, surface.Text(s.elems.ButtonText).Merge(surface.Disabled(false)))
	}
	s.logger.Info("contact submission completed")
	if s.onSubmit != nil {
		s.onSubmit(c)
	}
}

func (s *Submitter) set(id surface.NodeID, st surface.State) {
	if err := s.surface.SetVisualState(id, st); err != nil {
		s.logger.Warn("update form element", "id", id, "error", err)
	}
}
