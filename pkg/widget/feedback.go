package widget

import (
	"log/slog"
	"time"

	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/surface"
)

// Feedback defaults.
const (
	SentText        = "✓ Request Sent!"
	FeedbackRestore = 2 * time.Second
)

type flash struct {
	original string
	cancel   loop.Cancel
}

// Feedback briefly relabels a button after it is clicked.
type Feedback struct {
	painter
	sched   loop.Scheduler
	restore time.Duration
	active  map[surface.NodeID]*flash
}

// NewFeedback creates a Feedback using restore as the flash length.
func NewFeedback(s surface.Surface, sched loop.Scheduler, restore time.Duration, logger *slog.Logger) *Feedback {
	if restore <= 0 {
		restore = FeedbackRestore
	}
	return &Feedback{
		painter: newPainter(s, logger),
		sched:   sched,
		restore: restore,
		active:  make(map[surface.NodeID]*flash),
	}
}

// Flash shows the sent label on id and restores original afterwards. A
// second flash while the first is showing restarts the timer and keeps the
// first original label.
func (f *Feedback) Flash(id surface.NodeID, original string) {
	fl, ok := f.active[id]
	if ok {
		fl.cancel()
	} else {
		fl = &flash{original: original}
		f.active[id] = fl
		f.set(id, surface.Text(SentText).Merge(surface.Class("sent", true)))
	}
	fl.cancel = f.sched.AfterFunc(f.restore, func() {
		delete(f.active, id)
		f.set(id, surface.Text(fl.original).Merge(surface.Class("sent", false)))
	})
}

// Flashing reports whether id currently shows the sent label.
func (f *Feedback) Flashing(id surface.NodeID) bool {
	_, ok := f.active[id]
	return ok
}

// Close cancels every pending restore.
func (f *Feedback) Close() {
	for id, fl := range f.active {
		fl.cancel()
		delete(f.active, id)
	}
}
