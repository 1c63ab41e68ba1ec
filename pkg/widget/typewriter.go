package widget

import (
	"log/slog"
	"time"

	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/surface"
)

// Typewriter timings.
const (
	TypeStartDelay = 500 * time.Millisecond
	TypeInterval   = 100 * time.Millisecond
	CaretLinger    = time.Second
	caretStyle     = "2px solid #00d4ff"
)

// Typewriter types a title out one character at a time behind a caret.
type Typewriter struct {
	painter
	sched  loop.Scheduler
	id     surface.NodeID
	text   []rune
	typed  int
	cancel loop.Cancel
	done   bool
}

// NewTypewriter prepares to type text into id.
func NewTypewriter(s surface.Surface, sched loop.Scheduler, id surface.NodeID, text string, logger *slog.Logger) *Typewriter {
	return &Typewriter{
		painter: newPainter(s, logger),
		sched:   sched,
		id:      id,
		text:    []rune(text),
	}
}

// Start schedules typing after the start delay. Calling Start again has no
// effect.
func (w *Typewriter) Start() {
	if w.cancel != nil || w.done {
		return
	}
	w.cancel = w.sched.AfterFunc(TypeStartDelay, w.begin)
}

// Done reports whether the caret has been removed.
func (w *Typewriter) Done() bool { return w.done }

// Stop abandons typing wherever it is.
func (w *Typewriter) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Typewriter) begin() {
	w.set(w.id, surface.Text("").Merge(surface.Style("border-right", caretStyle)))
	if len(w.text) == 0 {
		w.finish()
		return
	}
	w.cancel = w.sched.Every(TypeInterval, w.tick)
}

func (w *Typewriter) tick() {
	w.typed++
	w.set(w.id, surface.Text(string(w.text[:w.typed])))
	if w.typed >= len(w.text) {
		w.cancel()
		w.finish()
	}
}

func (w *Typewriter) finish() {
	w.cancel = w.sched.AfterFunc(CaretLinger, func() {
		w.done = true
		w.set(w.id, surface.Style("border-right", "none"))
	})
}
