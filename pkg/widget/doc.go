// Package widget holds the small page behaviours that react directly to a
// click or to the scroll position: the mobile menu, accordions, the active
// navigation link, the back-to-top button and parallax layers, button
// feedback flashes, and the hero title typewriter.
//
// Widgets draw on a surface.Surface and, where they need timers, take a
// loop.Scheduler. Like the rest of a page session they are not safe for
// concurrent use and must be driven from the session's loop.
package widget

import (
	"log/slog"

	"github.com/vango-dev/catsite/pkg/surface"
)

type painter struct {
	surface surface.Surface
	logger  *slog.Logger
}

func newPainter(s surface.Surface, logger *slog.Logger) painter {
	if logger == nil {
		logger = slog.Default().With("component", "widget")
	}
	return painter{surface: s, logger: logger}
}

func (p painter) set(id surface.NodeID, st surface.State) {
	if id == "" {
		return
	}
	if err := p.surface.SetVisualState(id, st); err != nil {
		p.logger.Warn("update element", "id", id, "error", err)
	}
}
