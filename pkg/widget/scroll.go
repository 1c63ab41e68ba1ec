package widget

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/vango-dev/catsite/pkg/surface"
)

// BackToTopOffset is the scroll position past which the back-to-top button
// shows.
const BackToTopOffset = 300

// ParallaxSpeed returns the scroll factor of the i-th background layer.
func ParallaxSpeed(i int) float64 {
	return 0.1 + float64(i)*0.05
}

// ScrollTracker reacts to the page scroll position.
type ScrollTracker struct {
	painter
	scroller  surface.Scroller
	backToTop surface.NodeID
	layers    []surface.NodeID
	visible   bool
}

// NewScrollTracker creates a tracker. backToTop may be empty and layers
// may be nil when the page has neither. scroller may be nil if the surface
// cannot scroll.
func NewScrollTracker(s surface.Surface, scroller surface.Scroller, backToTop surface.NodeID, layers []surface.NodeID, logger *slog.Logger) *ScrollTracker {
	return &ScrollTracker{
		painter:   newPainter(s, logger),
		scroller:  scroller,
		backToTop: backToTop,
		layers:    layers,
	}
}

// BackToTopVisible reports whether the back-to-top button is showing.
func (t *ScrollTracker) BackToTopVisible() bool { return t.visible }

// Update applies scroll position y. The button state is only sent when it
// changes; parallax layers follow every update.
func (t *ScrollTracker) Update(y float64) {
	if t.backToTop != "" {
		visible := y > BackToTopOffset
		if visible != t.visible {
			t.visible = visible
			t.set(t.backToTop, surface.Class("visible", visible))
		}
	}
	for i, id := range t.layers {
		t.set(id, surface.Style("transform", LayerTransform(y, i)))
	}
}

// LayerTransform returns the transform of the i-th parallax layer at
// scroll position y.
func LayerTransform(y float64, i int) string {
	offset := math.Round(-(y*ParallaxSpeed(i))*100) / 100
	if offset == 0 {
		offset = 0 // drop the sign of -0
	}
	return fmt.Sprintf("translateY(%spx)", strconv.FormatFloat(offset, 'f', -1, 64))
}

// ToTop smooth-scrolls to the top of the page.
func (t *ScrollTracker) ToTop() error {
	if t.scroller == nil {
		return fmt.Errorf("widget: surface cannot scroll")
	}
	return t.scroller.ScrollIntoView(surface.PageTop)
}
