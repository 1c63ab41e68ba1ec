package widget

import (
	"log/slog"

	"github.com/vango-dev/catsite/pkg/surface"
)

// Menu is the collapsible mobile navigation.
type Menu struct {
	painter
	toggle surface.NodeID
	menu   surface.NodeID
	open   bool
}

// NewMenu creates a closed menu driven by the hamburger toggle.
func NewMenu(s surface.Surface, toggle, menu surface.NodeID, logger *slog.Logger) *Menu {
	return &Menu{painter: newPainter(s, logger), toggle: toggle, menu: menu}
}

// Open reports whether the menu is expanded.
func (m *Menu) Open() bool { return m.open }

// Toggle flips the menu.
func (m *Menu) Toggle() {
	m.apply(!m.open)
}

// Close collapses the menu. Navigation link clicks call it.
func (m *Menu) Close() {
	m.apply(false)
}

func (m *Menu) apply(open bool) {
	m.open = open
	m.set(m.toggle, surface.Active(open))
	m.set(m.menu, surface.Active(open))
}
