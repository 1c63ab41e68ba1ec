package widget

import (
	"log/slog"

	"github.com/vango-dev/catsite/pkg/surface"
)

// NavLinks keeps exactly one navigation link active once any is clicked.
type NavLinks struct {
	painter
	links  []surface.NodeID
	active surface.NodeID
}

// NewNavLinks creates the link group.
func NewNavLinks(s surface.Surface, links []surface.NodeID, logger *slog.Logger) *NavLinks {
	return &NavLinks{painter: newPainter(s, logger), links: links}
}

// Active returns the active link, or "".
func (n *NavLinks) Active() surface.NodeID { return n.active }

// Contains reports whether id is one of the links.
func (n *NavLinks) Contains(id surface.NodeID) bool {
	for _, l := range n.links {
		if l == id {
			return true
		}
	}
	return false
}

// Activate marks id active and every other link inactive.
func (n *NavLinks) Activate(id surface.NodeID) {
	if !n.Contains(id) {
		return
	}
	for _, l := range n.links {
		n.set(l, surface.Active(l == id))
	}
	n.active = id
}
