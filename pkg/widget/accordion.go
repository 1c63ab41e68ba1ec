package widget

import (
	"log/slog"

	"github.com/vango-dev/catsite/pkg/surface"
)

// Flavour selects how an accordion marks its open item.
type Flavour int

const (
	// FAQ marks the open item active and points its chevron up.
	FAQ Flavour = iota
	// Sections marks the open item expanded. The first item starts open.
	Sections
)

// Chevron icon classes for FAQ items.
const (
	ChevronDown = "fa-chevron-down"
	ChevronUp   = "fa-chevron-up"
)

// Item is one accordion entry. Icon is optional.
type Item struct {
	ID   surface.NodeID
	Icon surface.NodeID
}

// Accordion is a list where at most one item is open.
type Accordion struct {
	painter
	flavour Flavour
	items   []Item
	open    int
}

// NewAccordion creates an accordion and draws its initial state.
func NewAccordion(s surface.Surface, flavour Flavour, items []Item, logger *slog.Logger) *Accordion {
	a := &Accordion{
		painter: newPainter(s, logger),
		flavour: flavour,
		items:   items,
		open:    -1,
	}
	if flavour == Sections && len(items) > 0 {
		a.open = 0
		a.paint(0, true)
	}
	return a
}

// Open returns the index of the open item, or -1.
func (a *Accordion) Open() int { return a.open }

// Len returns the number of items.
func (a *Accordion) Len() int { return len(a.items) }

// IndexOf returns the index of the item with the given ID or icon, or -1.
func (a *Accordion) IndexOf(id surface.NodeID) int {
	for i, it := range a.items {
		if it.ID == id || (it.Icon != "" && it.Icon == id) {
			return i
		}
	}
	return -1
}

// Toggle opens item i and closes the rest, or closes i if it was open.
// Out-of-range indexes are ignored.
func (a *Accordion) Toggle(i int) {
	if i < 0 || i >= len(a.items) {
		return
	}
	if a.open == i {
		a.paint(i, false)
		a.open = -1
		return
	}
	if a.open >= 0 {
		a.paint(a.open, false)
	}
	a.paint(i, true)
	a.open = i
}

func (a *Accordion) paint(i int, open bool) {
	it := a.items[i]
	switch a.flavour {
	case Sections:
		a.set(it.ID, surface.Class("expanded", open))
	default:
		a.set(it.ID, surface.Active(open))
		a.set(it.Icon, surface.Class(ChevronUp, open).Merge(surface.Class(ChevronDown, !open)))
	}
}
