package protocol

import (
	"fmt"

	"github.com/vango-dev/catsite/pkg/surface"
)

// Structural roles of page elements.
const (
	RoleMenuToggle = "menu-toggle"
	RoleMenu       = "nav-menu"
	RoleNavLink    = "nav-link"

	RoleFAQItem     = "faq-item"
	RoleExamSection = "exam-section"

	RoleActionButton = "action-btn"
	RoleFAQCTA       = "faq-cta"
	RoleFooterLink   = "footer-link"
	RoleContactLink  = "contact-link"
	RoleSocialLink   = "social-link"
	RoleDownload     = "download-btn"
	RoleTopicCard    = "topic-card"

	RoleReveal      = "reveal"
	RoleFadeIn      = "fade-in"
	RoleProgressBar = "progress-bar"
	RoleCounter     = "counter"

	RoleJourney     = "journey-section"
	RoleJourneyStep = "journey-step"

	RoleTimeline     = "timeline"
	RoleTimelineStep = "timeline-step"
	RoleTimelinePrev = "timeline-prev"
	RoleTimelineNext = "timeline-next"

	RoleMBATimeline = "mba-timeline"
	RoleMBAStep     = "mba-step"

	RoleBackToTop = "back-to-top"
	RoleParallax  = "parallax-layer"
	RoleHeroTitle = "hero-title"
	RoleSection   = "section"
	RoleForm      = "contact-form"
	RoleFormField = "form-field"
	RoleSubmit    = "submit-btn"
)

// Hook is one page element found by the client.
type Hook struct {
	ID string `json:"id"`

	// Name identifies sections that actions scroll to, and form fields.
	Name string `json:"name,omitempty"`

	// Text and Width are the element's initial content and inline width.
	Text  string `json:"text,omitempty"`
	Width string `json:"width,omitempty"`

	// Icon is the ID of the element's toggle icon, for FAQ items.
	Icon string `json:"icon,omitempty"`
}

// NodeID returns the hook's element ID.
func (h Hook) NodeID() surface.NodeID {
	return surface.NodeID(h.ID)
}

// Manifest lists the page's elements by role. Roles the page does not
// have are simply absent.
type Manifest struct {
	Hooks map[string][]Hook `json:"hooks"`
}

// Validate checks the manifest's size and that every hook has an ID.
func (m *Manifest) Validate() error {
	total := 0
	for role, hooks := range m.Hooks {
		total += len(hooks)
		for _, h := range hooks {
			if h.ID == "" {
				return fmt.Errorf("%w: %s hook without id", ErrInvalidEvent, role)
			}
		}
	}
	if total > MaxHooks {
		return fmt.Errorf("%w: %d hooks", ErrInvalidEvent, total)
	}
	return nil
}

// Has reports whether the page has at least one element of role.
func (m *Manifest) Has(role string) bool {
	return m != nil && len(m.Hooks[role]) > 0
}

// All returns the hooks of role.
func (m *Manifest) All(role string) []Hook {
	if m == nil {
		return nil
	}
	return m.Hooks[role]
}

// First returns the first hook of role.
func (m *Manifest) First(role string) (Hook, bool) {
	hooks := m.All(role)
	if len(hooks) == 0 {
		return Hook{}, false
	}
	return hooks[0], true
}

// IDs returns the element IDs of role, in page order.
func (m *Manifest) IDs(role string) []surface.NodeID {
	hooks := m.All(role)
	if len(hooks) == 0 {
		return nil
	}
	ids := make([]surface.NodeID, len(hooks))
	for i, h := range hooks {
		ids[i] = h.NodeID()
	}
	return ids
}

// Named returns the hook of role with the given name.
func (m *Manifest) Named(role, name string) (Hook, bool) {
	for _, h := range m.All(role) {
		if h.Name == name {
			return h, true
		}
	}
	return Hook{}, false
}
