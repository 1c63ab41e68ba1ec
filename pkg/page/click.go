package page

import (
	"fmt"

	"github.com/vango-dev/catsite/pkg/protocol"
	"github.com/vango-dev/catsite/pkg/surface"
)

// labelledRoles resolve clicks through the action table.
var labelledRoles = map[string]bool{
	protocol.RoleActionButton: true,
	protocol.RoleFooterLink:   true,
	protocol.RoleContactLink:  true,
	protocol.RoleSocialLink:   true,
	protocol.RoleDownload:     true,
	protocol.RoleTopicCard:    true,
}

func (p *Page) click(e *protocol.Event) {
	id := surface.NodeID(e.Target)
	roles := p.roles[id]
	if e.Role != "" {
		roles = []string{e.Role}
	}
	label := e.Label
	if label == "" {
		label = p.text[id]
	}
	if len(roles) == 0 {
		p.logger.Debug("click on unknown element", "target", id)
		return
	}
	for _, role := range roles {
		p.clickRole(role, id, label)
	}
}

func (p *Page) clickRole(role string, id surface.NodeID, label string) {
	switch role {
	case protocol.RoleMenuToggle:
		if p.menu != nil {
			p.menu.Toggle()
		}

	case protocol.RoleNavLink:
		if p.menu != nil {
			p.menu.Close()
		}
		if a, ok := p.actions.Table().ForRole(role, label); ok {
			p.perform(a)
		}
		if p.nav != nil {
			p.nav.Activate(id)
		}

	case protocol.RoleFAQItem:
		if p.faq != nil {
			p.faq.Toggle(p.faq.IndexOf(id))
		}

	case protocol.RoleExamSection:
		if p.sections != nil {
			p.sections.Toggle(p.sections.IndexOf(id))
		}

	case protocol.RoleFAQCTA:
		if a, ok := p.actions.Table().ForRole(role, label); ok {
			p.perform(a)
		}
		p.feedback.Flash(id, p.text[id])

	case protocol.RoleTimelinePrev:
		if p.timeline != nil {
			p.timeline.Prev()
		}

	case protocol.RoleTimelineNext:
		if p.timeline != nil {
			p.timeline.Next()
		}

	case protocol.RoleMBAStep:
		if p.mba == nil {
			return
		}
		title := p.text[id]
		if title == "" {
			title = label
		}
		i := p.mba.IndexOf(id)
		if p.mba.Select(i) {
			p.toasts.Info(fmt.Sprintf("Viewing step %d: %s", i+1, title))
		}

	case protocol.RoleBackToTop:
		if p.tracker != nil {
			if err := p.tracker.ToTop(); err != nil {
				p.logger.Warn("back to top", "error", err)
			}
		}

	default:
		if !labelledRoles[role] {
			return
		}
		a, ok := p.actions.Table().ForRole(role, label)
		if !ok {
			p.logger.Debug("no action for label", "role", role, "label", label)
			return
		}
		p.perform(a)
	}
}
