package page

import (
	"errors"
	"time"

	"github.com/vango-dev/catsite/pkg/animator"
	"github.com/vango-dev/catsite/pkg/form"
	"github.com/vango-dev/catsite/pkg/protocol"
	"github.com/vango-dev/catsite/pkg/surface"
	"github.com/vango-dev/catsite/pkg/widget"
)

// Install sets up every feature whose elements appear in m.
func (p *Page) Install(m *protocol.Manifest) error {
	if p.closed {
		return ErrClosed
	}
	if p.manifest != nil {
		return ErrInstalled
	}
	if err := m.Validate(); err != nil {
		return err
	}
	p.manifest = m
	p.index(m)

	var installed []string
	add := func(name string, ok bool) {
		if ok {
			installed = append(installed, name)
		}
	}

	add("menu", p.installMenu(m))
	add("accordions", p.installAccordions(m))
	add("animations", p.installAnimations(m))
	add("timeline", p.installTimeline(m))
	add("mba-timeline", p.installMBA(m))
	add("scroll", p.installScroll(m))
	add("typewriter", p.installTypewriter(m))
	add("contact-form", p.installForm(m))

	p.logger.Info("page installed", "features", installed, "hooks", len(p.roles))
	return nil
}

func (p *Page) index(m *protocol.Manifest) {
	p.roles = make(map[surface.NodeID][]string)
	p.text = make(map[surface.NodeID]string)
	for role, hooks := range m.Hooks {
		for _, h := range hooks {
			id := h.NodeID()
			p.roles[id] = append(p.roles[id], role)
			if h.Text != "" {
				p.text[id] = h.Text
			}
		}
	}
}

func (p *Page) installMenu(m *protocol.Manifest) bool {
	if m.Has(protocol.RoleNavLink) {
		p.nav = widget.NewNavLinks(p.surface, m.IDs(protocol.RoleNavLink), p.logger)
	}
	toggle, ok := m.First(protocol.RoleMenuToggle)
	menu, ok2 := m.First(protocol.RoleMenu)
	if !ok || !ok2 {
		return false
	}
	p.menu = widget.NewMenu(p.surface, toggle.NodeID(), menu.NodeID(), p.logger)
	return true
}

func (p *Page) installAccordions(m *protocol.Manifest) bool {
	if hooks := m.All(protocol.RoleFAQItem); len(hooks) > 0 {
		items := make([]widget.Item, len(hooks))
		for i, h := range hooks {
			items[i] = widget.Item{ID: h.NodeID(), Icon: surface.NodeID(h.Icon)}
		}
		p.faq = widget.NewAccordion(p.surface, widget.FAQ, items, p.logger)
	}
	if hooks := m.All(protocol.RoleExamSection); len(hooks) > 0 {
		items := make([]widget.Item, len(hooks))
		for i, h := range hooks {
			items[i] = widget.Item{ID: h.NodeID()}
		}
		p.sections = widget.NewAccordion(p.surface, widget.Sections, items, p.logger)
	}
	return p.faq != nil || p.sections != nil
}

func (p *Page) installAnimations(m *protocol.Manifest) bool {
	n := 0
	for _, h := range m.All(protocol.RoleReveal) {
		p.anim.Observe(animator.Target{ID: h.NodeID()}, animator.Reveal,
			animator.WithThreshold(p.config.RevealThreshold))
		n++
	}
	for i, h := range m.All(protocol.RoleFadeIn) {
		p.anim.Observe(animator.Target{ID: h.NodeID()}, animator.Reveal,
			animator.WithHiddenStart(time.Duration(i)*p.config.FadeStep))
		n++
	}
	for _, h := range m.All(protocol.RoleProgressBar) {
		p.anim.Observe(animator.Target{ID: h.NodeID(), Width: h.Width}, animator.ProgressFill,
			animator.WithThreshold(p.config.ProgressThreshold))
		n++
	}
	for _, h := range m.All(protocol.RoleCounter) {
		p.anim.Observe(animator.Target{ID: h.NodeID(), Text: h.Text}, animator.Counter)
		n++
	}
	if h, ok := m.First(protocol.RoleJourney); ok {
		p.anim.Observe(animator.Target{ID: h.NodeID(), Steps: m.IDs(protocol.RoleJourneyStep)}, animator.Stagger,
			animator.WithThreshold(p.config.RevealThreshold))
		n++
	}
	return n > 0
}

func (p *Page) installTimeline(m *protocol.Manifest) bool {
	opts := []animator.CarouselOption{
		animator.WithMode(animator.Progressive),
		animator.WithCarouselLogger(p.logger),
	}
	prev, okPrev := m.First(protocol.RoleTimelinePrev)
	next, okNext := m.First(protocol.RoleTimelineNext)
	if okPrev && okNext {
		opts = append(opts, animator.WithControls(prev.NodeID(), next.NodeID()))
	}
	c, err := animator.NewCarousel(p.surface, p.sched, m.IDs(protocol.RoleTimelineStep), opts...)
	if errors.Is(err, animator.ErrNoSteps) {
		return false
	}
	p.timeline = c
	if section, ok := m.First(protocol.RoleTimeline); ok {
		p.anim.Observe(animator.Target{ID: section.NodeID(), Carousel: c}, animator.CarouselAuto)
	} else {
		p.anim.Observe(animator.Target{Carousel: c}, animator.CarouselManual)
	}
	return true
}

func (p *Page) installMBA(m *protocol.Manifest) bool {
	c, err := animator.NewCarousel(p.surface, p.sched, m.IDs(protocol.RoleMBAStep),
		animator.WithMode(animator.Single), animator.WithCarouselLogger(p.logger))
	if errors.Is(err, animator.ErrNoSteps) {
		return false
	}
	p.mba = c
	if section, ok := m.First(protocol.RoleMBATimeline); ok {
		p.anim.Observe(animator.Target{ID: section.NodeID(), Carousel: c, Period: p.config.MBAPeriod}, animator.CarouselAuto)
	} else {
		p.anim.Observe(animator.Target{Carousel: c}, animator.CarouselManual)
	}
	return true
}

func (p *Page) installScroll(m *protocol.Manifest) bool {
	top, hasTop := m.First(protocol.RoleBackToTop)
	layers := m.IDs(protocol.RoleParallax)
	if !hasTop && len(layers) == 0 {
		return false
	}
	p.tracker = widget.NewScrollTracker(p.surface, p.scroller, top.NodeID(), layers, p.logger)
	return true
}

func (p *Page) installTypewriter(m *protocol.Manifest) bool {
	h, ok := m.First(protocol.RoleHeroTitle)
	if !ok || h.Text == "" {
		return false
	}
	p.typer = widget.NewTypewriter(p.surface, p.sched, h.NodeID(), h.Text, p.logger)
	p.typer.Start()
	return true
}

func (p *Page) installForm(m *protocol.Manifest) bool {
	if !m.Has(protocol.RoleForm) {
		return false
	}
	elems := form.Elements{Fields: m.IDs(protocol.RoleFormField)}
	if btn, ok := m.First(protocol.RoleSubmit); ok {
		elems.Button = btn.NodeID()
		elems.ButtonText = btn.Text
	}
	opts := []form.SubmitterOption{
		form.WithDelay(p.config.SubmitDelay),
		form.WithSubmitLogger(p.logger),
	}
	if p.onSubmit != nil {
		opts = append(opts, form.WithSubmitHook(p.onSubmit))
	}
	p.submitter = form.NewSubmitter(p.surface, p.sched, p.toasts, elems, opts...)
	return true
}
