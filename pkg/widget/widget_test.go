package widget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/surface"
)

func newClock() *loop.Manual {
	return loop.NewManual(time.Unix(1700000000, 0))
}

func TestMenu(t *testing.T) {
	rec := surface.NewRecorder()
	m := NewMenu(rec, "hamburger", "nav-menu", nil)

	m.Toggle()
	assert.True(t, m.Open())
	assert.True(t, rec.HasClass("hamburger", "active"))
	assert.True(t, rec.HasClass("nav-menu", "active"))

	m.Toggle()
	assert.False(t, rec.HasClass("nav-menu", "active"))

	m.Toggle()
	m.Close()
	assert.False(t, m.Open())
	assert.False(t, rec.HasClass("hamburger", "active"))
}

func faqItems() []Item {
	return []Item{
		{ID: "faq-0", Icon: "faq-0-icon"},
		{ID: "faq-1", Icon: "faq-1-icon"},
		{ID: "faq-2", Icon: "faq-2-icon"},
	}
}

func TestAccordion_FAQ(t *testing.T) {
	rec := surface.NewRecorder()
	a := NewAccordion(rec, FAQ, faqItems(), nil)
	assert.Equal(t, -1, a.Open())
	assert.Empty(t, rec.Calls(), "FAQ starts untouched")

	a.Toggle(1)
	assert.True(t, rec.HasClass("faq-1", "active"))
	assert.True(t, rec.HasClass("faq-1-icon", ChevronUp))
	assert.False(t, rec.HasClass("faq-1-icon", ChevronDown))

	a.Toggle(2)
	assert.False(t, rec.HasClass("faq-1", "active"))
	assert.True(t, rec.HasClass("faq-1-icon", ChevronDown))
	assert.True(t, rec.HasClass("faq-2", "active"))
	assert.Equal(t, 2, a.Open())

	a.Toggle(2)
	assert.False(t, rec.HasClass("faq-2", "active"))
	assert.Equal(t, -1, a.Open())

	a.Toggle(7)
	assert.Equal(t, -1, a.Open())
}

func TestAccordion_Sections(t *testing.T) {
	rec := surface.NewRecorder()
	a := NewAccordion(rec, Sections, []Item{{ID: "varc"}, {ID: "dilr"}, {ID: "qa"}}, nil)

	assert.Equal(t, 0, a.Open())
	assert.True(t, rec.HasClass("varc", "expanded"))

	a.Toggle(a.IndexOf("qa"))
	assert.False(t, rec.HasClass("varc", "expanded"))
	assert.True(t, rec.HasClass("qa", "expanded"))
	assert.False(t, rec.HasClass("qa", "active"))
}

func TestAccordion_IndexOfIcon(t *testing.T) {
	a := NewAccordion(surface.NewRecorder(), FAQ, faqItems(), nil)
	assert.Equal(t, 2, a.IndexOf("faq-2-icon"))
	assert.Equal(t, -1, a.IndexOf("nope"))
}

func TestNavLinks(t *testing.T) {
	rec := surface.NewRecorder()
	n := NewNavLinks(rec, []surface.NodeID{"home", "courses", "contact"}, nil)

	n.Activate("courses")
	assert.True(t, rec.HasClass("courses", "active"))
	assert.False(t, rec.HasClass("home", "active"))

	n.Activate("contact")
	assert.False(t, rec.HasClass("courses", "active"))
	assert.Equal(t, surface.NodeID("contact"), n.Active())

	n.Activate("elsewhere")
	assert.Equal(t, surface.NodeID("contact"), n.Active())
}

func TestScrollTracker_BackToTop(t *testing.T) {
	rec := surface.NewRecorder()
	st := NewScrollTracker(rec, rec, "backToTop", nil, nil)

	st.Update(300)
	assert.Empty(t, rec.CallsFor("backToTop"), "exactly 300 is not past the offset")

	st.Update(301)
	assert.True(t, rec.HasClass("backToTop", "visible"))
	st.Update(900)
	assert.Len(t, rec.CallsFor("backToTop"), 1, "no repeat while state is unchanged")

	st.Update(10)
	assert.False(t, st.BackToTopVisible())
	assert.False(t, rec.HasClass("backToTop", "visible"))

	require.NoError(t, st.ToTop())
	assert.Equal(t, []surface.NodeID{surface.PageTop}, rec.Scrolls())
}

func TestScrollTracker_Parallax(t *testing.T) {
	rec := surface.NewRecorder()
	st := NewScrollTracker(rec, nil, "", []surface.NodeID{"c0", "c1", "c2"}, nil)

	st.Update(200)
	assert.Equal(t, "translateY(-20px)", rec.StyleOf("c0", "transform"))
	assert.Equal(t, "translateY(-30px)", rec.StyleOf("c1", "transform"))
	assert.Equal(t, "translateY(-40px)", rec.StyleOf("c2", "transform"))

	st.Update(0)
	assert.Equal(t, "translateY(0px)", rec.StyleOf("c1", "transform"))

	assert.Error(t, st.ToTop())
}

func TestFeedback(t *testing.T) {
	rec := surface.NewRecorder()
	clock := newClock()
	f := NewFeedback(rec, clock, 0, nil)

	f.Flash("cta", "Book Free Demo")
	assert.Equal(t, SentText, rec.TextOf("cta"))
	assert.True(t, f.Flashing("cta"))

	clock.Advance(time.Second)
	f.Flash("cta", SentText)
	clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, SentText, rec.TextOf("cta"), "second flash restarted the timer")

	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, "Book Free Demo", rec.TextOf("cta"))
	assert.False(t, rec.HasClass("cta", "sent"))
	assert.False(t, f.Flashing("cta"))
}

func TestFeedback_Close(t *testing.T) {
	rec := surface.NewRecorder()
	clock := newClock()
	f := NewFeedback(rec, clock, time.Second, nil)

	f.Flash("a", "A")
	f.Close()
	clock.Advance(5 * time.Second)
	assert.Equal(t, SentText, rec.TextOf("a"))
	assert.Equal(t, 0, clock.Pending())
}

func TestTypewriter(t *testing.T) {
	rec := surface.NewRecorder()
	clock := newClock()
	w := NewTypewriter(rec, clock, "hero-title", "CAT ✓", nil)

	w.Start()
	w.Start()
	clock.Advance(499 * time.Millisecond)
	assert.Empty(t, rec.Calls())

	clock.Advance(time.Millisecond)
	assert.Equal(t, "", rec.TextOf("hero-title"))
	assert.Equal(t, caretStyle, rec.StyleOf("hero-title", "border-right"))

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, "C", rec.TextOf("hero-title"))

	clock.Advance(400 * time.Millisecond)
	assert.Equal(t, "CAT ✓", rec.TextOf("hero-title"))
	assert.Equal(t, caretStyle, rec.StyleOf("hero-title", "border-right"))
	assert.False(t, w.Done())

	clock.Advance(time.Second)
	assert.True(t, w.Done())
	assert.Equal(t, "none", rec.StyleOf("hero-title", "border-right"))
	assert.Equal(t, 0, clock.Pending())
}

func TestTypewriter_Stop(t *testing.T) {
	rec := surface.NewRecorder()
	clock := newClock()
	w := NewTypewriter(rec, clock, "h", "Hello", nil)

	w.Start()
	clock.Advance(700 * time.Millisecond)
	w.Stop()
	clock.Advance(5 * time.Second)
	assert.Equal(t, "He", rec.TextOf("h"))
}
