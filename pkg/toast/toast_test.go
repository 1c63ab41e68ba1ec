package toast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/surface"
)

func newTestManager(opts ...Option) (*Manager, *surface.Recorder, *loop.Manual) {
	rec := surface.NewRecorder()
	clock := loop.NewManual(time.Unix(1700000000, 0))
	return NewManager(rec, clock, opts...), rec, clock
}

func TestNotify_Lifecycle(t *testing.T) {
	m, rec, clock := newTestManager()

	tt := m.Notify("Saved", Success)
	id := tt.NodeID()

	require.True(t, rec.Has(id))
	assert.False(t, rec.HasClass(id, "show"), "toast starts hidden")
	assert.Same(t, tt, m.Current())

	clock.Advance(100 * time.Millisecond)
	assert.True(t, rec.HasClass(id, "show"))
	assert.True(t, tt.Visible())

	clock.Advance(4900 * time.Millisecond)
	assert.False(t, rec.HasClass(id, "show"))
	assert.True(t, rec.Has(id), "still present during exit transition")

	clock.Advance(300 * time.Millisecond)
	assert.False(t, rec.Has(id))
	assert.True(t, tt.Removed())
	assert.Nil(t, m.Current())
	assert.Empty(t, rec.Errors())
	assert.Equal(t, 0, clock.Pending())
}

func TestNotify_RenderedNode(t *testing.T) {
	m, rec, _ := newTestManager()

	m.Notify("Please enter a valid email address", Error)

	nodes := rec.Present(Role)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Please enter a valid email address", nodes[0].Text)
	assert.Equal(t, []string{"notification", "error"}, nodes[0].Classes)
	assert.Equal(t, "✗", nodes[0].Attrs["icon"])
}

func TestNotify_ReplacesImmediately(t *testing.T) {
	m, rec, clock := newTestManager()

	first := m.Notify("first", Info)
	clock.Advance(time.Second)

	second := m.Notify("second", Success)
	assert.False(t, rec.Has(first.NodeID()), "previous toast removed without exit wait")
	assert.True(t, rec.Has(second.NodeID()))
	assert.Len(t, rec.Present(Role), 1)

	// Old timers must not touch anything once the old toast is gone.
	clock.Advance(10 * time.Second)
	assert.Empty(t, rec.Errors())
	assert.Empty(t, rec.Present(Role))
}

func TestNotify_SuccessGoneAfterDisplayAndExit(t *testing.T) {
	m, rec, clock := newTestManager()

	m.Notify("x", Success)
	clock.Advance(m.Config().Display + m.Config().Exit + time.Millisecond)

	assert.Empty(t, rec.Present(Role))
}

func TestNotifyFor_CustomDisplay(t *testing.T) {
	m, rec, clock := newTestManager()

	tt := m.NotifyFor("Navigating to Blog...", Info, 2*time.Second)
	clock.Advance(2 * time.Second)
	assert.False(t, rec.HasClass(tt.NodeID(), "show"))

	clock.Advance(300 * time.Millisecond)
	assert.False(t, rec.Has(tt.NodeID()))
}

func TestDismiss_Twice(t *testing.T) {
	m, rec, clock := newTestManager()

	tt := m.Notify("hello", Info)
	clock.Advance(200 * time.Millisecond)

	m.Dismiss(tt)
	m.Dismiss(tt)
	assert.False(t, rec.HasClass(tt.NodeID(), "show"))

	clock.Advance(300 * time.Millisecond)
	assert.False(t, rec.Has(tt.NodeID()))

	m.Dismiss(tt)
	clock.Advance(10 * time.Second)

	assert.Empty(t, rec.Errors(), "no duplicate removal")
	removes := 0
	for _, c := range rec.CallsFor(tt.NodeID()) {
		if c.Op == surface.OpRemove {
			removes++
		}
	}
	assert.Equal(t, 1, removes)
}

func TestDismiss_BeforeEnter(t *testing.T) {
	m, rec, clock := newTestManager()

	tt := m.Notify("quick", Info)
	m.Dismiss(tt)

	clock.Advance(150 * time.Millisecond)
	assert.False(t, rec.HasClass(tt.NodeID(), "show"), "enter timer cancelled")

	clock.Advance(time.Second)
	assert.False(t, rec.Has(tt.NodeID()))
	assert.Empty(t, rec.Errors())
}

func TestDismissID(t *testing.T) {
	m, rec, clock := newTestManager()

	tt := m.Notify("hello", Info)
	assert.False(t, m.DismissID("nope"))
	assert.True(t, m.DismissID(string(tt.NodeID())))

	clock.Advance(time.Second)
	assert.False(t, rec.Has(tt.NodeID()))
	assert.False(t, m.DismissID(tt.ID))
}

func TestClear(t *testing.T) {
	m, rec, clock := newTestManager()

	m.Notify("hello", Info)
	m.Clear()
	m.Clear()

	assert.Empty(t, rec.Present(Role))
	assert.Equal(t, 0, clock.Pending())
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, Success, ParseSeverity("success"))
	assert.Equal(t, Error, ParseSeverity("error"))
	assert.Equal(t, Info, ParseSeverity("info"))
	assert.Equal(t, Info, ParseSeverity("warning"))
	assert.Equal(t, Info, ParseSeverity(""))
}

func TestHelpersAndShowHook(t *testing.T) {
	var shown []Severity
	m, _, _ := newTestManager(WithShowHook(func(t *Toast) { shown = append(shown, t.Severity) }))

	m.Success("a")
	m.Error("b")
	m.Info("c")
	m.Notify("d", Severity("bogus"))

	assert.Equal(t, []Severity{Success, Error, Info, Info}, shown)
}

func TestWithConfig(t *testing.T) {
	cfg := Config{EnterDelay: 10 * time.Millisecond, Display: time.Second, Exit: 50 * time.Millisecond}
	m, rec, clock := newTestManager(WithConfig(cfg))

	tt := m.Info("fast")
	clock.Advance(10 * time.Millisecond)
	assert.True(t, rec.HasClass(tt.NodeID(), "show"))
	clock.Advance(time.Second + 50*time.Millisecond)
	assert.False(t, rec.Has(tt.NodeID()))
}

func TestSingleToastProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m, rec, clock := newTestManager()
		severities := []Severity{Info, Success, Error}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				sev := rapid.SampledFrom(severities).Draw(t, "severity")
				m.Notify("msg", sev)
			case 1:
				m.Dismiss(m.Current())
			case 2:
				ms := rapid.IntRange(0, 6000).Draw(t, "advance")
				clock.Advance(time.Duration(ms) * time.Millisecond)
			}

			present := rec.Present(Role)
			if len(present) > 1 {
				t.Fatalf("%d toasts present", len(present))
			}
			if cur := m.Current(); cur != nil {
				if len(present) != 1 || present[0].ID != cur.NodeID() {
					t.Fatalf("current toast %s not the one on the surface", cur.ID)
				}
			} else if len(present) != 0 {
				t.Fatalf("toast present with no current toast")
			}
			if errs := rec.Errors(); len(errs) > 0 {
				t.Fatalf("surface misuse: %v", errs)
			}
		}
	})
}
