package animator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/surface"
)

var fourSteps = []surface.NodeID{"step-1", "step-2", "step-3", "step-4"}

func newTestCarousel(t *testing.T, opts ...CarouselOption) (*Carousel, *surface.Recorder, *loop.Manual) {
	t.Helper()
	rec := surface.NewRecorder()
	clock := loop.NewManual(time.Unix(1700000000, 0))
	opts = append([]CarouselOption{WithControls("prev", "next")}, opts...)
	c, err := NewCarousel(rec, clock, fourSteps, opts...)
	require.NoError(t, err)
	return c, rec, clock
}

func activeSteps(rec *surface.Recorder) []surface.NodeID {
	var out []surface.NodeID
	for _, s := range fourSteps {
		if rec.HasClass(s, "active") {
			out = append(out, s)
		}
	}
	return out
}

func TestNewCarousel_NoSteps(t *testing.T) {
	_, err := NewCarousel(surface.NewRecorder(), loop.NewManual(time.Time{}), nil)
	assert.ErrorIs(t, err, ErrNoSteps)
}

func TestCarousel_InitialState(t *testing.T) {
	c, rec, _ := newTestCarousel(t)

	assert.Equal(t, 0, c.Active())
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []surface.NodeID{"step-1"}, activeSteps(rec))
	assert.True(t, rec.IsDisabled("prev"))
	assert.Equal(t, "0.5", rec.StyleOf("prev", "opacity"))
	assert.False(t, rec.IsDisabled("next"))
	assert.Equal(t, "1", rec.StyleOf("next", "opacity"))
}

func TestCarousel_NextToEnd(t *testing.T) {
	c, rec, _ := newTestCarousel(t)

	for i := 0; i < c.Len()-1; i++ {
		assert.True(t, c.Next())
	}
	assert.Equal(t, 3, c.Active())
	assert.True(t, rec.IsDisabled("next"))
	assert.False(t, rec.IsDisabled("prev"))

	calls := len(rec.Calls())
	assert.False(t, c.Next(), "next at the last step is a no-op")
	assert.Equal(t, 3, c.Active())
	assert.Len(t, rec.Calls(), calls)
}

func TestCarousel_PrevAtStart(t *testing.T) {
	c, rec, _ := newTestCarousel(t)

	assert.False(t, c.Prev())
	assert.Equal(t, 0, c.Active())
	assert.True(t, rec.IsDisabled("prev"))

	c.Next()
	assert.True(t, c.Prev())
	assert.Equal(t, 0, c.Active())
	assert.True(t, rec.IsDisabled("prev"))
}

func TestCarousel_ProgressiveTrail(t *testing.T) {
	c, rec, _ := newTestCarousel(t, WithMode(Progressive))

	c.Next()
	c.Next()
	assert.Equal(t, []surface.NodeID{"step-1", "step-2", "step-3"}, activeSteps(rec))

	c.Prev()
	assert.Equal(t, []surface.NodeID{"step-1", "step-2"}, activeSteps(rec))
}

func TestCarousel_Select(t *testing.T) {
	c, rec, _ := newTestCarousel(t)

	assert.True(t, c.Select(2))
	assert.Equal(t, []surface.NodeID{"step-3"}, activeSteps(rec))
	assert.False(t, c.Select(7))
	assert.False(t, c.Select(-1))
	assert.Equal(t, 2, c.Active())
	assert.Equal(t, 2, c.IndexOf("step-3"))
	assert.Equal(t, -1, c.IndexOf("nope"))
}

func TestCarousel_AutoAdvanceWraps(t *testing.T) {
	c, rec, clock := newTestCarousel(t, WithMode(Progressive))

	c.StartAuto(3 * time.Second)
	c.StartAuto(time.Second)
	assert.True(t, c.AutoRunning())

	var seen []int
	for i := 0; i < 5; i++ {
		clock.Advance(3 * time.Second)
		seen = append(seen, c.Active())
	}
	assert.Equal(t, []int{1, 2, 3, 0, 1}, seen)
	assert.Equal(t, []surface.NodeID{"step-1", "step-2"}, activeSteps(rec))
}

func TestCarousel_ManualCancelsAuto(t *testing.T) {
	for name, interact := range map[string]func(*Carousel){
		"next":   func(c *Carousel) { c.Next() },
		"prev":   func(c *Carousel) { c.Prev() },
		"select": func(c *Carousel) { c.Select(3) },
	} {
		t.Run(name, func(t *testing.T) {
			c, _, clock := newTestCarousel(t)

			c.StartAuto(3 * time.Second)
			clock.Advance(3 * time.Second)
			require.Equal(t, 1, c.Active())

			interact(c)
			assert.False(t, c.AutoRunning())
			after := c.Active()

			clock.Advance(5 * time.Second)
			assert.Equal(t, after, c.Active(), "auto-advance fired after manual interaction")
			assert.Equal(t, 0, clock.Pending())

			c.StartAuto(3 * time.Second)
			assert.False(t, c.AutoRunning(), "cancellation is permanent")
		})
	}
}

func TestCarouselAuto_StartsOnIntersection(t *testing.T) {
	a, rec, clock := newTestAnimator()
	c, err := NewCarousel(rec, clock, fourSteps, WithMode(Progressive))
	require.NoError(t, err)

	a.Observe(Target{ID: "journey", Carousel: c}, CarouselAuto)
	clock.Advance(10 * time.Second)
	assert.Equal(t, 0, c.Active(), "nothing moves before the section is seen")

	a.Intersect(Entry{ID: "journey", Ratio: 0.5})
	assert.Equal(t, 0, a.Observed("journey"))
	assert.True(t, c.AutoRunning())

	clock.Advance(3 * time.Second)
	assert.Equal(t, 1, c.Active())

	a.Intersect(Entry{ID: "journey", Ratio: 1})
	clock.Advance(3 * time.Second)
	assert.Equal(t, 2, c.Active(), "a second intersection does not start a second timer")
}

func TestCarouselAuto_PeriodOverride(t *testing.T) {
	a, rec, clock := newTestAnimator()
	c, err := NewCarousel(rec, clock, fourSteps)
	require.NoError(t, err)

	a.Observe(Target{ID: "mba", Carousel: c, Period: 4 * time.Second}, CarouselAuto)
	a.Intersect(Entry{ID: "mba", Ratio: 1})

	clock.Advance(3 * time.Second)
	assert.Equal(t, 0, c.Active())
	clock.Advance(time.Second)
	assert.Equal(t, 1, c.Active())
}

func TestCarouselManual_RendersImmediately(t *testing.T) {
	a, rec, clock := newTestAnimator()
	c, err := NewCarousel(rec, clock, fourSteps)
	require.NoError(t, err)
	c.active = 2

	sub := a.Observe(Target{ID: "mba", Carousel: c}, CarouselManual)
	assert.False(t, sub.Active())
	assert.Equal(t, []surface.NodeID{"step-3"}, activeSteps(rec))
}

func TestCarouselBoundsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rec := surface.NewRecorder()
		clock := loop.NewManual(time.Time{})
		n := rapid.IntRange(1, 8).Draw(t, "steps")
		steps := make([]surface.NodeID, n)
		for i := range steps {
			steps[i] = surface.NodeID(rune('a' + i))
		}
		progressive := rapid.Bool().Draw(t, "progressive")
		mode := Single
		if progressive {
			mode = Progressive
		}
		c, err := NewCarousel(rec, clock, steps, WithControls("prev", "next"), WithMode(mode))
		if err != nil {
			t.Fatal(err)
		}

		ops := rapid.SliceOfN(rapid.IntRange(0, 1), 0, 30).Draw(t, "ops")
		for _, op := range ops {
			if op == 0 {
				c.Next()
			} else {
				c.Prev()
			}
			i := c.Active()
			if i < 0 || i >= n {
				t.Fatalf("index %d out of [0,%d)", i, n)
			}
			if rec.IsDisabled("prev") != (i == 0) {
				t.Fatalf("prev disabled=%v at %d", rec.IsDisabled("prev"), i)
			}
			if rec.IsDisabled("next") != (i == n-1) {
				t.Fatalf("next disabled=%v at %d", rec.IsDisabled("next"), i)
			}
			active := 0
			for _, s := range steps {
				if rec.HasClass(s, "active") {
					active++
				}
			}
			want := 1
			if progressive {
				want = i + 1
			}
			if active != want {
				t.Fatalf("%d active steps, want %d", active, want)
			}
		}
	})
}
