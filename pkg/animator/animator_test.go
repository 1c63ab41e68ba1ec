package animator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/surface"
)

func newTestAnimator(opts ...Option) (*Animator, *surface.Recorder, *loop.Manual) {
	rec := surface.NewRecorder()
	clock := loop.NewManual(time.Unix(1700000000, 0))
	return New(rec, clock, opts...), rec, clock
}

func TestReveal_OneShot(t *testing.T) {
	a, rec, _ := newTestAnimator()

	sub := a.Observe(Target{ID: "hero"}, Reveal)
	assert.True(t, sub.Active())
	assert.Equal(t, 1, a.Observed("hero"))

	assert.Equal(t, 1, a.Intersect(Entry{ID: "hero", Ratio: 0.5}))
	assert.True(t, rec.HasClass("hero", "animate-in"))
	assert.Equal(t, "1", rec.StyleOf("hero", "opacity"))
	assert.False(t, sub.Active())
	assert.Equal(t, 0, a.Observed("hero"))

	calls := len(rec.Calls())
	assert.Equal(t, 0, a.Intersect(Entry{ID: "hero", Ratio: 1}))
	assert.Len(t, rec.Calls(), calls, "no effect after the first intersection")
}

func TestReveal_Threshold(t *testing.T) {
	a, rec, _ := newTestAnimator()

	a.Observe(Target{ID: "card"}, Reveal, WithThreshold(0.3))

	assert.Equal(t, 0, a.Intersect(Entry{ID: "card", Ratio: 0.2}))
	assert.Equal(t, 0, a.Intersect(Entry{ID: "card", Ratio: 0}))
	assert.False(t, rec.HasClass("card", "animate-in"))

	assert.Equal(t, 1, a.Intersect(Entry{ID: "card", Ratio: 0.3}))
	assert.True(t, rec.HasClass("card", "animate-in"))
}

func TestReveal_UnknownElement(t *testing.T) {
	a, rec, _ := newTestAnimator()
	assert.Equal(t, 0, a.Intersect(Entry{ID: "missing", Ratio: 1}))
	assert.Empty(t, rec.Calls())
}

func TestReveal_HiddenStart(t *testing.T) {
	a, rec, _ := newTestAnimator()

	a.Observe(Target{ID: "faq-2"}, Reveal, WithHiddenStart(200*time.Millisecond))
	assert.Equal(t, "0", rec.StyleOf("faq-2", "opacity"))
	assert.Equal(t, "translateY(30px)", rec.StyleOf("faq-2", "transform"))
	assert.Equal(t, "all 0.6s ease 0.2s", rec.StyleOf("faq-2", "transition"))

	a.Intersect(Entry{ID: "faq-2", Ratio: 1})
	assert.Equal(t, "1", rec.StyleOf("faq-2", "opacity"))
	assert.Equal(t, "translateY(0)", rec.StyleOf("faq-2", "transform"))
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	a, rec, _ := newTestAnimator()

	sub := a.Observe(Target{ID: "x"}, Reveal)
	other := a.Observe(Target{ID: "x"}, Counter, WithThreshold(0.5))
	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Equal(t, 1, a.Observed("x"))

	a.Intersect(Entry{ID: "x", Ratio: 1, Text: "0"})
	assert.False(t, rec.HasClass("x", "animate-in"))
	assert.False(t, other.Active())
}

func TestProgressFill(t *testing.T) {
	a, rec, clock := newTestAnimator()

	a.Observe(Target{ID: "bar", Width: "40%"}, ProgressFill, WithThreshold(0.5))
	a.Intersect(Entry{ID: "bar", Ratio: 0.6, Width: "72%"})

	assert.Equal(t, "0%", rec.StyleOf("bar", "width"))
	clock.Advance(499 * time.Millisecond)
	assert.Equal(t, "0%", rec.StyleOf("bar", "width"))
	clock.Advance(time.Millisecond)
	assert.Equal(t, "72%", rec.StyleOf("bar", "width"), "entry width wins over the registered one")
	assert.Equal(t, 0, a.Running())
}

func TestProgressFill_DefaultWidth(t *testing.T) {
	a, rec, clock := newTestAnimator()

	a.Observe(Target{ID: "bar", Width: "40%"}, ProgressFill)
	a.Intersect(Entry{ID: "bar", Ratio: 1})
	clock.Advance(time.Second)
	assert.Equal(t, "40%", rec.StyleOf("bar", "width"))
}

func TestCounter_SettlesExactly(t *testing.T) {
	a, rec, clock := newTestAnimator()

	a.Observe(Target{ID: "students"}, Counter)
	a.Intersect(Entry{ID: "students", Ratio: 1, Text: "250L+"})

	var frames []string
	for i := 0; i < 100 && a.Running() > 0; i++ {
		clock.Advance(30 * time.Millisecond)
		frames = append(frames, rec.TextOf("students"))
	}

	require.NotEmpty(t, frames)
	assert.Equal(t, "250L+", frames[len(frames)-1])
	assert.Equal(t, "5L+", frames[0])
	assert.Len(t, frames, 50)
	for _, f := range frames {
		c, ok := ParseCounter(f)
		require.True(t, ok)
		assert.LessOrEqual(t, c.Target, 250, "frame %q overshoots", f)
		assert.Equal(t, "L+", c.Suffix)
	}

	clock.Advance(time.Second)
	assert.Equal(t, "250L+", rec.TextOf("students"))
}

func TestCounter_FramesMatchAnimation(t *testing.T) {
	a, rec, clock := newTestAnimator()

	c, ok := ParseCounter("98%")
	require.True(t, ok)
	want := c.Frames(a.Config().CounterSteps)

	a.Observe(Target{ID: "score", Text: "98%"}, Counter)
	a.Intersect(Entry{ID: "score", Ratio: 1})

	var got []string
	for a.Running() > 0 {
		clock.Advance(a.Config().CounterTick)
		got = append(got, rec.TextOf("score"))
	}
	assert.Equal(t, want, got)
}

func TestCounter_ZeroAndNoDigits(t *testing.T) {
	a, rec, _ := newTestAnimator()

	a.Observe(Target{ID: "zero", Text: "0+"}, Counter)
	a.Intersect(Entry{ID: "zero", Ratio: 1})
	assert.Equal(t, "0+", rec.TextOf("zero"))
	assert.Equal(t, 0, a.Running())

	a.Observe(Target{ID: "word", Text: "many"}, Counter)
	a.Intersect(Entry{ID: "word", Ratio: 1})
	assert.Empty(t, rec.CallsFor("word"))
}

func TestParseCounter(t *testing.T) {
	tests := []struct {
		in   string
		want CounterText
		ok   bool
	}{
		{"250L+", CounterText{Target: 250, Suffix: "L+", Final: "250L+"}, true},
		{"99%", CounterText{Target: 99, Suffix: "%", Final: "99%"}, true},
		{"10,000+", CounterText{Target: 10000, Suffix: "+", Final: "10,000+"}, true},
		{"99.9", CounterText{Target: 999, Final: "99.9"}, true},
		{"₹12K", CounterText{Prefix: "₹", Target: 12, Suffix: "K", Final: "₹12K"}, true},
		{"1500", CounterText{Target: 1500, Final: "1500"}, true},
		{"", CounterText{}, false},
		{"N/A", CounterText{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCounter(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCounterFrames(t *testing.T) {
	c := CounterText{Target: 100, Suffix: "+"}
	frames := c.Frames(50)
	assert.Len(t, frames, 50)
	assert.Equal(t, "2+", frames[0])
	assert.Equal(t, "100+", frames[49])

	assert.Equal(t, []string{"0"}, CounterText{}.Frames(50))
	assert.Equal(t, []string{"7x"}, CounterText{Target: 7, Suffix: "x"}.Frames(0))

	grouped, ok := ParseCounter("10,000+")
	require.True(t, ok)
	frames = grouped.Frames(50)
	assert.Equal(t, "200+", frames[0])
	assert.Equal(t, "9800+", frames[48])
	assert.Equal(t, "10,000+", frames[49])
}

func TestCounter_SettlesOnDeclaredText(t *testing.T) {
	for _, text := range []string{"99.9", "10,000+", "250L+", "₹1,200"} {
		t.Run(text, func(t *testing.T) {
			a, rec, clock := newTestAnimator()

			a.Observe(Target{ID: "stat", Text: text}, Counter)
			a.Intersect(Entry{ID: "stat", Ratio: 1})
			clock.Advance(5 * time.Second)

			assert.Equal(t, 0, a.Running())
			assert.Equal(t, text, rec.TextOf("stat"))
		})
	}
}

func TestStagger(t *testing.T) {
	a, rec, clock := newTestAnimator()

	steps := []surface.NodeID{"s1", "s2", "s3"}
	a.Observe(Target{ID: "journey", Steps: steps}, Stagger, WithThreshold(0.3))
	a.Intersect(Entry{ID: "journey", Ratio: 0.4})

	assert.True(t, rec.HasClass("journey", "animate-in"))
	clock.Advance(0)
	assert.True(t, rec.HasClass("s1", "active"))
	assert.False(t, rec.HasClass("s2", "active"))

	clock.Advance(500 * time.Millisecond)
	assert.True(t, rec.HasClass("s2", "active"))
	assert.False(t, rec.HasClass("s3", "active"))

	clock.Advance(500 * time.Millisecond)
	assert.True(t, rec.HasClass("s3", "active"))
	assert.Equal(t, 0, a.Running())
}

func TestClose_CancelsRunning(t *testing.T) {
	a, rec, clock := newTestAnimator()

	a.Observe(Target{ID: "n", Text: "1000"}, Counter)
	a.Observe(Target{ID: "later"}, Reveal)
	a.Intersect(Entry{ID: "n", Ratio: 1})
	clock.Advance(90 * time.Millisecond)
	assert.Equal(t, 1, a.Running())

	a.Close()
	a.Close()
	text := rec.TextOf("n")
	clock.Advance(10 * time.Second)
	assert.Equal(t, text, rec.TextOf("n"))
	assert.Equal(t, 0, clock.Pending())

	assert.Equal(t, 0, a.Intersect(Entry{ID: "later", Ratio: 1}))
	assert.False(t, a.Observe(Target{ID: "new"}, Reveal).Active())
}

func TestKindNames(t *testing.T) {
	for _, k := range []Kind{Reveal, ProgressFill, Counter, CarouselAuto, CarouselManual, Stagger} {
		got, ok := ParseKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("spin")
	assert.False(t, ok)
	assert.Equal(t, "kind(42)", Kind(42).String())
}
