package animator

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vango-dev/catsite/pkg/loop"
	"github.com/vango-dev/catsite/pkg/surface"
)

// CounterText is a parsed counter display, e.g. "250L+" is
// {Target: 250, Suffix: "L+", Final: "250L+"}.
type CounterText struct {
	Prefix string
	Target int
	Suffix string

	// Final is the declared text, shown when the count completes.
	Final string
}

// ParseCounter reads the target value from display text by dropping every
// non-digit. Text before the first digit and after the last digit is kept
// to be re-applied to each frame. ok is false when the text has no digits.
func ParseCounter(text string) (c CounterText, ok bool) {
	first := strings.IndexFunc(text, isDigit)
	if first < 0 {
		return CounterText{}, false
	}
	last := strings.LastIndexFunc(text, isDigit)
	_, lastSize := utf8.DecodeRuneInString(text[last:])

	var digits strings.Builder
	for _, r := range text {
		if isDigit(r) {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return CounterText{}, false
	}
	return CounterText{
		Prefix: text[:first],
		Target: n,
		Suffix: text[last+lastSize:],
		Final:  text,
	}, true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Format renders value with the prefix and suffix.
func (c CounterText) Format(value int) string {
	return c.Prefix + strconv.Itoa(value) + c.Suffix
}

// Settled returns the text shown once the count completes: the declared
// text, or the formatted target when there is none.
func (c CounterText) Settled() string {
	if c.Final != "" {
		return c.Final
	}
	return c.Format(c.Target)
}

// Frames returns every text the counter shows, in order, for the given
// number of steps: each intermediate frame is the running total rounded
// down, and the last frame is the settled text.
func (c CounterText) Frames(steps int) []string {
	if steps <= 0 {
		steps = 1
	}
	if c.Target <= 0 {
		return []string{c.Settled()}
	}
	var frames []string
	inc := float64(c.Target) / float64(steps)
	current := 0.0
	for {
		current += inc
		if current >= float64(c.Target) {
			return append(frames, c.Settled())
		}
		frames = append(frames, c.Format(int(current)))
	}
}

// count animates id's text from zero to the parsed target and ends on the
// declared text.
func (a *Animator) count(id surface.NodeID, text string) {
	c, ok := ParseCounter(text)
	if !ok {
		a.logger.Debug("counter text has no digits", "id", id, "text", text)
		return
	}
	if c.Target == 0 {
		a.set(id, surface.Text(c.Settled()))
		return
	}

	inc := float64(c.Target) / float64(a.config.CounterSteps)
	current := 0.0
	a.track(func(done func()) loop.Cancel {
		var cancel loop.Cancel
		cancel = a.sched.Every(a.config.CounterTick, func() {
			current += inc
			if current >= float64(c.Target) {
				cancel()
				done()
				a.set(id, surface.Text(c.Settled()))
				return
			}
			a.set(id, surface.Text(c.Format(int(current))))
		})
		return cancel
	})
}
