// Package animator drives presentation effects that start when an element
// first scrolls into view: reveal transitions, progress-bar fills, numeric
// counters, staggered step activation, and auto-advancing carousels.
//
// Page wiring registers elements with Observe and forwards viewport
// intersection callbacks to Intersect. Each subscription fires at most once
// and then stops observing; for carousel-auto the carousel's own timer
// takes over from there.
//
//	a := animator.New(surface, scheduler)
//	a.Observe(animator.Target{ID: "students"}, animator.Counter)
//	a.Intersect(animator.Entry{ID: "students", Ratio: 0.6, Text: "250L+"})
//
// Neither Animator nor Carousel is safe for concurrent use; both expect to
// be called from the session's event loop.
package animator
