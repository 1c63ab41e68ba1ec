// Package loop provides the single-threaded event loop that every page
// session runs on, and the timer scheduling used by the interaction
// components.
//
// All state owned by a session (the current toast, carousel indices,
// animation progress) is mutated only from callbacks running on the
// session's Loop. Timers never touch that state directly: when they fire,
// they Dispatch their callback onto the loop, and a cancelled timer whose
// callback is already queued is dropped before it runs.
//
// # Schedulers
//
// Components depend on the Scheduler interface rather than on Loop:
//
//	type Scheduler interface {
//	    Now() time.Time
//	    AfterFunc(d time.Duration, fn func()) Cancel
//	    Every(d time.Duration, fn func()) Cancel
//	}
//
// Loop implements it with wall-clock timers. Manual implements it with a
// virtual clock advanced explicitly, which makes timing behaviour testable
// without sleeping:
//
//	clock := loop.NewManual(time.Time{})
//	m := toast.NewManager(rec, clock)
//	m.Notify("saved", toast.Success)
//	clock.Advance(6 * time.Second)
package loop
