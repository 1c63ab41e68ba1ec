// Package toast shows transient status messages on a page.
//
// Only one toast is ever on screen. Showing a new one removes the current
// toast immediately, without waiting for its exit transition:
//
//	m := toast.NewManager(surface, scheduler)
//	m.Notify("Please fill in all fields", toast.Error)
//
// A toast goes through a fixed lifecycle. It is rendered hidden, marked
// visible after Config.EnterDelay so the enter transition is observable,
// hidden again after the display duration, and removed Config.Exit later.
// Dismiss runs the hide-then-remove sequence early.
//
// # Presentation
//
// A toast is rendered as a surface node with role "toast" and the classes
// "notification" and its severity. The client styles it and shows the
// icon from the "icon" attribute; visibility is the "show" class.
//
// The Manager is not safe for concurrent use. Call it from the session's
// event loop, which is also where its timers fire.
package toast
