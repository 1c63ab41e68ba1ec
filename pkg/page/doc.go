// Package page wires the interaction components for one browser page.
//
// A Page is created per connection. The client's hello event installs the
// features whose elements the page actually has; every later event is
// routed to the component that owns its target. Features whose elements
// are missing are simply not installed.
//
// Problems caused by the page (a section that is not there, a form
// that does not validate) are reported to the visitor as error toasts and
// never escape Handle. Handle returns errors only for events that are
// malformed or arrive out of order.
package page
