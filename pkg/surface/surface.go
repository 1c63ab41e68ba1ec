// Package surface defines the presentation surface the interaction
// components draw on. Components decide when to render, restyle, or remove
// a node; an adapter (the WebSocket session, or the in-memory Recorder in
// tests) decides how.
package surface

import (
	"errors"
	"maps"
	"sort"
)

// ErrUnknownNode is returned when an operation targets a node the surface
// does not hold.
var ErrUnknownNode = errors.New("surface: unknown node")

// NodeID identifies an element on the page.
type NodeID string

// Node is an element created by the server, such as a toast.
type Node struct {
	ID      NodeID            `json:"id"`
	Role    string            `json:"role,omitempty"`
	Classes []string          `json:"classes,omitempty"`
	Text    string            `json:"text,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// State is a change to an element's presentation. Only the fields that are
// set are applied; everything else is left alone.
type State struct {
	Classes  map[string]bool   `json:"classes,omitempty"`
	Style    map[string]string `json:"style,omitempty"`
	Text     *string           `json:"text,omitempty"`
	Value    *string           `json:"value,omitempty"`
	Disabled *bool             `json:"disabled,omitempty"`
}

// Surface is the capability to create, restyle, and remove elements.
type Surface interface {
	Render(n Node) error
	SetVisualState(id NodeID, s State) error
	Remove(id NodeID) error
}

// PageTop names the top of the page for ScrollIntoView.
const PageTop NodeID = "@top"

// Scroller is implemented by surfaces that can scroll an element into view.
type Scroller interface {
	ScrollIntoView(id NodeID) error
}

// IsZero reports whether the state changes nothing.
func (s State) IsZero() bool {
	return len(s.Classes) == 0 && len(s.Style) == 0 && s.Text == nil && s.Value == nil && s.Disabled == nil
}

// Merge returns s with other applied on top.
func (s State) Merge(other State) State {
	out := State{
		Classes:  maps.Clone(s.Classes),
		Style:    maps.Clone(s.Style),
		Text:     s.Text,
		Value:    s.Value,
		Disabled: s.Disabled,
	}
	if len(other.Classes) > 0 && out.Classes == nil {
		out.Classes = make(map[string]bool, len(other.Classes))
	}
	for k, v := range other.Classes {
		out.Classes[k] = v
	}
	if len(other.Style) > 0 && out.Style == nil {
		out.Style = make(map[string]string, len(other.Style))
	}
	for k, v := range other.Style {
		out.Style[k] = v
	}
	if other.Text != nil {
		out.Text = other.Text
	}
	if other.Value != nil {
		out.Value = other.Value
	}
	if other.Disabled != nil {
		out.Disabled = other.Disabled
	}
	return out
}

// ClassNames returns the classes switched on, sorted.
func (s State) ClassNames() []string {
	var names []string
	for k, on := range s.Classes {
		if on {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Class toggles a single class.
func Class(name string, on bool) State {
	return State{Classes: map[string]bool{name: on}}
}

// Style sets a single inline style property.
func Style(prop, value string) State {
	return State{Style: map[string]string{prop: value}}
}

// Text replaces the element's text content.
func Text(text string) State {
	return State{Text: &text}
}

// Value sets the value of an input control.
func Value(v string) State {
	return State{Value: &v}
}

// Disabled sets the disabled attribute of a control.
func Disabled(disabled bool) State {
	return State{Disabled: &disabled}
}

// Show marks a transient element visible.
func Show() State { return Class("show", true) }

// Hide marks a transient element hidden.
func Hide() State { return Class("show", false) }

// Active toggles the active class.
func Active(on bool) State { return Class("active", on) }

// Width sets the inline width, e.g. "72%".
func Width(w string) State { return Style("width", w) }
