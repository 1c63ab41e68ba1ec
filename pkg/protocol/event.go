package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidEvent is returned for events that cannot be handled.
var ErrInvalidEvent = errors.New("protocol: invalid event")

// EventType identifies a client event.
type EventType string

const (
	EventHello     EventType = "hello"
	EventClick     EventType = "click"
	EventIntersect EventType = "intersect"
	EventScroll    EventType = "scroll"
	EventSubmit    EventType = "submit"
	EventDismiss   EventType = "dismiss"
)

// Known reports whether t is an event type the server handles.
func (t EventType) Known() bool {
	switch t {
	case EventHello, EventClick, EventIntersect, EventScroll, EventSubmit, EventDismiss:
		return true
	}
	return false
}

// Event is a message from the client.
type Event struct {
	Seq    uint64    `json:"seq,omitempty"`
	Type   EventType `json:"type"`
	Target string    `json:"target,omitempty"`

	// Role and Label describe a clicked element: its structural role and
	// its visible text (or href for navigation links).
	Role  string `json:"role,omitempty"`
	Label string `json:"label,omitempty"`

	// Ratio is the visible fraction for intersect events. Text and Width
	// carry the element's declared final content when it was seen.
	Ratio float64 `json:"ratio,omitempty"`
	Text  string  `json:"text,omitempty"`
	Width string  `json:"width,omitempty"`

	ScrollY float64 `json:"scrollY,omitempty"`

	// Fields holds form values for submit events, keyed by field name.
	Fields map[string]string `json:"fields,omitempty"`

	Manifest *Manifest `json:"manifest,omitempty"`
}

// Validate checks that the event is well formed.
func (e *Event) Validate() error {
	if !e.Type.Known() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	switch e.Type {
	case EventHello:
		if e.Manifest == nil {
			return fmt.Errorf("%w: hello without manifest", ErrInvalidEvent)
		}
		if err := e.Manifest.Validate(); err != nil {
			return err
		}
	case EventClick, EventIntersect, EventDismiss:
		if e.Target == "" {
			return fmt.Errorf("%w: %s without target", ErrInvalidEvent, e.Type)
		}
	case EventScroll:
		if e.ScrollY < 0 {
			return fmt.Errorf("%w: negative scroll position", ErrInvalidEvent)
		}
	case EventSubmit:
		if len(e.Fields) > MaxFields {
			return fmt.Errorf("%w: %d fields", ErrInvalidEvent, len(e.Fields))
		}
	}
	if e.Ratio < 0 || e.Ratio > 1 {
		return fmt.Errorf("%w: ratio %v out of range", ErrInvalidEvent, e.Ratio)
	}
	for _, s := range []string{e.Target, e.Role, e.Label, e.Text, e.Width} {
		if len(s) > MaxTextLength {
			return fmt.Errorf("%w: string too long", ErrInvalidEvent)
		}
	}
	for _, v := range e.Fields {
		if len(v) > MaxTextLength {
			return fmt.Errorf("%w: field value too long", ErrInvalidEvent)
		}
	}
	return nil
}

// DecodeEvent parses and validates a client message.
func DecodeEvent(data []byte) (*Event, error) {
	if len(data) > MaxMessageSize {
		return nil, fmt.Errorf("%w: message of %d bytes", ErrInvalidEvent, len(data))
	}
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
