package surface

import (
	"fmt"
	"sync"
)

// Op names an operation applied to a surface.
type Op string

const (
	OpRender Op = "render"
	OpState  Op = "state"
	OpRemove Op = "remove"
	OpScroll Op = "scroll"
)

// Call is one recorded surface operation.
type Call struct {
	Op    Op
	ID    NodeID
	Node  *Node
	State State
}

// Recorder is an in-memory Surface and Scroller. It keeps the accumulated
// state of every node it has seen and a log of every call.
//
// Rendered nodes live until removed; removing a node that is not present is
// an error. Static page elements (carousel steps, buttons) are created on
// first SetVisualState.
type Recorder struct {
	mu      sync.Mutex
	calls   []Call
	present map[NodeID]Node
	states  map[NodeID]State
	errs    []error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		present: make(map[NodeID]Node),
		states:  make(map[NodeID]State),
	}
}

// Render adds a node.
func (r *Recorder) Render(n Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.present[n.ID]; ok {
		err := fmt.Errorf("render %s: already present", n.ID)
		r.errs = append(r.errs, err)
		return err
	}
	node := n
	r.calls = append(r.calls, Call{Op: OpRender, ID: n.ID, Node: &node})
	r.present[n.ID] = n
	r.states[n.ID] = State{}
	return nil
}

// SetVisualState merges s into the node's state.
func (r *Recorder) SetVisualState(id NodeID, s State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpState, ID: id, State: s})
	r.states[id] = r.states[id].Merge(s)
	return nil
}

// Remove deletes a rendered node.
func (r *Recorder) Remove(id NodeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.present[id]; !ok {
		err := fmt.Errorf("remove %s: %w", id, ErrUnknownNode)
		r.errs = append(r.errs, err)
		return err
	}
	r.calls = append(r.calls, Call{Op: OpRemove, ID: id})
	delete(r.present, id)
	delete(r.states, id)
	return nil
}

// ScrollIntoView records a scroll request.
func (r *Recorder) ScrollIntoView(id NodeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpScroll, ID: id})
	return nil
}

// Calls returns a copy of the call log.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsFor returns the calls that targeted id.
func (r *Recorder) CallsFor(id NodeID) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.ID == id {
			out = append(out, c)
		}
	}
	return out
}

// Present returns the rendered nodes with the given role, or all of them
// when role is empty.
func (r *Recorder) Present(role string) []Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Node
	for _, n := range r.present {
		if role == "" || n.Role == role {
			out = append(out, n)
		}
	}
	return out
}

// Has reports whether a rendered node is present.
func (r *Recorder) Has(id NodeID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.present[id]
	return ok
}

// State returns the accumulated state of a node.
func (r *Recorder) State(id NodeID) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[id]
}

// HasClass reports whether a class is currently on for a node.
func (r *Recorder) HasClass(id NodeID, class string) bool {
	return r.State(id).Classes[class]
}

// TextOf returns the last text set on a node.
func (r *Recorder) TextOf(id NodeID) string {
	s := r.State(id)
	if s.Text == nil {
		return ""
	}
	return *s.Text
}

// ValueOf returns the last value set on an input.
func (r *Recorder) ValueOf(id NodeID) (string, bool) {
	s := r.State(id)
	if s.Value == nil {
		return "", false
	}
	return *s.Value, true
}

// IsDisabled reports the last disabled flag set on a node.
func (r *Recorder) IsDisabled(id NodeID) bool {
	s := r.State(id)
	return s.Disabled != nil && *s.Disabled
}

// StyleOf returns an inline style property of a node.
func (r *Recorder) StyleOf(id NodeID, prop string) string {
	return r.State(id).Style[prop]
}

// Scrolls returns the nodes scrolled into view, in order.
func (r *Recorder) Scrolls() []NodeID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []NodeID
	for _, c := range r.calls {
		if c.Op == OpScroll {
			out = append(out, c.ID)
		}
	}
	return out
}

// Errors returns the misuse errors seen so far (double render, removal of
// an absent node).
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}
