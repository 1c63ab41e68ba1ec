package protocol

import (
	"encoding/json"

	"github.com/vango-dev/catsite/pkg/surface"
)

// Op is a presentation operation.
type Op string

const (
	OpRender Op = "render"
	OpState  Op = "state"
	OpRemove Op = "remove"
	OpScroll Op = "scroll"
	OpError  Op = "error"
)

// Command is a message to the client.
type Command struct {
	Seq   uint64         `json:"seq"`
	Op    Op             `json:"op"`
	Node  *surface.Node  `json:"node,omitempty"`
	ID    surface.NodeID `json:"id,omitempty"`
	State *surface.State `json:"state,omitempty"`

	// Error describes a rejected event for OpError.
	Error string `json:"error,omitempty"`
}

// Render creates a node.
func Render(n surface.Node) Command {
	return Command{Op: OpRender, Node: &n, ID: n.ID}
}

// SetState changes a node's presentation.
func SetState(id surface.NodeID, s surface.State) Command {
	return Command{Op: OpState, ID: id, State: &s}
}

// Remove deletes a node.
func Remove(id surface.NodeID) Command {
	return Command{Op: OpRemove, ID: id}
}

// Scroll brings a node into view.
func Scroll(id surface.NodeID) Command {
	return Command{Op: OpScroll, ID: id}
}

// Reject reports an event the server could not accept.
func Reject(err error) Command {
	return Command{Op: OpError, Error: err.Error()}
}

// Encode marshals the command.
func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}
