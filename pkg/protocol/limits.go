package protocol

// Limits on what a client may send.
const (
	// MaxMessageSize bounds a single WebSocket message.
	MaxMessageSize = 64 * 1024

	// MaxHooks bounds the number of elements a manifest may declare.
	MaxHooks = 4096

	// MaxFields bounds the number of form fields in a submit event.
	MaxFields = 32

	// MaxTextLength bounds any single string in an event.
	MaxTextLength = 2048
)
