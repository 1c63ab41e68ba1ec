// Package protocol defines the JSON messages exchanged between the page's
// thin client and its server session over a WebSocket.
//
// # Client to server
//
// The client sends Events. The first is always a hello carrying the
// page Manifest: every element the client found, grouped by the
// structural role it plays. After that the client forwards DOM events:
//
//	{"seq":1,"type":"hello","manifest":{"hooks":{"menu-toggle":[{"id":"h1"}]}}}
//	{"seq":2,"type":"click","target":"h1","role":"menu-toggle"}
//	{"seq":3,"type":"intersect","target":"h7","ratio":0.4}
//	{"seq":4,"type":"scroll","scrollY":512}
//
// # Server to client
//
// The server answers with Commands, each one a presentation surface
// operation:
//
//	{"seq":1,"op":"state","id":"h1","state":{"classes":{"active":true}}}
//	{"seq":2,"op":"render","node":{"id":"toast-01H...","role":"toast","text":"Saved"}}
//	{"seq":3,"op":"remove","id":"toast-01H..."}
//	{"seq":4,"op":"scroll","id":"h9"}
//
// Command sequence numbers increase by one per session so the client can
// detect gaps.
package protocol
