// Package server hosts the catsite page over HTTP and WebSocket.
//
// The server serves the page and its assets, accepts one WebSocket per
// browser tab at /ws, and gives each connection a Session. A Session owns:
//
//   - a loop.Loop on which every page callback and timer runs
//   - a page.Page holding the tab's interaction state
//   - a surface adapter that turns presentation changes into Commands
//
// Client events are decoded on the read goroutine and dispatched onto the
// loop, passing through the configured middleware chain. Commands are
// written with a write deadline and a per-session sequence number. A
// separate goroutine sends heartbeat pings.
//
// # Usage
//
//	srv := server.New(server.DefaultConfig(),
//	    server.WithAssets(assets.Embedded()),
//	    server.WithRegistry(prometheus.NewRegistry()),
//	)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
