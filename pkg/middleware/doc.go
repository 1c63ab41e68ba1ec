// Package middleware wraps page event handling with observability.
//
// A Handler processes one client event. Middleware wraps a Handler and is
// composed with Chain:
//
//	metrics := middleware.NewMetrics(middleware.WithRegistry(reg))
//	h := middleware.Chain(pageHandler,
//	    middleware.Recover(logger),
//	    metrics.Middleware(),
//	    middleware.OpenTelemetry(),
//	)
//
// # Prometheus Metrics
//
// Metrics collects:
//   - catsite_events_total: events processed by type and status
//   - catsite_event_duration_seconds: event processing duration by type
//   - catsite_event_errors_total: failed events by type and error category
//   - catsite_commands_sent_total: presentation commands written to clients
//   - catsite_toasts_total: toasts shown by severity
//   - catsite_contact_requests_total: completed contact form submissions
//   - catsite_active_sessions: open WebSocket sessions
//   - catsite_websocket_errors_total: WebSocket errors by type
//
// Expose them with promhttp.HandlerFor on the same registry.
//
// # OpenTelemetry
//
// OpenTelemetry opens a span per event named "catsite.<type>", tagged with
// the event type, target, and the session ID carried in the context (see
// WithSessionID). The span's context is passed to the next handler.
package middleware
