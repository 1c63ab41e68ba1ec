package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/catsite/pkg/protocol"
)

// Default tracer name.
const defaultTracerName = "catsite"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "catsite").
	TracerName string

	// TracerProvider supplies the tracer (default: the global provider).
	TracerProvider trace.TracerProvider

	// Filter determines which events to trace.
	// Return true to trace the event, false to skip.
	// If nil, all events are traced.
	Filter func(e *protocol.Event) bool

	// AttributeExtractor extracts custom attributes from the event.
	AttributeExtractor func(e *protocol.Event) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(e *protocol.Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(e *protocol.Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that traces every event.
//
// The tracer comes from the global OpenTelemetry provider unless
// WithTracerProvider is given. Configure the global provider in main()
// before starting the server.
func OpenTelemetry(opts ...OTelOption) Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(config.TracerName)

	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, e *protocol.Event) error {
			if config.Filter != nil && !config.Filter(e) {
				return next.Handle(ctx, e)
			}

			attrs := []attribute.KeyValue{
				attribute.String("catsite.event_type", string(e.Type)),
				attribute.Int64("catsite.event_seq", int64(e.Seq)),
			}
			if e.Target != "" {
				attrs = append(attrs, attribute.String("catsite.event_target", e.Target))
			}
			if e.Role != "" {
				attrs = append(attrs, attribute.String("catsite.event_role", e.Role))
			}
			if id := SessionID(ctx); id != "" {
				attrs = append(attrs, attribute.String("catsite.session_id", id))
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(e)...)
			}

			spanCtx, span := tracer.Start(ctx,
				fmt.Sprintf("catsite.%s", e.Type),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			err := next.Handle(spanCtx, e)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return err
		})
	}
}
