package ports

import "context"

// Tracer creates spans around units of work the engine performs, so a
// build's timeline can be inspected after the fact. The core only ever
// calls Start; it never depends on a particular tracing backend.
type Tracer interface {
	// Start begins a span named name, returning a context carrying it.
	Start(ctx context.Context, name string) (context.Context, Span)
}

// Span is one entry in a Tracer's timeline.
type Span interface {
	// SetAttribute attaches a key-value pair describing the span.
	SetAttribute(key string, value any)
	// End completes the span. Safe to call more than once.
	End()
}
