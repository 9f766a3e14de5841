package ports

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

// EventSink consumes interception events.
// The engine never retries a failed Emit and never lets its error reach the caller.
type EventSink interface {
	Emit(ctx context.Context, event domain.Event) error
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ctx context.Context, event domain.Event) error

// Emit calls f.
func (f SinkFunc) Emit(ctx context.Context, event domain.Event) error {
	return f(ctx, event)
}
