// Package emit delivers interception events to sinks without letting sink
// failures disturb the invocation that produced them.
package emit

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// Emitter guards an EventSink: errors and panics raised by the sink are logged and dropped.
type Emitter struct {
	sink     ports.EventSink
	logger   *slog.Logger
	failures atomic.Uint64
}

// New wraps a sink. A nil sink makes every Emit a no-op.
func New(sink ports.EventSink, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Emitter{sink: sink, logger: logger}
}

// Enabled reports whether events have anywhere to go.
func (e *Emitter) Enabled() bool {
	return e != nil && e.sink != nil
}

// Emit forwards the event. It never fails and never panics.
func (e *Emitter) Emit(ctx context.Context, event domain.Event) {
	if !e.Enabled() {
		return
	}
	if err := e.safeEmit(ctx, event); err != nil {
		e.failures.Add(1)
		e.logger.Warn("event sink failed",
			"target", event.Target,
			"phase", event.Phase,
			"error", err,
		)
	}
}

// Failures counts sink errors swallowed so far.
func (e *Emitter) Failures() uint64 {
	return e.failures.Load()
}

func (e *Emitter) safeEmit(ctx context.Context, event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return e.sink.Emit(ctx, event)
}
