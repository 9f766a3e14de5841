package emit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// ErrBufferFull is returned by Async.Emit when the event had to be dropped.
var ErrBufferFull = errors.New("event buffer full")

// ErrClosed is returned by Async.Emit after Close.
var ErrClosed = errors.New("event sink closed")

// Async decouples a slow sink (network, disk) from the invocation path.
// Emit only enqueues; a single goroutine drains the queue into the wrapped sink.
type Async struct {
	next    ports.EventSink
	logger  *slog.Logger
	queue   chan domain.Event
	done    chan struct{}
	closeMu sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// NewAsync starts the drain goroutine. Call Close to flush and stop it.
func NewAsync(next ports.EventSink, buffer int, logger *slog.Logger) *Async {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &Async{
		next:   next,
		logger: logger,
		queue:  make(chan domain.Event, buffer),
		done:   make(chan struct{}),
	}
	go a.drain()
	return a
}

// Emit enqueues the event without blocking.
func (a *Async) Emit(_ context.Context, event domain.Event) error {
	a.closeMu.RLock()
	defer a.closeMu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- event:
		return nil
	default:
		a.dropped.Add(1)
		return ErrBufferFull
	}
}

// Dropped counts events lost to a full buffer.
func (a *Async) Dropped() uint64 {
	return a.dropped.Load()
}

// Close stops accepting events and waits until the queue is drained or ctx ends.
func (a *Async) Close(ctx context.Context) error {
	a.closeMu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.closeMu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) drain() {
	defer close(a.done)
	// Delivery outlives the invocation that produced the event.
	ctx := context.Background()
	for event := range a.queue {
		if err := a.next.Emit(ctx, event); err != nil {
			a.logger.Warn("async sink delivery failed", "target", event.Target, "phase", event.Phase, "error", err)
		}
	}
}
