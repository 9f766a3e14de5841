package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
)

// Sink implements ports.EventSink in memory.
// Safe for concurrent use. Mostly useful in tests and for the CLI trace output.
type Sink struct {
	mu     sync.RWMutex
	events []domain.Event
}

// NewSink creates a new in-memory sink.
func NewSink() *Sink {
	return &Sink{}
}

// Emit records the event.
func (s *Sink) Emit(_ context.Context, event domain.Event) error {
	event.Args = slices.Clone(event.Args)
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return nil
}

// Events returns a copy of every recorded event in arrival order.
func (s *Sink) Events() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// ForTarget returns the events recorded for one target.
func (s *Sink) ForTarget(name string) []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Event
	for _, e := range s.events {
		if e.Target == name {
			out = append(out, e)
		}
	}
	return out
}

// Trace renders the recorded events as "phase:advice" strings, handy for order assertions.
func (s *Sink) Trace() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, string(e.Phase)+":"+e.Advice)
	}
	return out
}

// Len returns the number of recorded events.
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Reset discards recorded events.
func (s *Sink) Reset() {
	s.mu.Lock()
	s.events = nil
	s.mu.Unlock()
}
