// Package redis publishes interception events to a Redis stream.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "weft:events"

// Sink implements ports.EventSink with XADD.
// Each entry carries flat fields for filtering plus the full event as JSON under "payload".
type Sink struct {
	client *backend.Client
	stream string
	maxLen int64
}

// Option configures the Sink.
type Option func(*Sink)

// WithStream overrides the stream key.
func WithStream(stream string) Option {
	return func(s *Sink) {
		if stream != "" {
			s.stream = stream
		}
	}
}

// WithMaxLen caps the stream length; older entries are trimmed on insert. Zero keeps everything.
func WithMaxLen(n int64) Option {
	return func(s *Sink) {
		s.maxLen = n
	}
}

// NewSink creates a stream sink from an existing client.
func NewSink(client *backend.Client, opts ...Option) *Sink {
	s := &Sink{client: client, stream: DefaultStream}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stream returns the key entries are appended to.
func (s *Sink) Stream() string {
	return s.stream
}

// Emit appends the event to the stream.
func (s *Sink) Emit(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event for %s: %w", event.Target, err)
	}

	err = s.client.XAdd(ctx, &backend.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: s.maxLen > 0,
		Values: map[string]any{
			"invocation_id": event.InvocationID,
			"target":        event.Target,
			"phase":         string(event.Phase),
			"advice":        event.Advice,
			"elapsed_ms":    strconv.FormatInt(event.Elapsed.Milliseconds(), 10),
			"error":         event.Error,
			"payload":       string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis xadd %s: %w", s.stream, err)
	}
	return nil
}

// Recent returns up to count of the newest events, newest first.
func (s *Sink) Recent(ctx context.Context, count int64) ([]domain.Event, error) {
	msgs, err := s.client.XRevRangeN(ctx, s.stream, "+", "-", count).Result()
	if err != nil {
		return nil, fmt.Errorf("redis xrevrange %s: %w", s.stream, err)
	}

	events := make([]domain.Event, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values["payload"].(string)
		if !ok {
			continue
		}
		var e domain.Event
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode stream entry %s: %w", msg.ID, err)
		}
		events = append(events, e)
	}
	return events, nil
}

var _ ports.EventSink = (*Sink)(nil)
