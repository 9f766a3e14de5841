package domain

import (
	"context"
	"time"
)

// Event is the record emitted for one phase execution of one invocation.
type Event struct {
	Timestamp    time.Time     `json:"timestamp"`
	InvocationID string        `json:"invocation_id"`
	Target       string        `json:"target"`
	Phase        Phase         `json:"phase"`
	Advice       string        `json:"advice,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
	Args         []any         `json:"args,omitempty"`
	Result       any           `json:"result,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Failed reports whether the event carries a failure message.
func (e Event) Failed() bool {
	return e.Error != ""
}

// LifecycleHooks are optional callbacks fired around each dispatch, independent of rules.
// They are meant for tracing glue and never see unmatched targets.
type LifecycleHooks struct {
	OnInvokeStart func(context.Context, *Invocation)
	OnInvokeEnd   func(context.Context, *Invocation)
}
