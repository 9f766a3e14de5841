package domain

import (
	"time"
)

// Invocation is the per-call record shared by all advice of one dispatch.
// It lives on the caller's stack and is discarded once AfterAlways advice has run.
type Invocation struct {
	ID     string
	Target Target
	Args   []any
	Start  time.Time

	// Result and Err hold the outcome once the (possibly wrapped) body has returned.
	Result any
	Err    error

	// Proceeded is false when an Around advice declined to run the body.
	Proceeded bool
}

// Elapsed returns the time spent since the invocation started.
func (i *Invocation) Elapsed() time.Duration {
	return time.Since(i.Start)
}

// Failed reports whether the invocation currently carries a failure.
func (i *Invocation) Failed() bool {
	return i.Err != nil
}
