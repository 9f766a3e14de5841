package domain

import "context"

// Phase is the point of an invocation at which an Advice runs.
type Phase string

const (
	PhaseBefore       Phase = "before"
	PhaseAround       Phase = "around"
	PhaseAfterSuccess Phase = "after_success"
	PhaseAfterFailure Phase = "after_failure"
	PhaseAfterAlways  Phase = "after_always"
)

// Phases lists every phase in execution order.
var Phases = []Phase{PhaseBefore, PhaseAround, PhaseAfterSuccess, PhaseAfterFailure, PhaseAfterAlways}

// Proceed runs the wrapped body (or the next Around advice) of an invocation.
// It may be called at most once; a second call returns ErrProceedTwice.
type Proceed func(ctx context.Context) (any, error)

// Hook is the behavior of a non-Around advice.
// AfterSuccess hooks read Invocation.Result, AfterFailure hooks read Invocation.Err.
type Hook func(ctx context.Context, inv *Invocation) error

// AroundFunc is the behavior of an Around advice.
// Declining to call proceed short-circuits the body; the returned values become the outcome.
type AroundFunc func(ctx context.Context, inv *Invocation, proceed Proceed) (any, error)

// Advice is a cross-cutting behavior attached to matched Targets.
type Advice struct {
	Name   string
	Phase  Phase
	Hook   Hook
	Around AroundFunc
}

// Before builds an advice that runs before the body.
func Before(name string, fn Hook) Advice {
	return Advice{Name: name, Phase: PhaseBefore, Hook: fn}
}

// AfterSuccess builds an advice that runs when the body returned without error.
func AfterSuccess(name string, fn Hook) Advice {
	return Advice{Name: name, Phase: PhaseAfterSuccess, Hook: fn}
}

// AfterFailure builds an advice that runs when the body returned an error.
func AfterFailure(name string, fn Hook) Advice {
	return Advice{Name: name, Phase: PhaseAfterFailure, Hook: fn}
}

// AfterAlways builds an advice that runs once per invocation whatever the outcome.
func AfterAlways(name string, fn Hook) Advice {
	return Advice{Name: name, Phase: PhaseAfterAlways, Hook: fn}
}

// Around builds an advice that wraps the body.
func Around(name string, fn AroundFunc) Advice {
	return Advice{Name: name, Phase: PhaseAround, Around: fn}
}

// Valid reports whether the advice carries the function its phase needs.
func (a Advice) Valid() bool {
	switch a.Phase {
	case PhaseAround:
		return a.Around != nil
	case PhaseBefore, PhaseAfterSuccess, PhaseAfterFailure, PhaseAfterAlways:
		return a.Hook != nil
	default:
		return false
	}
}
