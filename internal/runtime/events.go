package runtime

import (
	"context"
	"time"

	"github.com/aretw0/weft/pkg/chain"
	"github.com/aretw0/weft/pkg/domain"
)

// emitPhase reports a hook execution. The payload depends on the phase; a
// failing advice reports its own error instead.
func (d *Dispatcher) emitPhase(ctx context.Context, inv *domain.Invocation, link chain.Link, phase domain.Phase, adviceErr error) {
	if !d.emitter.Enabled() {
		return
	}
	ev := d.event(inv, link, phase)
	switch phase {
	case domain.PhaseBefore:
		ev.Args = inv.Args
	case domain.PhaseAfterSuccess:
		ev.Result = inv.Result
	case domain.PhaseAfterFailure:
		ev.Error = errString(inv.Err)
	case domain.PhaseAfterAlways:
		if inv.Err != nil {
			ev.Error = errString(inv.Err)
		} else {
			ev.Result = inv.Result
		}
	}
	if adviceErr != nil {
		ev.Error = adviceErr.Error()
	}
	d.emitter.Emit(ctx, ev)
}

// emitOutcome reports an Around advice once it has returned.
func (d *Dispatcher) emitOutcome(ctx context.Context, inv *domain.Invocation, link chain.Link, result any, err error) {
	if !d.emitter.Enabled() {
		return
	}
	ev := d.event(inv, link, domain.PhaseAround)
	ev.Result = result
	ev.Error = errString(err)
	d.emitter.Emit(ctx, ev)
}

func (d *Dispatcher) event(inv *domain.Invocation, link chain.Link, phase domain.Phase) domain.Event {
	return domain.Event{
		Timestamp:    time.Now(),
		InvocationID: inv.ID,
		Target:       inv.Target.Name,
		Phase:        phase,
		Advice:       link.Advice.Name,
		Elapsed:      inv.Elapsed(),
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
