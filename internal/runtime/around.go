package runtime

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/weft/pkg/chain"
	"github.com/aretw0/weft/pkg/domain"
)

// proceedOnce is the continuation handed to an Around advice.
// It is closed once the advice returns.
type proceedOnce struct {
	next   domain.Proceed
	called atomic.Bool
	closed atomic.Bool
}

func (p *proceedOnce) proceed(ctx context.Context) (any, error) {
	if p.closed.Load() {
		return nil, domain.ErrProceedClosed
	}
	if !p.called.CompareAndSwap(false, true) {
		return nil, domain.ErrProceedTwice
	}
	return p.next(ctx)
}

// close marks the handle spent. A handle that was never called is claimed
// here so a late call cannot run the body.
func (p *proceedOnce) close() {
	p.closed.Store(true)
	p.called.CompareAndSwap(false, true)
}

// wrap nests Around advice around the body, first registered outermost.
func (d *Dispatcher) wrap(body domain.Func, args []any, arounds []chain.Link, inv *domain.Invocation) domain.Proceed {
	next := domain.Proceed(func(ctx context.Context) (any, error) {
		inv.Proceeded = true
		return body(ctx, args)
	})
	for i := len(arounds) - 1; i >= 0; i-- {
		link := arounds[i]
		inner := next
		next = func(ctx context.Context) (any, error) {
			handle := &proceedOnce{next: inner}
			defer handle.close()
			res, err := link.Advice.Around(ctx, inv, handle.proceed)
			d.emitOutcome(ctx, inv, link, res, err)
			return res, err
		}
	}
	return next
}
