package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/weft/pkg/domain"
)

// createDebugHooks logs every intercepted call at debug level.
func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInvokeStart: func(ctx context.Context, inv *domain.Invocation) {
			logger.DebugContext(ctx, "invoke_start", "id", inv.ID, "target", inv.Target.Name)
		},
		OnInvokeEnd: func(ctx context.Context, inv *domain.Invocation) {
			logger.DebugContext(ctx, "invoke_end",
				"id", inv.ID,
				"target", inv.Target.Name,
				"proceeded", inv.Proceeded,
				"failed", inv.Failed(),
				"elapsed", inv.Elapsed(),
			)
		},
	}
}

// combineHooks fans each callback out to every non-nil hook, in order.
func combineHooks(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInvokeStart: func(ctx context.Context, inv *domain.Invocation) {
			for _, h := range all {
				if h.OnInvokeStart != nil {
					h.OnInvokeStart(ctx, inv)
				}
			}
		},
		OnInvokeEnd: func(ctx context.Context, inv *domain.Invocation) {
			for _, h := range all {
				if h.OnInvokeEnd != nil {
					h.OnInvokeEnd(ctx, inv)
				}
			}
		},
	}
}
