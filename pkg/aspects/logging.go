// Package aspects provides ready-made advice: method logging, tagged
// execution timing and API performance measurement.
package aspects

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/weft/pkg/domain"
)

// Logging returns the four-phase logging advice usually applied to a whole service layer.
//
//   - before: the call and its arguments
//   - after_success: the returned value
//   - after_failure: the failure message, at error level
//   - after_always: completion, whatever the outcome
func Logging(logger *slog.Logger) []domain.Advice {
	logger = orNop(logger)
	return []domain.Advice{
		domain.Before("logging.before", func(ctx context.Context, inv *domain.Invocation) error {
			logger.InfoContext(ctx, "before", "call", inv.Target.ShortString(), "args", inv.Args)
			return nil
		}),
		domain.AfterSuccess("logging.after_returning", func(ctx context.Context, inv *domain.Invocation) error {
			logger.InfoContext(ctx, "after_returning", "call", inv.Target.ShortString(), "result", inv.Result)
			return nil
		}),
		domain.AfterFailure("logging.after_throwing", func(ctx context.Context, inv *domain.Invocation) error {
			logger.ErrorContext(ctx, "after_throwing", "call", inv.Target.ShortString(), "error", inv.Err)
			return nil
		}),
		domain.AfterAlways("logging.after", func(ctx context.Context, inv *domain.Invocation) error {
			logger.InfoContext(ctx, "after", "call", inv.Target.ShortString(), "failed", inv.Failed())
			return nil
		}),
	}
}

// LogExecution returns an Around advice that logs start and end of a call,
// labelled with the value of the given tag on the target.
func LogExecution(logger *slog.Logger, tag string) domain.Advice {
	logger = orNop(logger)
	return domain.Around("log_execution", func(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (any, error) {
		call := inv.Target.ShortString()
		label, _ := inv.Target.Tag(tag)
		start := time.Now()

		logger.InfoContext(ctx, "around_start", "call", call, "label", label)
		defer func() {
			logger.InfoContext(ctx, "around_end", "call", call, "label", label, "elapsed_ms", time.Since(start).Milliseconds())
		}()
		return proceed(ctx)
	})
}

func orNop(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
