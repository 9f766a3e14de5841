package aspects

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/weft/pkg/domain"
)

// DefaultSlowThreshold is the elapsed time above which a call is reported as slow.
const DefaultSlowThreshold = time.Second

// Performance returns an Around advice measuring each call.
// Calls slower than threshold are logged at warn level, the rest at info.
func Performance(logger *slog.Logger, threshold time.Duration) domain.Advice {
	logger = orNop(logger)
	if threshold <= 0 {
		threshold = DefaultSlowThreshold
	}
	return domain.Around("performance", func(ctx context.Context, inv *domain.Invocation, proceed domain.Proceed) (any, error) {
		start := time.Now()
		defer func() {
			elapsed := time.Since(start)
			if elapsed > threshold {
				logger.WarnContext(ctx, "slow_api", "call", inv.Target.ShortString(), "elapsed_ms", elapsed.Milliseconds())
				return
			}
			logger.InfoContext(ctx, "api", "call", inv.Target.ShortString(), "elapsed_ms", elapsed.Milliseconds())
		}()
		return proceed(ctx)
	})
}
