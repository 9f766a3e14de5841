package ports

import "context"

// Invoker is the dispatch boundary: every intercepted call goes through Invoke.
type Invoker interface {
	Invoke(ctx context.Context, target string, args ...any) (any, error)
}
