package weft

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/weft/internal/runtime"
	"github.com/aretw0/weft/pkg/chain"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/emit"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/registry"
)

// Engine is the high-level entry point for the weft library.
// It owns the target/rule registry and the dispatcher that enforces interception.
type Engine struct {
	registry   *registry.Registry
	dispatcher *runtime.Dispatcher
	emitter    *emit.Emitter
	sinks      []ports.EventSink
	hooks      domain.LifecycleHooks
	caching    bool
	logger     *slog.Logger
	Name       string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSink adds a destination for interception events. May be repeated.
func WithSink(sink ports.EventSink) Option {
	return func(e *Engine) {
		if sink != nil {
			e.sinks = append(e.sinks, sink)
		}
	}
}

// WithLifecycleHooks registers callbacks fired around every intercepted call.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithChainCache toggles per-target chain caching (enabled by default).
func WithChainCache(enabled bool) Option {
	return func(e *Engine) {
		e.caching = enabled
	}
}

// WithName labels the engine in logs.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New initializes a new Engine with an empty registry.
func New(opts ...Option) *Engine {
	eng := &Engine{caching: true}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.DiscardHandler)
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("engine", eng.Name)
	}

	var sink ports.EventSink
	switch len(eng.sinks) {
	case 0:
	case 1:
		sink = eng.sinks[0]
	default:
		sink = emit.Multi(eng.sinks...)
	}
	eng.emitter = emit.New(sink, eng.logger)

	eng.registry = registry.NewRegistry()
	eng.dispatcher = runtime.NewDispatcher(eng.registry,
		runtime.WithEmitter(eng.emitter),
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithChainCache(eng.caching),
	)
	return eng
}

// Register adds a target and its body.
func (e *Engine) Register(t domain.Target, body domain.Func) error {
	return e.registry.RegisterTarget(t, body)
}

// RegisterRule attaches advice to every target matching the pointcut expression.
func (e *Engine) RegisterRule(expr string, advice ...domain.Advice) (domain.Rule, error) {
	rule, err := e.registry.RegisterRule(expr, advice...)
	if err != nil {
		return rule, err
	}
	e.logger.Debug("rule registered", "id", rule.ID, "pointcut", rule.Pointcut.String(), "advice", len(advice))
	return rule, nil
}

// Seal ends the registration phase; later registrations fail with domain.ErrRegistrySealed.
func (e *Engine) Seal() {
	e.registry.Seal()
}

// Invoke dispatches a call to a registered target through its advice chain.
func (e *Engine) Invoke(ctx context.Context, target string, args ...any) (any, error) {
	return e.dispatcher.Invoke(ctx, target, args...)
}

// Chain returns the resolved advice chain for a target.
func (e *Engine) Chain(target string) (chain.Chain, error) {
	return e.dispatcher.Resolve(target)
}

// Rules lists registered rules in registration order.
func (e *Engine) Rules() []domain.Rule {
	rules, _ := e.registry.Rules()
	return rules
}

// Targets lists registered targets in registration order.
func (e *Engine) Targets() []domain.Target {
	return e.registry.Targets()
}

// SinkFailures counts event sink errors swallowed by the engine.
func (e *Engine) SinkFailures() uint64 {
	return e.emitter.Failures()
}

// Ensure Engine is a dispatch boundary.
var _ ports.Invoker = (*Engine)(nil)

// Call invokes a target and asserts the result type, for building typed proxies.
// A failure is returned untouched; a nil result yields the zero value of T.
func Call[T any](ctx context.Context, inv ports.Invoker, target string, args ...any) (T, error) {
	var zero T
	res, err := inv.Invoke(ctx, target, args...)
	if res == nil {
		return zero, err
	}
	typed, ok := res.(T)
	if !ok {
		if err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%s returned %T, want %T", target, res, zero)
	}
	return typed, err
}

// Exec invokes a target that returns no value.
func Exec(ctx context.Context, inv ports.Invoker, target string, args ...any) error {
	_, err := inv.Invoke(ctx, target, args...)
	return err
}
