package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/weft/pkg/chain"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/emit"
	"github.com/aretw0/weft/pkg/registry"
)

// Dispatcher is the interception boundary.
// It is the only component that runs advice chains; a target body calling
// another target's Go code directly never passes through it and is therefore
// never intercepted.
type Dispatcher struct {
	registry *registry.Registry
	emitter  *emit.Emitter
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	newID    func() string
	caching  bool

	cacheMu sync.RWMutex
	cache   map[string]cachedChain
}

type cachedChain struct {
	generation uint64
	chain      chain.Chain
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithEmitter sets where interception events go.
func WithEmitter(e *emit.Emitter) DispatcherOption {
	return func(d *Dispatcher) {
		d.emitter = e
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithLifecycleHooks registers callbacks fired around every intercepted call.
func WithLifecycleHooks(hooks domain.LifecycleHooks) DispatcherOption {
	return func(d *Dispatcher) {
		d.hooks = hooks
	}
}

// WithIDGenerator overrides how invocation IDs are produced.
func WithIDGenerator(fn func() string) DispatcherOption {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// WithChainCache toggles per-target chain caching (enabled by default).
func WithChainCache(enabled bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.caching = enabled
	}
}

// NewDispatcher creates a dispatcher reading targets and rules from reg.
func NewDispatcher(reg *registry.Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		logger:   slog.New(slog.DiscardHandler),
		newID:    uuid.NewString,
		caching:  true,
		cache:    make(map[string]cachedChain),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.emitter == nil {
		d.emitter = emit.New(nil, d.logger)
	}
	return d
}

// Resolve returns the chain that applies to a registered target.
func (d *Dispatcher) Resolve(name string) (chain.Chain, error) {
	b, ok := d.registry.Lookup(name)
	if !ok {
		return chain.Chain{}, fmt.Errorf("resolve %s: %w", name, domain.ErrTargetNotFound)
	}
	return d.chainFor(b.Target), nil
}

func (d *Dispatcher) chainFor(t domain.Target) chain.Chain {
	if d.caching {
		gen := d.registry.Generation()
		d.cacheMu.RLock()
		cached, ok := d.cache[t.Name]
		d.cacheMu.RUnlock()
		if ok && cached.generation == gen {
			return cached.chain
		}
	}

	rules, gen := d.registry.Rules()
	c := chain.Build(t, rules)
	d.logger.Debug("chain resolved", "target", t.Name, "links", c.Len(), "generation", gen)

	if d.caching {
		d.cacheMu.Lock()
		d.cache[t.Name] = cachedChain{generation: gen, chain: c}
		d.cacheMu.Unlock()
	}
	return c
}

// Invoke calls a registered target through its advice chain.
//
// Order within one call: Before advice, then the body (wrapped by Around
// advice, first registered outermost), then AfterSuccess or AfterFailure,
// then AfterAlways. AfterAlways runs exactly once on every path, including a
// failing Before advice, an Around advice that never proceeds, and a panic.
// Failures raised by the body or by advice reach the caller unwrapped.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args ...any) (any, error) {
	b, ok := d.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("invoke %s: %w", name, domain.ErrTargetNotFound)
	}

	c := d.chainFor(b.Target)
	if c.Empty() {
		return b.Body(ctx, args)
	}
	return d.run(ctx, b, c, args)
}

func (d *Dispatcher) run(ctx context.Context, b registry.Binding, c chain.Chain, args []any) (result any, err error) {
	inv := &domain.Invocation{
		ID:     d.newID(),
		Target: b.Target,
		Args:   slices.Clone(args),
		Start:  time.Now(),
	}
	if d.hooks.OnInvokeStart != nil {
		d.hooks.OnInvokeStart(ctx, inv)
	}

	// Cleanup must not be cut short by the caller's cancellation; the
	// cancellation error itself still travels back untouched.
	post := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			inv.Err = fmt.Errorf("panic: %v", r)
			d.afterAlways(post, inv, c.AfterAlways)
			d.finish(post, inv)
			panic(r)
		}
		inv.Result, inv.Err = result, err
		if alwaysErr := d.afterAlways(post, inv, c.AfterAlways); alwaysErr != nil && err == nil {
			result, err = nil, alwaysErr
		}
		d.finish(post, inv)
	}()

	if err := d.runHooks(ctx, inv, c.Before, domain.PhaseBefore); err != nil {
		return nil, err
	}

	result, err = d.wrap(b.Body, args, c.Around, inv)(ctx)
	inv.Result, inv.Err = result, err

	if err != nil {
		if adviceErr := d.runHooks(post, inv, c.AfterFailure, domain.PhaseAfterFailure); adviceErr != nil {
			return nil, adviceErr
		}
		return result, err
	}
	if adviceErr := d.runHooks(post, inv, c.AfterSuccess, domain.PhaseAfterSuccess); adviceErr != nil {
		return nil, adviceErr
	}
	return result, nil
}

// runHooks runs one phase in order and stops at the first failing advice.
func (d *Dispatcher) runHooks(ctx context.Context, inv *domain.Invocation, links []chain.Link, phase domain.Phase) error {
	for _, link := range links {
		err := link.Advice.Hook(ctx, inv)
		d.emitPhase(ctx, inv, link, phase, err)
		if err != nil {
			return err
		}
	}
	return nil
}

// afterAlways runs every AfterAlways advice even if one of them fails,
// and returns the first failure.
func (d *Dispatcher) afterAlways(ctx context.Context, inv *domain.Invocation, links []chain.Link) error {
	var first error
	for _, link := range links {
		err := link.Advice.Hook(ctx, inv)
		d.emitPhase(ctx, inv, link, domain.PhaseAfterAlways, err)
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (d *Dispatcher) finish(ctx context.Context, inv *domain.Invocation) {
	if d.hooks.OnInvokeEnd != nil {
		d.hooks.OnInvokeEnd(ctx, inv)
	}
}
