package runtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft/internal/runtime"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/emit"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/registry"
)

var errIntentional = errors.New("intentional failure")

// trace collects the order in which advice and bodies ran.
type trace struct {
	mu    sync.Mutex
	steps []string
}

func (tr *trace) add(step string) {
	tr.mu.Lock()
	tr.steps = append(tr.steps, step)
	tr.mu.Unlock()
}

func (tr *trace) get() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.steps...)
}

func (tr *trace) hook(step string) domain.Hook {
	return func(context.Context, *domain.Invocation) error {
		tr.add(step)
		return nil
	}
}

func (tr *trace) around(name string) domain.AroundFunc {
	return func(ctx context.Context, _ *domain.Invocation, proceed domain.Proceed) (any, error) {
		tr.add(name + "-before")
		res, err := proceed(ctx)
		tr.add(name + "-after")
		return res, err
	}
}

type fixture struct {
	reg  *registry.Registry
	sink *memory.Sink
	d    *runtime.Dispatcher
	tr   *trace
}

func newFixture(t *testing.T, opts ...runtime.DispatcherOption) *fixture {
	t.Helper()
	reg := registry.NewRegistry()
	sink := memory.NewSink()
	opts = append([]runtime.DispatcherOption{runtime.WithEmitter(emit.New(sink, nil))}, opts...)
	return &fixture{
		reg:  reg,
		sink: sink,
		d:    runtime.NewDispatcher(reg, opts...),
		tr:   &trace{},
	}
}

func (f *fixture) target(t *testing.T, name string, body domain.Func, tags ...string) {
	t.Helper()
	tgt := domain.Target{Name: name}
	if len(tags) > 0 {
		tgt.Tags = domain.Tags{}
		for _, tag := range tags {
			tgt.Tags[tag] = ""
		}
	}
	require.NoError(t, f.reg.RegisterTarget(tgt, body))
}

func (f *fixture) rule(t *testing.T, expr string, advice ...domain.Advice) {
	t.Helper()
	_, err := f.reg.RegisterRule(expr, advice...)
	require.NoError(t, err)
}

func value(v any) domain.Func {
	return func(context.Context, []any) (any, error) { return v, nil }
}

func failing(err error) domain.Func {
	return func(context.Context, []any) (any, error) { return nil, err }
}

func TestInvoke_UnknownTarget(t *testing.T) {
	f := newFixture(t)
	_, err := f.d.Invoke(context.Background(), "nope.Nope.nope")
	assert.ErrorIs(t, err, domain.ErrTargetNotFound)
}

func TestInvoke_UnmatchedTargetIsCalledDirectly(t *testing.T) {
	f := newFixture(t)
	f.target(t, "service.OrderService.ProcessNormal", value("ok"))
	f.target(t, "service.OrderService.Broken", failing(errIntentional))
	f.rule(t, "@logged", domain.Before("log", f.tr.hook("before")))

	got, err := f.d.Invoke(context.Background(), "service.OrderService.ProcessNormal")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	_, err = f.d.Invoke(context.Background(), "service.OrderService.Broken")
	assert.Same(t, errIntentional, err)

	assert.Zero(t, f.sink.Len())
	assert.Empty(t, f.tr.get())
}

func TestInvoke_AfterAlwaysFiresExactlyOnce(t *testing.T) {
	cases := []struct {
		name       string
		body       domain.Func
		beforeErr  error
		wantErr    error
		wantTrace  []string
		wantResult any
	}{
		{
			name:       "success",
			body:       value(42),
			wantTrace:  []string{"before", "success", "always"},
			wantResult: 42,
		},
		{
			name:      "body failure",
			body:      failing(errIntentional),
			wantErr:   errIntentional,
			wantTrace: []string{"before", "failure", "always"},
		},
		{
			name:      "before failure",
			body:      value(42),
			beforeErr: errIntentional,
			wantErr:   errIntentional,
			wantTrace: []string{"before", "always"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			bodyRan := false
			f.target(t, "service.UserService.Call", func(ctx context.Context, args []any) (any, error) {
				bodyRan = true
				return tc.body(ctx, args)
			})
			f.rule(t, "execution(* service..*(..))",
				domain.Before("before", func(context.Context, *domain.Invocation) error {
					f.tr.add("before")
					return tc.beforeErr
				}),
				domain.AfterSuccess("success", f.tr.hook("success")),
				domain.AfterFailure("failure", f.tr.hook("failure")),
				domain.AfterAlways("always", f.tr.hook("always")),
			)

			got, err := f.d.Invoke(context.Background(), "service.UserService.Call")
			if tc.wantErr != nil {
				assert.Same(t, tc.wantErr, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.wantResult, got)
			}
			assert.Equal(t, tc.wantTrace, f.tr.get())
			assert.Equal(t, tc.beforeErr == nil, bodyRan)

			always := 0
			for _, e := range f.sink.Events() {
				if e.Phase == domain.PhaseAfterAlways {
					always++
				}
			}
			assert.Equal(t, 1, always)
		})
	}
}

func TestInvoke_AroundThatDeclinesSkipsBody(t *testing.T) {
	f := newFixture(t)
	bodyRan := false
	f.target(t, "service.UserService.GetUser", func(context.Context, []any) (any, error) {
		bodyRan = true
		return "from body", nil
	})
	f.rule(t, "service.UserService.*",
		domain.Around("cache", func(context.Context, *domain.Invocation, domain.Proceed) (any, error) {
			return "from cache", nil
		}),
		domain.AfterSuccess("success", f.tr.hook("success")),
		domain.AfterAlways("always", f.tr.hook("always")),
	)

	got, err := f.d.Invoke(context.Background(), "service.UserService.GetUser")
	require.NoError(t, err)
	assert.Equal(t, "from cache", got)
	assert.False(t, bodyRan)
	assert.Equal(t, []string{"success", "always"}, f.tr.get())
}

func TestInvoke_AroundAdviceNestsInRegistrationOrder(t *testing.T) {
	f := newFixture(t)
	f.target(t, "service.OrderService.CreateOrder", func(context.Context, []any) (any, error) {
		f.tr.add("body")
		return nil, nil
	}, "logged")
	f.rule(t, "execution(* service..*(..))", domain.Around("A", f.tr.around("A")))
	f.rule(t, "@logged", domain.Around("B", f.tr.around("B")))

	_, err := f.d.Invoke(context.Background(), "service.OrderService.CreateOrder")
	require.NoError(t, err)

	want := []string{"A-before", "B-before", "body", "B-after", "A-after"}
	if diff := cmp.Diff(want, f.tr.get()); diff != "" {
		t.Fatalf("nesting mismatch (-want +got):\n%s", diff)
	}
	// The innermost around completes first, so its event comes first.
	assert.Equal(t, []string{"around:B", "around:A"}, f.sink.Trace())
}

func TestInvoke_PhaseOrdering(t *testing.T) {
	f := newFixture(t)
	f.target(t, "service.OrderService.CreateOrder", func(context.Context, []any) (any, error) {
		f.tr.add("body")
		return "order-1", nil
	}, "logged")
	// Registered deliberately out of phase order.
	f.rule(t, "@logged",
		domain.AfterAlways("always", f.tr.hook("always")),
		domain.AfterSuccess("success", f.tr.hook("success")),
		domain.Around("around", f.tr.around("around")),
		domain.Before("before", f.tr.hook("before")),
	)

	_, err := f.d.Invoke(context.Background(), "service.OrderService.CreateOrder")
	require.NoError(t, err)

	assert.Equal(t, []string{"before", "around-before", "body", "around-after", "success", "always"}, f.tr.get())
	assert.Equal(t, []string{"before:before", "around:around", "after_success:success", "after_always:always"}, f.sink.Trace())
}

func TestInvoke_SelfInvocationBypassesInterception(t *testing.T) {
	f := newFixture(t)

	createOrder := func(context.Context, []any) (any, error) {
		f.tr.add("create-body")
		return nil, nil
	}
	f.target(t, "service.OrderService.CreateOrder", createOrder, "logged")

	// Calls its sibling directly, the way a method calls another method on its own receiver.
	f.target(t, "service.OrderService.ProcessWithSelfInvocation", func(ctx context.Context, args []any) (any, error) {
		return createOrder(ctx, args)
	})
	// Calls its sibling back through the boundary.
	f.target(t, "service.OrderService.ProcessThroughProxy", func(ctx context.Context, _ []any) (any, error) {
		return f.d.Invoke(ctx, "service.OrderService.CreateOrder")
	})

	f.rule(t, "@logged",
		domain.Before("before", f.tr.hook("before")),
		domain.Around("around", f.tr.around("around")),
		domain.AfterAlways("always", f.tr.hook("always")),
	)

	_, err := f.d.Invoke(context.Background(), "service.OrderService.ProcessWithSelfInvocation")
	require.NoError(t, err)
	assert.Empty(t, f.sink.ForTarget("service.OrderService.CreateOrder"))
	assert.Equal(t, []string{"create-body"}, f.tr.get())

	_, err = f.d.Invoke(context.Background(), "service.OrderService.ProcessThroughProxy")
	require.NoError(t, err)
	events := f.sink.ForTarget("service.OrderService.CreateOrder")
	phases := make([]domain.Phase, 0, len(events))
	for _, e := range events {
		phases = append(phases, e.Phase)
	}
	assert.Equal(t, []domain.Phase{domain.PhaseBefore, domain.PhaseAround, domain.PhaseAfterAlways}, phases)
}

func TestInvoke_TimingDoesNotAlterResult(t *testing.T) {
	f := newFixture(t)
	f.target(t, "service.UserService.Slow", func(context.Context, []any) (any, error) {
		time.Sleep(50 * time.Millisecond)
		return "done", nil
	})
	f.rule(t, "service..*",
		domain.Around("timer", func(ctx context.Context, _ *domain.Invocation, proceed domain.Proceed) (any, error) {
			return proceed(ctx)
		}),
		domain.AfterAlways("always", func(context.Context, *domain.Invocation) error { return nil }),
	)

	got, err := f.d.Invoke(context.Background(), "service.UserService.Slow")
	require.NoError(t, err)
	assert.Equal(t, "done", got)

	for _, e := range f.sink.Events() {
		assert.GreaterOrEqual(t, e.Elapsed, 50*time.Millisecond, "phase %s", e.Phase)
	}
	require.Equal(t, 2, f.sink.Len())
}

func TestInvoke_FailureReachesAdviceAndCallerUnchanged(t *testing.T) {
	f := newFixture(t)
	f.target(t, "service.UserService.FailingMethod", failing(errIntentional))

	var seen error
	f.rule(t, "service..*",
		domain.AfterFailure("capture", func(_ context.Context, inv *domain.Invocation) error {
			seen = inv.Err
			return nil
		}),
		domain.AfterAlways("always", f.tr.hook("always")),
	)

	_, err := f.d.Invoke(context.Background(), "service.UserService.FailingMethod")
	assert.Same(t, errIntentional, err)
	assert.Same(t, errIntentional, seen)
	assert.Equal(t, []string{"always"}, f.tr.get())

	events := f.sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, errIntentional.Error(), events[0].Error)
	assert.Equal(t, errIntentional.Error(), events[1].Error)
}

func TestInvoke_AdviceFailurePropagatesButAfterAlwaysRuns(t *testing.T) {
	adviceErr := errors.New("advice broke")
	phases := []struct {
		name   string
		advice domain.Advice
		body   domain.Func
	}{
		{"after success", domain.AfterSuccess("x", func(context.Context, *domain.Invocation) error { return adviceErr }), value(1)},
		{"after failure", domain.AfterFailure("x", func(context.Context, *domain.Invocation) error { return adviceErr }), failing(errIntentional)},
		{"around", domain.Around("x", func(context.Context, *domain.Invocation, domain.Proceed) (any, error) { return nil, adviceErr }), value(1)},
	}

	for _, tc := range phases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.target(t, "service.A.b", tc.body)
			f.rule(t, "service..*", tc.advice, domain.AfterAlways("always", f.tr.hook("always")))

			_, err := f.d.Invoke(context.Background(), "service.A.b")
			assert.Same(t, adviceErr, err)
			assert.Equal(t, []string{"always"}, f.tr.get())
		})
	}
}

func TestInvoke_AllAfterAlwaysRunEvenIfOneFails(t *testing.T) {
	f := newFixture(t)
	f.target(t, "service.A.b", value(1))
	first := errors.New("first")
	f.rule(t, "service..*",
		domain.AfterAlways("one", func(context.Context, *domain.Invocation) error {
			f.tr.add("one")
			return first
		}),
		domain.AfterAlways("two", f.tr.hook("two")),
	)

	_, err := f.d.Invoke(context.Background(), "service.A.b")
	assert.Same(t, first, err)
	assert.Equal(t, []string{"one", "two"}, f.tr.get())
}

func TestInvoke_AfterAlwaysFailureDoesNotMaskBodyFailure(t *testing.T) {
	f := newFixture(t)
	f.target(t, "service.A.b", failing(errIntentional))
	f.rule(t, "service..*", domain.AfterAlways("one", func(context.Context, *domain.Invocation) error {
		return errors.New("cleanup failed")
	}))

	_, err := f.d.Invoke(context.Background(), "service.A.b")
	assert.Same(t, errIntentional, err)
}

func TestInvoke_ProceedTwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	calls := 0
	f.target(t, "service.A.b", func(context.Context, []any) (any, error) {
		calls++
		return calls, nil
	})
	var second error
	f.rule(t, "service..*", domain.Around("greedy", func(ctx context.Context, _ *domain.Invocation, proceed domain.Proceed) (any, error) {
		res, err := proceed(ctx)
		_, second = proceed(ctx)
		return res, err
	}))

	got, err := f.d.Invoke(context.Background(), "service.A.b")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, second, domain.ErrProceedTwice)
}

func TestInvoke_ProceedHandleIsClosedAfterAdviceReturns(t *testing.T) {
	f := newFixture(t)
	calls := 0
	f.target(t, "service.A.b", func(context.Context, []any) (any, error) {
		calls++
		return calls, nil
	})
	var kept domain.Proceed
	f.rule(t, "service..*", domain.Around("hoarder", func(_ context.Context, _ *domain.Invocation, proceed domain.Proceed) (any, error) {
		kept = proceed
		return "skipped", nil
	}))

	got, err := f.d.Invoke(context.Background(), "service.A.b")
	require.NoError(t, err)
	assert.Equal(t, "skipped", got)

	_, err = kept(context.Background())
	assert.ErrorIs(t, err, domain.ErrProceedClosed)
	assert.Equal(t, 0, calls)
}

func TestInvoke_AfterSuccessCannotAlterResult(t *testing.T) {
	f := newFixture(t)
	f.target(t, "service.A.b", value("original"))
	f.rule(t, "service..*", domain.AfterSuccess("tamper", func(_ context.Context, inv *domain.Invocation) error {
		inv.Result = "tampered"
		return nil
	}))

	got, err := f.d.Invoke(context.Background(), "service.A.b")
	require.NoError(t, err)
	assert.Equal(t, "original", got)
}

func TestInvoke_FailingSinkDoesNotAbortInvocation(t *testing.T) {
	broken := ports.SinkFunc(func(context.Context, domain.Event) error { return errors.New("sink down") })
	em := emit.New(broken, nil)
	f := newFixture(t, runtime.WithEmitter(em))
	f.target(t, "service.A.b", value("ok"))
	f.rule(t, "service..*", domain.Before("b", f.tr.hook("before")), domain.AfterAlways("a", f.tr.hook("always")))

	got, err := f.d.Invoke(context.Background(), "service.A.b")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, []string{"before", "always"}, f.tr.get())
	assert.Equal(t, uint64(2), em.Failures())
}

func TestInvoke_CancellationPropagatesAndCleanupRuns(t *testing.T) {
	f := newFixture(t)
	f.target(t, "service.A.b", func(ctx context.Context, _ []any) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	var cleanupCtxErr error
	f.rule(t, "service..*", domain.AfterAlways("cleanup", func(ctx context.Context, _ *domain.Invocation) error {
		cleanupCtxErr = ctx.Err()
		f.tr.add("cleanup")
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.d.Invoke(ctx, "service.A.b")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"cleanup"}, f.tr.get())
	assert.NoError(t, cleanupCtxErr)
}

func TestInvoke_PanicStillRunsAfterAlways(t *testing.T) {
	f := newFixture(t)
	f.target(t, "service.A.b", func(context.Context, []any) (any, error) {
		panic("kaboom")
	})
	f.rule(t, "service..*", domain.AfterAlways("always", f.tr.hook("always")))

	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = f.d.Invoke(context.Background(), "service.A.b")
	})
	assert.Equal(t, []string{"always"}, f.tr.get())
	events := f.sink.Events()
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Error, "kaboom")
}

func TestInvoke_LateRegistrationInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	f.target(t, "service.A.b", value(1))

	_, err := f.d.Invoke(context.Background(), "service.A.b")
	require.NoError(t, err)
	assert.Zero(t, f.sink.Len())

	f.rule(t, "service..*", domain.Before("late", f.tr.hook("late")))

	_, err = f.d.Invoke(context.Background(), "service.A.b")
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, f.tr.get())
}

func TestInvoke_ArgumentsSnapshot(t *testing.T) {
	f := newFixture(t, runtime.WithIDGenerator(func() string { return "inv-1" }))
	var bodyArgs []any
	f.target(t, "service.UserService.CreateUser", func(_ context.Context, args []any) (any, error) {
		bodyArgs = args
		return nil, nil
	})
	f.rule(t, "service..*", domain.Before("scribble", func(_ context.Context, inv *domain.Invocation) error {
		inv.Args[0] = "scribbled"
		return nil
	}))

	_, err := f.d.Invoke(context.Background(), "service.UserService.CreateUser", "alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, []any{"alice", "alice@example.com"}, bodyArgs)

	events := f.sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "inv-1", events[0].InvocationID)
	assert.Equal(t, "service.UserService.CreateUser", events[0].Target)
}

func TestInvoke_LifecycleHooks(t *testing.T) {
	var started, ended []string
	f := newFixture(t, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnInvokeStart: func(_ context.Context, inv *domain.Invocation) { started = append(started, inv.Target.Name) },
		OnInvokeEnd: func(_ context.Context, inv *domain.Invocation) {
			ended = append(ended, inv.Target.Name)
		},
	}))
	f.target(t, "service.A.b", value(1))
	f.target(t, "repository.A.b", value(1))
	f.rule(t, "service..*", domain.Before("x", f.tr.hook("x")))

	_, _ = f.d.Invoke(context.Background(), "service.A.b")
	_, _ = f.d.Invoke(context.Background(), "repository.A.b")

	assert.Equal(t, []string{"service.A.b"}, started)
	assert.Equal(t, []string{"service.A.b"}, ended)
}

func TestInvoke_ConcurrentCallsKeepInvocationsApart(t *testing.T) {
	f := newFixture(t)
	f.target(t, "service.A.echo", func(_ context.Context, args []any) (any, error) {
		return args[0], nil
	})
	f.rule(t, "service..*", domain.AfterSuccess("check", func(_ context.Context, inv *domain.Invocation) error {
		if inv.Result != inv.Args[0] {
			return errors.New("invocation state leaked between calls")
		}
		return nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := f.d.Invoke(context.Background(), "service.A.echo", i)
			assert.NoError(t, err)
			assert.Equal(t, i, got)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 64, f.sink.Len())
}

func TestResolve(t *testing.T) {
	f := newFixture(t, runtime.WithChainCache(false))
	f.target(t, "service.A.b", value(1), "logged")
	f.rule(t, "@logged", domain.Before("x", f.tr.hook("x")), domain.Around("y", f.tr.around("y")))

	c, err := f.d.Resolve("service.A.b")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = f.d.Resolve("missing.A.b")
	assert.ErrorIs(t, err, domain.ErrTargetNotFound)
}
