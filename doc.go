/*
Package weft is a runtime, proxy-based method interception engine.

It weaves cross-cutting behavior (timing, logging, failure capture) around
plain functions without touching their code. Functions are registered as
Targets under a qualified name; Rules select Targets by name pattern or by
declared tag and attach Advice for one of five phases: Before, Around,
AfterSuccess, AfterFailure and AfterAlways.

# Concept

Every intercepted call goes through the Engine (the dispatcher). Callers are
handed proxies built on Engine.Invoke, never the raw implementation. This is
what makes interception work, and also what limits it: when a target's body
calls a sibling method directly on its own receiver, the call never crosses
the dispatcher and none of the sibling's advice runs. weft keeps this
self-invocation behavior on purpose; route the inner call through the proxy
if it must be intercepted.

# Usage

	eng := weft.New(weft.WithLogger(logger), weft.WithSink(sink))

	_ = eng.Register(domain.Target{
		Name: "service.OrderService.CreateOrder",
		Tags: domain.Tags{"logged": "create order"},
	}, createOrder)

	_, _ = eng.RegisterRule("execution(* service..*(..))",
		domain.Before("log-args", logArgs),
		domain.AfterAlways("log-done", logDone),
	)
	_, _ = eng.RegisterRule("@annotation(logged)",
		domain.Around("timer", timer),
	)
	eng.Seal()

	order, err := weft.Call[Order](ctx, eng, "service.OrderService.CreateOrder")

# Events

Each executed advice produces a domain.Event (phase, target, elapsed time,
arguments, result or failure) delivered to the configured sinks. Sink
failures are logged and dropped; they never affect the call.
*/
package weft
