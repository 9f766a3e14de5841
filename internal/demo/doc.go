// Package demo is a small user/order application whose services and
// controllers are only reachable through engine proxies.
//
// OrderService.ProcessWithSelfInvocation calls CreateOrder on its own
// receiver, so the inner call never reaches the dispatcher and none of
// CreateOrder's advice runs for it. That bypass is deliberate.
package demo
