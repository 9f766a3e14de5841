// Package cli assembles a ready-to-serve engine from configuration.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/internal/demo"
	"github.com/aretw0/weft/pkg/adapters/memory"
	promAdapter "github.com/aretw0/weft/pkg/adapters/prometheus"
	redisAdapter "github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/aspects"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/emit"
	"github.com/aretw0/weft/pkg/ports"
)

// Options tune NewRuntime beyond what the config file carries.
type Options struct {
	// Trace records every event in memory, for `weft invoke --trace`.
	Trace bool
	// Catalog overrides the built-in aspects.
	Catalog aspects.Catalog
}

// Runtime is a sealed engine with the demo application and its sinks.
type Runtime struct {
	Engine   *weft.Engine
	App      *demo.App
	Registry *prometheus.Registry
	Trace    *memory.Sink

	closers []func(context.Context) error
}

// NewRuntime creates the engine, registers the demo targets and configured rules, then seals it.
func NewRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*Runtime, error) {
	rt := &Runtime{}
	var sinks []ports.EventSink
	var hooks []domain.LifecycleHooks

	if cfg.Metrics.Enabled {
		rt.Registry = prometheus.NewRegistry()
		metrics := promAdapter.NewMetrics(rt.Registry)
		sinks = append(sinks, metrics)
		hooks = append(hooks, metrics.Hooks())
	}

	if cfg.Redis.Enabled {
		sink, err := rt.redisSink(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	if opts.Trace {
		rt.Trace = memory.NewSink()
		sinks = append(sinks, rt.Trace)
	}

	hooks = append(hooks, createDebugHooks(logger))

	engineOpts := []weft.Option{
		weft.WithLogger(logger),
		weft.WithName("demo"),
		weft.WithLifecycleHooks(combineHooks(hooks...)),
	}
	for _, s := range sinks {
		engineOpts = append(engineOpts, weft.WithSink(s))
	}
	rt.Engine = weft.New(engineOpts...)

	app, err := demo.Wire(rt.Engine, logger)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	rt.App = app

	catalog := opts.Catalog
	if catalog == nil {
		catalog = aspects.DefaultCatalog()
	}
	if err := cfg.Apply(rt.Engine, catalog, logger); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("apply rules: %w", err)
	}
	rt.Engine.Seal()
	return rt, nil
}

func (rt *Runtime) redisSink(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.EventSink, error) {
	client := backend.NewClient(&backend.Options{Addr: cfg.Redis.Addr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
	}

	stream := redisAdapter.NewSink(client,
		redisAdapter.WithStream(cfg.Redis.Stream),
		redisAdapter.WithMaxLen(cfg.Redis.MaxLen),
	)
	async := emit.NewAsync(stream, cfg.Events.Buffer, logger)
	rt.closers = append(rt.closers,
		async.Close,
		func(context.Context) error { return client.Close() },
	)
	logger.Info("publishing events to redis", "addr", cfg.Redis.Addr, "stream", stream.Stream())
	return async, nil
}

// Close flushes asynchronous sinks and releases connections, in registration order.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c(ctx))
	}
	rt.closers = nil
	return errors.Join(errs...)
}
