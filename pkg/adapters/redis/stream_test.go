package redis_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/domain"
)

func newClient(t *testing.T) *backend.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSink_EmitAppendsToStream(t *testing.T) {
	client := newClient(t)
	sink := redis.NewSink(client, redis.WithStream("test:events"))
	ctx := context.Background()

	event := domain.Event{
		Timestamp:    time.Now().UTC(),
		InvocationID: "inv-1",
		Target:       "service.UserService.FailingMethod",
		Phase:        domain.PhaseAfterFailure,
		Advice:       "logging.after_throwing",
		Elapsed:      12 * time.Millisecond,
		Error:        "intentional error for testing",
	}
	require.NoError(t, sink.Emit(ctx, event))

	msgs, err := client.XRange(ctx, "test:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "service.UserService.FailingMethod", msgs[0].Values["target"])
	assert.Equal(t, "after_failure", msgs[0].Values["phase"])
	assert.Equal(t, "12", msgs[0].Values["elapsed_ms"])
	assert.Equal(t, "intentional error for testing", msgs[0].Values["error"])
}

func TestSink_RecentDecodesPayload(t *testing.T) {
	client := newClient(t)
	sink := redis.NewSink(client)
	ctx := context.Background()

	for _, phase := range []domain.Phase{domain.PhaseBefore, domain.PhaseAfterSuccess, domain.PhaseAfterAlways} {
		require.NoError(t, sink.Emit(ctx, domain.Event{Target: "service.UserService.GetUser", Phase: phase, Result: "Alice"}))
	}

	events, err := sink.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.PhaseAfterAlways, events[0].Phase)
	assert.Equal(t, domain.PhaseAfterSuccess, events[1].Phase)
	assert.Equal(t, "Alice", events[1].Result)
	assert.Equal(t, redis.DefaultStream, sink.Stream())
}

func TestSink_MaxLenTrims(t *testing.T) {
	client := newClient(t)
	sink := redis.NewSink(client, redis.WithMaxLen(3))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, sink.Emit(ctx, domain.Event{Target: "t", Phase: domain.PhaseBefore}))
	}
	n, err := client.XLen(ctx, redis.DefaultStream).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

// commandRecorder keeps the arguments of every command sent through the client.
type commandRecorder struct {
	mu   sync.Mutex
	args [][]any
}

func (r *commandRecorder) DialHook(next backend.DialHook) backend.DialHook { return next }

func (r *commandRecorder) ProcessHook(next backend.ProcessHook) backend.ProcessHook {
	return func(ctx context.Context, cmd backend.Cmder) error {
		r.mu.Lock()
		r.args = append(r.args, cmd.Args())
		r.mu.Unlock()
		return next(ctx, cmd)
	}
}

func (r *commandRecorder) ProcessPipelineHook(next backend.ProcessPipelineHook) backend.ProcessPipelineHook {
	return next
}

func (r *commandRecorder) xadd() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, args := range r.args {
		if len(args) > 0 && fmt.Sprint(args[0]) == "xadd" {
			out := make([]string, 0, len(args))
			for _, a := range args {
				out = append(out, fmt.Sprint(a))
			}
			return out
		}
	}
	return nil
}

func TestSink_MaxLenIsApproximate(t *testing.T) {
	client := newClient(t)
	rec := &commandRecorder{}
	client.AddHook(rec)
	sink := redis.NewSink(client, redis.WithMaxLen(100))

	require.NoError(t, sink.Emit(context.Background(), domain.Event{Target: "t", Phase: domain.PhaseBefore}))

	args := rec.xadd()
	require.GreaterOrEqual(t, len(args), 5)
	assert.Equal(t, []string{"xadd", redis.DefaultStream, "maxlen", "~", "100"}, args[:5])
}

func TestSink_UnencodableEvent(t *testing.T) {
	sink := redis.NewSink(newClient(t))
	err := sink.Emit(context.Background(), domain.Event{Target: "t", Result: make(chan int)})
	assert.Error(t, err)
}

func TestSink_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr(), MaxRetries: -1})
	mr.Close()

	err = redis.NewSink(client).Emit(context.Background(), domain.Event{Target: "t"})
	assert.Error(t, err)
}
