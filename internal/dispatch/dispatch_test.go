package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/pkg/mp"
)

// stubEngine lets each test script the solve behavior.
type stubEngine struct {
	name  string
	solve func(ctx context.Context, opts engine.Options) (engine.RawResult, error)
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Capabilities() engine.Capabilities { return engine.Capabilities{} }

func (s *stubEngine) Available() bool { return true }

func (s *stubEngine) Build(*mp.Model) (engine.Compiled, error) { return stubCompiled{s.name}, nil }

func (s *stubEngine) Solve(ctx context.Context, _ engine.Compiled, opts engine.Options) (engine.RawResult, error) {
	return s.solve(ctx, opts)
}

type stubCompiled struct{ name string }

func (c stubCompiled) Engine() string { return c.name }

func TestDispatchPassesThroughResult(t *testing.T) {
	obj := 42.0
	e := &stubEngine{name: "stub", solve: func(context.Context, engine.Options) (engine.RawResult, error) {
		return engine.RawResult{NativeStatus: "optimal", Objective: &obj}, nil
	}}

	raw := New().Dispatch(context.Background(), e, stubCompiled{"stub"}, engine.Options{})
	assert.Equal(t, "optimal", raw.NativeStatus)
	require.NotNil(t, raw.Objective)
	assert.Equal(t, 42.0, *raw.Objective)
}

func TestDispatchConvertsEngineError(t *testing.T) {
	e := &stubEngine{name: "stub", solve: func(context.Context, engine.Options) (engine.RawResult, error) {
		return engine.RawResult{}, errors.New("exec: \"glpsol\": executable file not found")
	}}

	raw := New().Dispatch(context.Background(), e, stubCompiled{"stub"}, engine.Options{})
	assert.Equal(t, engine.NativeError, raw.NativeStatus)
	assert.Contains(t, raw.Diagnostic, "glpsol")
}

func TestDispatchRecoversPanic(t *testing.T) {
	e := &stubEngine{name: "stub", solve: func(context.Context, engine.Options) (engine.RawResult, error) {
		panic("index out of range")
	}}

	raw := New().Dispatch(context.Background(), e, stubCompiled{"stub"}, engine.Options{})
	assert.Equal(t, engine.NativeError, raw.NativeStatus)
	assert.Contains(t, raw.Diagnostic, "index out of range")
}

func TestDispatchHardCeiling(t *testing.T) {
	// an engine that ignores both the context and its time limit
	e := &stubEngine{name: "stuck", solve: func(context.Context, engine.Options) (engine.RawResult, error) {
		time.Sleep(5 * time.Second)
		return engine.RawResult{NativeStatus: "optimal"}, nil
	}}

	limit := 20 * time.Millisecond
	d := New().WithGrace(30 * time.Millisecond)

	start := time.Now()
	raw := d.Dispatch(context.Background(), e, stubCompiled{"stuck"}, engine.Options{TimeLimit: limit})
	elapsed := time.Since(start)

	assert.Equal(t, engine.NativeTimeout, raw.NativeStatus)
	// returns promptly after limit+grace, not after the engine's sleep
	assert.Less(t, elapsed, 2*time.Second)
}

func TestDispatchHonorsEngineOwnTimeout(t *testing.T) {
	// an engine that stops itself inside the limit reports its own token
	e := &stubEngine{name: "polite", solve: func(ctx context.Context, opts engine.Options) (engine.RawResult, error) {
		return engine.RawResult{NativeStatus: "TIME LIMIT"}, nil
	}}

	raw := New().Dispatch(context.Background(), e, stubCompiled{"polite"}, engine.Options{TimeLimit: time.Second})
	assert.Equal(t, "TIME LIMIT", raw.NativeStatus)
}

func TestDispatchConcurrencyCap(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0

	e := &stubEngine{name: "slow", solve: func(context.Context, engine.Options) (engine.RawResult, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return engine.RawResult{NativeStatus: "optimal"}, nil
	}}

	d := New().WithMaxConcurrent(2)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(context.Background(), e, stubCompiled{"slow"}, engine.Options{})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, 2)
}

func TestDispatchMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	d := New().WithMetrics(NewMetrics(reg))

	ok := &stubEngine{name: "stub", solve: func(context.Context, engine.Options) (engine.RawResult, error) {
		return engine.RawResult{NativeStatus: "optimal"}, nil
	}}
	failing := &stubEngine{name: "stub", solve: func(context.Context, engine.Options) (engine.RawResult, error) {
		return engine.RawResult{}, errors.New("boom")
	}}

	d.Dispatch(context.Background(), ok, stubCompiled{"stub"}, engine.Options{})
	d.Dispatch(context.Background(), ok, stubCompiled{"stub"}, engine.Options{})
	d.Dispatch(context.Background(), failing, stubCompiled{"stub"}, engine.Options{})

	completed := testutil.ToFloat64(d.metrics.SolvesTotal.WithLabelValues("stub", outcomeCompleted))
	failed := testutil.ToFloat64(d.metrics.SolvesTotal.WithLabelValues("stub", outcomeError))
	assert.Equal(t, 2.0, completed)
	assert.Equal(t, 1.0, failed)
}
