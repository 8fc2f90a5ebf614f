/*
Copyright 2026 The optiroute Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package dispatch runs engine invocations with timeout enforcement and
// failure isolation. Every solve happens in its own goroutine; a panic or
// error inside an engine adapter surfaces as a raw result carrying a
// reserved status token, never as a crash of the caller.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/internal/logging"
)

// DefaultGrace is added on top of the requested time limit before the
// dispatcher gives up on an engine. Engines are told the limit and are
// expected to stop themselves; the grace covers process startup and
// solution writing, and the hard ceiling fires only when an engine
// ignores its limit.
const DefaultGrace = 2 * time.Second

// Dispatcher runs compiled models on engines.
type Dispatcher struct {
	grace   time.Duration
	metrics *Metrics
	slots   chan struct{}
}

// New returns a Dispatcher with the default grace period and no metrics.
func New() *Dispatcher {
	return &Dispatcher{grace: DefaultGrace}
}

// WithGrace overrides the hard-ceiling grace period.
func (d *Dispatcher) WithGrace(grace time.Duration) *Dispatcher {
	d.grace = grace
	return d
}

// WithMetrics attaches instrumentation.
func (d *Dispatcher) WithMetrics(m *Metrics) *Dispatcher {
	d.metrics = m
	return d
}

// WithMaxConcurrent caps the number of solves in flight. Exec-based
// engines each hold a subprocess, so unbounded fan-out can exhaust the
// host; zero means no cap.
func (d *Dispatcher) WithMaxConcurrent(n int) *Dispatcher {
	if n > 0 {
		d.slots = make(chan struct{}, n)
	}
	return d
}

// Dispatch runs one solve and always returns a raw result. Engine
// errors and panics come back with the reserved NativeError token,
// an overrun of the hard ceiling with NativeTimeout; the normalizer
// handles both ahead of any per-engine table.
//
// When the ceiling fires, the solving goroutine is abandoned: it holds
// no locks shared with the caller, and the exec-based engines terminate
// their subprocess through the context.
func (d *Dispatcher) Dispatch(ctx context.Context, e engine.Engine, c engine.Compiled, opts engine.Options) engine.RawResult {
	logger := logging.FromContext(ctx).WithValues("engine", e.Name())

	if d.slots != nil {
		select {
		case d.slots <- struct{}{}:
			defer func() { <-d.slots }()
		case <-ctx.Done():
			return engine.RawResult{
				NativeStatus: engine.NativeTimeout,
				Diagnostic:   "canceled while waiting for a solve slot",
			}
		}
	}

	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit+d.grace)
		defer cancel()
	}

	start := time.Now()
	ch := make(chan engine.RawResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- engine.RawResult{
					NativeStatus: engine.NativeError,
					Runtime:      time.Since(start),
					Diagnostic:   fmt.Sprintf("engine panic: %v\n%s", r, debug.Stack()),
				}
			}
		}()
		raw, err := e.Solve(ctx, c, opts)
		if err != nil {
			raw = engine.RawResult{
				NativeStatus: engine.NativeError,
				Runtime:      time.Since(start),
				Diagnostic:   err.Error(),
			}
		}
		ch <- raw
	}()

	var raw engine.RawResult
	select {
	case raw = <-ch:
	case <-ctx.Done():
		// hard ceiling: the engine ignored its time limit
		raw = engine.RawResult{
			NativeStatus: engine.NativeTimeout,
			Runtime:      time.Since(start),
			Diagnostic:   fmt.Sprintf("engine did not return within %v", opts.TimeLimit+d.grace),
		}
	}

	outcome := outcomeCompleted
	switch raw.NativeStatus {
	case engine.NativeTimeout:
		outcome = outcomeTimeout
	case engine.NativeError:
		outcome = outcomeError
	}
	d.metrics.observe(e.Name(), outcome, raw.Runtime.Seconds())

	logger.V(logging.DEBUG).Info("solve dispatched",
		"status", raw.NativeStatus, "runtime", raw.Runtime)
	return raw
}
