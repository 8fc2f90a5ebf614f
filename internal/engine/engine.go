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

// Package engine defines the capability interface every solver backend
// implements, the compiled-model carrier passed between build and solve,
// and the raw (engine-vocabulary) result shape. Adapters for concrete
// engines live in the subpackages; the rest of the pipeline never branches
// on engine identity.
package engine

import (
	"context"
	"time"

	"github.com/optiroute/optiroute/pkg/mp"
)

// Capabilities describes which models an engine accepts.
type Capabilities struct {
	// Classes is the set of problem classes the engine can solve.
	Classes []mp.ProblemClass

	// FunctionNodes reports whether the engine's input contract can
	// express named nonlinear function nodes (sin, exp, ...). Engines
	// without it are limited to polynomial nonlinearity at most.
	FunctionNodes bool
}

// SupportsClass reports whether the engine accepts models of class c.
func (caps Capabilities) SupportsClass(c mp.ProblemClass) bool {
	for _, sc := range caps.Classes {
		if sc == c {
			return true
		}
	}
	return false
}

// Compiled is an engine-specific model produced by Build and consumed by
// Solve of the same engine. The concrete type is opaque to the pipeline.
type Compiled interface {
	// Engine returns the name of the engine that produced this model.
	Engine() string
}

// Options are the effective per-solve settings handed to an engine. Zero
// values mean the engine's own default.
type Options struct {
	// TimeLimit is the engine-side time limit. The dispatcher additionally
	// enforces a hard ceiling in case the engine's own limit is unreliable.
	TimeLimit time.Duration

	// Tolerance is the relative optimality tolerance.
	Tolerance float64
}

// RawResult is the captured outcome of one engine invocation, still in the
// engine's own status vocabulary. The normalizer maps it to the uniform
// result shape.
type RawResult struct {
	// NativeStatus is the engine's terminal status token, or one of the
	// reserved dispatch tokens below.
	NativeStatus string

	// Objective is the reported objective value, if any.
	Objective *float64

	// Values maps variable names (model names, not engine-internal names)
	// to reported values, if any.
	Values map[string]float64

	// Runtime is the wall-clock duration of the invocation.
	Runtime time.Duration

	// Diagnostic carries captured engine output for non-solution outcomes.
	Diagnostic string
}

// Reserved native status tokens produced by the dispatcher itself rather
// than by an engine. Normalization tables do not need to cover them.
const (
	// NativeTimeout is set when the dispatcher's hard ceiling fired before
	// the engine returned a terminal status.
	NativeTimeout = "dispatch/timeout"

	// NativeError is set when the engine was unavailable, crashed, or
	// returned an uncontrolled fault.
	NativeError = "dispatch/error"
)

// Engine is the uniform capability interface over solver backends.
// Implementations are opaque black boxes to the pipeline; their executable
// discovery and input formats are adapter-internal.
type Engine interface {
	// Name returns the unique engine name (e.g. "glpk", "cbc").
	Name() string

	// Capabilities returns the static capability set of this engine.
	Capabilities() Capabilities

	// Available reports whether the engine is installed and usable in the
	// current environment.
	Available() bool

	// Build translates a model descriptor into this engine's input
	// contract. A construct outside the engine's capability set aborts
	// with an error wrapping mp.ErrUnsupportedConstruct; nothing is ever
	// silently truncated.
	Build(m *mp.Model) (Compiled, error)

	// Solve runs the engine synchronously on a previously built model and
	// captures its raw outcome. Engine faults are reported through the
	// error return; the dispatcher folds them into a RawResult.
	Solve(ctx context.Context, c Compiled, opts Options) (RawResult, error)
}

// Float64 returns a pointer to v; a small helper for RawResult.Objective.
func Float64(v float64) *float64 { return &v }
