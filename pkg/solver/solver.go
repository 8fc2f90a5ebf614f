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

package solver

import (
	"context"
	"errors"

	"github.com/optiroute/optiroute/internal/classify"
	"github.com/optiroute/optiroute/internal/dispatch"
	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/internal/engine/cbc"
	"github.com/optiroute/optiroute/internal/engine/descent"
	"github.com/optiroute/optiroute/internal/engine/glpk"
	"github.com/optiroute/optiroute/internal/engine/scip"
	"github.com/optiroute/optiroute/internal/engine/simplex"
	"github.com/optiroute/optiroute/internal/logging"
	"github.com/optiroute/optiroute/internal/normalize"
	"github.com/optiroute/optiroute/internal/registry"
	"github.com/optiroute/optiroute/pkg/mp"
)

// Solver routes models through the classify/select/build/dispatch/normalize
// pipeline. It is safe for concurrent use; concurrent Run calls share the
// registry's availability cache and nothing else.
type Solver struct {
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	normalizer *normalize.Normalizer
	defaults   mp.Options
}

// Params assembles a Solver from explicit components. Nil fields get
// working defaults, so tests can swap in a single piece.
type Params struct {
	Registry   *registry.Registry
	Dispatcher *dispatch.Dispatcher
	Normalizer *normalize.Normalizer

	// Defaults fill zero-valued fields of per-request options.
	Defaults mp.Options
}

// New builds a Solver from params. An empty registry is legal; every
// solve then fails with a NoEngineAvailable result.
func New(p Params) *Solver {
	s := &Solver{
		registry:   p.Registry,
		dispatcher: p.Dispatcher,
		normalizer: p.Normalizer,
		defaults:   p.Defaults,
	}
	if s.registry == nil {
		s.registry = registry.New()
	}
	if s.dispatcher == nil {
		s.dispatcher = dispatch.New()
	}
	if s.normalizer == nil {
		s.normalizer = normalize.New()
	}
	return s
}

// NewDefault returns a Solver with all bundled engines registered in the
// default preference order: external solvers first, then the in-process
// fallbacks.
func NewDefault() (*Solver, error) {
	r := registry.New()
	for _, e := range []engine.Engine{
		glpk.New(""),
		cbc.New(""),
		scip.New(""),
		simplex.New(),
		descent.New(),
	} {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return New(Params{Registry: r}), nil
}

// Registry exposes the engine registry, for capability listings.
func (s *Solver) Registry() *registry.Registry { return s.registry }

// Classify derives the problem class without solving.
func (s *Solver) Classify(m *mp.Model) (mp.ProblemClass, error) {
	return classify.Classify(m)
}

// Run solves one model and returns the uniform result. The pipeline
// stops at the first failing stage; stages that never ran leave their
// result fields empty, so a malformed model reports no class and no
// engine.
func (s *Solver) Run(ctx context.Context, m *mp.Model, opts mp.Options) mp.Result {
	logger := logging.FromContext(ctx)

	class, err := classify.Classify(m)
	if err != nil {
		return failed(err, mp.Result{})
	}
	logger.V(logging.DEBUG).Info("model classified", "model", m.Name, "class", class)

	opts = s.merged(opts)

	eng, err := s.registry.Select(class, opts.PreferredEngine)
	if err != nil {
		return failed(err, mp.Result{Class: class})
	}
	logger.V(logging.DEBUG).Info("engine selected", "engine", eng.Name(), "class", class)

	compiled, err := eng.Build(m)
	if err != nil {
		return failed(err, mp.Result{Class: class, Engine: eng.Name()})
	}

	raw := s.dispatcher.Dispatch(ctx, eng, compiled, engine.Options{
		TimeLimit: opts.TimeLimit,
		Tolerance: opts.Tolerance,
	})

	result, err := s.normalizer.Normalize(eng.Name(), class, raw)
	if err != nil {
		return failed(err, mp.Result{Class: class, Engine: eng.Name(), Runtime: raw.Runtime})
	}
	return result
}

// merged fills zero-valued request options from the solver defaults.
func (s *Solver) merged(opts mp.Options) mp.Options {
	if opts.TimeLimit == 0 {
		opts.TimeLimit = s.defaults.TimeLimit
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = s.defaults.Tolerance
	}
	if opts.PreferredEngine == "" {
		opts.PreferredEngine = s.defaults.PreferredEngine
	}
	return opts
}

// failed folds a pipeline error into an ERROR result, keeping whatever
// stage fields were already known.
func failed(err error, partial mp.Result) mp.Result {
	partial.Status = mp.StatusError
	partial.Diagnostic = err.Error()
	switch {
	case errors.Is(err, mp.ErrMalformedModel):
		partial.Failure = mp.FailureInput
	case errors.Is(err, mp.ErrNoEngineAvailable):
		partial.Failure = mp.FailureEnvironment
	case errors.Is(err, mp.ErrUnsupportedConstruct), errors.Is(err, mp.ErrUnknownStatus):
		partial.Failure = mp.FailureInternal
	default:
		partial.Failure = mp.FailureEngine
	}
	return partial
}
