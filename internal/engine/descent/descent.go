// Package descent is an in-process engine for continuous nonlinear
// models. It minimizes a quadratic-penalty reformulation with BFGS and
// finite-difference gradients, escalating the penalty weight until the
// iterate is feasible within tolerance. It is the only engine that
// accepts transcendental function nodes, which keeps models with sin,
// exp and friends solvable when no external solver is installed.
package descent

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/optiroute/optiroute/internal/build"
	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/pkg/mp"
)

// Name is the engine name used in registry and normalization tables.
const Name = "descent"

// Native status tokens.
const (
	StatusConverged  = "converged"
	StatusInfeasible = "penalty stalled infeasible"
	StatusFailed     = "failed"
)

const (
	defaultFeasTol  = 1e-6
	initialPenalty  = 10.0
	penaltyGrowth   = 10.0
	maxPenaltyRound = 8
)

// Engine solves continuous nonlinear programs by penalty descent.
type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return Name }

func (e *Engine) Capabilities() engine.Capabilities {
	return engine.Capabilities{
		Classes:       []mp.ProblemClass{mp.ClassNLP},
		FunctionNodes: true,
	}
}

// Available is always true; the implementation is linked in.
func (e *Engine) Available() bool { return true }

// violation returns the constraint violation at x; zero means satisfied.
type violation func(x []float64) float64

type compiled struct {
	start      []float64 // initial point, one entry per variable
	names      []string
	objective  func([]float64) float64
	maximize   bool
	violations []violation
}

func (c *compiled) Engine() string { return Name }

func (e *Engine) Build(m *mp.Model) (engine.Compiled, error) {
	for _, v := range m.Variables {
		if v.Integral() {
			return nil, fmt.Errorf("%s: %w: integer variable %q on a continuous-only engine",
				Name, mp.ErrUnsupportedConstruct, v.Name)
		}
	}

	names := make([]string, len(m.Variables))
	for i, v := range m.Variables {
		names[i] = v.Name
	}

	obj, err := build.Closure(m.Objective.Expr, names)
	if err != nil {
		return nil, fmt.Errorf("%s: objective: %w", Name, err)
	}

	cc := &compiled{
		names:     names,
		objective: obj,
		maximize:  m.Objective.Sense == mp.Maximize,
	}

	for i, con := range m.Constraints {
		g, err := build.Closure(con.Expr, names)
		if err != nil {
			return nil, fmt.Errorf("%s: constraint %d: %w", Name, i+1, err)
		}
		rhs := con.RHS
		switch con.Op {
		case mp.LE:
			cc.violations = append(cc.violations, func(x []float64) float64 {
				return math.Max(0, g(x)-rhs)
			})
		case mp.GE:
			cc.violations = append(cc.violations, func(x []float64) float64 {
				return math.Max(0, rhs-g(x))
			})
		case mp.EQ:
			cc.violations = append(cc.violations, func(x []float64) float64 {
				return math.Abs(g(x) - rhs)
			})
		}
	}

	// bounds join the penalty as ordinary inequality violations
	cc.start = make([]float64, len(m.Variables))
	for i, v := range m.Variables {
		lower, upper := v.Bounds()
		idx := i
		if !math.IsInf(lower, -1) {
			lo := lower
			cc.violations = append(cc.violations, func(x []float64) float64 {
				return math.Max(0, lo-x[idx])
			})
		}
		if !math.IsInf(upper, 1) {
			up := upper
			cc.violations = append(cc.violations, func(x []float64) float64 {
				return math.Max(0, x[idx]-up)
			})
		}
		cc.start[i] = startingPoint(lower, upper)
	}

	return cc, nil
}

// startingPoint picks an interior initial value for one variable.
func startingPoint(lower, upper float64) float64 {
	switch {
	case !math.IsInf(lower, -1) && !math.IsInf(upper, 1):
		return (lower + upper) / 2
	case !math.IsInf(lower, -1):
		return lower + 1
	case !math.IsInf(upper, 1):
		return upper - 1
	default:
		return 0
	}
}

func (c *compiled) maxViolation(x []float64) float64 {
	worst := 0.0
	for _, v := range c.violations {
		if d := v(x); d > worst {
			worst = d
		}
	}
	return worst
}

func (e *Engine) Solve(ctx context.Context, c engine.Compiled, opts engine.Options) (engine.RawResult, error) {
	cc, ok := c.(*compiled)
	if !ok {
		return engine.RawResult{}, fmt.Errorf("%s: model compiled for engine %q", Name, c.Engine())
	}

	feasTol := defaultFeasTol
	if opts.Tolerance > 0 {
		feasTol = opts.Tolerance
	}

	sign := 1.0
	if cc.maximize {
		sign = -1
	}

	start := time.Now()
	deadline, hasDeadline := ctx.Deadline()
	if opts.TimeLimit > 0 {
		d := start.Add(opts.TimeLimit)
		if !hasDeadline || d.Before(deadline) {
			deadline, hasDeadline = d, true
		}
	}

	x := append([]float64(nil), cc.start...)
	mu := initialPenalty
	var lastErr error
	for round := 0; round < maxPenaltyRound; round++ {
		penalized := func(p []float64) float64 {
			v := sign * cc.objective(p)
			for _, viol := range cc.violations {
				d := viol(p)
				v += mu * d * d
			}
			return v
		}

		settings := &optimize.Settings{}
		if hasDeadline {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return engine.RawResult{
					NativeStatus: engine.NativeTimeout,
					Runtime:      time.Since(start),
				}, nil
			}
			settings.Runtime = remaining
		}

		// The grammar has no symbolic derivatives, so the gradient is a
		// finite-difference approximation of the penalized objective.
		problem := optimize.Problem{
			Func: penalized,
			Grad: func(grad, p []float64) {
				fd.Gradient(grad, penalized, p, nil)
			},
		}
		result, err := optimize.Minimize(problem, x, settings, &optimize.BFGS{})
		if result == nil {
			return engine.RawResult{}, fmt.Errorf("%s: %w", Name, err)
		}
		lastErr = err
		x = result.X

		if cc.maxViolation(x) <= feasTol {
			break
		}
		mu *= penaltyGrowth
	}

	elapsed := time.Since(start)
	raw := engine.RawResult{Runtime: elapsed}

	worst := cc.maxViolation(x)
	if worst > feasTol {
		raw.NativeStatus = StatusInfeasible
		raw.Diagnostic = fmt.Sprintf("max constraint violation %.3g after %d penalty rounds", worst, maxPenaltyRound)
		return raw, nil
	}

	obj := cc.objective(x)
	if math.IsNaN(obj) || math.IsInf(obj, 0) {
		raw.NativeStatus = StatusFailed
		if lastErr != nil {
			raw.Diagnostic = lastErr.Error()
		} else {
			raw.Diagnostic = fmt.Sprintf("non-finite objective %v at final iterate", obj)
		}
		return raw, nil
	}

	raw.NativeStatus = StatusConverged
	raw.Objective = engine.Float64(obj)
	values := make(map[string]float64, len(cc.names))
	for i, name := range cc.names {
		values[name] = x[i]
	}
	raw.Values = values
	return raw, nil
}
