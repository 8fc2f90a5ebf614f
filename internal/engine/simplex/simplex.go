// Package simplex is an in-process LP engine backed by gonum's dense
// simplex implementation. It needs no external binaries, so it is
// registered as the last-resort engine for pure LPs: always available,
// fine for the small models the front end produces, no integer or
// nonlinear support.
package simplex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/optiroute/optiroute/internal/build"
	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/pkg/mp"
)

// Name is the engine name used in registry and normalization tables.
const Name = "simplex"

// Native status tokens.
const (
	StatusOptimal    = "optimal"
	StatusInfeasible = "infeasible"
	StatusUnbounded  = "unbounded"
	StatusSingular   = "singular"
)

// Engine solves pure LPs with gonum's simplex.
type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return Name }

func (e *Engine) Capabilities() engine.Capabilities {
	return engine.Capabilities{Classes: []mp.ProblemClass{mp.ClassLP}}
}

// Available is always true; the implementation is linked in.
func (e *Engine) Available() bool { return true }

// varColumn describes how one standard-form column contributes to a model
// variable: value = shift + sign*x[index] (summed over the variable's
// columns; free variables get a positive and a negative column).
type varColumn struct {
	index int
	sign  float64
}

type compiled struct {
	c      []float64
	a      *mat.Dense
	b      []float64
	byVar  map[string][]varColumn
	shifts map[string]float64
	// offset is the objective constant plus contributions from bound
	// shifts, added back to the reported objective.
	offset   float64
	maximize bool
}

func (c *compiled) Engine() string { return Name }

// Build reduces the model to standard form: minimize c'x subject to
// Ax = b, x >= 0. Finite lower bounds are shifted out, upper-bounded
// variables without a lower bound are mirrored, free variables are split
// into a difference of two nonnegative columns, and inequality rows get
// slack columns.
func (e *Engine) Build(m *mp.Model) (engine.Compiled, error) {
	for _, v := range m.Variables {
		if v.Integral() {
			return nil, fmt.Errorf("%s: %w: integer variable %q on a continuous-only engine",
				Name, mp.ErrUnsupportedConstruct, v.Name)
		}
	}

	obj, err := build.Linearize(m.Objective.Expr)
	if err != nil {
		return nil, fmt.Errorf("%s: objective: %w", Name, err)
	}

	type row struct {
		coeffs map[string]float64
		rhs    float64
		eq     bool
	}
	var rows []row
	for i, c := range m.Constraints {
		form, err := build.Linearize(c.Expr)
		if err != nil {
			return nil, fmt.Errorf("%s: constraint %d: %w", Name, i+1, err)
		}
		r := row{coeffs: form.Coeffs, rhs: c.RHS - form.Constant, eq: c.Op == mp.EQ}
		if r.coeffs == nil {
			r.coeffs = map[string]float64{}
		}
		if c.Op == mp.GE {
			flipped := make(map[string]float64, len(r.coeffs))
			for n, v := range r.coeffs {
				flipped[n] = -v
			}
			r.coeffs = flipped
			r.rhs = -r.rhs
		}
		rows = append(rows, r)
	}

	cc := &compiled{
		byVar:    make(map[string][]varColumn, len(m.Variables)),
		shifts:   make(map[string]float64, len(m.Variables)),
		maximize: m.Objective.Sense == mp.Maximize,
		offset:   obj.Constant,
	}

	// Assign standard-form columns per variable. Each model variable is
	// recovered as shift + sum(sign*x[col]) over its columns.
	nCols := 0
	for _, v := range m.Variables {
		lower, upper := v.Bounds()
		switch {
		case !math.IsInf(lower, -1):
			// x = lower + x'
			cc.shifts[v.Name] = lower
			cc.byVar[v.Name] = []varColumn{{index: nCols, sign: 1}}
			nCols++
			if !math.IsInf(upper, 1) {
				// becomes x' <= upper - lower after the shift
				rows = append(rows, row{
					coeffs: map[string]float64{v.Name: 1},
					rhs:    upper,
				})
			}
		case !math.IsInf(upper, 1):
			// x = upper - x'
			cc.shifts[v.Name] = upper
			cc.byVar[v.Name] = []varColumn{{index: nCols, sign: -1}}
			nCols++
		default:
			// free: x = x+ - x-
			cc.shifts[v.Name] = 0
			cc.byVar[v.Name] = []varColumn{
				{index: nCols, sign: 1},
				{index: nCols + 1, sign: -1},
			}
			nCols += 2
		}
	}

	// count slack columns
	nSlack := 0
	for _, r := range rows {
		if !r.eq {
			nSlack++
		}
	}

	nRows := len(rows)
	totalCols := nCols + nSlack
	if nRows == 0 {
		// Simplex needs at least one row; pin a trivial 0 = 0 row.
		rows = append(rows, row{coeffs: map[string]float64{}, rhs: 0, eq: true})
		nRows = 1
	}

	a := mat.NewDense(nRows, totalCols, nil)
	b := make([]float64, nRows)
	slack := nCols
	for i, r := range rows {
		rhs := r.rhs
		for name, coef := range r.coeffs {
			rhs -= coef * cc.shifts[name]
			for _, col := range cc.byVar[name] {
				a.Set(i, col.index, coef*col.sign)
			}
		}
		b[i] = rhs
		if !r.eq {
			a.Set(i, slack, 1)
			slack++
		}
	}

	c := make([]float64, totalCols)
	for name, coef := range obj.Coeffs {
		cc.offset += coef * cc.shifts[name]
		for _, col := range cc.byVar[name] {
			c[col.index] += coef * col.sign
		}
	}
	if cc.maximize {
		for i := range c {
			c[i] = -c[i]
		}
	}

	cc.c = c
	cc.a = a
	cc.b = b
	return cc, nil
}

func (e *Engine) Solve(_ context.Context, c engine.Compiled, opts engine.Options) (engine.RawResult, error) {
	cc, ok := c.(*compiled)
	if !ok {
		return engine.RawResult{}, fmt.Errorf("%s: model compiled for engine %q", Name, c.Engine())
	}

	start := time.Now()
	z, x, err := lp.Simplex(cc.c, cc.a, cc.b, opts.Tolerance, nil)
	elapsed := time.Since(start)

	raw := engine.RawResult{Runtime: elapsed}
	switch {
	case err == nil:
		raw.NativeStatus = StatusOptimal
	case errors.Is(err, lp.ErrInfeasible):
		raw.NativeStatus = StatusInfeasible
		raw.Diagnostic = err.Error()
		return raw, nil
	case errors.Is(err, lp.ErrUnbounded):
		raw.NativeStatus = StatusUnbounded
		raw.Diagnostic = err.Error()
		return raw, nil
	case errors.Is(err, lp.ErrSingular):
		raw.NativeStatus = StatusSingular
		raw.Diagnostic = err.Error()
		return raw, nil
	default:
		return engine.RawResult{}, fmt.Errorf("%s: %w", Name, err)
	}

	obj := z + cc.offset
	if cc.maximize {
		obj = -z + cc.offset
	}
	raw.Objective = engine.Float64(obj)

	values := make(map[string]float64, len(cc.byVar))
	for name, cols := range cc.byVar {
		v := cc.shifts[name]
		for _, col := range cols {
			v += col.sign * x[col.index]
		}
		values[name] = v
	}
	raw.Values = values
	return raw, nil
}
