package descent

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/pkg/mp"
)

func contVar(name string, lower, upper float64) mp.Variable {
	return mp.Variable{Name: name, Kind: mp.Continuous, Lower: lower, Upper: upper}
}

func solve(t *testing.T, m *mp.Model, opts engine.Options) engine.RawResult {
	t.Helper()
	e := New()
	compiled, err := e.Build(m)
	require.NoError(t, err)
	raw, err := e.Solve(context.Background(), compiled, opts)
	require.NoError(t, err)
	return raw
}

func TestUnconstrainedQuadratic(t *testing.T) {
	// minimize (x-3)^2
	shifted := mp.Add{Terms: []mp.Expr{mp.Ref{Name: "x"}, mp.Const{Value: -3}}}
	m := &mp.Model{
		Variables: []mp.Variable{contVar("x", math.Inf(-1), math.Inf(1))},
		Objective: mp.Objective{Sense: mp.Minimize, Expr: mp.Pow{Base: shifted, Exp: 2}},
	}

	raw := solve(t, m, engine.Options{})
	assert.Equal(t, StatusConverged, raw.NativeStatus)
	require.NotNil(t, raw.Objective)
	assert.InDelta(t, 0.0, *raw.Objective, 1e-6)
	assert.InDelta(t, 3.0, raw.Values["x"], 1e-4)
}

func TestConstrainedQuadratic(t *testing.T) {
	// minimize x^2 subject to x >= 2; penalty pushes x to the boundary
	m := &mp.Model{
		Variables: []mp.Variable{contVar("x", math.Inf(-1), math.Inf(1))},
		Constraints: []mp.Constraint{
			{Expr: mp.Ref{Name: "x"}, Op: mp.GE, RHS: 2},
		},
		Objective: mp.Objective{Sense: mp.Minimize, Expr: mp.Pow{Base: mp.Ref{Name: "x"}, Exp: 2}},
	}

	raw := solve(t, m, engine.Options{})
	assert.Equal(t, StatusConverged, raw.NativeStatus)
	require.NotNil(t, raw.Objective)
	assert.InDelta(t, 4.0, *raw.Objective, 1e-2)
	assert.InDelta(t, 2.0, raw.Values["x"], 1e-2)
}

func TestMaximizeConcave(t *testing.T) {
	// maximize -(x-1)^2 + 5
	shifted := mp.Add{Terms: []mp.Expr{mp.Ref{Name: "x"}, mp.Const{Value: -1}}}
	m := &mp.Model{
		Variables: []mp.Variable{contVar("x", math.Inf(-1), math.Inf(1))},
		Objective: mp.Objective{
			Sense: mp.Maximize,
			Expr: mp.Add{Terms: []mp.Expr{
				mp.Mul{Factors: []mp.Expr{mp.Const{Value: -1}, mp.Pow{Base: shifted, Exp: 2}}},
				mp.Const{Value: 5},
			}},
		},
	}

	raw := solve(t, m, engine.Options{})
	assert.Equal(t, StatusConverged, raw.NativeStatus)
	require.NotNil(t, raw.Objective)
	assert.InDelta(t, 5.0, *raw.Objective, 1e-6)
	assert.InDelta(t, 1.0, raw.Values["x"], 1e-3)
}

func TestFunctionNodeObjective(t *testing.T) {
	// minimize exp(x) + exp(-x); minimum 2 at x = 0
	m := &mp.Model{
		Variables: []mp.Variable{contVar("x", -5, 5)},
		Objective: mp.Objective{
			Sense: mp.Minimize,
			Expr: mp.Add{Terms: []mp.Expr{
				mp.Call{Fn: mp.FuncExp, Arg: mp.Ref{Name: "x"}},
				mp.Call{Fn: mp.FuncExp, Arg: mp.Mul{Factors: []mp.Expr{mp.Const{Value: -1}, mp.Ref{Name: "x"}}}},
			}},
		},
	}

	raw := solve(t, m, engine.Options{})
	assert.Equal(t, StatusConverged, raw.NativeStatus)
	require.NotNil(t, raw.Objective)
	assert.InDelta(t, 2.0, *raw.Objective, 1e-6)
	assert.InDelta(t, 0.0, raw.Values["x"], 1e-3)
}

func TestBoundsEnforced(t *testing.T) {
	// minimize x with x in [1, 4]
	m := &mp.Model{
		Variables: []mp.Variable{contVar("x", 1, 4)},
		Objective: mp.Objective{Sense: mp.Minimize, Expr: mp.Ref{Name: "x"}},
	}

	raw := solve(t, m, engine.Options{})
	assert.Equal(t, StatusConverged, raw.NativeStatus)
	require.NotNil(t, raw.Objective)
	assert.InDelta(t, 1.0, *raw.Objective, 1e-2)
}

func TestInfeasibleConstraints(t *testing.T) {
	m := &mp.Model{
		Variables: []mp.Variable{contVar("x", math.Inf(-1), math.Inf(1))},
		Constraints: []mp.Constraint{
			{Expr: mp.Ref{Name: "x"}, Op: mp.LE, RHS: 0},
			{Expr: mp.Ref{Name: "x"}, Op: mp.GE, RHS: 1},
		},
		Objective: mp.Objective{Sense: mp.Minimize, Expr: mp.Ref{Name: "x"}},
	}

	raw := solve(t, m, engine.Options{})
	assert.Equal(t, StatusInfeasible, raw.NativeStatus)
	assert.Nil(t, raw.Objective)
	assert.NotEmpty(t, raw.Diagnostic)
}

func TestExpiredDeadline(t *testing.T) {
	m := &mp.Model{
		Variables: []mp.Variable{contVar("x", 0, 1)},
		Objective: mp.Objective{Sense: mp.Minimize, Expr: mp.Ref{Name: "x"}},
	}

	e := New()
	compiled, err := e.Build(m)
	require.NoError(t, err)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	raw, err := e.Solve(ctx, compiled, engine.Options{})
	require.NoError(t, err)
	assert.Equal(t, engine.NativeTimeout, raw.NativeStatus)
}

func TestRejectsIntegerVariables(t *testing.T) {
	m := &mp.Model{
		Variables: []mp.Variable{{Name: "n", Kind: mp.Binary, Lower: 0, Upper: 1}},
		Objective: mp.Objective{Sense: mp.Minimize, Expr: mp.Ref{Name: "n"}},
	}

	_, err := New().Build(m)
	require.ErrorIs(t, err, mp.ErrUnsupportedConstruct)
}

func TestCapabilities(t *testing.T) {
	e := New()
	assert.True(t, e.Available())
	assert.True(t, e.Capabilities().FunctionNodes)
	assert.True(t, e.Capabilities().SupportsClass(mp.ClassNLP))
	assert.False(t, e.Capabilities().SupportsClass(mp.ClassMINLP))
}
