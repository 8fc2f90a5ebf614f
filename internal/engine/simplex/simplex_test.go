package simplex

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/pkg/mp"
)

func contVar(name string, lower, upper float64) mp.Variable {
	return mp.Variable{Name: name, Kind: mp.Continuous, Lower: lower, Upper: upper}
}

func solve(t *testing.T, m *mp.Model) engine.RawResult {
	t.Helper()
	e := New()
	compiled, err := e.Build(m)
	require.NoError(t, err)
	raw, err := e.Solve(context.Background(), compiled, engine.Options{})
	require.NoError(t, err)
	return raw
}

func TestMaximizeSumWithCapacity(t *testing.T) {
	sum := mp.Add{Terms: []mp.Expr{mp.Ref{Name: "x"}, mp.Ref{Name: "y"}}}
	m := &mp.Model{
		Name: "capacity",
		Variables: []mp.Variable{
			contVar("x", 0, 10),
			contVar("y", 0, 10),
		},
		Constraints: []mp.Constraint{
			{Name: "cap", Expr: sum, Op: mp.LE, RHS: 10},
		},
		Objective: mp.Objective{Sense: mp.Maximize, Expr: sum},
	}

	raw := solve(t, m)
	assert.Equal(t, StatusOptimal, raw.NativeStatus)
	require.NotNil(t, raw.Objective)
	assert.InDelta(t, 10.0, *raw.Objective, 1e-9)
	assert.InDelta(t, 10.0, raw.Values["x"]+raw.Values["y"], 1e-9)
}

func TestMinimizeWithShiftedLowerBounds(t *testing.T) {
	// minimize 2x + 3y with x >= 1, y >= 2, x + y >= 5; optimum x=3, y=2
	m := &mp.Model{
		Variables: []mp.Variable{
			contVar("x", 1, math.Inf(1)),
			contVar("y", 2, math.Inf(1)),
		},
		Constraints: []mp.Constraint{
			{Expr: mp.Add{Terms: []mp.Expr{mp.Ref{Name: "x"}, mp.Ref{Name: "y"}}}, Op: mp.GE, RHS: 5},
		},
		Objective: mp.Objective{
			Sense: mp.Minimize,
			Expr: mp.Add{Terms: []mp.Expr{
				mp.Mul{Factors: []mp.Expr{mp.Const{Value: 2}, mp.Ref{Name: "x"}}},
				mp.Mul{Factors: []mp.Expr{mp.Const{Value: 3}, mp.Ref{Name: "y"}}},
			}},
		},
	}

	raw := solve(t, m)
	assert.Equal(t, StatusOptimal, raw.NativeStatus)
	require.NotNil(t, raw.Objective)
	assert.InDelta(t, 12.0, *raw.Objective, 1e-9)
	assert.InDelta(t, 3.0, raw.Values["x"], 1e-9)
	assert.InDelta(t, 2.0, raw.Values["y"], 1e-9)
}

func TestFreeVariable(t *testing.T) {
	m := &mp.Model{
		Variables: []mp.Variable{
			contVar("x", math.Inf(-1), math.Inf(1)),
		},
		Constraints: []mp.Constraint{
			{Expr: mp.Ref{Name: "x"}, Op: mp.GE, RHS: -4},
		},
		Objective: mp.Objective{Sense: mp.Minimize, Expr: mp.Ref{Name: "x"}},
	}

	raw := solve(t, m)
	assert.Equal(t, StatusOptimal, raw.NativeStatus)
	require.NotNil(t, raw.Objective)
	assert.InDelta(t, -4.0, *raw.Objective, 1e-9)
	assert.InDelta(t, -4.0, raw.Values["x"], 1e-9)
}

func TestMirroredUpperBound(t *testing.T) {
	// only an upper bound: the column is mirrored internally
	m := &mp.Model{
		Variables: []mp.Variable{
			contVar("x", math.Inf(-1), 7),
		},
		Constraints: []mp.Constraint{
			{Expr: mp.Ref{Name: "x"}, Op: mp.GE, RHS: 0},
		},
		Objective: mp.Objective{Sense: mp.Maximize, Expr: mp.Ref{Name: "x"}},
	}

	raw := solve(t, m)
	assert.Equal(t, StatusOptimal, raw.NativeStatus)
	require.NotNil(t, raw.Objective)
	assert.InDelta(t, 7.0, *raw.Objective, 1e-9)
	assert.InDelta(t, 7.0, raw.Values["x"], 1e-9)
}

func TestObjectiveConstantOffset(t *testing.T) {
	// minimize x + 100 with x >= 2
	m := &mp.Model{
		Variables: []mp.Variable{
			contVar("x", 2, math.Inf(1)),
		},
		Objective: mp.Objective{
			Sense: mp.Minimize,
			Expr:  mp.Add{Terms: []mp.Expr{mp.Ref{Name: "x"}, mp.Const{Value: 100}}},
		},
	}

	raw := solve(t, m)
	assert.Equal(t, StatusOptimal, raw.NativeStatus)
	require.NotNil(t, raw.Objective)
	assert.InDelta(t, 102.0, *raw.Objective, 1e-9)
}

func TestInfeasible(t *testing.T) {
	m := &mp.Model{
		Variables: []mp.Variable{
			contVar("x", 0, 1),
		},
		Constraints: []mp.Constraint{
			{Expr: mp.Ref{Name: "x"}, Op: mp.GE, RHS: 5},
		},
		Objective: mp.Objective{Sense: mp.Minimize, Expr: mp.Ref{Name: "x"}},
	}

	raw := solve(t, m)
	assert.Equal(t, StatusInfeasible, raw.NativeStatus)
	assert.Nil(t, raw.Objective)
}

func TestUnbounded(t *testing.T) {
	m := &mp.Model{
		Variables: []mp.Variable{
			contVar("x", 0, math.Inf(1)),
		},
		Constraints: []mp.Constraint{
			{Expr: mp.Ref{Name: "x"}, Op: mp.GE, RHS: 1},
		},
		Objective: mp.Objective{Sense: mp.Maximize, Expr: mp.Ref{Name: "x"}},
	}

	raw := solve(t, m)
	assert.Equal(t, StatusUnbounded, raw.NativeStatus)
	assert.Nil(t, raw.Objective)
}

func TestRejectsIntegerVariables(t *testing.T) {
	m := &mp.Model{
		Variables: []mp.Variable{
			{Name: "n", Kind: mp.Integer, Lower: 0, Upper: 10},
		},
		Objective: mp.Objective{Sense: mp.Minimize, Expr: mp.Ref{Name: "n"}},
	}

	_, err := New().Build(m)
	require.ErrorIs(t, err, mp.ErrUnsupportedConstruct)
}

func TestRejectsNonlinearObjective(t *testing.T) {
	m := &mp.Model{
		Variables: []mp.Variable{
			contVar("x", 0, 10),
		},
		Objective: mp.Objective{Sense: mp.Minimize, Expr: mp.Pow{Base: mp.Ref{Name: "x"}, Exp: 2}},
	}

	_, err := New().Build(m)
	require.ErrorIs(t, err, mp.ErrUnsupportedConstruct)
}

func TestCapabilities(t *testing.T) {
	e := New()
	assert.True(t, e.Available())
	assert.True(t, e.Capabilities().SupportsClass(mp.ClassLP))
	assert.False(t, e.Capabilities().SupportsClass(mp.ClassMILP))
	assert.False(t, e.Capabilities().FunctionNodes)
}
