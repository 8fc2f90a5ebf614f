package mp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExprLinear(t *testing.T) {
	x := Ref{Name: "x"}
	y := Ref{Name: "y"}

	tests := []struct {
		name   string
		expr   Expr
		linear bool
	}{
		{"constant", Const{Value: 3}, true},
		{"variable", x, true},
		{"sum of variables", Add{Terms: []Expr{x, y}}, true},
		{"scaled variable", Mul{Factors: []Expr{Const{Value: 2}, x}}, true},
		{"scaled sum", Mul{Factors: []Expr{Const{Value: 2}, Add{Terms: []Expr{x, y}}}}, true},
		{"product of variables", Mul{Factors: []Expr{x, y}}, false},
		{"first power", Pow{Base: x, Exp: 1}, true},
		{"zeroth power", Pow{Base: x, Exp: 0}, true},
		{"square", Pow{Base: x, Exp: 2}, false},
		{"reciprocal", Pow{Base: x, Exp: -1}, false},
		{"power of constant", Pow{Base: Const{Value: 2}, Exp: 5}, true},
		{"function node", Call{Fn: FuncSin, Arg: x}, false},
		{"function of constant", Call{Fn: FuncExp, Arg: Const{Value: 1}}, false},
		{"sum hiding a product", Add{Terms: []Expr{x, Mul{Factors: []Expr{x, y}}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.linear, tt.expr.Linear())
		})
	}
}

func TestExprEval(t *testing.T) {
	x := Ref{Name: "x"}
	y := Ref{Name: "y"}
	assign := map[string]float64{"x": 3, "y": 4}

	tests := []struct {
		name string
		expr Expr
		want float64
	}{
		{"constant", Const{Value: 7}, 7},
		{"variable", x, 3},
		{"sum", Add{Terms: []Expr{x, y, Const{Value: 1}}}, 8},
		{"product", Mul{Factors: []Expr{x, y}}, 12},
		{"square", Pow{Base: x, Exp: 2}, 9},
		{"sqrt", Call{Fn: FuncSqrt, Arg: y}, 2},
		{"unassigned variable is zero", Ref{Name: "z"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.expr.Eval(assign), 1e-12)
		})
	}
}

func TestExprEvalNested(t *testing.T) {
	// 2*x + sin(y)^2 at x=3, y=0
	e := Add{Terms: []Expr{
		Mul{Factors: []Expr{Const{Value: 2}, Ref{Name: "x"}}},
		Pow{Base: Call{Fn: FuncSin, Arg: Ref{Name: "y"}}, Exp: 2},
	}}
	assert.InDelta(t, 6, e.Eval(map[string]float64{"x": 3, "y": 0}), 1e-12)
	assert.False(t, e.Linear())
}

func TestVars(t *testing.T) {
	e := Add{Terms: []Expr{
		Ref{Name: "b"},
		Mul{Factors: []Expr{Ref{Name: "a"}, Ref{Name: "b"}}},
		Call{Fn: FuncLog, Arg: Ref{Name: "c"}},
	}}
	assert.Equal(t, []string{"a", "b", "c"}, Vars(e))
}

func TestCallUnknownFuncEvalsNaN(t *testing.T) {
	e := Call{Fn: Func("sinh"), Arg: Const{Value: 1}}
	assert.True(t, math.IsNaN(e.Eval(nil)))
}
