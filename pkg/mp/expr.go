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

// Package mp defines the model descriptor for mathematical programs: the
// closed expression grammar, variables, constraints, objective, problem
// classes and the uniform solve result. Everything downstream (classifier,
// builders, engine adapters) operates over these types only.
package mp

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Func identifies a named nonlinear function usable in a Call node.
type Func string

const (
	FuncSin  Func = "sin"
	FuncCos  Func = "cos"
	FuncTan  Func = "tan"
	FuncExp  Func = "exp"
	FuncLog  Func = "log"
	FuncSqrt Func = "sqrt"
	FuncAbs  Func = "abs"
)

// knownFuncs maps function names accepted by the parser and evaluator.
var knownFuncs = map[Func]func(float64) float64{
	FuncSin:  math.Sin,
	FuncCos:  math.Cos,
	FuncTan:  math.Tan,
	FuncExp:  math.Exp,
	FuncLog:  math.Log,
	FuncSqrt: math.Sqrt,
	FuncAbs:  math.Abs,
}

// KnownFunc reports whether name is a recognized nonlinear function.
func KnownFunc(name string) bool {
	_, ok := knownFuncs[Func(name)]
	return ok
}

// Expr is a node in the closed expression grammar. The set of
// implementations is fixed: Const, Ref, Add, Mul, Pow and Call.
//
// An expression is tagged linear when it contains no product of variables,
// no power with exponent other than 0 or 1, and no function node. The tag
// drives classification and engine selection, so the rule is deliberately
// syntactic rather than the result of algebraic simplification.
type Expr interface {
	// Linear reports whether the node (and everything below it) is linear.
	Linear() bool

	// ContainsVar reports whether any Ref node appears below this node.
	ContainsVar() bool

	// Eval evaluates the expression under the given variable assignment.
	// Unassigned variables evaluate to zero.
	Eval(assign map[string]float64) float64

	// CollectVars adds every referenced variable name to the set.
	CollectVars(set map[string]struct{})

	String() string

	sealed()
}

// Const is a numeric literal.
type Const struct {
	Value float64
}

// Ref references a model variable by name.
type Ref struct {
	Name string
}

// Add is an n-ary sum.
type Add struct {
	Terms []Expr
}

// Mul is an n-ary product.
type Mul struct {
	Factors []Expr
}

// Pow raises a base expression to a constant integer exponent.
type Pow struct {
	Base Expr
	Exp  int
}

// Call applies a named nonlinear function to a single argument.
type Call struct {
	Fn  Func
	Arg Expr
}

func (Const) sealed() {}
func (Ref) sealed()   {}
func (Add) sealed()   {}
func (Mul) sealed()   {}
func (Pow) sealed()   {}
func (Call) sealed()  {}

func (Const) Linear() bool { return true }
func (Ref) Linear() bool   { return true }

func (e Add) Linear() bool {
	for _, t := range e.Terms {
		if !t.Linear() {
			return false
		}
	}
	return true
}

// Linear for a product holds when at most one factor references a variable
// and that factor is itself linear.
func (e Mul) Linear() bool {
	varFactors := 0
	for _, f := range e.Factors {
		if !f.ContainsVar() {
			continue
		}
		varFactors++
		if varFactors > 1 || !f.Linear() {
			return false
		}
	}
	return true
}

func (e Pow) Linear() bool {
	switch e.Exp {
	case 0:
		return true
	case 1:
		return e.Base.Linear()
	default:
		return !e.Base.ContainsVar()
	}
}

// A function node is nonlinear by definition, even over a constant argument.
func (Call) Linear() bool { return false }

func (Const) ContainsVar() bool { return false }
func (Ref) ContainsVar() bool   { return true }

func (e Add) ContainsVar() bool {
	for _, t := range e.Terms {
		if t.ContainsVar() {
			return true
		}
	}
	return false
}

func (e Mul) ContainsVar() bool {
	for _, f := range e.Factors {
		if f.ContainsVar() {
			return true
		}
	}
	return false
}

func (e Pow) ContainsVar() bool  { return e.Base.ContainsVar() }
func (e Call) ContainsVar() bool { return e.Arg.ContainsVar() }

func (e Const) Eval(map[string]float64) float64 { return e.Value }

func (e Ref) Eval(assign map[string]float64) float64 { return assign[e.Name] }

func (e Add) Eval(assign map[string]float64) float64 {
	sum := 0.0
	for _, t := range e.Terms {
		sum += t.Eval(assign)
	}
	return sum
}

func (e Mul) Eval(assign map[string]float64) float64 {
	prod := 1.0
	for _, f := range e.Factors {
		prod *= f.Eval(assign)
	}
	return prod
}

func (e Pow) Eval(assign map[string]float64) float64 {
	return math.Pow(e.Base.Eval(assign), float64(e.Exp))
}

func (e Call) Eval(assign map[string]float64) float64 {
	fn, ok := knownFuncs[e.Fn]
	if !ok {
		return math.NaN()
	}
	return fn(e.Arg.Eval(assign))
}

func (Const) CollectVars(map[string]struct{}) {}

func (e Ref) CollectVars(set map[string]struct{}) { set[e.Name] = struct{}{} }

func (e Add) CollectVars(set map[string]struct{}) {
	for _, t := range e.Terms {
		t.CollectVars(set)
	}
}

func (e Mul) CollectVars(set map[string]struct{}) {
	for _, f := range e.Factors {
		f.CollectVars(set)
	}
}

func (e Pow) CollectVars(set map[string]struct{})  { e.Base.CollectVars(set) }
func (e Call) CollectVars(set map[string]struct{}) { e.Arg.CollectVars(set) }

func (e Const) String() string { return trimFloat(e.Value) }
func (e Ref) String() string   { return e.Name }

func (e Add) String() string {
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " + ") + ")"
}

func (e Mul) String() string {
	parts := make([]string, len(e.Factors))
	for i, f := range e.Factors {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, " * ") + ")"
}

func (e Pow) String() string  { return fmt.Sprintf("%s^%d", e.Base.String(), e.Exp) }
func (e Call) String() string { return fmt.Sprintf("%s(%s)", e.Fn, e.Arg.String()) }

// Vars returns the sorted names of all variables referenced by e.
func Vars(e Expr) []string {
	set := make(map[string]struct{})
	e.CollectVars(set)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}
