package build

import (
	"fmt"

	"github.com/optiroute/optiroute/pkg/mp"
)

// Closure compiles an expression into a plain function over a flat
// variable vector, with variable order fixed by the order slice. Used by
// in-process engines that want an objective or constraint residual as a
// func([]float64) float64.
func Closure(e mp.Expr, order []string) (func(x []float64) float64, error) {
	if err := checkFuncs(e); err != nil {
		return nil, err
	}
	index := make(map[string]int, len(order))
	for i, name := range order {
		index[name] = i
	}
	for _, name := range mp.Vars(e) {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: variable %q missing from ordering",
				mp.ErrUnsupportedConstruct, name)
		}
	}

	assign := make(map[string]float64, len(order))
	return func(x []float64) float64 {
		for name, i := range index {
			assign[name] = x[i]
		}
		return e.Eval(assign)
	}, nil
}

// checkFuncs rejects Call nodes whose function name the evaluator does not
// implement. Eval would yield NaN for them, which an engine cannot tell
// apart from a numeric fault.
func checkFuncs(e mp.Expr) error {
	switch n := e.(type) {
	case mp.Const, mp.Ref:
		return nil
	case mp.Add:
		for _, t := range n.Terms {
			if err := checkFuncs(t); err != nil {
				return err
			}
		}
	case mp.Mul:
		for _, f := range n.Factors {
			if err := checkFuncs(f); err != nil {
				return err
			}
		}
	case mp.Pow:
		return checkFuncs(n.Base)
	case mp.Call:
		if !mp.KnownFunc(string(n.Fn)) {
			return fmt.Errorf("%w: unknown function %q", mp.ErrUnsupportedConstruct, n.Fn)
		}
		return checkFuncs(n.Arg)
	}
	return nil
}
