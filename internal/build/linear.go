// Package build contains the shared model-translation machinery used by
// the engine adapters: reduction of expression trees to linear forms,
// polynomial normal forms and evaluation closures. Each reduction rejects
// nodes outside the target representation with mp.ErrUnsupportedConstruct
// so a mis-routed model aborts before dispatch instead of being truncated.
package build

import (
	"fmt"
	"math"

	"github.com/optiroute/optiroute/pkg/mp"
)

// LinearForm is a linear expression in collected form: a coefficient per
// variable plus a constant offset.
type LinearForm struct {
	Coeffs   map[string]float64
	Constant float64
}

// Linearize reduces an expression tree to a LinearForm. Products of
// variables, powers other than 0/1 over variables, and function nodes are
// rejected.
func Linearize(e mp.Expr) (LinearForm, error) {
	switch n := e.(type) {
	case mp.Const:
		return LinearForm{Constant: n.Value}, nil

	case mp.Ref:
		return LinearForm{Coeffs: map[string]float64{n.Name: 1}}, nil

	case mp.Add:
		out := LinearForm{Coeffs: make(map[string]float64)}
		for _, t := range n.Terms {
			f, err := Linearize(t)
			if err != nil {
				return LinearForm{}, err
			}
			out.Constant += f.Constant
			for name, c := range f.Coeffs {
				out.Coeffs[name] += c
			}
		}
		return out, nil

	case mp.Mul:
		scale := 1.0
		var varForm *LinearForm
		for _, factor := range n.Factors {
			f, err := Linearize(factor)
			if err != nil {
				return LinearForm{}, err
			}
			if len(f.Coeffs) == 0 {
				scale *= f.Constant
				continue
			}
			if varForm != nil {
				return LinearForm{}, fmt.Errorf("%w: product of variables in %s",
					mp.ErrUnsupportedConstruct, e.String())
			}
			varForm = &f
		}
		if varForm == nil {
			return LinearForm{Constant: scale}, nil
		}
		out := LinearForm{Coeffs: make(map[string]float64, len(varForm.Coeffs))}
		out.Constant = varForm.Constant * scale
		for name, c := range varForm.Coeffs {
			out.Coeffs[name] = c * scale
		}
		return out, nil

	case mp.Pow:
		base, err := Linearize(n.Base)
		if err != nil {
			return LinearForm{}, err
		}
		switch {
		case n.Exp == 0:
			return LinearForm{Constant: 1}, nil
		case n.Exp == 1:
			return base, nil
		case len(base.Coeffs) == 0:
			return LinearForm{Constant: math.Pow(base.Constant, float64(n.Exp))}, nil
		default:
			return LinearForm{}, fmt.Errorf("%w: power %s in linear context",
				mp.ErrUnsupportedConstruct, e.String())
		}

	case mp.Call:
		return LinearForm{}, fmt.Errorf("%w: function node %s in linear context",
			mp.ErrUnsupportedConstruct, e.String())
	}

	return LinearForm{}, fmt.Errorf("%w: unknown expression node %T", mp.ErrUnsupportedConstruct, e)
}
