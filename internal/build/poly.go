package build

import (
	"fmt"
	"sort"
	"strings"

	"github.com/optiroute/optiroute/pkg/mp"
)

// Monomial is a single polynomial term: a coefficient times a product of
// variables raised to positive integer powers.
type Monomial struct {
	Coef   float64
	Powers map[string]int
}

// Degree returns the total degree of the monomial.
func (m Monomial) Degree() int {
	d := 0
	for _, p := range m.Powers {
		d += p
	}
	return d
}

// Polynomial is a sum of monomials with like terms combined.
type Polynomial []Monomial

// Degree returns the highest monomial degree, or 0 for an empty polynomial.
func (p Polynomial) Degree() int {
	max := 0
	for _, m := range p {
		if d := m.Degree(); d > max {
			max = d
		}
	}
	return max
}

// Polynomialize expands an expression tree into polynomial normal form.
// Function nodes and negative exponents cannot be expressed and are
// rejected.
func Polynomialize(e mp.Expr) (Polynomial, error) {
	switch n := e.(type) {
	case mp.Const:
		if n.Value == 0 {
			return Polynomial{}, nil
		}
		return Polynomial{{Coef: n.Value}}, nil

	case mp.Ref:
		return Polynomial{{Coef: 1, Powers: map[string]int{n.Name: 1}}}, nil

	case mp.Add:
		var out Polynomial
		for _, t := range n.Terms {
			p, err := Polynomialize(t)
			if err != nil {
				return nil, err
			}
			out = append(out, p...)
		}
		return combine(out), nil

	case mp.Mul:
		out := Polynomial{{Coef: 1}}
		for _, factor := range n.Factors {
			p, err := Polynomialize(factor)
			if err != nil {
				return nil, err
			}
			out = multiply(out, p)
		}
		return combine(out), nil

	case mp.Pow:
		if n.Exp < 0 {
			return nil, fmt.Errorf("%w: negative exponent in %s",
				mp.ErrUnsupportedConstruct, e.String())
		}
		base, err := Polynomialize(n.Base)
		if err != nil {
			return nil, err
		}
		out := Polynomial{{Coef: 1}}
		for i := 0; i < n.Exp; i++ {
			out = multiply(out, base)
		}
		return combine(out), nil

	case mp.Call:
		return nil, fmt.Errorf("%w: function node %s in polynomial context",
			mp.ErrUnsupportedConstruct, e.String())
	}

	return nil, fmt.Errorf("%w: unknown expression node %T", mp.ErrUnsupportedConstruct, e)
}

func multiply(a, b Polynomial) Polynomial {
	out := make(Polynomial, 0, len(a)*len(b))
	for _, ma := range a {
		for _, mb := range b {
			m := Monomial{Coef: ma.Coef * mb.Coef}
			if len(ma.Powers)+len(mb.Powers) > 0 {
				m.Powers = make(map[string]int, len(ma.Powers)+len(mb.Powers))
				for v, p := range ma.Powers {
					m.Powers[v] += p
				}
				for v, p := range mb.Powers {
					m.Powers[v] += p
				}
			}
			out = append(out, m)
		}
	}
	return out
}

// combine merges monomials with identical variable powers and drops terms
// that cancel to zero. Output order is deterministic: ascending by key.
func combine(p Polynomial) Polynomial {
	merged := make(map[string]Monomial, len(p))
	for _, m := range p {
		k := powersKey(m.Powers)
		if prev, ok := merged[k]; ok {
			prev.Coef += m.Coef
			merged[k] = prev
		} else {
			merged[k] = m
		}
	}

	keys := make([]string, 0, len(merged))
	for k, m := range merged {
		if m.Coef == 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Polynomial, 0, len(keys))
	for _, k := range keys {
		out = append(out, merged[k])
	}
	return out
}

func powersKey(powers map[string]int) string {
	if len(powers) == 0 {
		return ""
	}
	names := make([]string, 0, len(powers))
	for v := range powers {
		names = append(names, v)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, v := range names {
		fmt.Fprintf(&b, "%s^%d;", v, powers[v])
	}
	return b.String()
}
