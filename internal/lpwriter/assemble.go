package lpwriter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/optiroute/optiroute/internal/build"
	"github.com/optiroute/optiroute/pkg/mp"
)

// NameMap translates between model variable names and the sanitized names
// used inside an emitted file.
type NameMap struct {
	toSafe  map[string]string
	toModel map[string]string
}

// Safe returns the file-side name for a model variable.
func (n *NameMap) Safe(model string) string { return n.toSafe[model] }

// Model returns the model-side name for a file variable, if known.
func (n *NameMap) Model(safe string) (string, bool) {
	name, ok := n.toModel[safe]
	return name, ok
}

// ModelNames returns every model-side variable name. Order is unspecified;
// callers needing declaration order should use the model itself.
func (n *NameMap) ModelNames() []string {
	out := make([]string, 0, len(n.toSafe))
	for name := range n.toSafe {
		out = append(out, name)
	}
	return out
}

// Assemble reduces a model descriptor to a Document. With allowPoly false
// every expression must be linear; with it true, polynomial nonlinearity
// is accepted (function nodes never are — the format cannot express them).
// Constant parts of constraint expressions move to the right-hand side;
// the objective's constant part lands in Document.Offset.
func Assemble(m *mp.Model, allowPoly bool) (*Document, *NameMap, error) {
	names := sanitizeNames(m)

	doc := &Document{
		Name:     m.Name,
		Maximize: m.Objective.Sense == mp.Maximize,
	}

	objPoly, objOffset, err := reduce(m.Objective.Expr, allowPoly, names)
	if err != nil {
		return nil, nil, fmt.Errorf("objective: %w", err)
	}
	doc.Objective = objPoly
	doc.Offset = objOffset

	for i, c := range m.Constraints {
		poly, offset, err := reduce(c.Expr, allowPoly, names)
		if err != nil {
			return nil, nil, fmt.Errorf("constraint %d: %w", i+1, err)
		}
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("c%d", i+1)
		}
		doc.Rows = append(doc.Rows, Row{
			Name: name,
			Poly: poly,
			Op:   c.Op,
			RHS:  c.RHS - offset,
		})
	}

	for _, v := range m.Variables {
		safe := names.Safe(v.Name)
		lower, upper := v.Bounds()
		doc.Bounds = append(doc.Bounds, Bound{Name: safe, Lower: lower, Upper: upper})
		switch v.Kind {
		case mp.Integer:
			doc.Generals = append(doc.Generals, safe)
		case mp.Binary:
			doc.Binaries = append(doc.Binaries, safe)
		}
	}

	return doc, names, nil
}

// reduce collects an expression into a polynomial over sanitized names and
// splits off its constant part.
func reduce(e mp.Expr, allowPoly bool, names *NameMap) (build.Polynomial, float64, error) {
	var poly build.Polynomial
	if allowPoly {
		p, err := build.Polynomialize(e)
		if err != nil {
			return nil, 0, err
		}
		poly = p
	} else {
		form, err := build.Linearize(e)
		if err != nil {
			return nil, 0, err
		}
		poly = fromLinear(form)
	}

	out := make(build.Polynomial, 0, len(poly))
	offset := 0.0
	for _, mono := range poly {
		if len(mono.Powers) == 0 {
			offset += mono.Coef
			continue
		}
		renamed := make(map[string]int, len(mono.Powers))
		for v, p := range mono.Powers {
			renamed[names.Safe(v)] = p
		}
		out = append(out, build.Monomial{Coef: mono.Coef, Powers: renamed})
	}
	return out, offset, nil
}

func fromLinear(f build.LinearForm) build.Polynomial {
	names := make([]string, 0, len(f.Coeffs))
	for name := range f.Coeffs {
		names = append(names, name)
	}
	sort.Strings(names)

	poly := make(build.Polynomial, 0, len(f.Coeffs)+1)
	if f.Constant != 0 {
		poly = append(poly, build.Monomial{Coef: f.Constant})
	}
	for _, name := range names {
		c := f.Coeffs[name]
		if c == 0 {
			continue
		}
		poly = append(poly, build.Monomial{Coef: c, Powers: map[string]int{name: 1}})
	}
	return poly
}

// sanitizeNames maps model variable names onto LP-format-safe identifiers:
// ASCII letters, digits and underscores, starting with a letter, unique
// within the file.
func sanitizeNames(m *mp.Model) *NameMap {
	names := &NameMap{
		toSafe:  make(map[string]string, len(m.Variables)),
		toModel: make(map[string]string, len(m.Variables)),
	}
	for _, v := range m.Variables {
		safe := sanitize(v.Name)
		base := safe
		for i := 2; ; i++ {
			if _, taken := names.toModel[safe]; !taken {
				break
			}
			safe = fmt.Sprintf("%s_%d", base, i)
		}
		names.toSafe[v.Name] = safe
		names.toModel[safe] = v.Name
	}
	return names
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" || !isLetter(s[0]) || s[0] == 'e' || s[0] == 'E' {
		// identifiers must not start with a digit, and a leading e/E can be
		// mistaken for an exponent by some LP readers
		s = "v_" + s
	}
	return s
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
