// Package lpwriter emits models in CPLEX LP format and the polynomial
// extension (PIP) for the subprocess-based engine adapters. The writer
// works on collected polynomial rows; reducing expression trees to that
// shape is the adapters' job (see internal/build).
package lpwriter

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/optiroute/optiroute/internal/build"
	"github.com/optiroute/optiroute/pkg/mp"
)

// Row is one constraint in collected form. RHS already accounts for any
// constant part moved over from the left-hand side.
type Row struct {
	Name string
	Poly build.Polynomial
	Op   mp.Relation
	RHS  float64
}

// Bound is the domain of one variable.
type Bound struct {
	Name  string
	Lower float64
	Upper float64
}

// Document is a solver-ready model in LP-format terms. Objective constants
// are not representable in the format; the adapter keeps the offset and
// adds it back to the reported objective value.
type Document struct {
	Name     string
	Maximize bool

	Objective build.Polynomial
	// Offset is the constant part of the objective, excluded from the file.
	Offset float64

	Rows     []Row
	Bounds   []Bound
	Generals []string
	Binaries []string
}

// WriteLP writes the document in CPLEX LP format. Rows and objective must
// be linear (degree <= 1); use WritePIP for polynomial documents.
func (d *Document) WriteLP(w io.Writer) error {
	if d.Objective.Degree() > 1 {
		return fmt.Errorf("%w: nonlinear objective in LP output", mp.ErrUnsupportedConstruct)
	}
	for _, r := range d.Rows {
		if r.Poly.Degree() > 1 {
			return fmt.Errorf("%w: nonlinear constraint %q in LP output", mp.ErrUnsupportedConstruct, r.Name)
		}
	}
	return d.write(w)
}

// WritePIP writes the document in PIP (polynomial) format, an LP-format
// extension where terms may be products of powered variables.
func (d *Document) WritePIP(w io.Writer) error {
	return d.write(w)
}

func (d *Document) write(w io.Writer) error {
	var b strings.Builder

	if d.Name != "" {
		fmt.Fprintf(&b, "\\ Problem: %s\n", d.Name)
	}
	if d.Maximize {
		b.WriteString("Maximize\n")
	} else {
		b.WriteString("Minimize\n")
	}
	b.WriteString(" obj:")
	writePoly(&b, d.Objective)
	b.WriteString("\n")

	b.WriteString("Subject To\n")
	for i, r := range d.Rows {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("c%d", i+1)
		}
		fmt.Fprintf(&b, " %s:", name)
		writePoly(&b, r.Poly)
		fmt.Fprintf(&b, " %s %s\n", formatOp(r.Op), formatNum(r.RHS))
	}

	if len(d.Bounds) > 0 {
		b.WriteString("Bounds\n")
		for _, bd := range d.Bounds {
			writeBound(&b, bd)
		}
	}

	if len(d.Generals) > 0 {
		b.WriteString("Generals\n")
		for _, name := range d.Generals {
			fmt.Fprintf(&b, " %s\n", name)
		}
	}
	if len(d.Binaries) > 0 {
		b.WriteString("Binaries\n")
		for _, name := range d.Binaries {
			fmt.Fprintf(&b, " %s\n", name)
		}
	}

	b.WriteString("End\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writePoly(b *strings.Builder, p build.Polynomial) {
	if len(p) == 0 {
		// LP format needs at least one term; a zero coefficient on nothing
		// is not expressible, so emit "0".
		b.WriteString(" 0")
		return
	}
	for _, m := range p {
		coef := m.Coef
		if coef >= 0 {
			b.WriteString(" +")
		} else {
			b.WriteString(" -")
			coef = -coef
		}
		b.WriteString(" ")
		b.WriteString(formatNum(coef))
		for _, f := range monomialFactors(m) {
			b.WriteString(" ")
			b.WriteString(f)
		}
	}
}

func monomialFactors(m build.Monomial) []string {
	names := make([]string, 0, len(m.Powers))
	for v := range m.Powers {
		names = append(names, v)
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, v := range names {
		if p := m.Powers[v]; p == 1 {
			out = append(out, v)
		} else {
			out = append(out, fmt.Sprintf("%s^%d", v, p))
		}
	}
	return out
}

func writeBound(b *strings.Builder, bd Bound) {
	lowerInf := math.IsInf(bd.Lower, -1)
	upperInf := math.IsInf(bd.Upper, 1)
	switch {
	case lowerInf && upperInf:
		fmt.Fprintf(b, " %s free\n", bd.Name)
	case lowerInf:
		fmt.Fprintf(b, " -inf <= %s <= %s\n", bd.Name, formatNum(bd.Upper))
	case upperInf:
		fmt.Fprintf(b, " %s >= %s\n", bd.Name, formatNum(bd.Lower))
	default:
		fmt.Fprintf(b, " %s <= %s <= %s\n", formatNum(bd.Lower), bd.Name, formatNum(bd.Upper))
	}
}

func formatOp(op mp.Relation) string {
	if op == mp.EQ {
		return "="
	}
	return string(op)
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
