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

package mp

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// ParseExpr parses an arithmetic expression string such as "2*x + y^2"
// into the closed Expr grammar. Supported: numeric literals, identifiers,
// + - * / ^, parentheses and the known function names (sin, cos, tan, exp,
// log, sqrt, abs). Anything outside that surface is rejected with a
// wrapped ErrMalformedModel.
func ParseExpr(input string) (Expr, error) {
	node, err := parseTree(input)
	if err != nil {
		return nil, err
	}
	if bin, ok := node.(*ast.BinaryNode); ok && isComparison(bin.Operator) {
		return nil, fmt.Errorf("%w: unexpected relational operator %q in expression %q",
			ErrMalformedModel, bin.Operator, input)
	}
	return fromAST(node)
}

// ParseConstraint parses a full relational constraint string such as
// "x + y <= 10" or "x ≥ 2". The operators ≤ ≥ = == <= >= < > are accepted
// (strict comparisons are treated as their non-strict counterparts, which
// is what every integrated engine implements); ≠ and != are rejected. The
// right-hand side must be constant.
func ParseConstraint(input string) (Constraint, error) {
	if strings.Contains(input, "≠") || strings.Contains(input, "!=") {
		return Constraint{}, fmt.Errorf("%w: operator ≠ is not supported in %q", ErrMalformedModel, input)
	}

	node, err := parseTree(input)
	if err != nil {
		return Constraint{}, err
	}
	bin, ok := node.(*ast.BinaryNode)
	if !ok || !isComparison(bin.Operator) {
		return Constraint{}, fmt.Errorf("%w: constraint %q has no relational operator", ErrMalformedModel, input)
	}

	var op Relation
	switch bin.Operator {
	case "<", "<=":
		op = LE
	case ">", ">=":
		op = GE
	case "==":
		op = EQ
	default:
		return Constraint{}, fmt.Errorf("%w: operator %q is not supported in %q", ErrMalformedModel, bin.Operator, input)
	}

	lhs, err := fromAST(bin.Left)
	if err != nil {
		return Constraint{}, err
	}
	rhs, err := fromAST(bin.Right)
	if err != nil {
		return Constraint{}, err
	}
	if rhs.ContainsVar() {
		return Constraint{}, fmt.Errorf("%w: right-hand side of %q is not constant", ErrMalformedModel, input)
	}

	return Constraint{Expr: lhs, Op: op, RHS: rhs.Eval(nil)}, nil
}

func parseTree(input string) (ast.Node, error) {
	normalized := strings.NewReplacer("≤", "<=", "≥", ">=").Replace(strings.TrimSpace(input))
	// a single "=" means equality in user input, not assignment
	normalized = equalsToComparison(normalized)

	tree, err := parser.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", ErrMalformedModel, input, err)
	}
	return tree.Node, nil
}

// equalsToComparison rewrites a bare "=" into "==" without touching the
// two-character operators "<=", ">=", "==" and "!=".
func equalsToComparison(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '=' {
			b.WriteByte(s[i])
			continue
		}
		prev := byte(0)
		if i > 0 {
			prev = s[i-1]
		}
		next := byte(0)
		if i+1 < len(s) {
			next = s[i+1]
		}
		if prev == '<' || prev == '>' || prev == '=' || prev == '!' || next == '=' {
			b.WriteByte('=')
			continue
		}
		b.WriteString("==")
	}
	return b.String()
}

func isComparison(op string) bool {
	switch op {
	case "<", "<=", ">", ">=", "==", "!=":
		return true
	}
	return false
}

func fromAST(node ast.Node) (Expr, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return Const{Value: float64(n.Value)}, nil

	case *ast.FloatNode:
		return Const{Value: n.Value}, nil

	case *ast.IdentifierNode:
		return Ref{Name: n.Value}, nil

	case *ast.UnaryNode:
		inner, err := fromAST(n.Node)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case "-":
			if c, ok := inner.(Const); ok {
				return Const{Value: -c.Value}, nil
			}
			return Mul{Factors: []Expr{Const{Value: -1}, inner}}, nil
		case "+":
			return inner, nil
		}
		return nil, fmt.Errorf("%w: unary operator %q", ErrMalformedModel, n.Operator)

	case *ast.BinaryNode:
		left, err := fromAST(n.Left)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case "^", "**":
			return powFromAST(left, n.Right)
		}
		right, err := fromAST(n.Right)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case "+":
			return Add{Terms: []Expr{left, right}}, nil
		case "-":
			return Add{Terms: []Expr{left, Mul{Factors: []Expr{Const{Value: -1}, right}}}}, nil
		case "*":
			return Mul{Factors: []Expr{left, right}}, nil
		case "/":
			if !right.ContainsVar() {
				d := right.Eval(nil)
				if d == 0 {
					return nil, fmt.Errorf("%w: division by zero", ErrMalformedModel)
				}
				return Mul{Factors: []Expr{left, Const{Value: 1 / d}}}, nil
			}
			return Mul{Factors: []Expr{left, Pow{Base: right, Exp: -1}}}, nil
		}
		return nil, fmt.Errorf("%w: operator %q", ErrMalformedModel, n.Operator)

	case *ast.CallNode:
		ident, ok := n.Callee.(*ast.IdentifierNode)
		if !ok || !KnownFunc(ident.Value) {
			return nil, fmt.Errorf("%w: unknown function in %q", ErrMalformedModel, node.String())
		}
		if len(n.Arguments) != 1 {
			return nil, fmt.Errorf("%w: %s takes exactly one argument", ErrMalformedModel, ident.Value)
		}
		arg, err := fromAST(n.Arguments[0])
		if err != nil {
			return nil, err
		}
		return Call{Fn: Func(ident.Value), Arg: arg}, nil
	}

	return nil, fmt.Errorf("%w: unsupported syntax %q", ErrMalformedModel, node.String())
}

// powFromAST builds a Pow node, requiring the exponent to be a constant
// integer; engines have no contract for symbolic or fractional exponents.
func powFromAST(base Expr, expNode ast.Node) (Expr, error) {
	exp, err := fromAST(expNode)
	if err != nil {
		return nil, err
	}
	if exp.ContainsVar() {
		return nil, fmt.Errorf("%w: variable exponent", ErrMalformedModel)
	}
	v := exp.Eval(nil)
	if v != math.Trunc(v) {
		return nil, fmt.Errorf("%w: non-integer exponent %g", ErrMalformedModel, v)
	}
	return Pow{Base: base, Exp: int(v)}, nil
}
