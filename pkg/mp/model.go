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
)

// VarKind is the domain kind of a decision variable.
type VarKind string

const (
	// Continuous variables range over the reals within their bounds.
	Continuous VarKind = "continuous"
	// Integer variables are restricted to integral values within their bounds.
	Integer VarKind = "integer"
	// Binary variables have their domain fixed to {0, 1}; declared bounds
	// are ignored.
	Binary VarKind = "binary"
)

// Relation is the relational operator of a constraint.
type Relation string

const (
	LE Relation = "<="
	EQ Relation = "="
	GE Relation = ">="
)

// Sense is the optimization direction of the objective.
type Sense string

const (
	Minimize Sense = "minimize"
	Maximize Sense = "maximize"
)

// Variable is a named decision variable with a domain kind and optional
// bounds. Absent bounds are represented as -Inf / +Inf.
type Variable struct {
	Name  string  `json:"name" yaml:"name"`
	Kind  VarKind `json:"kind" yaml:"kind"`
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// NewVariable returns an unbounded variable of the given kind. Binary
// variables come back with the fixed {0,1} domain.
func NewVariable(name string, kind VarKind) Variable {
	v := Variable{Name: name, Kind: kind, Lower: math.Inf(-1), Upper: math.Inf(1)}
	if kind == Binary {
		v.Lower, v.Upper = 0, 1
	}
	return v
}

// Bounds returns the effective lower and upper bound of the variable.
// Binary variables always report [0, 1] regardless of declared bounds.
func (v Variable) Bounds() (lower, upper float64) {
	if v.Kind == Binary {
		return 0, 1
	}
	return v.Lower, v.Upper
}

// Integral reports whether the variable has an integrality requirement.
func (v Variable) Integral() bool {
	return v.Kind == Integer || v.Kind == Binary
}

// Constraint relates an expression to a right-hand-side constant.
type Constraint struct {
	Name string   `json:"name,omitempty" yaml:"name,omitempty"`
	Expr Expr     `json:"-" yaml:"-"`
	Op   Relation `json:"op" yaml:"op"`
	RHS  float64  `json:"rhs" yaml:"rhs"`
}

// Linear reports whether the constraint's expression is tagged linear.
func (c Constraint) Linear() bool { return c.Expr.Linear() }

// Objective is an expression together with an optimization direction.
type Objective struct {
	Sense Sense `json:"sense" yaml:"sense"`
	Expr  Expr  `json:"-" yaml:"-"`
}

// Linear reports whether the objective expression is tagged linear.
func (o Objective) Linear() bool { return o.Expr.Linear() }

// Model is a complete problem description: an ordered set of variables, an
// ordered set of constraints and exactly one objective. A model is built
// fresh per solve request and treated as read-only once handed to the
// solver pipeline.
type Model struct {
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Variables   []Variable   `json:"variables" yaml:"variables"`
	Constraints []Constraint `json:"constraints" yaml:"constraints"`
	Objective   Objective    `json:"objective" yaml:"objective"`
}

// Variable returns the variable with the given name, if present.
func (m *Model) Variable(name string) (Variable, bool) {
	for _, v := range m.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Validate checks the structural invariants of the model. Violations are
// user-input problems and come back wrapping ErrMalformedModel.
func (m *Model) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil model", ErrMalformedModel)
	}
	if len(m.Variables) == 0 {
		return fmt.Errorf("%w: model has no variables", ErrMalformedModel)
	}
	if m.Objective.Expr == nil {
		return fmt.Errorf("%w: model has no objective", ErrMalformedModel)
	}
	if m.Objective.Sense != Minimize && m.Objective.Sense != Maximize {
		return fmt.Errorf("%w: invalid objective sense %q", ErrMalformedModel, m.Objective.Sense)
	}

	seen := make(map[string]struct{}, len(m.Variables))
	for _, v := range m.Variables {
		if v.Name == "" {
			return fmt.Errorf("%w: variable with empty name", ErrMalformedModel)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("%w: duplicate variable %q", ErrMalformedModel, v.Name)
		}
		seen[v.Name] = struct{}{}

		switch v.Kind {
		case Continuous, Integer, Binary:
		default:
			return fmt.Errorf("%w: variable %q has unknown kind %q", ErrMalformedModel, v.Name, v.Kind)
		}
		lower, upper := v.Bounds()
		if lower > upper {
			return fmt.Errorf("%w: variable %q has lower bound %g above upper bound %g",
				ErrMalformedModel, v.Name, lower, upper)
		}
	}

	if err := m.checkRefs(m.Objective.Expr, "objective"); err != nil {
		return err
	}
	for i, c := range m.Constraints {
		where := fmt.Sprintf("constraint %d", i+1)
		if c.Expr == nil {
			return fmt.Errorf("%w: %s has no expression", ErrMalformedModel, where)
		}
		switch c.Op {
		case LE, EQ, GE:
		default:
			return fmt.Errorf("%w: %s has unknown operator %q", ErrMalformedModel, where, c.Op)
		}
		if err := m.checkRefs(c.Expr, where); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) checkRefs(e Expr, where string) error {
	for _, name := range Vars(e) {
		if _, ok := m.Variable(name); !ok {
			return fmt.Errorf("%w: %s references undeclared variable %q", ErrMalformedModel, where, name)
		}
	}
	return nil
}
