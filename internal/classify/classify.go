// Package classify derives the mathematical-programming class of a model
// from its variable domains and linearity tags. Classification is pure and
// deterministic; the same model always maps to the same class.
package classify

import (
	"github.com/optiroute/optiroute/pkg/mp"
)

// Classify validates the model and assigns it to one of the five problem
// classes:
//
//	integers   nonlinear   class
//	none       no          LP
//	all        no          IP
//	none       yes         NLP
//	some       no          MILP
//	any        yes         MINLP
//
// IP is reserved for models where every variable is integer or binary; one
// continuous variable among integers makes the model MILP. The distinction
// drives engine selection and must not be collapsed.
func Classify(m *mp.Model) (mp.ProblemClass, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	integral, allIntegral := integrality(m)
	nonlinear := hasNonlinear(m)

	switch {
	case nonlinear && integral:
		return mp.ClassMINLP, nil
	case nonlinear:
		return mp.ClassNLP, nil
	case allIntegral:
		return mp.ClassIP, nil
	case integral:
		return mp.ClassMILP, nil
	default:
		return mp.ClassLP, nil
	}
}

// integrality reports whether any variable is integer/binary and whether
// all of them are.
func integrality(m *mp.Model) (any_, all bool) {
	all = true
	for _, v := range m.Variables {
		if v.Integral() {
			any_ = true
		} else {
			all = false
		}
	}
	return any_, all
}

// hasNonlinear reports whether the objective or any constraint is tagged
// nonlinear.
func hasNonlinear(m *mp.Model) bool {
	if !m.Objective.Linear() {
		return true
	}
	for _, c := range m.Constraints {
		if !c.Linear() {
			return true
		}
	}
	return false
}
