package mp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validModel() *Model {
	return &Model{
		Name: "test",
		Variables: []Variable{
			NewVariable("x", Continuous),
			NewVariable("y", Continuous),
		},
		Constraints: []Constraint{
			{Expr: Add{Terms: []Expr{Ref{Name: "x"}, Ref{Name: "y"}}}, Op: LE, RHS: 10},
		},
		Objective: Objective{
			Sense: Maximize,
			Expr:  Add{Terms: []Expr{Ref{Name: "x"}, Ref{Name: "y"}}},
		},
	}
}

func TestModelValidate(t *testing.T) {
	require.NoError(t, validModel().Validate())
}

func TestModelValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Model)
	}{
		{"no variables", func(m *Model) { m.Variables = nil }},
		{"no objective", func(m *Model) { m.Objective.Expr = nil }},
		{"bad sense", func(m *Model) { m.Objective.Sense = "maximise" }},
		{"duplicate variable", func(m *Model) {
			m.Variables = append(m.Variables, NewVariable("x", Continuous))
		}},
		{"empty variable name", func(m *Model) { m.Variables[0].Name = "" }},
		{"unknown kind", func(m *Model) { m.Variables[0].Kind = "boolean" }},
		{"inverted bounds", func(m *Model) {
			m.Variables[0].Lower = 5
			m.Variables[0].Upper = 1
		}},
		{"undeclared variable in constraint", func(m *Model) {
			m.Constraints[0].Expr = Ref{Name: "z"}
		}},
		{"undeclared variable in objective", func(m *Model) {
			m.Objective.Expr = Ref{Name: "w"}
		}},
		{"constraint without expression", func(m *Model) { m.Constraints[0].Expr = nil }},
		{"unknown operator", func(m *Model) { m.Constraints[0].Op = "!=" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModel()
			tt.mutate(m)
			err := m.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedModel)
		})
	}
}

func TestBinaryVariableDomain(t *testing.T) {
	v := NewVariable("b", Binary)
	lower, upper := v.Bounds()
	assert.Equal(t, 0.0, lower)
	assert.Equal(t, 1.0, upper)
	assert.True(t, v.Integral())

	// declared bounds on a binary variable are ignored
	v.Lower, v.Upper = -5, 7
	lower, upper = v.Bounds()
	assert.Equal(t, 0.0, lower)
	assert.Equal(t, 1.0, upper)
}

func TestNewVariableUnbounded(t *testing.T) {
	v := NewVariable("x", Continuous)
	assert.True(t, math.IsInf(v.Lower, -1))
	assert.True(t, math.IsInf(v.Upper, 1))
	assert.False(t, v.Integral())
}
