package modelfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiroute/optiroute/internal/classify"
	"github.com/optiroute/optiroute/pkg/mp"
)

const capacityYAML = `
name: capacity
variables:
  - name: x
    lower: 0
    upper: 10
  - name: y
    lower: 0
    upper: 10
constraints:
  - name: cap
    expr: "x + y <= 10"
objective:
  sense: maximize
  expr: "x + y"
`

func TestParseYAML(t *testing.T) {
	m, err := ParseYAML([]byte(capacityYAML))
	require.NoError(t, err)
	assert.Equal(t, "capacity", m.Name)
	require.Len(t, m.Variables, 2)
	assert.Equal(t, mp.Continuous, m.Variables[0].Kind)
	assert.Equal(t, 0.0, m.Variables[0].Lower)
	assert.Equal(t, 10.0, m.Variables[0].Upper)
	require.Len(t, m.Constraints, 1)
	assert.Equal(t, "cap", m.Constraints[0].Name)
	assert.Equal(t, mp.LE, m.Constraints[0].Op)
	assert.Equal(t, 10.0, m.Constraints[0].RHS)
	assert.Equal(t, mp.Maximize, m.Objective.Sense)

	class, err := classify.Classify(m)
	require.NoError(t, err)
	assert.Equal(t, mp.ClassLP, class)
}

func TestParseYAMLKindsAndUnbounded(t *testing.T) {
	doc := `
name: mix
variables:
  - name: n
    kind: integer
    lower: 0
  - name: pick
    kind: binary
  - name: load
objective:
  sense: minimize
  expr: "n + load + pick"
`
	m, err := ParseYAML([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, mp.Integer, m.Variables[0].Kind)
	assert.True(t, m.Variables[0].Upper > 1e308, "absent upper bound should be +Inf")

	assert.Equal(t, mp.Binary, m.Variables[1].Kind)
	lower, upper := m.Variables[1].Bounds()
	assert.Equal(t, 0.0, lower)
	assert.Equal(t, 1.0, upper)

	assert.Equal(t, mp.Continuous, m.Variables[2].Kind)

	class, err := classify.Classify(m)
	require.NoError(t, err)
	assert.Equal(t, mp.ClassMILP, class)
}

func TestParseJSON(t *testing.T) {
	doc := `{
  "name": "tiny",
  "variables": [{"name": "x", "lower": 0, "upper": 5}],
  "constraints": [{"expr": "2*x >= 4"}],
  "objective": {"sense": "minimize", "expr": "x"}
}`
	m, err := ParseJSON([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "tiny", m.Name)
	require.Len(t, m.Constraints, 1)
	assert.Equal(t, mp.GE, m.Constraints[0].Op)
}

func TestLoadPicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(capacityYAML), 0o644))
	m, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "capacity", m.Name)

	jsonPath := filepath.Join(dir, "model.json")
	doc := `{"variables": [{"name": "x"}], "objective": {"sense": "minimize", "expr": "x"}}`
	require.NoError(t, os.WriteFile(jsonPath, []byte(doc), 0o644))
	m, err = Load(jsonPath)
	require.NoError(t, err)
	require.Len(t, m.Variables, 1)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "no objective",
			doc:  "variables:\n  - name: x\n",
		},
		{
			name: "unnamed variable",
			doc:  "variables:\n  - kind: integer\nobjective:\n  sense: minimize\n  expr: \"1\"\n",
		},
		{
			name: "undeclared reference",
			doc:  "variables:\n  - name: x\nobjective:\n  sense: minimize\n  expr: \"x + z\"\n",
		},
		{
			name: "bad sense",
			doc:  "variables:\n  - name: x\nobjective:\n  sense: biggest\n  expr: \"x\"\n",
		},
		{
			name: "not yaml",
			doc:  "::::{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			require.ErrorIs(t, err, mp.ErrMalformedModel)
		})
	}
}

func TestParseRejectsDisequality(t *testing.T) {
	doc := `
variables:
  - name: x
constraints:
  - expr: "x != 3"
objective:
  sense: minimize
  expr: "x"
`
	_, err := ParseYAML([]byte(doc))
	require.Error(t, err)
}
