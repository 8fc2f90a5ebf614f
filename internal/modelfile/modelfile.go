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

// Package modelfile reads optimization models from YAML or JSON
// documents. Expressions appear as strings in the document and are run
// through the mp parser, so "2*x + y^2 <= 10" in a file means exactly
// what it means programmatically.
package modelfile

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/optiroute/optiroute/pkg/mp"
)

// document is the on-disk model shape.
type document struct {
	Name      string        `yaml:"name" json:"name"`
	Variables []variableDoc `yaml:"variables" json:"variables"`
	// Constraints are relational strings like "x + 2*y <= 10".
	Constraints []constraintDoc `yaml:"constraints" json:"constraints"`
	Objective   objectiveDoc    `yaml:"objective" json:"objective"`
}

type variableDoc struct {
	Name string `yaml:"name" json:"name"`
	// Kind defaults to continuous.
	Kind string `yaml:"kind" json:"kind"`
	// Lower and Upper are pointers so absent means unbounded.
	Lower *float64 `yaml:"lower" json:"lower"`
	Upper *float64 `yaml:"upper" json:"upper"`
}

type constraintDoc struct {
	Name string `yaml:"name" json:"name"`
	Expr string `yaml:"expr" json:"expr"`
}

type objectiveDoc struct {
	Sense string `yaml:"sense" json:"sense"`
	Expr  string `yaml:"expr" json:"expr"`
}

// Load reads a model document from path. The format is chosen by
// extension: .json is JSON, everything else is YAML.
func Load(path string) (*mp.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a YAML model document.
func ParseYAML(data []byte) (*mp.Model, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", mp.ErrMalformedModel, err)
	}
	return doc.toModel()
}

// ParseJSON decodes a JSON model document.
func ParseJSON(data []byte) (*mp.Model, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", mp.ErrMalformedModel, err)
	}
	return doc.toModel()
}

func (d *document) toModel() (*mp.Model, error) {
	m := &mp.Model{Name: d.Name}

	for i, v := range d.Variables {
		kind := mp.VarKind(v.Kind)
		if v.Kind == "" {
			kind = mp.Continuous
		}
		variable := mp.Variable{
			Name:  v.Name,
			Kind:  kind,
			Lower: math.Inf(-1),
			Upper: math.Inf(1),
		}
		if v.Lower != nil {
			variable.Lower = *v.Lower
		}
		if v.Upper != nil {
			variable.Upper = *v.Upper
		}
		if kind == mp.Binary {
			variable.Lower, variable.Upper = 0, 1
		}
		if variable.Name == "" {
			return nil, fmt.Errorf("%w: variable %d has no name", mp.ErrMalformedModel, i+1)
		}
		m.Variables = append(m.Variables, variable)
	}

	for i, c := range d.Constraints {
		parsed, err := mp.ParseConstraint(c.Expr)
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i+1, err)
		}
		parsed.Name = c.Name
		m.Constraints = append(m.Constraints, parsed)
	}

	if d.Objective.Expr == "" {
		return nil, fmt.Errorf("%w: document has no objective expression", mp.ErrMalformedModel)
	}
	objExpr, err := mp.ParseExpr(d.Objective.Expr)
	if err != nil {
		return nil, fmt.Errorf("objective: %w", err)
	}
	m.Objective = mp.Objective{
		Sense: mp.Sense(strings.ToLower(d.Objective.Sense)),
		Expr:  objExpr,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
