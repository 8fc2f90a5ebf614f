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

// Package normalize folds heterogeneous engine outcomes into the uniform
// result vocabulary. The native-token tables are data, not code: each
// engine adapter declares the tokens it emits, the defaults here map
// them, and deployments can override or extend the mapping from a YAML
// file without recompiling.
package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/optiroute/optiroute/internal/engine"
	"github.com/optiroute/optiroute/internal/engine/cbc"
	"github.com/optiroute/optiroute/internal/engine/descent"
	"github.com/optiroute/optiroute/internal/engine/glpk"
	"github.com/optiroute/optiroute/internal/engine/scip"
	"github.com/optiroute/optiroute/internal/engine/simplex"
	"github.com/optiroute/optiroute/pkg/mp"
)

// Table maps one engine's native status tokens to uniform statuses.
type Table map[string]mp.Status

// Defaults returns the built-in tables covering every token the bundled
// engine adapters emit.
func Defaults() map[string]Table {
	return map[string]Table{
		glpk.Name: {
			glpk.StatusOptimal:          mp.StatusOptimal,
			glpk.StatusIntegerOptimal:   mp.StatusOptimal,
			glpk.StatusIntegerSuboptim:  mp.StatusFeasible,
			glpk.StatusFeasible:         mp.StatusFeasible,
			glpk.StatusInfeasible:       mp.StatusInfeasible,
			glpk.StatusIntegerEmpty:     mp.StatusInfeasible,
			glpk.StatusUnbounded:        mp.StatusUnbounded,
			glpk.StatusTimeLimit:        mp.StatusTimeout,
			glpk.StatusUndefined:        mp.StatusError,
			glpk.StatusIntegerUndefined: mp.StatusError,
		},
		cbc.Name: {
			cbc.StatusOptimal:     mp.StatusOptimal,
			cbc.StatusInfeasible:  mp.StatusInfeasible,
			cbc.StatusUnbounded:   mp.StatusUnbounded,
			cbc.StatusTimeLimit:   mp.StatusTimeout,
			cbc.StatusStoppedIter: mp.StatusFeasible,
			cbc.StatusUnknown:     mp.StatusError,
		},
		scip.Name: {
			scip.StatusOptimal:    mp.StatusOptimal,
			scip.StatusInfeasible: mp.StatusInfeasible,
			scip.StatusUnbounded:  mp.StatusUnbounded,
			scip.StatusTimeLimit:  mp.StatusTimeout,
			scip.StatusGapLimit:   mp.StatusFeasible,
			scip.StatusUnknown:    mp.StatusError,
		},
		simplex.Name: {
			simplex.StatusOptimal:    mp.StatusOptimal,
			simplex.StatusInfeasible: mp.StatusInfeasible,
			simplex.StatusUnbounded:  mp.StatusUnbounded,
			simplex.StatusSingular:   mp.StatusError,
		},
		descent.Name: {
			// A penalty-descent point carries no optimality certificate.
			descent.StatusConverged:  mp.StatusFeasible,
			descent.StatusInfeasible: mp.StatusInfeasible,
			descent.StatusFailed:     mp.StatusError,
		},
	}
}

// Normalizer maps raw engine outcomes to uniform results.
type Normalizer struct {
	tables map[string]Table
}

// New returns a Normalizer loaded with the built-in default tables.
func New() *Normalizer {
	return &Normalizer{tables: Defaults()}
}

// overridesFile is the YAML shape accepted by LoadOverrides.
type overridesFile struct {
	Engines map[string]map[string]string `yaml:"engines"`
}

// LoadOverrides merges the mappings in a YAML file over the defaults.
// Unknown target statuses are rejected; unknown engine names are
// accepted, so a deployment can describe an engine added later.
func (n *Normalizer) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading status table %s: %w", path, err)
	}
	var file overridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing status table %s: %w", path, err)
	}
	return n.Merge(file.Engines)
}

// Merge folds explicit token mappings over the current tables.
func (n *Normalizer) Merge(overrides map[string]map[string]string) error {
	for engineName, tokens := range overrides {
		table, ok := n.tables[engineName]
		if !ok {
			table = Table{}
			n.tables[engineName] = table
		}
		for token, target := range tokens {
			status := mp.Status(target)
			switch status {
			case mp.StatusOptimal, mp.StatusFeasible, mp.StatusInfeasible,
				mp.StatusUnbounded, mp.StatusTimeout, mp.StatusError:
				table[token] = status
			default:
				return fmt.Errorf("status table: engine %q token %q maps to unrecognized status %q",
					engineName, token, target)
			}
		}
	}
	return nil
}

// Normalize maps a raw engine outcome to the uniform result shape.
//
// The dispatcher's reserved tokens are handled before any per-engine
// table, so timeouts and crashes normalize identically for every engine.
// A token absent from the engine's table is an internal defect: the
// adapter emitted something the table does not cover.
func (n *Normalizer) Normalize(engineName string, class mp.ProblemClass, raw engine.RawResult) (mp.Result, error) {
	result := mp.Result{
		Runtime:    raw.Runtime,
		Engine:     engineName,
		Class:      class,
		Diagnostic: raw.Diagnostic,
	}

	switch raw.NativeStatus {
	case engine.NativeTimeout:
		result.Status = mp.StatusTimeout
		return result, nil
	case engine.NativeError:
		result.Status = mp.StatusError
		result.Failure = mp.FailureEngine
		return result, nil
	}

	table := n.tables[engineName]
	status, ok := table[raw.NativeStatus]
	if !ok {
		return mp.Result{}, fmt.Errorf("engine %q reported status %q: %w",
			engineName, raw.NativeStatus, mp.ErrUnknownStatus)
	}

	result.Status = status
	if status == mp.StatusError {
		result.Failure = mp.FailureEngine
		if result.Diagnostic == "" {
			result.Diagnostic = fmt.Sprintf("engine %s reported %q", engineName, raw.NativeStatus)
		}
	}

	// Objective and assignment travel only on statuses that certify a
	// solution; partial values from aborted solves are dropped here.
	if status.HasSolution() {
		result.Objective = raw.Objective
		if len(raw.Values) > 0 {
			result.Assignment = raw.Values
		}
	}
	return result, nil
}
