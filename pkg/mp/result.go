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

import "time"

// Status is the uniform terminal status of a solve, independent of which
// engine produced it.
type Status string

const (
	// StatusOptimal: the engine proved optimality of the reported point.
	StatusOptimal Status = "OPTIMAL"
	// StatusFeasible: the engine certified a feasible point without an
	// optimality proof.
	StatusFeasible Status = "FEASIBLE"
	// StatusInfeasible: the engine proved no feasible point exists.
	StatusInfeasible Status = "INFEASIBLE"
	// StatusUnbounded: the engine proved the objective is unbounded.
	StatusUnbounded Status = "UNBOUNDED"
	// StatusTimeout: the time limit elapsed before a terminal status.
	StatusTimeout Status = "TIMEOUT"
	// StatusError: the solve failed; Diagnostic carries the cause.
	StatusError Status = "ERROR"
)

// HasSolution reports whether a result with this status carries an
// objective value and a variable assignment.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// FailureKind distinguishes where an ERROR result originated, so the front
// end can tell user mistakes from environment problems and internal defects.
type FailureKind string

const (
	// FailureInput: the submitted model is malformed; the user can correct it.
	FailureInput FailureKind = "input"
	// FailureEnvironment: no compatible engine is installed or enabled.
	FailureEnvironment FailureKind = "environment"
	// FailureInternal: builder/normalizer defect; not user-recoverable.
	FailureInternal FailureKind = "internal"
	// FailureEngine: the engine process crashed or reported a fault.
	FailureEngine FailureKind = "engine"
)

// Result is the uniform outcome of one solve request.
type Result struct {
	// Status is the normalized terminal status.
	Status Status `json:"status" yaml:"status"`

	// Objective is the objective value at the reported point. Present only
	// when Status.HasSolution().
	Objective *float64 `json:"objective,omitempty" yaml:"objective,omitempty"`

	// Assignment maps variable names to their values. Present only when
	// Status.HasSolution().
	Assignment map[string]float64 `json:"assignment,omitempty" yaml:"assignment,omitempty"`

	// Runtime is the wall-clock duration of the engine invocation.
	Runtime time.Duration `json:"runtime" yaml:"runtime"`

	// Engine is the name of the engine that produced the outcome; empty
	// when the pipeline failed before dispatch.
	Engine string `json:"engine,omitempty" yaml:"engine,omitempty"`

	// Class is the derived problem class; empty when classification failed.
	Class ProblemClass `json:"class,omitempty" yaml:"class,omitempty"`

	// Diagnostic carries engine or pipeline output on ERROR, INFEASIBLE
	// and UNBOUNDED results.
	Diagnostic string `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`

	// Failure is set on ERROR results only.
	Failure FailureKind `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Options are the per-request solve options supplied by the front end.
// Zero values mean "engine-specific default".
type Options struct {
	// TimeLimit bounds the engine invocation wall-clock time.
	TimeLimit time.Duration `json:"timeLimit,omitempty" yaml:"timeLimit,omitempty"`

	// Tolerance is the relative optimality tolerance passed to the engine.
	Tolerance float64 `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`

	// PreferredEngine overrides the registry's preference ordering with a
	// specific engine name. The engine must still support the class.
	PreferredEngine string `json:"preferredEngine,omitempty" yaml:"preferredEngine,omitempty"`
}
