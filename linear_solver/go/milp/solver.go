// Copyright 2010-2025 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package milp

import "time"

// Status is the outcome of a solve.
type Status int

// Possible values of Status. They follow the MPSolverResponseStatus values of the
// linear solver wrapper.
const (
	// StatusNotSolved means the solver stopped before finding any solution, e.g. on a
	// time limit or an interrupt.
	StatusNotSolved Status = iota
	StatusOptimal
	// StatusFeasible means a solution was found but not proven optimal.
	StatusFeasible
	StatusInfeasible
	StatusUnbounded
	// StatusAbnormal means the solver failed for numerical or internal reasons.
	StatusAbnormal
	StatusModelInvalid
)

var statusNames = map[Status]string{
	StatusNotSolved:    "NOT_SOLVED",
	StatusOptimal:      "OPTIMAL",
	StatusFeasible:     "FEASIBLE",
	StatusInfeasible:   "INFEASIBLE",
	StatusUnbounded:    "UNBOUNDED",
	StatusAbnormal:     "ABNORMAL",
	StatusModelInvalid: "MODEL_INVALID",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// HasSolution returns true if the response carries variable values.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Response is the result of a solve. Values and ObjectiveValue are only meaningful when
// Status.HasSolution() is true.
type Response struct {
	Status         Status
	ObjectiveValue float64
	// Values holds one value per model variable, indexed by VarIndex.
	Values []float64
	// WallTime is the time spent inside the solver.
	WallTime time.Duration
	// StatusDetail is a free-form explanation set by the solver.
	StatusDetail string
}

// Solver is the boundary to an optimization engine. Any engine accepting a Model and
// returning a Response can be plugged in.
//
// Solve returns an error only when the engine itself could not run; infeasible or
// unsolved models are reported through Response.Status.
type Solver interface {
	Solve(m *Model) (*Response, error)
}

// SolverFunc adapts an ordinary function to the Solver interface.
type SolverFunc func(m *Model) (*Response, error)

// Solve calls f(m).
func (f SolverFunc) Solve(m *Model) (*Response, error) {
	return f(m)
}

// SolutionValue returns the value of LinearArgument `la` in the response.
func SolutionValue(r *Response, la LinearArgument) float64 {
	return la.evaluateSolutionValue(r)
}

// SolutionBooleanValue returns whether the 0/1 variable `v` is set in the response, using
// 0.5 as the integrality threshold.
func SolutionBooleanValue(r *Response, v Var) bool {
	return v.evaluateSolutionValue(r) > 0.5
}
