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

package formulation

import "errors"

var (
	// ErrPrecondition is returned by Build when the instance cannot be formulated.
	ErrPrecondition = errors.New("precondition failed")
	// ErrInfeasible is returned when the solver proves that no route set exists.
	ErrInfeasible = errors.New("model is infeasible")
	// ErrUnknownOutcome is returned when the solver neither proves optimality nor
	// infeasibility, e.g. when it hits a time limit.
	ErrUnknownOutcome = errors.New("solver outcome is neither optimal nor infeasible")
	// ErrInconsistent is returned when a solution does not decode into well-formed
	// routes. It points at a modeling error, never at bad input data.
	ErrInconsistent = errors.New("solution is inconsistent with the formulation")
)
