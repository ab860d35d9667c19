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

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidModel is wrapped by all errors returned from Model.Validate.
var ErrInvalidModel = errors.New("invalid model")

// Variable describes one column of the model.
type Variable struct {
	LowerBound           float64
	UpperBound           float64
	ObjectiveCoefficient float64
	IsInteger            bool
	Name                 string
}

// LinearConstraint describes the row `LowerBound <= sum(Coefficient[i] * x[VarIndex[i]]) <= UpperBound`.
// Each variable appears at most once.
type LinearConstraint struct {
	VarIndex    []VarIndex
	Coefficient []float64
	LowerBound  float64
	UpperBound  float64
	Name        string
}

// Model is a mixed-integer linear program. It is the handle passed to a Solver.
type Model struct {
	Name            string
	Maximize        bool
	ObjectiveOffset float64
	Variables       []*Variable
	Constraints     []*LinearConstraint
}

// NumIntegerVariables returns the number of variables restricted to integral values.
func (m *Model) NumIntegerVariables() int {
	n := 0
	for _, v := range m.Variables {
		if v.IsInteger {
			n++
		}
	}
	return n
}

// Objective returns the objective value of the given assignment, including the offset.
func (m *Model) Objective(values []float64) float64 {
	obj := m.ObjectiveOffset
	for i, v := range m.Variables {
		obj += v.ObjectiveCoefficient * values[i]
	}
	return obj
}

// Activity returns the value of the linear part of constraint `c` for the given assignment.
func (c *LinearConstraint) Activity(values []float64) float64 {
	var act float64
	for i, ind := range c.VarIndex {
		act += c.Coefficient[i] * values[ind]
	}
	return act
}

// Violation returns by how much the assignment violates the variable bounds, the
// integrality requirements and the constraints of the model, as the largest single
// violation. A feasible assignment has a violation of 0.
func (m *Model) Violation(values []float64) float64 {
	var worst float64
	for i, v := range m.Variables {
		x := values[i]
		worst = math.Max(worst, v.LowerBound-x)
		worst = math.Max(worst, x-v.UpperBound)
		if v.IsInteger {
			worst = math.Max(worst, math.Abs(x-math.Round(x)))
		}
	}
	for _, c := range m.Constraints {
		act := c.Activity(values)
		worst = math.Max(worst, c.LowerBound-act)
		worst = math.Max(worst, act-c.UpperBound)
	}
	return worst
}

// Validate returns an error wrapping ErrInvalidModel when the model cannot be
// handed to a solver: NaN data, empty domains, infinite coefficients or
// variable references out of range.
func (m *Model) Validate() error {
	for i, v := range m.Variables {
		if math.IsNaN(v.LowerBound) || math.IsNaN(v.UpperBound) {
			return fmt.Errorf("variable %d (%q) has a NaN bound: %w", i, v.Name, ErrInvalidModel)
		}
		if v.LowerBound > v.UpperBound {
			return fmt.Errorf("variable %d (%q) has empty domain [%v, %v]: %w", i, v.Name, v.LowerBound, v.UpperBound, ErrInvalidModel)
		}
		if math.IsNaN(v.ObjectiveCoefficient) || math.IsInf(v.ObjectiveCoefficient, 0) {
			return fmt.Errorf("variable %d (%q) has objective coefficient %v: %w", i, v.Name, v.ObjectiveCoefficient, ErrInvalidModel)
		}
	}
	for i, c := range m.Constraints {
		if len(c.VarIndex) != len(c.Coefficient) {
			return fmt.Errorf("constraint %d (%q) has %d indices and %d coefficients: %w", i, c.Name, len(c.VarIndex), len(c.Coefficient), ErrInvalidModel)
		}
		if math.IsNaN(c.LowerBound) || math.IsNaN(c.UpperBound) {
			return fmt.Errorf("constraint %d (%q) has a NaN bound: %w", i, c.Name, ErrInvalidModel)
		}
		if c.LowerBound > c.UpperBound {
			return fmt.Errorf("constraint %d (%q) has empty range [%v, %v]: %w", i, c.Name, c.LowerBound, c.UpperBound, ErrInvalidModel)
		}
		seen := make(map[VarIndex]bool, len(c.VarIndex))
		for k, ind := range c.VarIndex {
			if ind < 0 || int(ind) >= len(m.Variables) {
				return fmt.Errorf("constraint %d (%q) references variable %d: %w", i, c.Name, ind, ErrInvalidModel)
			}
			if seen[ind] {
				return fmt.Errorf("constraint %d (%q) references variable %d twice: %w", i, c.Name, ind, ErrInvalidModel)
			}
			seen[ind] = true
			if coeff := c.Coefficient[k]; math.IsNaN(coeff) || math.IsInf(coeff, 0) {
				return fmt.Errorf("constraint %d (%q) has coefficient %v: %w", i, c.Name, coeff, ErrInvalidModel)
			}
		}
	}
	if math.IsNaN(m.ObjectiveOffset) || math.IsInf(m.ObjectiveOffset, 0) {
		return fmt.Errorf("objective offset %v: %w", m.ObjectiveOffset, ErrInvalidModel)
	}
	return nil
}
