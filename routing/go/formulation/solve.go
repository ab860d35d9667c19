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

import (
	"fmt"
	"time"

	log "github.com/golang/glog"
	"github.com/routemip/routemip/linear_solver/go/milp"
)

// Result is the outcome of a solve.
type Result struct {
	Name     string
	Strategy Strategy
	Status   milp.Status
	// Objective is the objective value reported by the solver. It is only set when
	// the solver returned a solution.
	Objective float64
	// Routes, UnusedVehicles and Positions are only set when a solution was decoded.
	Routes         []Route
	UnusedVehicles []int
	Positions      map[int]float64
	// Customers lists the nodes which must be covered by the routes.
	Customers []int
	Vehicles  int

	NumVariables         int
	NumConstraints       int
	NumSubsetConstraints int
	WallTime             time.Duration
}

// TotalCost returns the cost of all routes.
func (r *Result) TotalCost() float64 {
	var c float64
	for _, route := range r.Routes {
		c += route.Cost
	}
	return c
}

// Solve builds the model of the instance and solves it with `solver`.
func Solve(inst Instance, opts Options, solver milp.Solver) (*Result, error) {
	f, err := Build(inst, opts)
	if err != nil {
		return nil, err
	}
	return f.Solve(solver)
}

// Solve solves the model with `solver` and decodes the optimal routes.
//
// When the solver proves infeasibility, the error wraps ErrInfeasible. On any other
// non optimal status it wraps ErrUnknownOutcome; a FEASIBLE solution is still decoded
// into the result when possible. In both cases the result carries the status.
func (f *Formulation) Solve(solver milp.Solver) (*Result, error) {
	res := &Result{
		Name:                 f.model.Name,
		Strategy:             f.opts.Strategy,
		Customers:            f.inst.Customers(),
		Vehicles:             f.inst.Vehicles,
		NumVariables:         len(f.model.Variables),
		NumConstraints:       len(f.model.Constraints),
		NumSubsetConstraints: f.subsets,
	}
	if !f.inst.IsVRP() {
		res.Customers = f.inst.Nodes()
	}
	resp, err := solver.Solve(f.model)
	if err != nil {
		return nil, fmt.Errorf("solving model %q: %w", f.model.Name, err)
	}
	res.Status = resp.Status
	res.WallTime = resp.WallTime
	log.V(1).Infof("formulation: model %q solved with status %v in %v", f.model.Name, resp.Status, resp.WallTime)

	switch resp.Status {
	case milp.StatusOptimal:
	case milp.StatusInfeasible:
		return res, fmt.Errorf("model %q: %w", f.model.Name, ErrInfeasible)
	default:
		unknown := fmt.Errorf("model %q returned status %v %s: %w", f.model.Name, resp.Status, resp.StatusDetail, ErrUnknownOutcome)
		if resp.Status.HasSolution() {
			res.Objective = resp.ObjectiveValue
			if d, err := f.Decode(resp); err == nil {
				res.setDecoding(d)
			} else {
				log.Warningf("formulation: cannot decode the incumbent of model %q: %v", f.model.Name, err)
			}
		}
		return res, unknown
	}

	res.Objective = resp.ObjectiveValue
	d, err := f.Decode(resp)
	if err != nil {
		return res, err
	}
	if err := checkObjective(d, resp.ObjectiveValue); err != nil {
		return res, err
	}
	res.setDecoding(d)
	return res, nil
}

func (r *Result) setDecoding(d *Decoding) {
	r.Routes = d.Routes
	r.UnusedVehicles = d.UnusedVehicles
	r.Positions = d.Positions
}
