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

// Package formulation builds mixed-integer linear programs for the traveling
// salesman problem (TSP) and the uncapacitated vehicle routing problem (VRP), and
// decodes solver responses back into routes.
//
// A TSP uses one binary variable x_i_j per ordered pair of nodes, a VRP one binary
// variable x_i_j_k per ordered pair and vehicle. Subtours are ruled out either by
// the Dantzig-Fulkerson-Johnson subset constraints (DFJ), all of them emitted up
// front, or by the Miller-Tucker-Zemlin ordering variables (MTZ, TSP only).
//
// A typical use is:
//
//	f, err := formulation.Build(inst, formulation.Options{Strategy: formulation.DFJ})
//	...
//	res, err := f.Solve(exhaustive.New(exhaustive.DefaultParameters()))
package formulation

import (
	"fmt"
	"math"
	"slices"
	"strings"

	log "github.com/golang/glog"
	"github.com/routemip/routemip/linear_solver/go/milp"
	"github.com/routemip/routemip/routing/go/costs"
)

// Strategy selects the family of subtour elimination constraints.
type Strategy int

const (
	// DFJ adds one constraint per subset of eliminable nodes.
	DFJ Strategy = iota
	// MTZ adds one continuous ordering variable per node and one constraint per
	// ordered pair of non-anchor nodes.
	MTZ
)

func (s Strategy) String() string {
	switch s {
	case DFJ:
		return "DFJ"
	case MTZ:
		return "MTZ"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy returns the strategy named `s`, ignoring case.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToUpper(s) {
	case "DFJ":
		return DFJ, nil
	case "MTZ":
		return MTZ, nil
	}
	return 0, fmt.Errorf("unknown subtour strategy %q: %w", s, ErrPrecondition)
}

// DefaultMaxSubsetConstraints is the DFJ constraint budget used when
// Options.MaxSubsetConstraints is zero.
const DefaultMaxSubsetConstraints = 1 << 16

// Options configures Build.
type Options struct {
	Strategy Strategy
	// MaxSubsetConstraints bounds the number of DFJ constraints. Build fails when
	// the instance needs more.
	MaxSubsetConstraints int
}

func (o Options) maxSubsets() int {
	if o.MaxSubsetConstraints <= 0 {
		return DefaultMaxSubsetConstraints
	}
	return o.MaxSubsetConstraints
}

// Instance is a routing problem.
type Instance struct {
	Costs *costs.Matrix
	// Depot is the node every route starts and ends at. For a TSP it is the anchor
	// of the tour and of the MTZ ordering.
	Depot int
	// Fleet makes the instance a VRP served by Vehicles vehicles. A TSP has no
	// fleet and no vehicles.
	Fleet    bool
	Vehicles int
}

// IsVRP returns whether the instance has a fleet.
func (in Instance) IsVRP() bool {
	return in.Fleet
}

// Nodes returns all nodes of the instance, in cost matrix order.
func (in Instance) Nodes() []int {
	return in.Costs.Nodes()
}

// Customers returns the nodes other than the depot.
func (in Instance) Customers() []int {
	return slices.DeleteFunc(in.Costs.Nodes(), func(n int) bool { return n == in.Depot })
}

// vehicleIDs returns 1..m for a VRP and the single pseudo vehicle 0 for a TSP.
func (in Instance) vehicleIDs() []int {
	if !in.IsVRP() {
		return []int{0}
	}
	ids := make([]int, in.Vehicles)
	for k := range ids {
		ids[k] = k + 1
	}
	return ids
}

// SubsetCount returns the number of DFJ constraints for a pool of `p` eliminable
// nodes: all subsets of size 2 to p-1 for a TSP, and 2 to p for a VRP. It returns
// math.MaxInt when the count overflows.
func SubsetCount(p int, vrp bool) int {
	if p < 2 {
		return 0
	}
	if p >= 62 {
		return math.MaxInt
	}
	n := 1<<p - p - 1
	if !vrp {
		n--
	}
	return n
}

type arc struct {
	from, to, vehicle int
}

// Formulation is a built model together with the variables needed to read a
// solution back.
type Formulation struct {
	inst Instance
	opts Options

	nodes    []int
	pool     []int
	vehicles []int

	builder *milp.Builder
	model   *milp.Model
	x       map[arc]milp.Var
	u       map[int]milp.Var
	subsets int
}

func validate(inst Instance, opts Options) error {
	if inst.Costs == nil {
		return fmt.Errorf("instance has no costs: %w", ErrPrecondition)
	}
	if !inst.Costs.Has(inst.Depot) {
		return fmt.Errorf("depot %d is not a node: %w", inst.Depot, ErrPrecondition)
	}
	if inst.Fleet && inst.Vehicles < 1 {
		return fmt.Errorf("fleet of %d vehicles, need at least 1: %w", inst.Vehicles, ErrPrecondition)
	}
	if !inst.Fleet && inst.Vehicles != 0 {
		return fmt.Errorf("tour instance with %d vehicles has no fleet: %w", inst.Vehicles, ErrPrecondition)
	}
	n := inst.Costs.Len()
	pool := n
	if inst.IsVRP() {
		pool = n - 1
		if pool < 1 {
			return fmt.Errorf("vehicle routing instance has no customer: %w", ErrPrecondition)
		}
	} else if n < 3 {
		return fmt.Errorf("%d nodes, a tour needs at least 3: %w", n, ErrPrecondition)
	}
	switch opts.Strategy {
	case DFJ:
		if c := SubsetCount(pool, inst.IsVRP()); c > opts.maxSubsets() {
			return fmt.Errorf("%d nodes need %d subset constraints, more than the maximum %d: %w", pool, c, opts.maxSubsets(), ErrPrecondition)
		}
	case MTZ:
		if inst.IsVRP() {
			return fmt.Errorf("MTZ ordering is only available for a single tour: %w", ErrPrecondition)
		}
	default:
		return fmt.Errorf("unknown subtour strategy %v: %w", opts.Strategy, ErrPrecondition)
	}
	return nil
}

// Build returns the model of the instance with the subtour elimination strategy of
// `opts`. All errors wrap ErrPrecondition.
func Build(inst Instance, opts Options) (*Formulation, error) {
	if err := validate(inst, opts); err != nil {
		return nil, err
	}
	f := &Formulation{
		inst:     inst,
		opts:     opts,
		nodes:    inst.Nodes(),
		vehicles: inst.vehicleIDs(),
		x:        make(map[arc]milp.Var),
	}
	kind := "tsp"
	f.pool = f.nodes
	if inst.IsVRP() {
		kind = "vrp"
		f.pool = inst.Customers()
	}
	f.builder = milp.NewModelBuilder(fmt.Sprintf("%s_%s", kind, strings.ToLower(opts.Strategy.String())))

	f.addEdgeVariables()
	if inst.IsVRP() {
		f.addVehicleConstraints()
	} else {
		f.addDegreeConstraints()
	}
	switch opts.Strategy {
	case DFJ:
		f.addSubsetConstraints()
	case MTZ:
		f.addOrderingConstraints()
	}

	m, err := f.builder.Model()
	if err != nil {
		return nil, fmt.Errorf("building %s model: %w", kind, err)
	}
	f.model = m
	log.V(1).Infof("formulation: model %q has %d variables (%d integer), %d constraints (%d subset constraints)",
		m.Name, len(m.Variables), m.NumIntegerVariables(), len(m.Constraints), f.subsets)
	return f, nil
}

func (f *Formulation) edgeName(a arc) string {
	if f.inst.IsVRP() {
		return fmt.Sprintf("x_%d_%d_%d", a.from, a.to, a.vehicle)
	}
	return fmt.Sprintf("x_%d_%d", a.from, a.to)
}

// addEdgeVariables creates the edge variables and the objective.
func (f *Formulation) addEdgeVariables() {
	obj := milp.NewLinearExpr()
	for _, k := range f.vehicles {
		for _, i := range f.nodes {
			for _, j := range f.nodes {
				if i == j {
					continue
				}
				a := arc{i, j, k}
				f.x[a] = f.builder.NewBoolVar().WithName(f.edgeName(a))
				obj.AddTerm(f.x[a], f.inst.Costs.Cost(i, j))
			}
		}
	}
	f.builder.Minimize(obj)
}

// addDegreeConstraints makes every node entered and left exactly once.
func (f *Formulation) addDegreeConstraints() {
	one := milp.NewConstant(1)
	for _, j := range f.nodes {
		in := milp.NewLinearExpr()
		for _, i := range f.nodes {
			if i != j {
				in.Add(f.x[arc{i, j, 0}])
			}
		}
		f.builder.AddEquality(in, one).WithName(fmt.Sprintf("enter_city_%d", j))
	}
	for _, i := range f.nodes {
		out := milp.NewLinearExpr()
		for _, j := range f.nodes {
			if i != j {
				out.Add(f.x[arc{i, j, 0}])
			}
		}
		f.builder.AddEquality(out, one).WithName(fmt.Sprintf("leave_city_%d", i))
	}
}

// addVehicleConstraints makes every customer visited once by some vehicle, balances
// the flow of each vehicle at each node and lets each vehicle leave and return to
// the depot at most once.
func (f *Formulation) addVehicleConstraints() {
	depot := f.inst.Depot
	for _, i := range f.pool {
		visit := milp.NewLinearExpr()
		for _, k := range f.vehicles {
			for _, j := range f.nodes {
				if j != i {
					visit.Add(f.x[arc{j, i, k}])
				}
			}
		}
		f.builder.AddEquality(visit, milp.NewConstant(1)).WithName(fmt.Sprintf("visit_customer_%d", i))
	}
	for _, k := range f.vehicles {
		for _, i := range f.nodes {
			flow := milp.NewLinearExpr()
			for _, j := range f.nodes {
				if j != i {
					flow.Add(f.x[arc{i, j, k}])
					flow.AddTerm(f.x[arc{j, i, k}], -1)
				}
			}
			f.builder.AddEquality(flow, milp.NewConstant(0)).WithName(fmt.Sprintf("flow_%d_%d", i, k))
		}
	}
	for _, k := range f.vehicles {
		leave := milp.NewLinearExpr()
		ret := milp.NewLinearExpr()
		for _, j := range f.pool {
			leave.Add(f.x[arc{depot, j, k}])
			ret.Add(f.x[arc{j, depot, k}])
		}
		f.builder.AddLinearConstraint(leave, 0, 1).WithName(fmt.Sprintf("leave_depot_%d", k))
		f.builder.AddLinearConstraint(ret, 0, 1).WithName(fmt.Sprintf("return_depot_%d", k))
	}
}

// Instance returns the instance the model was built for.
func (f *Formulation) Instance() Instance {
	return f.inst
}

// Strategy returns the subtour elimination strategy of the model.
func (f *Formulation) Strategy() Strategy {
	return f.opts.Strategy
}

// Model returns the built model. It must not be modified.
func (f *Formulation) Model() *milp.Model {
	return f.model
}

// Edge returns the variable of the edge from `from` to `to` driven by `vehicle`.
// The vehicle is ignored for a TSP.
func (f *Formulation) Edge(from, to, vehicle int) (milp.Var, bool) {
	if !f.inst.IsVRP() {
		vehicle = 0
	}
	v, ok := f.x[arc{from, to, vehicle}]
	return v, ok
}

// Position returns the MTZ ordering variable of `node`.
func (f *Formulation) Position(node int) (milp.Var, bool) {
	v, ok := f.u[node]
	return v, ok
}

// NumSubsetConstraints returns the number of DFJ constraints in the model.
func (f *Formulation) NumSubsetConstraints() int {
	return f.subsets
}
