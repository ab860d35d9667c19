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
	"math"
	"slices"
	"strings"

	"github.com/routemip/routemip/linear_solver/go/milp"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ObjectiveTolerance is the relative tolerance between the objective reported by
// the solver and the cost of the decoded routes.
const ObjectiveTolerance = 1e-6

// Leg is one edge of a route.
type Leg struct {
	From, To int
	Cost     float64
}

// Route is a closed walk starting and ending at the depot.
type Route struct {
	// Vehicle is the vehicle driving the route, 0 for a TSP.
	Vehicle int
	// Nodes lists the visited nodes, with the depot first and last.
	Nodes []int
	Legs  []Leg
	Cost  float64
}

// Decoding is the set of routes read from a solution.
type Decoding struct {
	Routes []Route
	// UnusedVehicles lists the vehicles which never leave the depot.
	UnusedVehicles []int
	// Positions holds the MTZ ordering value u of each node, nil for DFJ. The
	// values increase along the route after the depot; the depot is pinned to 1
	// and other nodes may share that value, so they are not ranks.
	Positions map[int]float64
}

// Cost returns the total cost of the routes.
func (d *Decoding) Cost() float64 {
	var c float64
	for _, r := range d.Routes {
		c += r.Cost
	}
	return c
}

func (f *Formulation) used(r *milp.Response, from, to, vehicle int) bool {
	v, ok := f.x[arc{from, to, vehicle}]
	return ok && milp.SolutionBooleanValue(r, v)
}

func (f *Formulation) newRoute(vehicle int, nodes []int) Route {
	r := Route{Vehicle: vehicle, Nodes: nodes}
	for s := 0; s+1 < len(nodes); s++ {
		c := f.inst.Costs.Cost(nodes[s], nodes[s+1])
		r.Legs = append(r.Legs, Leg{From: nodes[s], To: nodes[s+1], Cost: c})
		r.Cost += c
	}
	return r
}

// Decode reads the routes of a solution of the model. Every error wraps
// ErrInconsistent.
//
// The response must hold a value for every variable of the model. An edge is used
// when its value exceeds 0.5.
func (f *Formulation) Decode(r *milp.Response) (*Decoding, error) {
	if len(r.Values) != len(f.model.Variables) {
		return nil, fmt.Errorf("response has %d values for %d variables: %w", len(r.Values), len(f.model.Variables), ErrInconsistent)
	}
	var d *Decoding
	var err error
	if f.inst.IsVRP() {
		d, err = f.decodeVehicles(r)
	} else {
		d, err = f.decodeTour(r)
	}
	if err != nil {
		return nil, err
	}
	if f.u != nil {
		d.Positions = make(map[int]float64, len(f.u))
		for n, v := range f.u {
			d.Positions[n] = milp.SolutionValue(r, v)
		}
	}
	return d, nil
}

// decodeTour walks from the depot along used edges to unvisited nodes until every
// node is visited, then requires the edge closing the tour.
func (f *Formulation) decodeTour(r *milp.Response) (*Decoding, error) {
	anchor := f.inst.Depot
	visited := map[int]bool{anchor: true}
	tour := []int{anchor}
	cur := anchor
	for len(tour) < len(f.nodes) {
		next, found := 0, false
		for _, j := range f.nodes {
			if !visited[j] && f.used(r, cur, j, 0) {
				next, found = j, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("tour %v stops after %d of %d nodes; %s: %w",
				tour, len(tour), len(f.nodes), f.describeCycles(r), ErrInconsistent)
		}
		visited[next] = true
		tour = append(tour, next)
		cur = next
	}
	if !f.used(r, cur, anchor, 0) {
		return nil, fmt.Errorf("tour %v does not return to %d; %s: %w", tour, anchor, f.describeCycles(r), ErrInconsistent)
	}
	tour = append(tour, anchor)
	return &Decoding{Routes: []Route{f.newRoute(0, tour)}}, nil
}

// decodeVehicles walks the route of each vehicle from its used depot edge until it
// is back at the depot. A vehicle without a used depot edge is unused.
func (f *Formulation) decodeVehicles(r *milp.Response) (*Decoding, error) {
	depot := f.inst.Depot
	d := &Decoding{}
	visitedBy := make(map[int]int)
	for _, k := range f.vehicles {
		cur, found := 0, false
		for _, j := range f.pool {
			if f.used(r, depot, j, k) {
				cur, found = j, true
				break
			}
		}
		if !found {
			d.UnusedVehicles = append(d.UnusedVehicles, k)
			continue
		}
		route := []int{depot}
		for cur != depot {
			if other, ok := visitedBy[cur]; ok {
				return nil, fmt.Errorf("customer %d is visited by vehicles %d and %d: %w", cur, other, k, ErrInconsistent)
			}
			visitedBy[cur] = k
			route = append(route, cur)
			next, ok := f.nextStop(r, cur, k, route)
			if !ok {
				return nil, fmt.Errorf("route %v of vehicle %d stops at customer %d: %w", route, k, cur, ErrInconsistent)
			}
			cur = next
		}
		route = append(route, depot)
		d.Routes = append(d.Routes, f.newRoute(k, route))
	}
	var missing []int
	for _, c := range f.pool {
		if _, ok := visitedBy[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("customers %v are not on any route; %s: %w", missing, f.describeCycles(r), ErrInconsistent)
	}
	return d, nil
}

// nextStop returns the depot if vehicle k drives from `cur` back to it, and
// otherwise the first node, in node order, not yet on `route` which k drives to.
func (f *Formulation) nextStop(r *milp.Response, cur, k int, route []int) (int, bool) {
	for _, j := range f.nodes {
		if j == cur || !f.used(r, cur, j, k) {
			continue
		}
		if j == f.inst.Depot || !slices.Contains(route, j) {
			return j, true
		}
	}
	return 0, false
}

// Cycles returns the strongly connected components of the graph of used edges,
// over all vehicles, that hold more than one node. Components and their nodes are
// sorted. A valid TSP solution has exactly one component covering every node.
func (f *Formulation) Cycles(r *milp.Response) [][]int {
	g := simple.NewDirectedGraph()
	for _, n := range f.nodes {
		g.AddNode(simple.Node(n))
	}
	for a := range f.x {
		if a.from != a.to && milp.SolutionBooleanValue(r, f.x[a]) && !g.HasEdgeFromTo(int64(a.from), int64(a.to)) {
			g.SetEdge(g.NewEdge(simple.Node(a.from), simple.Node(a.to)))
		}
	}
	var cycles [][]int
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		c := make([]int, len(scc))
		for i, n := range scc {
			c[i] = int(n.ID())
		}
		slices.Sort(c)
		cycles = append(cycles, c)
	}
	slices.SortFunc(cycles, func(a, b []int) int { return a[0] - b[0] })
	return cycles
}

func (f *Formulation) describeCycles(r *milp.Response) string {
	cycles := f.Cycles(r)
	if len(cycles) == 0 {
		return "used edges form no cycle"
	}
	parts := make([]string, len(cycles))
	for i, c := range cycles {
		parts[i] = fmt.Sprint(c)
	}
	return fmt.Sprintf("used edges form %d cycles %s", len(cycles), strings.Join(parts, " "))
}

// checkObjective verifies that the routes cost what the solver reported.
func checkObjective(d *Decoding, objective float64) error {
	cost := d.Cost()
	if math.Abs(cost-objective) > ObjectiveTolerance*math.Max(1, math.Abs(objective)) {
		return fmt.Errorf("routes cost %v but the objective is %v: %w", cost, objective, ErrInconsistent)
	}
	return nil
}
