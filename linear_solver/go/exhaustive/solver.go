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

// Package exhaustive is a reference milp.Solver for small models.
//
// It enumerates integer assignments depth first, pruning a branch as soon as a
// constraint can no longer be satisfied or the objective lower bound reaches the
// incumbent. Once every integer variable is fixed, the remaining continuous
// variables are optimized by the simplex method of gonum. The search is exact, so
// it is only practical for a few dozen binary variables.
package exhaustive

import (
	"fmt"
	"math"
	"time"

	log "github.com/golang/glog"
	"github.com/routemip/routemip/linear_solver/go/milp"
)

// maxDomainSize is the largest integer domain the solver accepts for a single variable.
const maxDomainSize = 1 << 16

// Parameters configures a solve.
type Parameters struct {
	// TimeLimit bounds the wall time of the search. Zero means no limit.
	TimeLimit time.Duration
	// Tolerance is the absolute feasibility tolerance on constraint activities.
	Tolerance float64
}

// DefaultParameters returns the parameters used by SolveModel.
func DefaultParameters() Parameters {
	return Parameters{Tolerance: 1e-6}
}

// Solver is a milp.Solver running the exhaustive search with fixed parameters.
type Solver struct {
	Params Parameters
}

// New returns a Solver using the given parameters.
func New(params Parameters) *Solver {
	return &Solver{Params: params}
}

// Solve implements milp.Solver.
func (s *Solver) Solve(m *milp.Model) (*milp.Response, error) {
	return SolveModelWithParameters(m, s.Params)
}

// SolveModel solves the model with the default parameters.
func SolveModel(m *milp.Model) (*milp.Response, error) {
	return SolveModelWithParameters(m, DefaultParameters())
}

// SolveModelWithParameters solves the model with the given parameters.
func SolveModelWithParameters(m *milp.Model, params Parameters) (*milp.Response, error) {
	return SolveModelInterruptibleWithParameters(m, params, nil)
}

// SolveModelInterruptibleWithParameters solves the model with the given parameters. The
// search stops when `interrupt` is closed; the response then carries the best solution
// found so far with status FEASIBLE, or NOT_SOLVED if there is none.
func SolveModelInterruptibleWithParameters(m *milp.Model, params Parameters, interrupt <-chan struct{}) (*milp.Response, error) {
	if m == nil {
		return nil, fmt.Errorf("exhaustive: nil model")
	}
	start := time.Now()
	if params.Tolerance <= 0 {
		params.Tolerance = DefaultParameters().Tolerance
	}
	if err := m.Validate(); err != nil {
		return &milp.Response{Status: milp.StatusModelInvalid, StatusDetail: err.Error()}, nil
	}
	s, err := newSearch(m, params, interrupt)
	if err != nil {
		return &milp.Response{Status: milp.StatusModelInvalid, StatusDetail: err.Error()}, nil
	}
	if params.TimeLimit > 0 {
		s.deadline = start.Add(params.TimeLimit)
	}

	if s.initiallyFeasible() {
		s.dfs(0)
	}
	res := s.response()
	res.WallTime = time.Since(start)
	log.V(1).Infof("exhaustive: model %q status %v after %d nodes, %d leaves, %d residual LPs (%d failed) in %v",
		m.Name, res.Status, s.nodes, s.leaves, s.residualSolves, s.residualFailures, res.WallTime)
	return res, nil
}

type term struct {
	row   int
	coeff float64
}

type row struct {
	lb, ub float64
	// minAct and maxAct bound the activity of the row given the current partial
	// assignment and the bounds of the free variables.
	minAct, maxAct float64
	hasContinuous  bool
}

// cover is a row whose free 0/1 variables must contribute to reach its lower bound.
type cover struct {
	row  int
	vars []int
}

type search struct {
	m      *milp.Model
	params Parameters

	interrupt <-chan struct{}
	deadline  time.Time
	stopped   bool

	// sign is 1 for minimization and -1 for maximization; cost holds sign * objective.
	sign float64
	cost []float64

	lo, hi    []float64
	intVars   []int
	contVars  []int
	termsOf   [][]term
	rows      []row
	depthOf   []int
	contRows  []int
	covers    []cover
	values    []float64
	fixedCost float64
	freeCost  float64

	found     bool
	best      []float64
	bestCost  float64
	unbounded bool

	nodes            int64
	leaves           int64
	residualSolves   int64
	residualFailures int64
}

func newSearch(m *milp.Model, params Parameters, interrupt <-chan struct{}) (*search, error) {
	n := len(m.Variables)
	s := &search{
		m:         m,
		params:    params,
		interrupt: interrupt,
		sign:      1,
		cost:      make([]float64, n),
		lo:        make([]float64, n),
		hi:        make([]float64, n),
		termsOf:   make([][]term, n),
		depthOf:   make([]int, n),
		rows:      make([]row, len(m.Constraints)),
		values:    make([]float64, n),
		bestCost:  math.Inf(1),
	}
	if m.Maximize {
		s.sign = -1
	}
	for i, v := range m.Variables {
		s.cost[i] = s.sign * v.ObjectiveCoefficient
		s.lo[i], s.hi[i] = v.LowerBound, v.UpperBound
		s.depthOf[i] = -1
		if !v.IsInteger {
			s.contVars = append(s.contVars, i)
			continue
		}
		if math.IsInf(v.LowerBound, 0) || math.IsInf(v.UpperBound, 0) {
			return nil, fmt.Errorf("exhaustive: integer variable %d (%q) has an infinite bound", i, v.Name)
		}
		s.lo[i], s.hi[i] = math.Ceil(v.LowerBound-params.Tolerance), math.Floor(v.UpperBound+params.Tolerance)
		if s.hi[i]-s.lo[i]+1 > maxDomainSize {
			return nil, fmt.Errorf("exhaustive: integer variable %d (%q) has more than %d values", i, v.Name, maxDomainSize)
		}
		s.depthOf[i] = len(s.intVars)
		s.intVars = append(s.intVars, i)
	}
	for i, v := range m.Variables {
		if v.IsInteger {
			continue
		}
		if math.IsInf(v.LowerBound, 1) || math.IsInf(v.UpperBound, -1) {
			return nil, fmt.Errorf("exhaustive: continuous variable %d (%q) has an empty domain", i, v.Name)
		}
	}

	for r, c := range m.Constraints {
		s.rows[r] = row{lb: c.LowerBound, ub: c.UpperBound}
		for k, ind := range c.VarIndex {
			a := c.Coefficient[k]
			lo, hi := termRange(a, s.lo[ind], s.hi[ind])
			s.rows[r].minAct += lo
			s.rows[r].maxAct += hi
			if m.Variables[ind].IsInteger {
				s.termsOf[ind] = append(s.termsOf[ind], term{row: r, coeff: a})
			} else {
				s.rows[r].hasContinuous = true
			}
		}
		if s.rows[r].hasContinuous {
			s.contRows = append(s.contRows, r)
		}
	}
	for i := range m.Variables {
		s.freeCost += minCost(s.cost[i], s.lo[i], s.hi[i])
	}
	s.covers = s.findCovers()
	return s, nil
}

// termRange returns the range of a*x for x in [lo, hi].
func termRange(a, lo, hi float64) (float64, float64) {
	if a == 0 {
		return 0, 0
	}
	x, y := a*lo, a*hi
	if x > y {
		x, y = y, x
	}
	return x, y
}

func minCost(c, lo, hi float64) float64 {
	if c == 0 {
		return 0
	}
	x, _ := termRange(c, lo, hi)
	return x
}

// findCovers selects pairwise disjoint rows that force at least one of their 0/1
// variables to be set and whose variables all have a non-negative cost. Each such row
// adds the cheapest of its free variables to the objective lower bound.
func (s *search) findCovers() []cover {
	used := make(map[int]bool)
	var covers []cover
	for r, c := range s.m.Constraints {
		if s.rows[r].hasContinuous || c.LowerBound <= s.params.Tolerance || len(c.VarIndex) == 0 {
			continue
		}
		ok := true
		var vars []int
		for k, ind := range c.VarIndex {
			i := int(ind)
			if c.Coefficient[k] <= 0 || s.lo[i] != 0 || s.hi[i] != 1 || s.cost[i] < 0 || used[i] {
				ok = false
				break
			}
			vars = append(vars, i)
		}
		if !ok {
			continue
		}
		for _, i := range vars {
			used[i] = true
		}
		covers = append(covers, cover{row: r, vars: vars})
	}
	return covers
}

func (s *search) feasible(r *row) bool {
	tol := s.params.Tolerance
	return r.minAct <= r.ub+tol && r.maxAct >= r.lb-tol
}

func (s *search) initiallyFeasible() bool {
	for r := range s.rows {
		if !s.feasible(&s.rows[r]) {
			return false
		}
	}
	return true
}

// assign fixes integer variable i to val and reports whether every row touching i can
// still be satisfied. The assignment is always fully applied and must be undone with
// unassign.
func (s *search) assign(i int, val float64) bool {
	ok := true
	for _, t := range s.termsOf[i] {
		lo, hi := termRange(t.coeff, s.lo[i], s.hi[i])
		r := &s.rows[t.row]
		r.minAct += t.coeff*val - lo
		r.maxAct += t.coeff*val - hi
		if !s.feasible(r) {
			ok = false
		}
	}
	s.values[i] = val
	s.fixedCost += s.cost[i] * val
	s.freeCost -= minCost(s.cost[i], s.lo[i], s.hi[i])
	return ok
}

func (s *search) unassign(i int, val float64) {
	for _, t := range s.termsOf[i] {
		lo, hi := termRange(t.coeff, s.lo[i], s.hi[i])
		r := &s.rows[t.row]
		r.minAct -= t.coeff*val - lo
		r.maxAct -= t.coeff*val - hi
	}
	s.fixedCost -= s.cost[i] * val
	s.freeCost += minCost(s.cost[i], s.lo[i], s.hi[i])
}

// lowerBound returns a lower bound on the cost of any completion of the current partial
// assignment, in which the integer variables before `depth` are fixed.
func (s *search) lowerBound(depth int) float64 {
	bound := s.fixedCost + s.freeCost
	for _, c := range s.covers {
		r := &s.rows[c.row]
		// With positive coefficients on 0/1 variables, minAct is the fixed activity.
		if r.minAct >= r.lb-s.params.Tolerance {
			continue
		}
		cheapest := math.Inf(1)
		for _, i := range c.vars {
			if s.depthOf[i] >= depth {
				cheapest = math.Min(cheapest, s.cost[i])
			}
		}
		if !math.IsInf(cheapest, 1) {
			bound += cheapest
		}
	}
	return bound
}

func (s *search) improves(c float64) bool {
	if !s.found {
		return true
	}
	return c < s.bestCost-s.params.Tolerance*math.Max(1, math.Abs(s.bestCost))
}

func (s *search) shouldStop() bool {
	if s.stopped {
		return true
	}
	if s.nodes&1023 != 0 {
		return false
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.stopped = true
		return true
	}
	if s.interrupt != nil {
		select {
		case <-s.interrupt:
			s.stopped = true
			return true
		default:
		}
	}
	return false
}

func (s *search) dfs(depth int) {
	if s.unbounded || s.shouldStop() {
		return
	}
	s.nodes++
	if depth == len(s.intVars) {
		s.leaf()
		return
	}
	i := s.intVars[depth]
	values := make([]float64, 0, int(s.hi[i]-s.lo[i])+1)
	if s.cost[i] >= 0 {
		for val := s.lo[i]; val <= s.hi[i]; val++ {
			values = append(values, val)
		}
	} else {
		for val := s.hi[i]; val >= s.lo[i]; val-- {
			values = append(values, val)
		}
	}
	for _, val := range values {
		if s.assign(i, val) && s.improves(s.lowerBound(depth+1)) {
			s.dfs(depth + 1)
		}
		s.unassign(i, val)
		if s.stopped || s.unbounded {
			return
		}
	}
}

func (s *search) leaf() {
	s.leaves++
	total := s.fixedCost
	if len(s.contVars) > 0 {
		cost, status := s.solveResidual()
		switch status {
		case residualInfeasible:
			return
		case residualUnbounded:
			s.unbounded = true
			return
		case residualFailed:
			s.residualFailures++
			return
		}
		total += cost
	}
	if !s.improves(total) {
		return
	}
	if v := s.m.Violation(s.values); v > 1e3*s.params.Tolerance {
		log.Warningf("exhaustive: discarding leaf of model %q violating the model by %v", s.m.Name, v)
		s.residualFailures++
		return
	}
	s.found = true
	s.bestCost = total
	s.best = append(s.best[:0], s.values...)
}

func (s *search) response() *milp.Response {
	switch {
	case s.unbounded:
		return &milp.Response{Status: milp.StatusUnbounded}
	case s.found:
		status := milp.StatusOptimal
		if s.stopped {
			status = milp.StatusFeasible
		}
		values := append([]float64(nil), s.best...)
		return &milp.Response{
			Status:         status,
			ObjectiveValue: s.m.Objective(values),
			Values:         values,
		}
	case s.stopped:
		return &milp.Response{Status: milp.StatusNotSolved, StatusDetail: "search stopped before any solution was found"}
	case s.residualFailures > 0:
		return &milp.Response{Status: milp.StatusAbnormal, StatusDetail: fmt.Sprintf("%d residual linear programs failed", s.residualFailures)}
	}
	return &milp.Response{Status: milp.StatusInfeasible}
}
