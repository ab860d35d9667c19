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

// Package costs holds the travel costs of a routing instance.
//
// A `Matrix` answers the cost of every ordered pair of distinct nodes. Self pairs
// map to a forbidden sentinel which exceeds the sum of all finite costs, so that no
// optimal solution ever uses them. Vehicle routing instances extend a city table
// with a depot through `WithDepot`, whose depot costs are always supplied by the
// caller.
package costs

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ErrInvalid is wrapped by all errors caused by malformed cost data.
var ErrInvalid = errors.New("invalid cost data")

// Arc is an ordered pair of nodes.
type Arc struct {
	From, To int
}

func (a Arc) String() string {
	return fmt.Sprintf("%d->%d", a.From, a.To)
}

// Options configures the construction of a Matrix.
type Options struct {
	// Forbidden is the sentinel cost of self pairs. It must exceed the sum of all
	// finite costs. Zero derives the smallest power of ten above that sum.
	Forbidden float64
}

// Matrix is an immutable table of travel costs over a list of node ids.
type Matrix struct {
	nodes     []int
	index     map[int]int
	cost      [][]float64
	forbidden float64
	// explicit records whether the sentinel was supplied by the caller.
	explicit bool
}

func newMatrix(nodes []int) (*Matrix, error) {
	if len(nodes) < 2 {
		return nil, fmt.Errorf("%d nodes, need at least 2: %w", len(nodes), ErrInvalid)
	}
	m := &Matrix{
		nodes: slices.Clone(nodes),
		index: make(map[int]int, len(nodes)),
		cost:  make([][]float64, len(nodes)),
	}
	for i, n := range nodes {
		if _, ok := m.index[n]; ok {
			return nil, fmt.Errorf("duplicate node %d: %w", n, ErrInvalid)
		}
		m.index[n] = i
		m.cost[i] = make([]float64, len(nodes))
	}
	return m, nil
}

func checkCost(a Arc, c float64) error {
	if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
		return fmt.Errorf("cost %v of arc %v is not a non-negative finite number: %w", c, a, ErrInvalid)
	}
	return nil
}

// New returns the matrix over `nodes` whose costs are read from `entries`. Every
// ordered pair of distinct nodes must have an entry. Entries of self pairs are
// ignored.
func New(nodes []int, entries map[Arc]float64, opts Options) (*Matrix, error) {
	m, err := newMatrix(nodes)
	if err != nil {
		return nil, err
	}
	for a := range entries {
		_, okFrom := m.index[a.From]
		_, okTo := m.index[a.To]
		if !okFrom || !okTo {
			return nil, fmt.Errorf("arc %v references an unknown node: %w", a, ErrInvalid)
		}
	}
	var missing []string
	for i, from := range m.nodes {
		for j, to := range m.nodes {
			if i == j {
				continue
			}
			a := Arc{from, to}
			c, ok := entries[a]
			if !ok {
				missing = append(missing, a.String())
				continue
			}
			if err := checkCost(a, c); err != nil {
				return nil, err
			}
			m.cost[i][j] = c
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing cost for arcs %s: %w", strings.Join(missing, ", "), ErrInvalid)
	}
	if err := m.setForbidden(opts.Forbidden); err != nil {
		return nil, err
	}
	return m, nil
}

// FromDense returns the matrix over `nodes` where rows[i][j] is the cost from
// nodes[i] to nodes[j]. The diagonal is ignored.
func FromDense(nodes []int, rows [][]float64, opts Options) (*Matrix, error) {
	m, err := newMatrix(nodes)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(nodes) {
		return nil, fmt.Errorf("%d rows for %d nodes: %w", len(rows), len(nodes), ErrInvalid)
	}
	for i, row := range rows {
		if len(row) != len(nodes) {
			return nil, fmt.Errorf("row %d has %d entries for %d nodes: %w", i, len(row), len(nodes), ErrInvalid)
		}
		for j, c := range row {
			if i == j {
				continue
			}
			if err := checkCost(Arc{nodes[i], nodes[j]}, c); err != nil {
				return nil, err
			}
			m.cost[i][j] = c
		}
	}
	if err := m.setForbidden(opts.Forbidden); err != nil {
		return nil, err
	}
	return m, nil
}

// DeriveForbidden returns the smallest power of ten not below `sum` + 1.
func DeriveForbidden(sum float64) float64 {
	f := 1.0
	for f < sum+1 {
		f *= 10
	}
	return f
}

func (m *Matrix) setForbidden(f float64) error {
	sum := m.FiniteSum()
	if f == 0 {
		m.forbidden = DeriveForbidden(sum)
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= sum {
		return fmt.Errorf("forbidden cost %v does not exceed the sum %v of finite costs: %w", f, sum, ErrInvalid)
	}
	m.forbidden = f
	m.explicit = true
	return nil
}

// Nodes returns a copy of the node ids, in construction order.
func (m *Matrix) Nodes() []int {
	return slices.Clone(m.nodes)
}

// Len returns the number of nodes.
func (m *Matrix) Len() int {
	return len(m.nodes)
}

// Has returns whether `node` is part of the matrix.
func (m *Matrix) Has(node int) bool {
	_, ok := m.index[node]
	return ok
}

// Cost returns the cost of travelling from `from` to `to`, or the forbidden
// sentinel if they are equal. It panics if either node is unknown.
func (m *Matrix) Cost(from, to int) float64 {
	i, ok := m.index[from]
	if !ok {
		panic(fmt.Sprintf("costs: unknown node %d", from))
	}
	j, ok := m.index[to]
	if !ok {
		panic(fmt.Sprintf("costs: unknown node %d", to))
	}
	if i == j {
		return m.forbidden
	}
	return m.cost[i][j]
}

// Forbidden returns the sentinel cost of self pairs.
func (m *Matrix) Forbidden() float64 {
	return m.forbidden
}

// FiniteSum returns the sum of the costs of all ordered pairs of distinct nodes.
func (m *Matrix) FiniteSum() float64 {
	var sum float64
	for i, row := range m.cost {
		for j, c := range row {
			if i != j {
				sum += c
			}
		}
	}
	return sum
}

// Symmetric returns whether cost(i, j) == cost(j, i) for all pairs.
func (m *Matrix) Symmetric() bool {
	for i := range m.cost {
		for j := i + 1; j < len(m.cost); j++ {
			if m.cost[i][j] != m.cost[j][i] {
				return false
			}
		}
	}
	return true
}

// Dense returns the costs as rows in node order, with the sentinel on the diagonal.
func (m *Matrix) Dense() [][]float64 {
	rows := make([][]float64, len(m.nodes))
	for i := range rows {
		rows[i] = slices.Clone(m.cost[i])
		rows[i][i] = m.forbidden
	}
	return rows
}

// DepotCosts holds the costs between a depot and every node of a base matrix.
type DepotCosts struct {
	// Out maps each node to the cost of travelling from the depot to it.
	Out map[int]float64
	// In maps each node to the cost of travelling from it to the depot.
	In map[int]float64
}

// WithDepot returns a matrix over `depot` followed by the nodes of `base`, using the
// given depot costs. Every base node needs both an Out and an In cost.
//
// If the sentinel of `base` was supplied explicitly it is kept, and must still
// exceed the grown finite sum; otherwise a new sentinel is derived.
func WithDepot(base *Matrix, depot int, dc DepotCosts) (*Matrix, error) {
	if base.Has(depot) {
		return nil, fmt.Errorf("depot %d is already a node: %w", depot, ErrInvalid)
	}
	m, err := newMatrix(append([]int{depot}, base.nodes...))
	if err != nil {
		return nil, err
	}
	for i := range base.cost {
		copy(m.cost[i+1][1:], base.cost[i])
	}
	var missing []string
	for i, n := range base.nodes {
		out, okOut := dc.Out[n]
		in, okIn := dc.In[n]
		if !okOut {
			missing = append(missing, Arc{depot, n}.String())
		}
		if !okIn {
			missing = append(missing, Arc{n, depot}.String())
		}
		if !okOut || !okIn {
			continue
		}
		if err := checkCost(Arc{depot, n}, out); err != nil {
			return nil, err
		}
		if err := checkCost(Arc{n, depot}, in); err != nil {
			return nil, err
		}
		m.cost[0][i+1] = out
		m.cost[i+1][0] = in
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing depot cost for arcs %s: %w", strings.Join(missing, ", "), ErrInvalid)
	}
	var f float64
	if base.explicit {
		f = base.forbidden
	}
	if err := m.setForbidden(f); err != nil {
		return nil, err
	}
	return m, nil
}

// MirrorNode returns depot costs placing the depot next to node `ref`: the depot
// travels to and from every other node at the cost `ref` does, and the depot and
// `ref` are `refCost` apart in both directions.
func MirrorNode(base *Matrix, ref int, refCost float64) (DepotCosts, error) {
	if !base.Has(ref) {
		return DepotCosts{}, fmt.Errorf("reference node %d is not a node: %w", ref, ErrInvalid)
	}
	if err := checkCost(Arc{ref, ref}, refCost); err != nil {
		return DepotCosts{}, err
	}
	dc := DepotCosts{
		Out: make(map[int]float64, base.Len()),
		In:  make(map[int]float64, base.Len()),
	}
	for _, n := range base.nodes {
		if n == ref {
			dc.Out[n] = refCost
			dc.In[n] = refCost
			continue
		}
		dc.Out[n] = base.Cost(ref, n)
		dc.In[n] = base.Cost(n, ref)
	}
	return dc, nil
}
