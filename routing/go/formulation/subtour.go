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
	"strconv"
	"strings"

	"github.com/routemip/routemip/linear_solver/go/milp"
	"gonum.org/v1/gonum/stat/combin"
)

func subsetName(subset []int) string {
	var sb strings.Builder
	sb.WriteString("subtour")
	for _, n := range subset {
		sb.WriteString("_")
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String()
}

// addSubsetConstraints adds, for every subset S of the pool with 2 <= |S| <= p-1
// (TSP) or 2 <= |S| <= p (VRP), the constraint that at most |S|-1 edges have both
// ends in S. Subsets are enumerated by size, then in lexicographic order of pool
// positions.
func (f *Formulation) addSubsetConstraints() {
	p := len(f.pool)
	maxSize := p - 1
	if f.inst.IsVRP() {
		maxSize = p
	}
	for size := 2; size <= maxSize; size++ {
		gen := combin.NewCombinationGenerator(p, size)
		idx := make([]int, size)
		subset := make([]int, size)
		for gen.Next() {
			gen.Combination(idx)
			for s, i := range idx {
				subset[s] = f.pool[i]
			}
			inner := milp.NewLinearExpr()
			for _, k := range f.vehicles {
				for _, i := range subset {
					for _, j := range subset {
						if i != j {
							inner.Add(f.x[arc{i, j, k}])
						}
					}
				}
			}
			f.builder.AddLessOrEqual(inner, milp.NewConstant(float64(size-1))).WithName(subsetName(subset))
			f.subsets++
		}
	}
}

// addOrderingConstraints adds a position u_i in [1, n] per node, pins the position
// of the depot to 1 and adds u_i - u_j + n*x_i_j <= n-1 for every ordered pair of
// distinct nodes other than the depot. Along any used edge between two such nodes
// the position increases by at least 1, so every cycle has to pass the depot.
func (f *Formulation) addOrderingConstraints() {
	n := float64(len(f.nodes))
	anchor := f.inst.Depot
	f.u = make(map[int]milp.Var, len(f.nodes))
	for _, i := range f.nodes {
		f.u[i] = f.builder.NewNumVar(1, n).WithName(fmt.Sprintf("u_%d", i))
	}
	f.builder.AddEquality(f.u[anchor], milp.NewConstant(1)).WithName(fmt.Sprintf("fix_u%d", anchor))
	for _, i := range f.nodes {
		if i == anchor {
			continue
		}
		for _, j := range f.nodes {
			if j == anchor || j == i {
				continue
			}
			order := milp.NewLinearExpr().
				Add(f.u[i]).
				AddTerm(f.u[j], -1).
				AddTerm(f.x[arc{i, j, 0}], n)
			f.builder.AddLessOrEqual(order, milp.NewConstant(n-1)).WithName(fmt.Sprintf("mtz_%d_%d", i, j))
		}
	}
}
