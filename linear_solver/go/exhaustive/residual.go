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

package exhaustive

import (
	"errors"
	"math"

	log "github.com/golang/glog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// simplexTolerance is the reduced cost under which lp.Simplex declares optimality.
const simplexTolerance = 1e-10

type residualStatus int

const (
	residualOptimal residualStatus = iota
	residualInfeasible
	residualUnbounded
	residualFailed
)

// column is one non-negative variable of the standard form program.
type column struct {
	sign float64
	col  int
}

// substitution writes a continuous variable as offset + sum(sign * y[col]).
type substitution struct {
	offset float64
	cols   []column
}

// stdRow accumulates `sum(coeffs[col] * y[col]) + slack * s = rhs`.
type stdRow struct {
	coeffs map[int]float64
	slack  float64
	rhs    float64
}

// solveResidual minimizes the continuous part of the objective with every integer
// variable fixed to its current value, and stores the continuous values in s.values.
//
// The residual program is brought to the standard form `min c*y, A*y = b, y >= 0`
// expected by lp.Simplex: each variable is shifted onto its finite bound (or split in
// two when free) and each finite side of each row receives its own slack column, which
// keeps A at full row rank.
func (s *search) solveResidual() (float64, residualStatus) {
	s.residualSolves++
	tol := s.params.Tolerance

	subs := make(map[int]substitution, len(s.contVars))
	nCols := 0
	var rows []stdRow
	newCol := func() int {
		nCols++
		return nCols - 1
	}
	for _, i := range s.contVars {
		lo, hi := s.lo[i], s.hi[i]
		switch {
		case lo == hi:
			subs[i] = substitution{offset: lo}
		case !math.IsInf(lo, -1):
			c := newCol()
			subs[i] = substitution{offset: lo, cols: []column{{sign: 1, col: c}}}
			if !math.IsInf(hi, 1) {
				rows = append(rows, stdRow{coeffs: map[int]float64{c: 1}, slack: 1, rhs: hi - lo})
			}
		case !math.IsInf(hi, 1):
			subs[i] = substitution{offset: hi, cols: []column{{sign: -1, col: newCol()}}}
		default:
			subs[i] = substitution{cols: []column{{sign: 1, col: newCol()}, {sign: -1, col: newCol()}}}
		}
	}

	for _, r := range s.contRows {
		ct := s.m.Constraints[r]
		coeffs := make(map[int]float64)
		var constant float64
		for k, ind := range ct.VarIndex {
			a := ct.Coefficient[k]
			sub, ok := subs[int(ind)]
			if !ok {
				constant += a * s.values[ind]
				continue
			}
			constant += a * sub.offset
			for _, c := range sub.cols {
				coeffs[c.col] += a * c.sign
			}
		}
		if len(coeffs) == 0 {
			if constant < ct.LowerBound-tol || constant > ct.UpperBound+tol {
				return 0, residualInfeasible
			}
			continue
		}
		if !math.IsInf(ct.UpperBound, 1) {
			rows = append(rows, stdRow{coeffs: coeffs, slack: 1, rhs: ct.UpperBound - constant})
		}
		if !math.IsInf(ct.LowerBound, -1) {
			rows = append(rows, stdRow{coeffs: coeffs, slack: -1, rhs: ct.LowerBound - constant})
		}
	}

	costs := make([]float64, nCols)
	var constCost float64
	for _, i := range s.contVars {
		sub := subs[i]
		constCost += s.cost[i] * sub.offset
		for _, c := range sub.cols {
			costs[c.col] += s.cost[i] * c.sign
		}
	}

	// Columns without any row entry sit at 0 unless they improve the objective forever.
	used := make([]bool, nCols)
	for _, r := range rows {
		for c := range r.coeffs {
			used[c] = true
		}
	}
	colOf := make([]int, nCols)
	nUsed := 0
	for c := 0; c < nCols; c++ {
		if !used[c] {
			if costs[c] < 0 {
				return 0, residualUnbounded
			}
			colOf[c] = -1
			continue
		}
		colOf[c] = nUsed
		nUsed++
	}

	y := make([]float64, nCols)
	optF := 0.0
	if len(rows) > 0 {
		nRows := len(rows)
		width := nUsed + nRows
		a := mat.NewDense(nRows, width, nil)
		b := make([]float64, nRows)
		c := make([]float64, width)
		for col := 0; col < nCols; col++ {
			if colOf[col] >= 0 {
				c[colOf[col]] = costs[col]
			}
		}
		for k, r := range rows {
			flip := 1.0
			if r.rhs < 0 {
				flip = -1
			}
			for col, v := range r.coeffs {
				a.Set(k, colOf[col], flip*v)
			}
			a.Set(k, nUsed+k, flip*r.slack)
			b[k] = flip * r.rhs
		}
		f, x, err := lp.Simplex(c, a, b, simplexTolerance, nil)
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return 0, residualInfeasible
		case errors.Is(err, lp.ErrUnbounded):
			return 0, residualUnbounded
		case err != nil:
			log.Warningf("exhaustive: residual linear program of model %q failed: %v", s.m.Name, err)
			return 0, residualFailed
		}
		optF = f
		for col := 0; col < nCols; col++ {
			if colOf[col] >= 0 {
				y[col] = x[colOf[col]]
			}
		}
	}

	for _, i := range s.contVars {
		sub := subs[i]
		v := sub.offset
		for _, c := range sub.cols {
			v += c.sign * y[c.col]
		}
		s.values[i] = v
	}
	return constCost + optF, residualOptimal
}
