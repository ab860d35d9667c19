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
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	log "github.com/golang/glog"
	"github.com/routemip/routemip/linear_solver/go/milp"
)

func approxEq(x, y float64) bool {
	return math.Abs(x-y) < 1e-6
}

func Example() {
	model := milp.NewModelBuilder("example")

	x := model.NewIntVar(0, 3).WithName("x")
	y := model.NewIntVar(0, 3).WithName("y")
	b := model.NewBoolVar().WithName("b")

	model.AddLessOrEqual(milp.NewLinearExpr().AddSum(x, y), milp.NewConstant(4))
	model.AddLessOrEqual(milp.NewLinearExpr().Add(x).AddTerm(b, -3), milp.NewConstant(0))
	model.Maximize(milp.NewLinearExpr().AddTerm(x, 3).AddTerm(y, 2).AddTerm(b, -1))

	m, err := model.Model()
	if err != nil {
		log.Fatalf("Building model returned with error %v", err)
	}
	res, err := SolveModel(m)
	if err != nil {
		log.Fatalf("Solver returned with unexpected err %v", err)
	}

	fmt.Println("Status:", res.Status)
	fmt.Println("Objective:", res.ObjectiveValue)
	fmt.Println("x:", milp.SolutionValue(res, x))
	fmt.Println("y:", milp.SolutionValue(res, y))
	fmt.Println("b:", milp.SolutionBooleanValue(res, b))
	// Output:
	// Status: OPTIMAL
	// Objective: 10
	// x: 3
	// y: 1
	// b: true
}

func TestSolve_IntVar(t *testing.T) {
	model := milp.NewModelBuilder("int")

	x := model.NewIntVar(1, 10)
	y := model.NewIntVar(1, 10)

	model.AddEquality(milp.NewLinearExpr().AddSum(x, y), milp.NewConstant(15))
	model.Maximize(milp.NewLinearExpr().AddTerm(x, 7).AddTerm(y, 1))

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	res, err := SolveModel(m)
	if err != nil {
		t.Fatalf("SolveModel returned with unexpected err: %v", err)
	}
	if res.Status != milp.StatusOptimal {
		t.Errorf("SolveModel() returned status = %v, want %v", res.Status, milp.StatusOptimal)
	}
	if !approxEq(res.ObjectiveValue, 75) {
		t.Errorf("SolveModel() returned objective = %v, want 75", res.ObjectiveValue)
	}
	gotX, gotY := milp.SolutionValue(res, x), milp.SolutionValue(res, y)
	if gotX != 10 || gotY != 5 {
		t.Errorf("SolutionValue() returned (x, y) = (%v, %v), want (10, 5)", gotX, gotY)
	}
}

func TestSolve_Assignment(t *testing.T) {
	// Assign three workers to three jobs. The cheapest assignment is (0,1), (1,0), (2,2).
	cost := [][]float64{
		{9, 2, 7},
		{3, 8, 9},
		{7, 6, 1},
	}
	model := milp.NewModelBuilder("assignment")
	x := make([][]milp.Var, 3)
	obj := milp.NewLinearExpr()
	for i := range x {
		x[i] = make([]milp.Var, 3)
		for j := range x[i] {
			x[i][j] = model.NewBoolVar().WithName(fmt.Sprintf("x_%d_%d", i, j))
			obj.AddTerm(x[i][j], cost[i][j])
		}
	}
	for i := 0; i < 3; i++ {
		row := milp.NewLinearExpr()
		col := milp.NewLinearExpr()
		for j := 0; j < 3; j++ {
			row.Add(x[i][j])
			col.Add(x[j][i])
		}
		model.AddEquality(row, milp.NewConstant(1))
		model.AddEquality(col, milp.NewConstant(1))
	}
	model.Minimize(obj)

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	res, err := SolveModel(m)
	if err != nil {
		t.Fatalf("SolveModel returned with unexpected err: %v", err)
	}
	if res.Status != milp.StatusOptimal || !approxEq(res.ObjectiveValue, 6) {
		t.Fatalf("SolveModel() = %v, %v, want OPTIMAL, 6", res.Status, res.ObjectiveValue)
	}
	var got [][2]int
	for i := range x {
		for j := range x[i] {
			if milp.SolutionBooleanValue(res, x[i][j]) {
				got = append(got, [2]int{i, j})
			}
		}
	}
	want := [][2]int{{0, 1}, {1, 0}, {2, 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("assignment mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_MixedInteger(t *testing.T) {
	// The continuous variable u is pushed to its smallest value compatible with the
	// ordering constraint u >= 2 + 3*b, and b is forced by b >= 1 - a.
	model := milp.NewModelBuilder("mixed")

	a := model.NewBoolVar()
	b := model.NewBoolVar()
	u := model.NewNumVar(1, 10)

	model.AddGreaterOrEqual(milp.NewLinearExpr().AddSum(a, b), milp.NewConstant(1))
	model.AddGreaterOrEqual(u, milp.NewLinearExpr().AddTerm(b, 3).AddConstant(2))
	model.Minimize(milp.NewLinearExpr().AddTerm(a, 4).AddTerm(b, 1).AddTerm(u, 0.5))

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	res, err := SolveModel(m)
	if err != nil {
		t.Fatalf("SolveModel returned with unexpected err: %v", err)
	}
	if res.Status != milp.StatusOptimal {
		t.Fatalf("SolveModel() returned status = %v, want OPTIMAL", res.Status)
	}
	// a=0, b=1 costs 1 + 0.5*5 = 3.5; a=1, b=0 costs 4 + 0.5*2 = 5.
	want := []float64{0, 1, 5}
	if diff := cmp.Diff(want, res.Values, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("Values mismatch (-want +got):\n%s", diff)
	}
	if !approxEq(res.ObjectiveValue, 3.5) {
		t.Errorf("ObjectiveValue = %v, want 3.5", res.ObjectiveValue)
	}
}

func TestSolve_OrderingInfeasible(t *testing.T) {
	// A 2-cycle between two ordered nodes cannot satisfy u_i - u_j + 3 x_ij <= 2 in both
	// directions, so forcing both arcs is infeasible.
	model := milp.NewModelBuilder("cycle")
	xij := model.NewBoolVar()
	xji := model.NewBoolVar()
	ui := model.NewNumVar(1, 3)
	uj := model.NewNumVar(1, 3)

	model.AddEquality(milp.NewLinearExpr().AddSum(xij, xji), milp.NewConstant(2))
	model.AddLessOrEqual(milp.NewLinearExpr().Add(ui).AddTerm(uj, -1).AddTerm(xij, 3), milp.NewConstant(2))
	model.AddLessOrEqual(milp.NewLinearExpr().Add(uj).AddTerm(ui, -1).AddTerm(xji, 3), milp.NewConstant(2))

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	res, err := SolveModel(m)
	if err != nil {
		t.Fatalf("SolveModel returned with unexpected err: %v", err)
	}
	if res.Status != milp.StatusInfeasible {
		t.Errorf("SolveModel() returned status = %v, want %v", res.Status, milp.StatusInfeasible)
	}
}

func TestSolve_Statuses(t *testing.T) {
	testCases := []struct {
		name  string
		build func(b *milp.Builder)
		want  milp.Status
	}{
		{
			name: "Infeasible",
			build: func(b *milp.Builder) {
				x := b.NewBoolVar()
				y := b.NewBoolVar()
				b.AddGreaterOrEqual(milp.NewLinearExpr().AddSum(x, y), milp.NewConstant(3))
			},
			want: milp.StatusInfeasible,
		},
		{
			name: "Unbounded",
			build: func(b *milp.Builder) {
				x := b.NewBoolVar()
				u := b.NewNumVar(0, milp.Infinity)
				b.AddGreaterOrEqual(u, x)
				b.Maximize(milp.NewLinearExpr().Add(u))
			},
			want: milp.StatusUnbounded,
		},
		{
			name: "InfiniteIntegerDomain",
			build: func(b *milp.Builder) {
				b.NewIntVar(0, milp.Infinity)
			},
			want: milp.StatusModelInvalid,
		},
		{
			name: "EmptyDomain",
			build: func(b *milp.Builder) {
				b.NewNumVar(3, 1)
			},
			want: milp.StatusModelInvalid,
		},
		{
			name:  "Empty",
			build: func(b *milp.Builder) {},
			want:  milp.StatusOptimal,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			b := milp.NewModelBuilder(test.name)
			test.build(b)
			m, err := b.Model()
			if err != nil {
				t.Fatalf("Model() returned with unexpected error %v", err)
			}
			res, err := SolveModel(m)
			if err != nil {
				t.Fatalf("SolveModel returned with unexpected err: %v", err)
			}
			if res.Status != test.want {
				t.Errorf("SolveModel() returned status = %v (%s), want %v", res.Status, res.StatusDetail, test.want)
			}
		})
	}
}

func TestSolve_FreeContinuousVariable(t *testing.T) {
	model := milp.NewModelBuilder("free")
	x := model.NewBoolVar()
	v := model.NewNumVar(-milp.Infinity, milp.Infinity)

	model.AddGreaterOrEqual(v, milp.NewLinearExpr().AddTerm(x, 2).AddConstant(-3))
	model.AddEquality(x, milp.NewConstant(1))
	model.Minimize(milp.NewLinearExpr().Add(v))

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	res, err := SolveModel(m)
	if err != nil {
		t.Fatalf("SolveModel returned with unexpected err: %v", err)
	}
	if res.Status != milp.StatusOptimal || !approxEq(milp.SolutionValue(res, v), -1) {
		t.Errorf("SolveModel() = %v, v = %v, want OPTIMAL, v = -1", res.Status, milp.SolutionValue(res, v))
	}
}

func TestSolve_Interrupted(t *testing.T) {
	model := milp.NewModelBuilder("interrupted")
	x := model.NewBoolVar()
	model.Minimize(milp.NewLinearExpr().Add(x))
	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}

	interrupt := make(chan struct{})
	close(interrupt)
	res, err := SolveModelInterruptibleWithParameters(m, DefaultParameters(), interrupt)
	if err != nil {
		t.Fatalf("SolveModelInterruptibleWithParameters returned with unexpected err: %v", err)
	}
	if res.Status != milp.StatusNotSolved {
		t.Errorf("SolveModelInterruptibleWithParameters() returned status = %v, want %v", res.Status, milp.StatusNotSolved)
	}
}

func TestSolver_ImplementsInterface(t *testing.T) {
	var s milp.Solver = New(DefaultParameters())
	model := milp.NewModelBuilder("iface")
	x := model.NewIntVar(2, 4)
	model.Minimize(x)
	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	res, err := s.Solve(m)
	if err != nil {
		t.Fatalf("Solve returned with unexpected err: %v", err)
	}
	if res.Status != milp.StatusOptimal || res.ObjectiveValue != 2 {
		t.Errorf("Solve() = %v, %v, want OPTIMAL, 2", res.Status, res.ObjectiveValue)
	}
}

func TestSolve_NilModel(t *testing.T) {
	if _, err := SolveModel(nil); err == nil {
		t.Errorf("SolveModel(nil) err = nil, want error")
	}
}
