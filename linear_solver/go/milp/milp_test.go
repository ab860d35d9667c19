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
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestVar_Name(t *testing.T) {
	testCases := []struct {
		name    string
		varName func() string
		want    string
	}{
		{
			name: "IntVarName",
			varName: func() string {
				model := NewModelBuilder("m")
				return model.NewIntVar(0, 10).WithName("iv1").Name()
			},
			want: "iv1",
		},
		{
			name: "BoolVarName",
			varName: func() string {
				model := NewModelBuilder("m")
				return model.NewBoolVar().WithName("bv1").Name()
			},
			want: "bv1",
		},
		{
			name: "NumVarName",
			varName: func() string {
				model := NewModelBuilder("m")
				return model.NewNumVar(1, 6).WithName("u_1").Name()
			},
			want: "u_1",
		},
		{
			name: "Unnamed",
			varName: func() string {
				model := NewModelBuilder("m")
				return model.NewNumVar(1, 6).Name()
			},
			want: "",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			got := test.varName()
			if got != test.want {
				t.Errorf("test.varName() = %#v, want %#v", got, test.want)
			}
		})
	}
}

func TestVar_Domain(t *testing.T) {
	model := NewModelBuilder("m")

	b := model.NewBoolVar()
	u := model.NewNumVar(1, 6)

	if b.LowerBound() != 0 || b.UpperBound() != 1 || !b.IsInteger() {
		t.Errorf("NewBoolVar() = [%v, %v] integer %v, want [0, 1] integer true", b.LowerBound(), b.UpperBound(), b.IsInteger())
	}
	if u.LowerBound() != 1 || u.UpperBound() != 6 || u.IsInteger() {
		t.Errorf("NewNumVar(1, 6) = [%v, %v] integer %v, want [1, 6] integer false", u.LowerBound(), u.UpperBound(), u.IsInteger())
	}
}

func TestBuilder_LookupVar(t *testing.T) {
	model := NewModelBuilder("m")
	x := model.NewBoolVar().WithName("x_1_2")

	got, ok := model.LookupVar("x_1_2")
	if !ok {
		t.Fatalf("LookupVar(x_1_2) not found")
	}
	if got.Index() != x.Index() {
		t.Errorf("LookupVar(x_1_2).Index() = %v, want %v", got.Index(), x.Index())
	}
	if _, ok := model.LookupVar("x_2_1"); ok {
		t.Errorf("LookupVar(x_2_1) found, want not found")
	}
}

func TestBuilder_DuplicateNameFailsModel(t *testing.T) {
	testCases := []struct {
		name  string
		build func(b *Builder)
	}{
		{
			name: "Variable",
			build: func(b *Builder) {
				b.NewBoolVar().WithName("x")
				b.NewBoolVar().WithName("x")
			},
		},
		{
			name: "Constraint",
			build: func(b *Builder) {
				x := b.NewBoolVar()
				b.AddLinearConstraint(x, 0, 1).WithName("ct")
				b.AddLinearConstraint(x, 0, 1).WithName("ct")
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			b := NewModelBuilder("m")
			test.build(b)
			if _, err := b.Model(); !errors.Is(err, ErrDuplicateName) {
				t.Errorf("Model() err = %v, want %v", err, ErrDuplicateName)
			}
		})
	}
}

func TestBuilder_MixedModels(t *testing.T) {
	b1 := NewModelBuilder("one")
	b2 := NewModelBuilder("two")
	x := b1.NewBoolVar()
	y := b2.NewBoolVar()

	b1.AddLessOrEqual(NewLinearExpr().AddSum(x, y), NewConstant(1))

	if _, err := b1.Model(); !errors.Is(err, ErrMixedModels) {
		t.Errorf("Model() err = %v, want %v", err, ErrMixedModels)
	}
}

func TestBuilder_AddLinearConstraint(t *testing.T) {
	model := NewModelBuilder("m")
	x := model.NewBoolVar()
	y := model.NewBoolVar()
	u := model.NewNumVar(1, 4)

	testCases := []struct {
		name string
		ct   func() Constraint
		want *LinearConstraint
	}{
		{
			name: "Range",
			ct: func() Constraint {
				return model.AddLinearConstraint(NewLinearExpr().AddSum(x, y), 0, 1)
			},
			want: &LinearConstraint{VarIndex: []VarIndex{0, 1}, Coefficient: []float64{1, 1}, LowerBound: 0, UpperBound: 1},
		},
		{
			name: "EqualityMovesOffset",
			ct: func() Constraint {
				return model.AddEquality(NewLinearExpr().Add(u).AddConstant(2), NewConstant(3))
			},
			want: &LinearConstraint{VarIndex: []VarIndex{2}, Coefficient: []float64{1}, LowerBound: 1, UpperBound: 1},
		},
		{
			name: "MergesDuplicateTerms",
			ct: func() Constraint {
				return model.AddLessOrEqual(NewLinearExpr().AddTerm(x, 2).AddTerm(y, 1).AddTerm(x, -2), NewConstant(1))
			},
			want: &LinearConstraint{VarIndex: []VarIndex{1}, Coefficient: []float64{1}, LowerBound: math.Inf(-1), UpperBound: 1},
		},
		{
			name: "MtzShape",
			ct: func() Constraint {
				return model.AddLessOrEqual(NewLinearExpr().Add(u).AddTerm(x, 4), NewConstant(3))
			},
			want: &LinearConstraint{VarIndex: []VarIndex{2, 0}, Coefficient: []float64{1, 4}, LowerBound: math.Inf(-1), UpperBound: 3},
		},
		{
			name: "GreaterOrEqual",
			ct: func() Constraint {
				return model.AddGreaterOrEqual(x, y)
			},
			want: &LinearConstraint{VarIndex: []VarIndex{0, 1}, Coefficient: []float64{1, -1}, LowerBound: 0, UpperBound: math.Inf(1)},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ct := test.ct()
			m, err := model.Model()
			if err != nil {
				t.Fatalf("Model() returned with unexpected error %v", err)
			}
			got := m.Constraints[ct.Index()]
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("constraint mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConstraint_Coefficient(t *testing.T) {
	model := NewModelBuilder("m")
	x := model.NewBoolVar()
	y := model.NewBoolVar()
	z := model.NewBoolVar()

	ct := model.AddLinearConstraint(NewLinearExpr().AddTerm(x, 3).AddTerm(y, -1), 0, 2).WithName("ct")

	if got := ct.Coefficient(x); got != 3 {
		t.Errorf("Coefficient(x) = %v, want 3", got)
	}
	if got := ct.Coefficient(y); got != -1 {
		t.Errorf("Coefficient(y) = %v, want -1", got)
	}
	if got := ct.Coefficient(z); got != 0 {
		t.Errorf("Coefficient(z) = %v, want 0", got)
	}
	if ct.LowerBound() != 0 || ct.UpperBound() != 2 {
		t.Errorf("bounds = [%v, %v], want [0, 2]", ct.LowerBound(), ct.UpperBound())
	}
	if got, ok := model.LookupConstraint("ct"); !ok || got.Index() != ct.Index() {
		t.Errorf("LookupConstraint(ct) = %v, %v, want %v, true", got.Index(), ok, ct.Index())
	}
}

func TestBuilder_Objective(t *testing.T) {
	model := NewModelBuilder("m")
	x := model.NewBoolVar()
	y := model.NewBoolVar()

	model.Maximize(NewLinearExpr().AddTerm(x, 5).AddTerm(y, 2).AddTerm(x, 1).AddConstant(3))
	model.Minimize(NewLinearExpr().AddWeightedSum([]LinearArgument{x, y}, []float64{10, 15}))

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	if m.Maximize {
		t.Errorf("Maximize = true, want false after Minimize")
	}
	got := []float64{m.Variables[0].ObjectiveCoefficient, m.Variables[1].ObjectiveCoefficient, m.ObjectiveOffset}
	want := []float64{10, 15, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("objective mismatch (-want +got):\n%s", diff)
	}
	if obj := m.Objective([]float64{1, 1}); obj != 25 {
		t.Errorf("Objective([1 1]) = %v, want 25", obj)
	}
}

func TestSolutionValue(t *testing.T) {
	model := NewModelBuilder("m")
	x := model.NewBoolVar()
	u := model.NewNumVar(1, 4)

	r := &Response{Status: StatusOptimal, Values: []float64{0.9999, 2.5}}
	if !SolutionBooleanValue(r, x) {
		t.Errorf("SolutionBooleanValue(x) = false, want true")
	}
	if got := SolutionValue(r, NewLinearExpr().AddTerm(u, 2).AddConstant(1)); got != 6 {
		t.Errorf("SolutionValue(2u+1) = %v, want 6", got)
	}
}

func TestModel_Validate(t *testing.T) {
	testCases := []struct {
		name  string
		model *Model
	}{
		{
			name:  "EmptyDomain",
			model: &Model{Variables: []*Variable{{LowerBound: 2, UpperBound: 1}}},
		},
		{
			name:  "NaNBound",
			model: &Model{Variables: []*Variable{{LowerBound: math.NaN(), UpperBound: 1}}},
		},
		{
			name: "IndexOutOfRange",
			model: &Model{
				Variables:   []*Variable{{UpperBound: 1}},
				Constraints: []*LinearConstraint{{VarIndex: []VarIndex{1}, Coefficient: []float64{1}, UpperBound: 1}},
			},
		},
		{
			name: "RepeatedVariable",
			model: &Model{
				Variables:   []*Variable{{UpperBound: 1}},
				Constraints: []*LinearConstraint{{VarIndex: []VarIndex{0, 0}, Coefficient: []float64{1, 1}, UpperBound: 1}},
			},
		},
		{
			name: "InfiniteCoefficient",
			model: &Model{
				Variables:   []*Variable{{UpperBound: 1}},
				Constraints: []*LinearConstraint{{VarIndex: []VarIndex{0}, Coefficient: []float64{math.Inf(1)}, UpperBound: 1}},
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			if err := test.model.Validate(); !errors.Is(err, ErrInvalidModel) {
				t.Errorf("Validate() = %v, want %v", err, ErrInvalidModel)
			}
		})
	}
}

func TestExportModelAsLpFormat(t *testing.T) {
	model := NewModelBuilder("tsp")
	x := model.NewBoolVar().WithName("x_1_2")
	y := model.NewBoolVar().WithName("x_2_1")
	u := model.NewNumVar(1, 3).WithName("u_2")
	model.AddEquality(NewLinearExpr().AddSum(x, y), NewConstant(1)).WithName("pair")
	model.AddLinearConstraint(NewLinearExpr().Add(u).AddTerm(x, -3), 0, 2).WithName("range")
	model.Minimize(NewLinearExpr().AddTerm(x, 10).AddTerm(y, 12.5))

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	got, err := ExportModelAsLpFormat(m)
	if err != nil {
		t.Fatalf("ExportModelAsLpFormat() returned with unexpected error %v", err)
	}
	want := strings.Join([]string{
		`\ tsp`,
		"Minimize",
		" obj: 10 x_1_2 + 12.5 x_2_1",
		"Subject To",
		" pair: x_1_2 + x_2_1 = 1",
		" range_lb: u_2 - 3 x_1_2 >= 0",
		" range_ub: u_2 - 3 x_1_2 <= 2",
		"Bounds",
		" 1 <= u_2 <= 3",
		"Binaries",
		" x_1_2",
		" x_2_1",
		"End",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExportModelAsLpFormat() mismatch (-want +got):\n%s", diff)
	}
}

func TestExportModelAsLpFormat_InvalidModel(t *testing.T) {
	m := &Model{Variables: []*Variable{{LowerBound: 1, UpperBound: 0}}}
	if _, err := ExportModelAsLpFormat(m); !errors.Is(err, ErrInvalidModel) {
		t.Errorf("ExportModelAsLpFormat() err = %v, want %v", err, ErrInvalidModel)
	}
}

func TestStatus_String(t *testing.T) {
	if got := StatusOptimal.String(); got != "OPTIMAL" {
		t.Errorf("StatusOptimal.String() = %q, want OPTIMAL", got)
	}
	if got := Status(42).String(); got != "UNKNOWN" {
		t.Errorf("Status(42).String() = %q, want UNKNOWN", got)
	}
	if StatusInfeasible.HasSolution() || !StatusFeasible.HasSolution() {
		t.Errorf("HasSolution() mismatch for INFEASIBLE/FEASIBLE")
	}
}
