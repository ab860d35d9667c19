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

// Package milp offers a user-friendly API to build mixed-integer linear programs.
//
// The `Builder` struct wraps a `Model` and provides helper methods for adding
// variables, linear constraints and a linear objective.
// The `Var` and `Constraint` structs are references to specific entries of the
// model.
// The `LinearExpr` struct provides helper methods for creating constraints and
// the objective from expressions with many variables and coefficients.
//
// The built `Model` is plain data. It is handed to a `Solver`, which returns a
// `Response` holding a status and, when a solution exists, a value for every
// variable.
package milp

import (
	"errors"
	"fmt"
	"math"

	log "github.com/golang/glog"
)

var (
	// ErrMixedModels holds the error when elements added to a model are different.
	ErrMixedModels = errors.New("elements are not part of the same model")
	// ErrDuplicateName holds the error when two variables or two constraints share a name.
	ErrDuplicateName = errors.New("name already exists in the model")
)

type (
	// VarIndex is the index of a variable in the model.
	VarIndex int32
	// ConstrIndex is the index of a constraint in the model.
	ConstrIndex int32
)

// Infinity is the bound used for unbounded sides of variables and constraints.
var Infinity = math.Inf(1)

// LinearArgument provides an interface for Var and LinearExpr.
type LinearArgument interface {
	addToLinearExpr(e *LinearExpr, c float64)
	evaluateSolutionValue(r *Response) float64
}

// LinearExpr is a container for a linear expression.
type LinearExpr struct {
	varCoeffs []varCoeff
	offset    float64
}

type varCoeff struct {
	ind   VarIndex
	coeff float64
	b     *Builder
}

// NewLinearExpr creates a new empty LinearExpr.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// NewConstant creates and returns a LinearExpr containing the constant `c`.
func NewConstant(c float64) *LinearExpr {
	return &LinearExpr{offset: c}
}

// Add adds the linear argument term to the LinearExpr and returns itself.
func (l *LinearExpr) Add(la LinearArgument) *LinearExpr {
	l.AddTerm(la, 1)
	return l
}

// AddConstant adds the constant to the LinearExpr and returns itself.
func (l *LinearExpr) AddConstant(c float64) *LinearExpr {
	l.offset += c
	return l
}

// AddTerm adds the linear argument term with the given coefficient to the LinearExpr and returns itself.
func (l *LinearExpr) AddTerm(la LinearArgument, coeff float64) *LinearExpr {
	la.addToLinearExpr(l, coeff)
	return l
}

// AddSum adds the sum of the linear arguments to the LinearExpr and returns itself.
func (l *LinearExpr) AddSum(las ...LinearArgument) *LinearExpr {
	for _, la := range las {
		l.Add(la)
	}
	return l
}

// AddWeightedSum adds the linear arguments with the corresponding coefficients to the LinearExpr
// and returns itself.
func (l *LinearExpr) AddWeightedSum(las []LinearArgument, coeffs []float64) *LinearExpr {
	if len(coeffs) != len(las) {
		log.Fatalf("las and coeffs must be the same length: %v != %v", len(las), len(coeffs))
	}
	for i, la := range las {
		l.AddTerm(la, coeffs[i])
	}
	return l
}

// Offset returns the constant part of the expression.
func (l *LinearExpr) Offset() float64 {
	return l.offset
}

// NumTerms returns the number of (not merged) terms in the expression.
func (l *LinearExpr) NumTerms() int {
	return len(l.varCoeffs)
}

func (l *LinearExpr) addToLinearExpr(e *LinearExpr, c float64) {
	for _, vc := range l.varCoeffs {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: vc.ind, coeff: vc.coeff * c, b: vc.b})
	}
	e.offset += l.offset * c
}

func (l *LinearExpr) evaluateSolutionValue(r *Response) float64 {
	result := l.offset

	for _, vc := range l.varCoeffs {
		result += r.Values[vc.ind] * vc.coeff
	}

	return result
}

// merged returns the terms of the expression with duplicate variables summed and zero
// coefficients dropped, in first-appearance order.
func (l *LinearExpr) merged() ([]VarIndex, []float64) {
	pos := make(map[VarIndex]int, len(l.varCoeffs))
	var inds []VarIndex
	var coeffs []float64
	for _, vc := range l.varCoeffs {
		if p, ok := pos[vc.ind]; ok {
			coeffs[p] += vc.coeff
			continue
		}
		pos[vc.ind] = len(inds)
		inds = append(inds, vc.ind)
		coeffs = append(coeffs, vc.coeff)
	}
	outInds := inds[:0]
	outCoeffs := coeffs[:0]
	for i, c := range coeffs {
		if c == 0 {
			continue
		}
		outInds = append(outInds, inds[i])
		outCoeffs = append(outCoeffs, c)
	}
	return outInds, outCoeffs
}

// Var is a reference to a variable in the model.
type Var struct {
	ind VarIndex
	b   *Builder
}

// Name returns the name of the variable.
func (v Var) Name() string {
	return v.b.model.Variables[v.ind].Name
}

// Index returns the index of the variable.
func (v Var) Index() VarIndex {
	return v.ind
}

// LowerBound returns the lower bound of the variable.
func (v Var) LowerBound() float64 {
	return v.b.model.Variables[v.ind].LowerBound
}

// UpperBound returns the upper bound of the variable.
func (v Var) UpperBound() float64 {
	return v.b.model.Variables[v.ind].UpperBound
}

// IsInteger returns whether the variable is restricted to integral values.
func (v Var) IsInteger() bool {
	return v.b.model.Variables[v.ind].IsInteger
}

// WithName sets the name of the variable. Names must be unique within a model; a
// duplicate is recorded as the builder error.
func (v Var) WithName(s string) Var {
	if s == "" {
		return v
	}
	if other, ok := v.b.varNames[s]; ok && other != v.ind {
		v.b.setErrorf("variable name %q: %w", s, ErrDuplicateName)
		return v
	}
	delete(v.b.varNames, v.b.model.Variables[v.ind].Name)
	v.b.model.Variables[v.ind].Name = s
	v.b.varNames[s] = v.ind
	return v
}

func (v Var) addToLinearExpr(e *LinearExpr, c float64) {
	e.varCoeffs = append(e.varCoeffs, varCoeff{ind: v.ind, coeff: c, b: v.b})
}

func (v Var) evaluateSolutionValue(r *Response) float64 {
	return r.Values[v.ind]
}

// Constraint is a reference to a linear constraint in the model.
type Constraint struct {
	ind ConstrIndex
	b   *Builder
}

// WithName sets the name of the constraint. Names must be unique within a model; a
// duplicate is recorded as the builder error.
func (c Constraint) WithName(s string) Constraint {
	if s == "" {
		return c
	}
	if other, ok := c.b.ctNames[s]; ok && other != c.ind {
		c.b.setErrorf("constraint name %q: %w", s, ErrDuplicateName)
		return c
	}
	delete(c.b.ctNames, c.b.model.Constraints[c.ind].Name)
	c.b.model.Constraints[c.ind].Name = s
	c.b.ctNames[s] = c.ind
	return c
}

// Name returns the name of the constraint.
func (c Constraint) Name() string {
	return c.b.model.Constraints[c.ind].Name
}

// Index returns the index of the constraint.
func (c Constraint) Index() ConstrIndex {
	return c.ind
}

// LowerBound returns the lower bound of the constraint.
func (c Constraint) LowerBound() float64 {
	return c.b.model.Constraints[c.ind].LowerBound
}

// UpperBound returns the upper bound of the constraint.
func (c Constraint) UpperBound() float64 {
	return c.b.model.Constraints[c.ind].UpperBound
}

// Coefficient returns the coefficient of `v` in the constraint, 0 if absent.
func (c Constraint) Coefficient(v Var) float64 {
	ct := c.b.model.Constraints[c.ind]
	for i, ind := range ct.VarIndex {
		if ind == v.ind {
			return ct.Coefficient[i]
		}
	}
	return 0
}

// Builder provides a wrapper for building a Model.
type Builder struct {
	model    *Model
	varNames map[string]VarIndex
	ctNames  map[string]ConstrIndex
	// The first and only the first error is reported in Model.
	err error
}

// NewModelBuilder creates and returns a new model Builder.
func NewModelBuilder(name string) *Builder {
	return &Builder{
		model:    &Model{Name: name},
		varNames: make(map[string]VarIndex),
		ctNames:  make(map[string]ConstrIndex),
	}
}

func (b *Builder) setErrorf(format string, a ...any) {
	err := fmt.Errorf(format, a...)
	log.Errorf("%v; use `-log_backtrace_at` flag to get the error stack", err)
	if b.err == nil {
		b.err = err
	}
}

// checkSameModelAndSetErrorf returns true if `b` and `b2` point to the same Builder.
// If false, an error with the error message `errString` is set on `b` if `b.err`
// is nil.
func (b *Builder) checkSameModelAndSetErrorf(b2 *Builder, format string, a ...any) bool {
	if b == b2 {
		return true
	}
	var args = make([]any, len(a)+1)
	copy(args, a)
	args[len(a)] = ErrMixedModels
	b.setErrorf(format+": %w", args...)
	return false
}

func (b *Builder) newVar(lb, ub float64, integer bool) Var {
	v := Var{b: b, ind: VarIndex(len(b.model.Variables))}
	b.model.Variables = append(b.model.Variables, &Variable{
		LowerBound: lb,
		UpperBound: ub,
		IsInteger:  integer,
	})
	return v
}

// NewIntVar creates a new integer variable with domain [lb, ub].
func (b *Builder) NewIntVar(lb, ub float64) Var {
	return b.newVar(lb, ub, true)
}

// NewBoolVar creates a new 0/1 variable.
func (b *Builder) NewBoolVar() Var {
	return b.newVar(0, 1, true)
}

// NewNumVar creates a new continuous variable with domain [lb, ub].
func (b *Builder) NewNumVar(lb, ub float64) Var {
	return b.newVar(lb, ub, false)
}

// LookupVar returns the variable with the given name.
func (b *Builder) LookupVar(name string) (Var, bool) {
	ind, ok := b.varNames[name]
	if !ok {
		return Var{}, false
	}
	return Var{b: b, ind: ind}, true
}

// LookupConstraint returns the constraint with the given name.
func (b *Builder) LookupConstraint(name string) (Constraint, bool) {
	ind, ok := b.ctNames[name]
	if !ok {
		return Constraint{}, false
	}
	return Constraint{b: b, ind: ind}, true
}

// NumVariables returns the number of variables created so far.
func (b *Builder) NumVariables() int {
	return len(b.model.Variables)
}

// NumConstraints returns the number of constraints created so far.
func (b *Builder) NumConstraints() int {
	return len(b.model.Constraints)
}

// addLinearConstraint adds a linear constraint that enforces `lb <= le <= ub`. The constant
// offset of `le` is moved to the bounds.
func (b *Builder) addLinearConstraint(le *LinearExpr, lb, ub float64) Constraint {
	for _, vc := range le.varCoeffs {
		b.checkSameModelAndSetErrorf(vc.b, "variable %v added to constraint %v", vc.ind, len(b.model.Constraints))
	}
	inds, coeffs := le.merged()
	ct := &LinearConstraint{
		VarIndex:    inds,
		Coefficient: coeffs,
		LowerBound:  lb - le.offset,
		UpperBound:  ub - le.offset,
	}
	i := ConstrIndex(len(b.model.Constraints))
	b.model.Constraints = append(b.model.Constraints, ct)

	return Constraint{b: b, ind: i}
}

// AddLinearConstraint adds the linear constraint `lb <= expr <= ub`. Use -Infinity or
// Infinity for a one-sided constraint.
func (b *Builder) AddLinearConstraint(expr LinearArgument, lb, ub float64) Constraint {
	linExpr := NewLinearExpr().Add(expr)
	return b.addLinearConstraint(linExpr, lb, ub)
}

// AddEquality adds the linear constraint `lhs == rhs`.
func (b *Builder) AddEquality(lhs LinearArgument, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)

	return b.addLinearConstraint(diff, 0, 0)
}

// AddLessOrEqual adds the linear constraint `lhs <= rhs`.
func (b *Builder) AddLessOrEqual(lhs LinearArgument, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)

	return b.addLinearConstraint(diff, -Infinity, 0)
}

// AddGreaterOrEqual adds the linear constraint `lhs >= rhs`.
func (b *Builder) AddGreaterOrEqual(lhs LinearArgument, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)

	return b.addLinearConstraint(diff, 0, Infinity)
}

func (b *Builder) setObjective(obj LinearArgument, maximize bool) {
	o := NewLinearExpr().Add(obj)
	for _, vc := range o.varCoeffs {
		b.checkSameModelAndSetErrorf(vc.b, "variable %v added to the objective", vc.ind)
	}

	for _, v := range b.model.Variables {
		v.ObjectiveCoefficient = 0
	}
	inds, coeffs := o.merged()
	for i, ind := range inds {
		if int(ind) < len(b.model.Variables) {
			b.model.Variables[ind].ObjectiveCoefficient = coeffs[i]
		}
	}
	b.model.ObjectiveOffset = o.offset
	b.model.Maximize = maximize
}

// Minimize sets a linear minimization objective.
func (b *Builder) Minimize(obj LinearArgument) {
	b.setObjective(obj, false)
}

// Maximize sets a linear maximization objective.
func (b *Builder) Maximize(obj LinearArgument) {
	b.setObjective(obj, true)
}

// Model returns the built model. The model returned is a pointer to the model in Builder,
// and if modified, future calls to the Builder API can fail or result in an invalid model.
//
// Model returns an error when invalid parameters have been used during model building (e.g.
// passing variables from other builders or reusing a name).
func (b *Builder) Model() (*Model, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.model, nil
}
