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
	"fmt"
	"math"
	"strconv"
	"strings"
)

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func varName(m *Model, i VarIndex) string {
	if n := m.Variables[i].Name; n != "" {
		return n
	}
	return fmt.Sprintf("x%d", i)
}

func writeTerms(sb *strings.Builder, m *Model, inds []VarIndex, coeffs []float64) {
	if len(inds) == 0 {
		sb.WriteString(" 0")
		return
	}
	for k, ind := range inds {
		c := coeffs[k]
		switch {
		case k == 0 && c < 0:
			sb.WriteString(" -")
		case k > 0 && c < 0:
			sb.WriteString(" - ")
		case k > 0:
			sb.WriteString(" + ")
		default:
			sb.WriteString(" ")
		}
		if a := math.Abs(c); a != 1 {
			sb.WriteString(formatNumber(a))
			sb.WriteString(" ")
		}
		sb.WriteString(varName(m, ind))
	}
}

// ExportModelAsLpFormat outputs the model as a string in CPLEX LP format.
//
// Ranged constraints are written as two rows suffixed with `_lb` and `_ub`. Unnamed
// variables are written as `x<index>` and unnamed constraints as `c<index>`.
func ExportModelAsLpFormat(m *Model) (string, error) {
	if err := m.Validate(); err != nil {
		return "", fmt.Errorf("cannot export an invalid model as LP format: %w", err)
	}
	var sb strings.Builder
	if m.Name != "" {
		fmt.Fprintf(&sb, "\\ %s\n", m.Name)
	}
	if m.Maximize {
		sb.WriteString("Maximize\n")
	} else {
		sb.WriteString("Minimize\n")
	}
	var objInds []VarIndex
	var objCoeffs []float64
	for i, v := range m.Variables {
		if v.ObjectiveCoefficient != 0 {
			objInds = append(objInds, VarIndex(i))
			objCoeffs = append(objCoeffs, v.ObjectiveCoefficient)
		}
	}
	sb.WriteString(" obj:")
	writeTerms(&sb, m, objInds, objCoeffs)
	if m.ObjectiveOffset != 0 {
		fmt.Fprintf(&sb, " + %s", formatNumber(m.ObjectiveOffset))
	}
	sb.WriteString("\n")

	sb.WriteString("Subject To\n")
	for i, c := range m.Constraints {
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("c%d", i)
		}
		row := func(suffix, sense string, rhs float64) {
			fmt.Fprintf(&sb, " %s%s:", name, suffix)
			writeTerms(&sb, m, c.VarIndex, c.Coefficient)
			fmt.Fprintf(&sb, " %s %s\n", sense, formatNumber(rhs))
		}
		lbFinite := !math.IsInf(c.LowerBound, -1)
		ubFinite := !math.IsInf(c.UpperBound, 1)
		switch {
		case lbFinite && ubFinite && c.LowerBound == c.UpperBound:
			row("", "=", c.LowerBound)
		case lbFinite && ubFinite:
			row("_lb", ">=", c.LowerBound)
			row("_ub", "<=", c.UpperBound)
		case lbFinite:
			row("", ">=", c.LowerBound)
		case ubFinite:
			row("", "<=", c.UpperBound)
		}
	}

	sb.WriteString("Bounds\n")
	var generals, binaries []string
	for i, v := range m.Variables {
		name := varName(m, VarIndex(i))
		if v.IsInteger {
			if v.LowerBound == 0 && v.UpperBound == 1 {
				binaries = append(binaries, name)
				continue
			}
			generals = append(generals, name)
		}
		switch {
		case math.IsInf(v.LowerBound, -1) && math.IsInf(v.UpperBound, 1):
			fmt.Fprintf(&sb, " %s free\n", name)
		case v.LowerBound == v.UpperBound:
			fmt.Fprintf(&sb, " %s = %s\n", name, formatNumber(v.LowerBound))
		default:
			fmt.Fprintf(&sb, " %s <= %s <= %s\n", formatNumber(v.LowerBound), name, formatNumber(v.UpperBound))
		}
	}
	if len(generals) > 0 {
		sb.WriteString("Generals\n")
		for _, g := range generals {
			fmt.Fprintf(&sb, " %s\n", g)
		}
	}
	if len(binaries) > 0 {
		sb.WriteString("Binaries\n")
		for _, b := range binaries {
			fmt.Fprintf(&sb, " %s\n", b)
		}
	}
	sb.WriteString("End\n")
	return sb.String(), nil
}
