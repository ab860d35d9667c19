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

// Package report renders the result of a routing solve for people and for
// programs.
package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/routemip/routemip/routing/go/formulation"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Visited returns the sorted customers covered by the routes of `r`, and whether
// they are all the customers of the instance.
func Visited(r *formulation.Result) ([]int, bool) {
	seen := make(map[int]bool)
	for _, route := range r.Routes {
		if len(route.Nodes) < 2 {
			continue
		}
		for _, n := range route.Nodes[1 : len(route.Nodes)-1] {
			seen[n] = true
		}
		// The depot of a tour is also a customer.
		if route.Vehicle == 0 {
			seen[route.Nodes[0]] = true
		}
	}
	var visited []int
	for n := range seen {
		visited = append(visited, n)
	}
	slices.Sort(visited)
	all := len(r.Customers) > 0
	for _, c := range r.Customers {
		if !seen[c] {
			all = false
		}
	}
	return visited, all
}

func joinNodes(nodes []int) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " -> ")
}

// Text writes a human readable report of `r` to `w`.
func Text(w io.Writer, r *formulation.Result) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Model %s: %d variables, %d constraints", r.Name, r.NumVariables, r.NumConstraints)
	if r.Strategy == formulation.DFJ {
		fmt.Fprintf(&sb, " (%d subset constraints)", r.NumSubsetConstraints)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Status: %v\n", r.Status)
	if !r.Status.HasSolution() {
		_, err := io.WriteString(w, sb.String())
		return err
	}
	fmt.Fprintf(&sb, "Objective: %v\n", r.Objective)

	if r.Vehicles == 0 {
		for _, route := range r.Routes {
			fmt.Fprintf(&sb, "Tour: %s\n", joinNodes(route.Nodes))
			if len(r.Positions) > 0 {
				// Only pairs of non-anchor nodes are ordered, so u is not a rank.
				sb.WriteString("MTZ ordering values (increasing after the anchor, not ranks):\n")
				for _, n := range route.Nodes[:len(route.Nodes)-1] {
					fmt.Fprintf(&sb, "  City %d: u = %.2f\n", n, r.Positions[n])
				}
			}
			sb.WriteString("Detailed route:\n")
			for _, leg := range route.Legs {
				fmt.Fprintf(&sb, "  City %d -> City %d: cost = %v\n", leg.From, leg.To, leg.Cost)
			}
		}
	} else {
		byVehicle := make(map[int]formulation.Route, len(r.Routes))
		for _, route := range r.Routes {
			byVehicle[route.Vehicle] = route
		}
		for k := 1; k <= r.Vehicles; k++ {
			fmt.Fprintf(&sb, "Vehicle %d route:\n", k)
			route, ok := byVehicle[k]
			if !ok {
				sb.WriteString("  (Vehicle not used)\n")
				continue
			}
			fmt.Fprintf(&sb, "  %s\n", joinNodes(route.Nodes))
			fmt.Fprintf(&sb, "  Route cost: %v\n", route.Cost)
		}
		visited, all := Visited(r)
		fmt.Fprintf(&sb, "All customers visited: %v\n", all)
		if all {
			fmt.Fprintf(&sb, "Visited customers: %v\n", visited)
		}
	}
	fmt.Fprintf(&sb, "Total cost: %v\n", r.TotalCost())
	_, err := io.WriteString(w, sb.String())
	return err
}

func intList(ns []int) []any {
	l := make([]any, len(ns))
	for i, n := range ns {
		l[i] = n
	}
	return l
}

// Proto returns `r` as a struct, for programs consuming results.
func Proto(r *formulation.Result) (*structpb.Struct, error) {
	fields := map[string]any{
		"name":                 r.Name,
		"strategy":             r.Strategy.String(),
		"status":               r.Status.String(),
		"numVariables":         r.NumVariables,
		"numConstraints":       r.NumConstraints,
		"numSubsetConstraints": r.NumSubsetConstraints,
		"wallTimeSeconds":      r.WallTime.Seconds(),
	}
	if r.Status.HasSolution() {
		fields["objective"] = r.Objective
		routes := make([]any, len(r.Routes))
		for i, route := range r.Routes {
			legs := make([]any, len(route.Legs))
			for j, leg := range route.Legs {
				legs[j] = map[string]any{"from": leg.From, "to": leg.To, "cost": leg.Cost}
			}
			routes[i] = map[string]any{
				"vehicle": route.Vehicle,
				"nodes":   intList(route.Nodes),
				"legs":    legs,
				"cost":    route.Cost,
			}
		}
		fields["routes"] = routes
		fields["totalCost"] = r.TotalCost()
		_, all := Visited(r)
		fields["allCustomersVisited"] = all
	}
	if r.Vehicles > 0 {
		fields["vehicles"] = r.Vehicles
		fields["unusedVehicles"] = intList(r.UnusedVehicles)
	}
	if len(r.Positions) > 0 {
		positions := make(map[string]any, len(r.Positions))
		for n, p := range r.Positions {
			positions[strconv.Itoa(n)] = p
		}
		fields["positions"] = positions
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("converting result of model %q: %w", r.Name, err)
	}
	return s, nil
}

// Write renders `r` to `w` in the given format, "text" or "json".
func Write(w io.Writer, r *formulation.Result, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		return Text(w, r)
	case "json":
		b, err := JSON(r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}
	return fmt.Errorf("unknown report format %q", format)
}

// JSON returns `r` as indented JSON.
func JSON(r *formulation.Result) ([]byte, error) {
	s, err := Proto(r)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
}
