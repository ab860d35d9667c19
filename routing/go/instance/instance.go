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

// Package instance reads routing instances from TOML files.
//
// A tour is described by its nodes, a dense cost matrix and the anchor node:
//
//	name = "three_cities"
//	strategy = "mtz"
//	nodes = [1, 2, 3]
//	anchor = 1
//	costs = [
//	  [0, 10, 15],
//	  [10, 0, 35],
//	  [15, 35, 0],
//	]
//
// A vehicle routing instance adds a fleet section. The depot is a new node whose
// costs either mirror an existing node or are listed in node order:
//
//	[fleet]
//	depot = 0
//	vehicles = 2
//	mirror = 1
//	mirror_cost = 0
package instance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/routemip/routemip/routing/go/costs"
	"github.com/routemip/routemip/routing/go/formulation"
)

// ErrInvalid is wrapped by all errors caused by a malformed instance file.
var ErrInvalid = errors.New("invalid instance file")

// File is the content of an instance file.
type File struct {
	Name                 string      `toml:"name"`
	Strategy             string      `toml:"strategy"`
	MaxSubsetConstraints int         `toml:"max_subset_constraints"`
	Nodes                []int       `toml:"nodes"`
	Costs                [][]float64 `toml:"costs"`
	// Forbidden is the sentinel cost of self pairs; zero derives one.
	Forbidden float64 `toml:"forbidden"`
	// Anchor is the node a tour starts from. It is ignored when Fleet is set.
	Anchor int    `toml:"anchor"`
	Fleet  *Fleet `toml:"fleet"`
}

// Fleet turns a tour into a vehicle routing instance.
type Fleet struct {
	Depot    int `toml:"depot"`
	Vehicles int `toml:"vehicles"`
	// Mirror names the node whose costs the depot copies, with MirrorCost between
	// the two.
	Mirror     *int    `toml:"mirror"`
	MirrorCost float64 `toml:"mirror_cost"`
	// Out and In list the costs from and to the depot, in node order. They are
	// used when Mirror is not set.
	Out []float64 `toml:"out"`
	In  []float64 `toml:"in"`
}

func decoded(md toml.MetaData, err error, f *File, source string) (*File, error) {
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %v: %w", source, err, ErrInvalid)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s has unknown keys %s: %w", source, strings.Join(keys, ", "), ErrInvalid)
	}
	return f, nil
}

// Parse decodes an instance from TOML text.
func Parse(data string) (*File, error) {
	f := &File{}
	md, err := toml.Decode(data, f)
	return decoded(md, err, f, "instance")
}

// Load decodes the instance file at `path`.
func Load(path string) (*File, error) {
	f := &File{}
	md, err := toml.DecodeFile(path, f)
	return decoded(md, err, f, path)
}

// Instance returns the routing instance and the formulation options described by
// the file.
func (f *File) Instance() (formulation.Instance, formulation.Options, error) {
	var inst formulation.Instance
	opts := formulation.Options{MaxSubsetConstraints: f.MaxSubsetConstraints}
	if f.Strategy != "" {
		s, err := formulation.ParseStrategy(f.Strategy)
		if err != nil {
			return inst, opts, fmt.Errorf("%s: %v: %w", f.Name, err, ErrInvalid)
		}
		opts.Strategy = s
	}
	m, err := costs.FromDense(f.Nodes, f.Costs, costs.Options{Forbidden: f.Forbidden})
	if err != nil {
		return inst, opts, fmt.Errorf("%s: %w", f.Name, err)
	}
	if f.Fleet == nil {
		return formulation.Instance{Costs: m, Depot: f.Anchor}, opts, nil
	}

	if f.Fleet.Vehicles < 1 {
		return inst, opts, fmt.Errorf("%s: fleet has %d vehicles: %w", f.Name, f.Fleet.Vehicles, ErrInvalid)
	}
	var dc costs.DepotCosts
	switch {
	case f.Fleet.Mirror != nil:
		if len(f.Fleet.Out) > 0 || len(f.Fleet.In) > 0 {
			return inst, opts, fmt.Errorf("%s: fleet sets both mirror and explicit depot costs: %w", f.Name, ErrInvalid)
		}
		dc, err = costs.MirrorNode(m, *f.Fleet.Mirror, f.Fleet.MirrorCost)
		if err != nil {
			return inst, opts, fmt.Errorf("%s: %w", f.Name, err)
		}
	default:
		if len(f.Fleet.Out) != len(f.Nodes) || len(f.Fleet.In) != len(f.Nodes) {
			return inst, opts, fmt.Errorf("%s: fleet needs %d out and in depot costs, got %d and %d: %w",
				f.Name, len(f.Nodes), len(f.Fleet.Out), len(f.Fleet.In), ErrInvalid)
		}
		dc = costs.DepotCosts{Out: make(map[int]float64), In: make(map[int]float64)}
		for i, n := range f.Nodes {
			dc.Out[n] = f.Fleet.Out[i]
			dc.In[n] = f.Fleet.In[i]
		}
	}
	withDepot, err := costs.WithDepot(m, f.Fleet.Depot, dc)
	if err != nil {
		return inst, opts, fmt.Errorf("%s: %w", f.Name, err)
	}
	return formulation.Instance{Costs: withDepot, Depot: f.Fleet.Depot, Fleet: true, Vehicles: f.Fleet.Vehicles}, opts, nil
}
