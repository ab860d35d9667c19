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

// The tsp_dfj_mip command solves a six city traveling salesman problem as a MIP
// whose subtours are eliminated by one constraint per subset of cities.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/golang/glog"
	"github.com/routemip/routemip/linear_solver/go/exhaustive"
	"github.com/routemip/routemip/linear_solver/go/milp"
	"github.com/routemip/routemip/routing/go/costs"
	"github.com/routemip/routemip/routing/go/formulation"
	"github.com/routemip/routemip/routing/go/instance"
	"github.com/routemip/routemip/routing/go/report"
)

var (
	instanceFile = flag.String("instance", "", "TOML instance file replacing the built-in cities.")
	timeLimit    = flag.Duration("time_limit", 2*time.Minute, "Time limit of the solve, 0 for none.")
	exportLP     = flag.String("export_lp", "", "If set, writes the model in LP format to this file.")
	format       = flag.String("format", "text", "Output format, text or json.")
)

// The cost of traveling between two cities. M forbids staying in place.
const bigM = 10000

var cityCosts = [][]float64{
	{bigM, 10, 15, 20, 10, 25},
	{10, bigM, 35, 25, 17, 30},
	{15, 35, bigM, 30, 28, 18},
	{20, 25, 30, bigM, 22, 14},
	{10, 17, 28, 22, bigM, 16},
	{25, 30, 18, 14, 16, bigM},
}

func sixCities() (formulation.Instance, formulation.Options, error) {
	m, err := costs.FromDense([]int{1, 2, 3, 4, 5, 6}, cityCosts, costs.Options{Forbidden: bigM})
	if err != nil {
		return formulation.Instance{}, formulation.Options{}, err
	}
	return formulation.Instance{Costs: m, Depot: 1}, formulation.Options{Strategy: formulation.DFJ}, nil
}

func tspDfjMip() error {
	inst, opts, err := sixCities()
	if *instanceFile != "" {
		var f *instance.File
		if f, err = instance.Load(*instanceFile); err == nil {
			inst, opts, err = f.Instance()
		}
		opts.Strategy = formulation.DFJ
	}
	if err != nil {
		return fmt.Errorf("failed to read the instance: %w", err)
	}

	f, err := formulation.Build(inst, opts)
	if err != nil {
		return fmt.Errorf("failed to build the model: %w", err)
	}
	if *exportLP != "" {
		lp, err := milp.ExportModelAsLpFormat(f.Model())
		if err != nil {
			return fmt.Errorf("failed to export the model: %w", err)
		}
		if err := os.WriteFile(*exportLP, []byte(lp), 0o644); err != nil {
			return err
		}
	}

	params := exhaustive.DefaultParameters()
	params.TimeLimit = *timeLimit
	res, err := f.Solve(exhaustive.New(params))
	switch {
	case errors.Is(err, formulation.ErrInfeasible), errors.Is(err, formulation.ErrUnknownOutcome):
		log.Warningf("No optimal tour found: %v", err)
	case err != nil:
		return fmt.Errorf("failed to solve the model: %w", err)
	}
	return report.Write(os.Stdout, res, *format)
}

func main() {
	flag.Parse()
	if err := tspDfjMip(); err != nil {
		log.Exitf("tspDfjMip returned with error: %v", err)
	}
}
