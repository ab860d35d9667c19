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

// The vrp_dfj_mip command routes two vehicles from a depot through six customers.
// The depot shares the travel costs of customer 1. By default the two are bigM
// apart, so customer 1 is never served directly from the depot.
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
	instanceFile = flag.String("instance", "", "TOML instance file with a fleet section, replacing the built-in customers.")
	vehicles     = flag.Int("vehicles", 2, "Number of vehicles of the built-in instance.")
	depotRefCost = flag.Float64("depot_ref_cost", bigM, "Cost between the depot and customer 1 in the built-in instance, 0 to co-locate them.")
	timeLimit    = flag.Duration("time_limit", 2*time.Minute, "Time limit of the solve, 0 for none.")
	exportLP     = flag.String("export_lp", "", "If set, writes the model in LP format to this file.")
	format       = flag.String("format", "text", "Output format, text or json.")
)

const (
	bigM  = 10000
	depot = 0
)

var customerCosts = [][]float64{
	{bigM, 10, 15, 20, 10, 25},
	{10, bigM, 35, 25, 17, 30},
	{15, 35, bigM, 30, 28, 18},
	{20, 25, 30, bigM, 22, 14},
	{10, 17, 28, 22, bigM, 16},
	{25, 30, 18, 14, 16, bigM},
}

func sixCustomers() (formulation.Instance, error) {
	// The depot costs may include bigM, so the sentinel is derived above them.
	base, err := costs.FromDense([]int{1, 2, 3, 4, 5, 6}, customerCosts, costs.Options{})
	if err != nil {
		return formulation.Instance{}, err
	}
	dc, err := costs.MirrorNode(base, 1, *depotRefCost)
	if err != nil {
		return formulation.Instance{}, err
	}
	m, err := costs.WithDepot(base, depot, dc)
	if err != nil {
		return formulation.Instance{}, err
	}
	return formulation.Instance{Costs: m, Depot: depot, Fleet: true, Vehicles: *vehicles}, nil
}

func vrpDfjMip() error {
	inst, err := sixCustomers()
	var opts formulation.Options
	if *instanceFile != "" {
		var f *instance.File
		if f, err = instance.Load(*instanceFile); err == nil {
			inst, opts, err = f.Instance()
		}
		if err == nil && !inst.IsVRP() {
			err = fmt.Errorf("%s has no fleet section", *instanceFile)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to read the instance: %w", err)
	}
	opts.Strategy = formulation.DFJ

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
		log.Warningf("No optimal routes found: %v", err)
	case err != nil:
		return fmt.Errorf("failed to solve the model: %w", err)
	}
	return report.Write(os.Stdout, res, *format)
}

func main() {
	flag.Parse()
	if err := vrpDfjMip(); err != nil {
		log.Exitf("vrpDfjMip returned with error: %v", err)
	}
}
