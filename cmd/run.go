/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Alexsimulation/fvhyper/euler"
	"github.com/Alexsimulation/fvhyper/input"
	"github.com/Alexsimulation/fvhyper/mesh"
	"github.com/Alexsimulation/fvhyper/parallel"
	"github.com/Alexsimulation/fvhyper/post"
	"github.com/Alexsimulation/fvhyper/solver"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a case described by an input parameters file",
	Run: func(cmd *cobra.Command, args []string) {
		icFile, _ := cmd.Flags().GetString("inputConditionsFile")
		np, _ := cmd.Flags().GetInt("np")
		cpuProfile, _ := cmd.Flags().GetBool("cpuprofile")
		if icFile == "" {
			logrus.Fatalf("must supply an input parameters file (-I, --inputConditionsFile)")
		}
		if cpuProfile {
			defer profile.Start(profile.CPUProfile).Stop()
		}
		ip, err := input.ReadFile(icFile)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		ip.Print()
		if err := Run(ip, np); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML input parameters file")
	runCmd.Flags().Int("np", 1, "number of ranks")
	runCmd.Flags().Bool("cpuprofile", false, "write a CPU profile for this run")
}

// Run executes the case on np ranks.
func Run(ip *input.InputParameters, np int) error {
	prob, _, err := buildProblem(ip.Case)
	if err != nil {
		return err
	}
	opt := solver.Options{
		MaxStep:            ip.MaxStep,
		MaxTime:            ip.MaxTime,
		PrintInterval:      ip.PrintInterval,
		Tolerance:          ip.Tolerance,
		SaveTimeSeries:     ip.SaveTimeSeries,
		TimeSeriesInterval: ip.TimeSeriesInterval,
	}
	pool := parallel.NewPool(np)
	return pool.Run(func(proc *parallel.Proc) error {
		m, err := rankMesh(ip, proc)
		if err != nil {
			return err
		}
		s, err := solver.New(prob, m, proc, opt)
		if err != nil {
			return err
		}
		var w solver.Writer
		if ip.Output != "" {
			if ip.SaveTimeSeries {
				w = &post.TimeSeriesWriter{Name: ip.Output, Prob: prob, M: m, Rank: proc.Rank}
			} else {
				w = &post.FinalWriter{Name: ip.Output, Prob: prob, M: m, Rank: proc.Rank}
			}
		}
		return s.Run(w)
	})
}

func buildProblem(name string) (*solver.Problem, euler.Physics, error) {
	switch name {
	case "shocktube":
		prob, ph := euler.SodShockTube()
		return prob, ph, nil
	case "forwardstep":
		prob, ph := euler.ForwardStep()
		return prob, ph, nil
	default:
		return nil, euler.Physics{}, fmt.Errorf("unknown case %q, have shocktube, forwardstep", name)
	}
}

// rankMesh loads this rank's mesh piece from file, or generates and
// decomposes the case geometry when no mesh file is named.
func rankMesh(ip *input.InputParameters, proc *parallel.Proc) (*mesh.Mesh, error) {
	if ip.MeshFile != "" {
		return mesh.ReadFile(ip.MeshFile, proc.Rank)
	}
	nx, ny := ip.Nx, ip.Ny
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("generated mesh needs positive Nx, Ny")
	}
	var g *mesh.Mesh
	switch ip.Case {
	case "forwardstep":
		g = mesh.NewChannelWithStep(nx, ny)
	default:
		g = mesh.NewUnitSquare(nx, ny)
	}
	if proc.Size == 1 {
		return g, nil
	}
	pieces, err := mesh.Decompose(g, mesh.StripX(g, proc.Size), proc.Size)
	if err != nil {
		return nil, err
	}
	return pieces[proc.Rank], nil
}
