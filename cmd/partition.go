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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Alexsimulation/fvhyper/mesh"
)

// partitionCmd represents the partition command
var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Split a global mesh file into per-rank pieces with comm channels",
	Run: func(cmd *cobra.Command, args []string) {
		meshFile, _ := cmd.Flags().GetString("meshFile")
		np, _ := cmd.Flags().GetInt("np")
		out, _ := cmd.Flags().GetString("out")
		if meshFile == "" {
			logrus.Fatalf("must supply a mesh file (-F, --meshFile)")
		}
		if np < 2 {
			logrus.Fatalf("need at least 2 ranks to partition")
		}
		if out == "" {
			out = "part"
		}

		f, err := os.Open(meshFile)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		g, err := mesh.Read(f)
		f.Close()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Read %d cells, %d edges from %s", g.NRealCells, len(g.EdgesLengths), meshFile)

		part, err := mesh.PartitionKWay(g, np)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		pieces, err := mesh.Decompose(g, part, np)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		for rank, piece := range pieces {
			if err := mesh.WriteFile(piece, out, rank); err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("rank %d: %d owned cells, %d channels", rank, piece.NumOwned(), len(piece.Comms))
		}
	},
}

func init() {
	rootCmd.AddCommand(partitionCmd)
	partitionCmd.Flags().StringP("meshFile", "F", "", "global mesh file to split")
	partitionCmd.Flags().Int("np", 2, "number of ranks")
	partitionCmd.Flags().String("out", "part", "output base name, files <out>_<rank+1>.msh")
}
