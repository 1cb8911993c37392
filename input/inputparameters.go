// Package input parses the YAML input-parameters file that names the
// case, the mesh and the solver options for a run.
package input

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title    string `yaml:"Title"`
	Case     string `yaml:"Case"`     // shocktube or forwardstep
	MeshFile string `yaml:"MeshFile"` // mesh base name; empty generates the case mesh
	Nx       int    `yaml:"Nx"`       // generated mesh resolution
	Ny       int    `yaml:"Ny"`

	MaxStep            int     `yaml:"MaxStep"`
	MaxTime            float64 `yaml:"MaxTime"`
	PrintInterval      int     `yaml:"PrintInterval"`
	Tolerance          float64 `yaml:"Tolerance"`
	SaveTimeSeries     bool    `yaml:"SaveTimeSeries"`
	TimeSeriesInterval float64 `yaml:"TimeSeriesInterval"`

	Output string `yaml:"Output"` // VTK output base name; empty disables output
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func ReadFile(name string) (*InputParameters, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	ip := &InputParameters{}
	if err := ip.Parse(data); err != nil {
		return nil, fmt.Errorf("input: %s: %w", name, err)
	}
	return ip, nil
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t= Case\n", ip.Case)
	if ip.MeshFile != "" {
		fmt.Printf("[%s]\t\t= Mesh File\n", ip.MeshFile)
	} else {
		fmt.Printf("[%d x %d]\t\t= Generated Mesh\n", ip.Nx, ip.Ny)
	}
	fmt.Printf("%8d\t\t= MaxStep\n", ip.MaxStep)
	fmt.Printf("%8.5f\t\t= MaxTime\n", ip.MaxTime)
	fmt.Printf("%8d\t\t= PrintInterval\n", ip.PrintInterval)
	fmt.Printf("%8.3g\t\t= Tolerance\n", ip.Tolerance)
}
