package post

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Alexsimulation/fvhyper/mesh"
	"github.com/Alexsimulation/fvhyper/solver"
)

// TimeSeriesWriter emits one VTK file per emission point and maintains a
// ParaView .series index on rank 0. It satisfies solver.Writer; the
// driver calls it at the configured interval and once at the end of the
// run.
type TimeSeriesWriter struct {
	Name string
	Prob *solver.Problem
	M    *mesh.Mesh
	Rank int

	frame  int
	frames []seriesFrame
}

type seriesFrame struct {
	Name string  `json:"name"`
	Time float64 `json:"time"`
}

type seriesIndex struct {
	Version string        `json:"file-series-version"`
	Files   []seriesFrame `json:"files"`
}

func (w *TimeSeriesWriter) Write(q []float64, step int, time float64) error {
	name := fmt.Sprintf("%s_t%04d", w.Name, w.frame)
	if err := WriteVTKFile(name, q, w.Prob, w.M, w.Rank); err != nil {
		return err
	}
	w.frames = append(w.frames, seriesFrame{
		Name: fmt.Sprintf("%s_%d.vtk", name, w.Rank+1),
		Time: time,
	})
	w.frame++
	if w.Rank != 0 {
		return nil
	}
	data, err := json.MarshalIndent(seriesIndex{Version: "1.0", Files: w.frames}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(w.Name+".vtk.series", data, 0o644)
}

// FinalWriter writes a single VTK file at the end of the run, for runs
// without time series.
type FinalWriter struct {
	Name string
	Prob *solver.Problem
	M    *mesh.Mesh
	Rank int
}

func (w *FinalWriter) Write(q []float64, step int, time float64) error {
	return WriteVTKFile(w.Name, q, w.Prob, w.M, w.Rank)
}
