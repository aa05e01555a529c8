// Package results reshapes raw solver output into labeled plot-ready series.
// It performs no physical computation and never mutates the Result it reads.
package results

import (
	"github.com/ultrafast-lab/demag/internal/demag"
)

// Series is one labeled line trace.
type Series struct {
	Label  string
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
}

// MapSeries is one labeled 2D field over (position x delay).
type MapSeries struct {
	Label  string
	Title  string
	XLabel string
	YLabel string
	X      []float64   // layer positions, nm
	Y      []float64   // delays, ps
	Z      [][]float64 // [time][layer]
}

// Bundle groups the three field maps and the two line plots of a run:
// subsystem temperatures averaged over the film, and film magnetization.
type Bundle struct {
	Maps  []MapSeries
	Lines []Series
}

// Format builds the plot bundle for a run. film selects the layer indices of
// the magnetic film for the averaged line traces; axes are scaled to nm and
// ps for display while field values pass through untouched.
func Format(res *demag.Result, film []int, materialName string) *Bundle {
	posNm := scaled(res.Positions, 1e9)
	delayPs := scaled(res.Times, 1e12)

	maps := []MapSeries{
		{
			Label: "electrons", Title: "Temperature Map Electrons",
			XLabel: "Distance [nm]", YLabel: "Delay [ps]",
			X: posNm, Y: delayPs, Z: res.Electrons,
		},
		{
			Label: "phonons", Title: "Temperature Map Phonons",
			XLabel: "Distance [nm]", YLabel: "Delay [ps]",
			X: posNm, Y: delayPs, Z: res.Phonons,
		},
		{
			Label: "magnetization", Title: "Magnetization",
			XLabel: "Distance [nm]", YLabel: "Delay [ps]",
			X: posNm, Y: delayPs, Z: res.Magnetization,
		},
	}

	lines := []Series{
		{
			Label: "electrons", Title: "M3TM " + materialName,
			XLabel: "Delay [ps]", YLabel: "Temperature [K]",
			X: delayPs, Y: averageOver(res.Electrons, film),
		},
		{
			Label: "phonons", Title: "M3TM " + materialName,
			XLabel: "Delay [ps]", YLabel: "Temperature [K]",
			X: delayPs, Y: averageOver(res.Phonons, film),
		},
		{
			Label: "M", Title: "Magnetization",
			XLabel: "Delay [ps]", YLabel: "Magnetization",
			X: delayPs, Y: averageOver(res.Magnetization, film),
		},
	}

	return &Bundle{Maps: maps, Lines: lines}
}

// SurfaceTraces returns the first-layer electron and phonon temperature
// traces, the representative view of the absorbing surface.
func SurfaceTraces(res *demag.Result) (te, tp Series) {
	delayPs := scaled(res.Times, 1e12)
	te = Series{
		Label: "surface Te", Title: "Surface temperature",
		XLabel: "Delay [ps]", YLabel: "Temperature [K]",
		X: delayPs, Y: column(res.Electrons, 0),
	}
	tp = Series{
		Label: "surface Tp", Title: "Surface temperature",
		XLabel: "Delay [ps]", YLabel: "Temperature [K]",
		X: delayPs, Y: column(res.Phonons, 0),
	}
	return te, tp
}

func scaled(xs []float64, factor float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = v * factor
	}
	return out
}

func column(field [][]float64, j int) []float64 {
	out := make([]float64, len(field))
	for i, row := range field {
		if j < len(row) {
			out[i] = row[j]
		}
	}
	return out
}

func averageOver(field [][]float64, idx []int) []float64 {
	out := make([]float64, len(field))
	if len(idx) == 0 {
		return out
	}
	for i, row := range field {
		sum := 0.0
		for _, j := range idx {
			sum += row[j]
		}
		out[i] = sum / float64(len(idx))
	}
	return out
}
