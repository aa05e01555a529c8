package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultrafast-lab/demag/internal/demag"
)

func sampleResult() *demag.Result {
	return &demag.Result{
		Times:     []float64{-1e-12, 0, 1e-12},
		Positions: []float64{0.2e-9, 0.6e-9},
		Electrons: [][]float64{
			{300, 300},
			{900, 700},
			{400, 380},
		},
		Phonons: [][]float64{
			{300, 300},
			{320, 310},
			{390, 375},
		},
		Magnetization: [][]float64{
			{0.96, 0.96},
			{0.40, 0.55},
			{0.80, 0.85},
		},
	}
}

func TestFormatMaps(t *testing.T) {
	res := sampleResult()
	bundle := Format(res, []int{0, 1}, "Ni")

	require.Len(t, bundle.Maps, 3)

	labels := []string{"electrons", "phonons", "magnetization"}
	for i, m := range bundle.Maps {
		assert.Equal(t, labels[i], m.Label)
		assert.Equal(t, "Distance [nm]", m.XLabel)
		assert.Equal(t, "Delay [ps]", m.YLabel)
		assert.Len(t, m.X, 2)
		assert.Len(t, m.Y, 3)
	}

	// Axis units converted for display: positions in nm, delays in ps.
	assert.InDelta(t, 0.2, bundle.Maps[0].X[0], 1e-12)
	assert.InDelta(t, -1.0, bundle.Maps[0].Y[0], 1e-12)

	// Field values pass through untouched.
	assert.Equal(t, res.Electrons, bundle.Maps[0].Z)
	assert.Equal(t, res.Phonons, bundle.Maps[1].Z)
	assert.Equal(t, res.Magnetization, bundle.Maps[2].Z)
}

func TestFormatLines(t *testing.T) {
	res := sampleResult()
	bundle := Format(res, []int{0, 1}, "Ni")

	require.Len(t, bundle.Lines, 3)

	te := bundle.Lines[0]
	assert.Equal(t, "electrons", te.Label)
	assert.Equal(t, "Temperature [K]", te.YLabel)
	require.Len(t, te.Y, 3)
	assert.InDelta(t, 300, te.Y[0], 1e-12)
	assert.InDelta(t, 800, te.Y[1], 1e-12) // mean of 900 and 700

	m := bundle.Lines[2]
	assert.Equal(t, "M", m.Label)
	assert.InDelta(t, 0.475, m.Y[1], 1e-12)
}

func TestFormatFilmSelection(t *testing.T) {
	res := sampleResult()
	// Averaging over the first layer only.
	bundle := Format(res, []int{0}, "Ni")
	assert.InDelta(t, 900, bundle.Lines[0].Y[1], 1e-12)
	assert.InDelta(t, 0.40, bundle.Lines[2].Y[1], 1e-12)
}

func TestFormatDoesNotMutate(t *testing.T) {
	res := sampleResult()
	want := sampleResult()

	_ = Format(res, []int{0, 1}, "Ni")

	assert.Equal(t, want.Times, res.Times)
	assert.Equal(t, want.Positions, res.Positions)
	assert.Equal(t, want.Electrons, res.Electrons)
	assert.Equal(t, want.Phonons, res.Phonons)
	assert.Equal(t, want.Magnetization, res.Magnetization)
}

func TestSurfaceTraces(t *testing.T) {
	res := sampleResult()
	te, tp := SurfaceTraces(res)

	assert.Equal(t, []float64{300, 900, 400}, te.Y)
	assert.Equal(t, []float64{300, 320, 390}, tp.Y)
	assert.Equal(t, "Delay [ps]", te.XLabel)
	assert.Equal(t, te.X, tp.X)
}
