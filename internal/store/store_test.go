package store

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultrafast-lab/demag/internal/demag"
	"github.com/ultrafast-lab/demag/internal/solver"
)

func sampleRun() (solver.Params, demag.RunConfig, *demag.Result) {
	p := solver.DefaultParams()
	cfg := demag.DefaultRunConfig()
	res := &demag.Result{
		Times:     []float64{-1e-12, 0, 2.5e-13},
		Positions: []float64{0.176205e-9, 0.528615e-9},
		Electrons: [][]float64{
			{300, 300},
			{871.25, 702.5},
			{433.125, 380.0625},
		},
		Phonons: [][]float64{
			{300, 300},
			{312.5, 309.75},
			{390.0625, 375.5},
		},
		Magnetization: [][]float64{
			{0.9651234567890123, 0.9651234567890123},
			{0.4012345678901234, 0.55},
			{0.8000000000000001, 0.85},
		},
		Stats: demag.Stats{Steps: 1234, MMin: 0.4012345678901234, MMax: 0.9651234567890123},
	}
	return p, cfg, res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	p, cfg, res := sampleRun()
	runID, err := st.Save(p, cfg, res)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)

	assert.Equal(t, "Ni", meta.Material)
	assert.Equal(t, p, meta.Params)
	assert.Equal(t, cfg.TStart, meta.TStart)
	assert.Equal(t, res.Positions, meta.Positions)
	assert.Equal(t, res.Stats, meta.Stats)
	assert.Contains(t, meta.Units, "time")
}

func TestStoreRoundTripExact(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	p, cfg, res := sampleRun()
	runID, err := st.Save(p, cfg, res)
	require.NoError(t, err)

	loaded, err := st.LoadFields(runID)
	require.NoError(t, err)

	// Full-precision formatting: the reload must be bit-identical.
	assert.Equal(t, res.Times, loaded.Times)
	assert.Equal(t, res.Positions, loaded.Positions)
	assert.Equal(t, res.Electrons, loaded.Electrons)
	assert.Equal(t, res.Phonons, loaded.Phonons)
	assert.Equal(t, res.Magnetization, loaded.Magnetization)
}

func TestStoreRoundTripAwkwardFloats(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	p, cfg, res := sampleRun()
	res.Times = []float64{math.SmallestNonzeroFloat64, 1e-18, math.Pi * 1e-12}
	res.Electrons[0][0] = math.Nextafter(300, 301)

	runID, err := st.Save(p, cfg, res)
	require.NoError(t, err)

	loaded, err := st.LoadFields(runID)
	require.NoError(t, err)
	assert.Equal(t, res.Times, loaded.Times)
	assert.Equal(t, res.Electrons[0][0], loaded.Electrons[0][0])
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	p, cfg, res := sampleRun()
	_, err = st.Save(p, cfg, res)
	require.NoError(t, err)

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStoreFileLayout(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	p, cfg, res := sampleRun()
	runID, err := st.Save(p, cfg, res)
	require.NoError(t, err)

	for _, name := range []string{"metadata.json", "fields.csv"} {
		_, err := os.Stat(filepath.Join(dir, runID, name))
		assert.NoError(t, err, name)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}
