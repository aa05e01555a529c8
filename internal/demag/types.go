package demag

import (
	"math"
	"time"
)

// State is the packed solver state for an n-layer structure:
// [Te(0..n-1), Tp(0..n-1), M(0..n-1)].
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is a coupled ODE system dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, error)
}

// Observer receives coarse-grained progress milestones while a run is in
// flight. percent is in [0, 100]; t is the simulation time reached, in
// seconds.
type Observer interface {
	OnProgress(percent int, t float64)
}

// RunConfig controls the time domain and the integration budgets of a run.
// All times are in seconds.
type RunConfig struct {
	TStart     float64
	TEnd       float64
	OutputStep float64

	Dt        float64
	Tolerance float64
	MinDt     float64
	MaxDt     float64

	MaxSteps   int
	WallBudget time.Duration
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		TStart:     -1e-12,
		TEnd:       5e-12,
		OutputStep: 5e-15,
		Dt:         1e-16,
		Tolerance:  1e-6,
		MinDt:      1e-20,
		MaxDt:      5e-15,
		MaxSteps:   20_000_000,
		WallBudget: 5 * time.Minute,
	}
}

// Stats carries per-run numerical diagnostics. MMin/MMax record the raw
// magnetization extrema so transient overshoot outside [0, 1] is visible to
// the caller instead of being clamped away.
type Stats struct {
	Steps    int
	MMin     float64
	MMax     float64
	Rejected int
}

// Result is the full spatiotemporal output of a run. Fields are indexed
// [time][layer]; Times is strictly increasing over [TStart, TEnd] and
// Positions holds layer midpoint depths in meters.
type Result struct {
	Times     []float64
	Positions []float64

	Electrons     [][]float64
	Phonons       [][]float64
	Magnetization [][]float64

	Stats Stats
}

// ShapesMatch reports whether all three fields have len(Times) rows of
// len(Positions) columns.
func (r *Result) ShapesMatch() bool {
	nt, nz := len(r.Times), len(r.Positions)
	for _, field := range [][][]float64{r.Electrons, r.Phonons, r.Magnetization} {
		if len(field) != nt {
			return false
		}
		for _, row := range field {
			if len(row) != nz {
				return false
			}
		}
	}
	return true
}
