// Package solver drives the 3TM integration: parameter validation, output
// sampling, cancellation, step and wall-clock budgets, and progress
// reporting. The physics itself is the pure threetemp kernel.
package solver

import (
	"context"
	"math"
	"time"

	"github.com/ultrafast-lab/demag/internal/demag"
	"github.com/ultrafast-lab/demag/internal/integrators"
	"github.com/ultrafast-lab/demag/internal/structure"
	"github.com/ultrafast-lab/demag/internal/threetemp"
)

type Solver struct {
	integ     demag.Integrator
	observers []demag.Observer
}

func New() *Solver {
	return &Solver{integ: integrators.NewRK45()}
}

// SetIntegrator swaps the time stepper. Adaptive integrators get the
// tolerance-driven step controller; plain ones run fixed steps of cfg.Dt.
func (s *Solver) SetIntegrator(integ demag.Integrator) { s.integ = integ }
func (s *Solver) AddObserver(o demag.Observer)         { s.observers = append(s.observers, o) }

type minDtSetter interface{ SetMinDt(float64) }

type rejectCounter interface{ RejectedSteps() int }

// Run integrates the coupled electron/phonon/spin state over the structure
// and the time window of cfg. The returned Result is freshly allocated and
// owned by the caller; on any error no partial result is returned.
func (s *Solver) Run(ctx context.Context, st *structure.Structure, p Params, cfg demag.RunConfig) (*demag.Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := validateRunConfig(cfg); err != nil {
		return nil, err
	}

	// Resolve the output grid against the pulse so the excitation is never
	// undersampled.
	if maxStep := p.PulseDurationSI() / 10; cfg.OutputStep > maxStep {
		cfg.OutputStep = maxStep
	}

	if setter, ok := s.integ.(minDtSetter); ok {
		setter.SetMinDt(cfg.MinDt)
	}

	pulse := threetemp.Pulse{
		Fluence:    p.FluenceSI(),
		Duration:   p.PulseDurationSI(),
		Delay:      0,
		Wavelength: p.WavelengthSI(),
	}
	model := threetemp.NewModel(st, pulse)
	x := threetemp.InitialState(st, p.InitialTemp)

	n := st.NumLayers()
	nOut := int(math.Ceil((cfg.TEnd-cfg.TStart)/cfg.OutputStep - 1e-9))
	if nOut < 1 {
		nOut = 1
	}

	res := &demag.Result{
		Times:         make([]float64, 0, nOut+1),
		Positions:     st.Positions(),
		Electrons:     make([][]float64, 0, nOut+1),
		Phonons:       make([][]float64, 0, nOut+1),
		Magnetization: make([][]float64, 0, nOut+1),
		Stats:         demag.Stats{MMin: math.Inf(1), MMax: math.Inf(-1)},
	}

	magnetic := make([]bool, n)
	for i, l := range st.Layers {
		magnetic[i] = l.Material.Magnetic
	}

	record := func(t float64) {
		res.Times = append(res.Times, t)
		res.Electrons = append(res.Electrons, append([]float64(nil), x[:n]...))
		res.Phonons = append(res.Phonons, append([]float64(nil), x[n:2*n]...))
		res.Magnetization = append(res.Magnetization, append([]float64(nil), x[2*n:]...))
		for i := 0; i < n; i++ {
			if !magnetic[i] {
				continue
			}
			m := x[2*n+i]
			res.Stats.MMin = math.Min(res.Stats.MMin, m)
			res.Stats.MMax = math.Max(res.Stats.MMax, m)
		}
	}

	start := time.Now()
	t := cfg.TStart
	dt := cfg.Dt
	steps := 0

	record(t)

	adaptive, isAdaptive := s.integ.(demag.AdaptiveIntegrator)

	lastMilestone := -1
	for k := 1; k <= nOut; k++ {
		// The last sample lands on TEnd even when the output step does not
		// divide the window.
		tNext := cfg.TStart + float64(k)*cfg.OutputStep
		if k == nOut || tNext > cfg.TEnd {
			tNext = cfg.TEnd
		}

		for t < tNext-cfg.OutputStep*1e-9 {
			select {
			case <-ctx.Done():
				return nil, &demag.CancelledError{Time: t}
			default:
			}

			if steps >= cfg.MaxSteps {
				return nil, &demag.TimeoutError{Time: t, Steps: steps, Elapsed: time.Since(start)}
			}
			if steps%256 == 0 && time.Since(start) > cfg.WallBudget {
				return nil, &demag.TimeoutError{Time: t, Steps: steps, Elapsed: time.Since(start)}
			}

			h := math.Min(dt, tNext-t)
			var xNew demag.State
			if isAdaptive {
				var dtNext float64
				var err error
				xNew, dtNext, err = adaptive.StepAdaptive(model, x, t, h, cfg.Tolerance)
				if err != nil {
					return nil, &demag.DivergenceError{
						Subsystem: dominantSubsystem(model, x, t, n),
						Time:      t,
						Step:      steps,
						Reason:    err.Error(),
					}
				}
				dt = math.Min(dtNext, cfg.MaxDt)
			} else {
				xNew = s.integ.Step(model, x, t, h)
			}
			if err := checkState(xNew, n, t, steps); err != nil {
				return nil, err
			}

			x = xNew
			t += h
			steps++
		}

		t = tNext
		record(t)

		if percent := 100 * k / nOut; percent/5 > lastMilestone {
			lastMilestone = percent / 5
			for _, o := range s.observers {
				o.OnProgress(percent, t)
			}
		}
	}

	res.Stats.Steps = steps
	if rc, ok := s.integ.(rejectCounter); ok {
		res.Stats.Rejected = rc.RejectedSteps()
	}

	if !res.ShapesMatch() {
		return nil, &demag.DivergenceError{
			Subsystem: "grid", Time: t, Step: steps,
			Reason: "output field shapes inconsistent",
		}
	}
	return res, nil
}

func validateRunConfig(cfg demag.RunConfig) error {
	switch {
	case cfg.TEnd <= cfg.TStart:
		return &demag.InvalidParameterError{Field: "t_end", Reason: "must be after t_start"}
	case cfg.OutputStep <= 0:
		return &demag.InvalidParameterError{Field: "output_step", Reason: "must be positive"}
	case cfg.Dt <= 0:
		return &demag.InvalidParameterError{Field: "dt", Reason: "must be positive"}
	case cfg.Tolerance <= 0:
		return &demag.InvalidParameterError{Field: "tolerance", Reason: "must be positive"}
	case cfg.MinDt <= 0 || cfg.MaxDt <= cfg.MinDt:
		return &demag.InvalidParameterError{Field: "min_dt/max_dt", Reason: "need 0 < min_dt < max_dt"}
	case cfg.MaxSteps < 1:
		return &demag.InvalidParameterError{Field: "max_steps", Reason: "must be >= 1"}
	case cfg.WallBudget <= 0:
		return &demag.InvalidParameterError{Field: "wall_budget", Reason: "must be positive"}
	}
	return nil
}

// checkState rejects NaN/Inf components and non-positive absolute
// temperatures, attributing the failure to the offending subsystem.
func checkState(x demag.State, n int, t float64, step int) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &demag.DivergenceError{
				Subsystem: subsystemFor(i, n), Time: t, Step: step,
				Reason: "state is NaN/Inf",
			}
		}
		if i < 2*n && v <= 0 {
			return &demag.DivergenceError{
				Subsystem: subsystemFor(i, n), Time: t, Step: step,
				Reason: "non-positive absolute temperature",
			}
		}
	}
	return nil
}

func subsystemFor(i, n int) string {
	switch {
	case i < n:
		return "electron"
	case i < 2*n:
		return "phonon"
	default:
		return "spin"
	}
}

// dominantSubsystem names the subsystem with the stiffest local dynamics,
// used to attribute step-size failures.
func dominantSubsystem(sys demag.System, x demag.State, t float64, n int) string {
	dx := sys.Derive(x, t)
	maxIdx, maxVal := 0, 0.0
	for i, v := range dx {
		// Compare relative rates so K-scale temperatures and unit-scale
		// magnetization are commensurable.
		ref := math.Abs(x[i]) + 1
		if r := math.Abs(v) / ref; r > maxVal {
			maxVal, maxIdx = r, i
		}
	}
	return subsystemFor(maxIdx, n)
}
