package threetemp

import (
	"github.com/ultrafast-lab/demag/internal/demag"
	"github.com/ultrafast-lab/demag/internal/structure"
)

// EquilibriumMagnetization solves m coth(m Tc/T) = 1 for m in (0, 1] by
// bisection. This is the stationary point of the spin equation, so a run
// started here with zero fluence stays put. Above Tc the ordered moment
// vanishes.
func EquilibriumMagnetization(t0, tc float64) float64 {
	if tc <= 0 || t0 >= tc {
		return 0
	}
	if t0 <= 0 {
		return 1
	}

	balance := func(m float64) float64 {
		return m*coth(m*tc/t0) - 1
	}

	lo, hi := 1e-12, 1.0
	if balance(hi) < 0 {
		// No crossing below full polarization; T is deep below Tc.
		return 1
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if balance(mid) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return (lo + hi) / 2
}

// InitialState builds the packed state for a uniform start: Te = Tp = t0
// everywhere, M at its mean-field equilibrium in magnetic layers and zero
// elsewhere.
func InitialState(s *structure.Structure, t0 float64) demag.State {
	n := s.NumLayers()
	x := make(demag.State, 3*n)
	for i, l := range s.Layers {
		x[i] = t0
		x[n+i] = t0
		if l.Material.Magnetic {
			x[2*n+i] = EquilibriumMagnetization(t0, l.Material.CurieTemp)
		}
	}
	return x
}
