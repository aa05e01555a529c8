// Package threetemp implements the M3TM physics kernel: coupled electron,
// phonon and spin dynamics on a layered 1D structure. The right-hand side is
// a pure function of the packed state; stepping, cancellation and budgets
// live in the solver driver.
package threetemp

import (
	"math"

	"github.com/ultrafast-lab/demag/internal/demag"
	"github.com/ultrafast-lab/demag/internal/structure"
)

// Model evaluates the 3TM right-hand side:
//
//	Ce(Te) dTe/dt = div(kappaE grad Te) - g (Te - Tp) + S(z, t)
//	Cp     dTp/dt = div(kappaP grad Tp) + g (Te - Tp)
//	dM/dt = R M Tp/Tc (1 - M coth(M Tc / Te))
//
// Per-layer constants are flattened from the Structure at construction so
// Derive touches only contiguous arrays.
type Model struct {
	n int

	gammaVol []float64 // J/(m^3 K^2)
	ceConst  []float64 // J/(m^3 K)
	cp       []float64 // J/(m^3 K)
	coupling []float64 // W/(m^3 K)
	kappaE   []float64
	kappaP   []float64
	spinRate []float64 // 1/s, 0 for non-magnetic layers
	curie    []float64
	dz       []float64

	// absorbed is each layer's share of the absorbed pulse energy density,
	// in 1/m (fraction absorbed divided by layer thickness).
	absorbed []float64

	pulse Pulse
}

func NewModel(s *structure.Structure, p Pulse) *Model {
	n := s.NumLayers()
	m := &Model{
		n:        n,
		gammaVol: make([]float64, n),
		ceConst:  make([]float64, n),
		cp:       make([]float64, n),
		coupling: make([]float64, n),
		kappaE:   make([]float64, n),
		kappaP:   make([]float64, n),
		spinRate: make([]float64, n),
		curie:    make([]float64, n),
		dz:       make([]float64, n),
		pulse:    p,
	}

	for i, l := range s.Layers {
		props := l.Material
		m.gammaVol[i] = props.GammaVolumetric()
		m.ceConst[i] = props.ElectronHeatCapacityConst()
		m.cp[i] = props.PhononHeatCapacity()
		m.coupling[i] = props.ElectronPhononCoupling
		m.kappaE[i] = props.ElectronConductivity
		m.kappaP[i] = props.PhononConductivity
		m.curie[i] = props.CurieTemp
		m.dz[i] = l.Thickness
		if props.Magnetic {
			m.spinRate[i] = props.SpinFlipRate
		}
	}

	m.absorbed = absorptionProfile(s, p.Wavelength)
	return m
}

func (m *Model) Dim() int       { return 3 * m.n }
func (m *Model) NumLayers() int { return m.n }

// Derive evaluates dX/dt for the packed state [Te, Tp, M].
func (m *Model) Derive(x demag.State, t float64) demag.State {
	n := m.n
	dx := make(demag.State, 3*n)
	if len(x) < 3*n {
		return dx
	}

	pump := m.pulse.Power(t)

	for i := 0; i < n; i++ {
		te := x[i]
		tp := x[n+i]

		ce := m.gammaVol[i]*te + m.ceConst[i]
		if ce < 1 {
			// Te has gone unphysical; keep the RHS finite so the driver
			// can detect the divergence instead of dividing by zero.
			ce = 1
		}

		fluxE := m.diffusion(x, 0, i, m.kappaE)
		fluxP := m.diffusion(x, n, i, m.kappaP)

		exchange := m.coupling[i] * (te - tp)
		source := m.absorbed[i] * pump

		dx[i] = (fluxE - exchange + source) / ce
		dx[n+i] = (fluxP + exchange) / m.cp[i]

		if m.spinRate[i] > 0 {
			dx[2*n+i] = spinRHS(m.spinRate[i], m.curie[i], te, tp, x[2*n+i])
		}
	}

	return dx
}

// diffusion computes the finite-volume divergence term for layer i of the
// subsystem whose temperatures start at offset off. Interface conductivity
// is the harmonic mean of the adjacent layers; outer boundaries are
// insulating.
func (m *Model) diffusion(x demag.State, off, i int, kappa []float64) float64 {
	flux := 0.0
	if i > 0 {
		k := interfaceConductivity(kappa[i-1], kappa[i])
		h := (m.dz[i-1] + m.dz[i]) / 2
		flux += k * (x[off+i-1] - x[off+i]) / h
	}
	if i < m.n-1 {
		k := interfaceConductivity(kappa[i], kappa[i+1])
		h := (m.dz[i] + m.dz[i+1]) / 2
		flux += k * (x[off+i+1] - x[off+i]) / h
	}
	return flux / m.dz[i]
}

func interfaceConductivity(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return 2 * a * b / (a + b)
}

// spinRHS is the Koopmans M3TM relaxation term
// R M Tp/Tc (1 - M coth(M Tc / Te)).
func spinRHS(rate, tc, te, tp, mag float64) float64 {
	if te <= 0 {
		return 0
	}
	if mag == 0 {
		// Paramagnetic fixed point: M coth(M Tc/Te) tends to Te/Tc but the
		// leading M zeroes the whole rate. Evaluating coth(0) would NaN.
		return 0
	}
	arg := mag * tc / te
	return rate * mag * tp / tc * (1 - mag*coth(arg))
}

// coth with guards for the small- and large-argument regimes, where the
// direct exp form loses precision or overflows.
func coth(x float64) float64 {
	ax := math.Abs(x)
	switch {
	case ax < 1e-8:
		// Series: coth(x) = 1/x + x/3 + O(x^3).
		return 1/x + x/3
	case ax > 20:
		return math.Copysign(1, x)
	default:
		return 1 + 2/math.Expm1(2*x)
	}
}
