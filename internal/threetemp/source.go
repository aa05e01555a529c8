package threetemp

import (
	"math"

	"github.com/ultrafast-lab/demag/internal/structure"
)

// Pulse describes the pump excitation. Fluence is in J/m^2, Duration is the
// Gaussian FWHM in s, Delay is the pulse center in s, Wavelength in m.
type Pulse struct {
	Fluence    float64
	Duration   float64
	Delay      float64
	Wavelength float64
}

// Power returns the instantaneous absorbed areal power density divided by the
// fluence, i.e. a unit-area Gaussian in time (1/s). The spatial profile and
// the fluence itself are folded into the per-layer absorption factors.
func (p Pulse) Power(t float64) float64 {
	if p.Fluence == 0 {
		return 0
	}
	sigma := p.Duration / (2 * math.Sqrt(2*math.Ln2))
	u := (t - p.Delay) / sigma
	return p.Fluence / (sigma * math.Sqrt(2*math.Pi)) * math.Exp(-u*u/2)
}

// absorptionProfile distributes the absorbed fraction of the pulse over the
// layers by Beer-Lambert attenuation, each layer attenuating with its own
// penetration depth (multilayer absorption). The surface layer's Fresnel
// reflectivity takes the reflected part off the top. The returned factors
// have units 1/m: multiplying by the areal pump power yields a volumetric
// source density.
func absorptionProfile(s *structure.Structure, wavelength float64) []float64 {
	n := s.NumLayers()
	profile := make([]float64, n)
	if n == 0 {
		return profile
	}

	transmitted := 1 - s.Layers[0].Material.Reflectivity()

	// Cumulative optical depth tau_i at each interface; the fraction
	// absorbed in layer i is exp(-tau_i) - exp(-tau_{i+1}).
	tau := 0.0
	for i, l := range s.Layers {
		delta := l.Material.PenetrationDepth(wavelength)
		tauNext := tau + l.Thickness/delta
		absorbedFrac := math.Exp(-tau) - math.Exp(-tauNext)
		profile[i] = transmitted * absorbedFrac / l.Thickness
		tau = tauNext
	}

	return profile
}
