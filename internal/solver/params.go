package solver

import (
	"fmt"

	"github.com/ultrafast-lab/demag/internal/demag"
)

// Params are the user-facing simulation inputs, in the units the pump-probe
// community uses: K, mJ/cm^2, ps, nm. Conversions to SI happen at the solver
// boundary.
type Params struct {
	Material      string
	InitialTemp   float64 // K
	CurieTemp     float64 // K
	Fluence       float64 // mJ/cm^2
	PulseDuration float64 // ps
	Wavelength    float64 // nm
	Layers        int

	Substrate       bool
	SubstrateLayers int
}

func DefaultParams() Params {
	return Params{
		Material:        "Ni",
		InitialTemp:     300,
		CurieTemp:       631,
		Fluence:         2.5,
		PulseDuration:   0.1,
		Wavelength:      800,
		Layers:          10,
		SubstrateLayers: 50,
	}
}

// Validate fails fast on out-of-range inputs so no solver work starts on a
// state that would only surface as NaNs later.
func (p Params) Validate() error {
	if p.Material == "" {
		return &demag.InvalidParameterError{Field: "material", Reason: "must not be empty"}
	}
	if p.InitialTemp <= 0 {
		return &demag.InvalidParameterError{
			Field:  "t0",
			Reason: fmt.Sprintf("initial temperature must be positive, got %g", p.InitialTemp),
		}
	}
	if p.CurieTemp <= 0 {
		return &demag.InvalidParameterError{
			Field:  "tc",
			Reason: fmt.Sprintf("Curie temperature must be positive, got %g", p.CurieTemp),
		}
	}
	if p.Fluence < 0 {
		return &demag.InvalidParameterError{
			Field:  "fluence",
			Reason: fmt.Sprintf("fluence must be non-negative, got %g", p.Fluence),
		}
	}
	if p.PulseDuration <= 0 {
		return &demag.InvalidParameterError{
			Field:  "pulse_duration",
			Reason: fmt.Sprintf("pulse duration must be positive, got %g", p.PulseDuration),
		}
	}
	if p.Wavelength <= 0 {
		return &demag.InvalidParameterError{
			Field:  "wavelength",
			Reason: fmt.Sprintf("wavelength must be positive, got %g", p.Wavelength),
		}
	}
	if p.Layers < 1 {
		return &demag.InvalidParameterError{
			Field:  "layers",
			Reason: fmt.Sprintf("layer count must be >= 1, got %d", p.Layers),
		}
	}
	if p.Substrate && p.SubstrateLayers < 1 {
		return &demag.InvalidParameterError{
			Field:  "substrate_layers",
			Reason: fmt.Sprintf("substrate layer count must be >= 1, got %d", p.SubstrateLayers),
		}
	}
	return nil
}

// FluenceSI returns the pulse fluence in J/m^2 (1 mJ/cm^2 = 10 J/m^2).
func (p Params) FluenceSI() float64 { return p.Fluence * 10 }

// PulseDurationSI returns the pulse FWHM in s.
func (p Params) PulseDurationSI() float64 { return p.PulseDuration * 1e-12 }

// WavelengthSI returns the pump wavelength in m.
func (p Params) WavelengthSI() float64 { return p.Wavelength * 1e-9 }
