package material

import (
	"math"
	"sort"

	"github.com/ultrafast-lab/demag/internal/demag"
)

// Properties holds the physical constants of one material, resolved once per
// run and immutable afterwards. Heat capacities are per unit mass; volumetric
// forms are derived through the density.
type Properties struct {
	Name string

	// CurieTemp is the Curie temperature in K. Zero for non-magnetic layers.
	CurieTemp float64

	// Density in kg/m^3.
	Density float64

	// SommerfeldCoeff is the linear electron heat-capacity coefficient in
	// J/(kg K^2): ce(Te) = SommerfeldCoeff*Te + ElectronSpecificHeat.
	SommerfeldCoeff float64

	// ElectronSpecificHeat is the constant part of the electron heat
	// capacity in J/(kg K). Zero for metals, where the linear term dominates.
	ElectronSpecificHeat float64

	// PhononSpecificHeat in J/(kg K).
	PhononSpecificHeat float64

	// ElectronPhononCoupling in W/(m^3 K).
	ElectronPhononCoupling float64

	// ElectronConductivity and PhononConductivity in W/(m K).
	ElectronConductivity float64
	PhononConductivity   float64

	// SpinFlipRate is the demagnetization rate prefactor in 1/s.
	SpinFlipRate float64

	// LatticeConstant in m; one structural layer is one unit cell thick.
	LatticeConstant float64

	// Complex refractive index n + ik at the working wavelength (800 nm).
	RefractiveIndex float64
	ExtinctionCoeff float64

	// Magnetic marks layers that carry the spin subsystem.
	Magnetic bool
}

// GammaVolumetric returns the electron heat-capacity slope in J/(m^3 K^2).
func (p Properties) GammaVolumetric() float64 {
	return p.SommerfeldCoeff * p.Density
}

// ElectronHeatCapacityConst returns the constant electron heat capacity in
// J/(m^3 K).
func (p Properties) ElectronHeatCapacityConst() float64 {
	return p.ElectronSpecificHeat * p.Density
}

// PhononHeatCapacity returns the volumetric phonon heat capacity in J/(m^3 K).
func (p Properties) PhononHeatCapacity() float64 {
	return p.PhononSpecificHeat * p.Density
}

// PenetrationDepth returns the Beer-Lambert optical absorption depth
// lambda/(4 pi k) for the given wavelength in m.
func (p Properties) PenetrationDepth(wavelength float64) float64 {
	return wavelength / (4 * math.Pi * p.ExtinctionCoeff)
}

// Reflectivity returns the normal-incidence Fresnel reflectivity.
func (p Properties) Reflectivity() float64 {
	n, k := p.RefractiveIndex, p.ExtinctionCoeff
	return ((n-1)*(n-1) + k*k) / ((n+1)*(n+1) + k*k)
}

// Constants at 800 nm pump wavelength. Spin-flip rates after Koopmans et al.
var table = map[string]Properties{
	"Ni": {
		Name:                   "Ni",
		CurieTemp:              631,
		Density:                8900,
		SommerfeldCoeff:        0.1,
		PhononSpecificHeat:     445,
		ElectronPhononCoupling: 4.05e18,
		ElectronConductivity:   15,
		PhononConductivity:     90,
		SpinFlipRate:           17.2e12,
		LatticeConstant:        0.35241e-9,
		RefractiveIndex:        2.9174,
		ExtinctionCoeff:        3.3545,
		Magnetic:               true,
	},
	"Co": {
		Name:                   "Co",
		CurieTemp:              1388,
		Density:                8860,
		SommerfeldCoeff:        0.080,
		PhononSpecificHeat:     421,
		ElectronPhononCoupling: 4.10e18,
		ElectronConductivity:   20,
		PhononConductivity:     80,
		SpinFlipRate:           25.3e12,
		LatticeConstant:        0.3544e-9,
		RefractiveIndex:        2.49,
		ExtinctionCoeff:        4.83,
		Magnetic:               true,
	},
	"Gd": {
		Name:                   "Gd",
		CurieTemp:              292,
		Density:                7895,
		SommerfeldCoeff:        0.041,
		PhononSpecificHeat:     236,
		ElectronPhononCoupling: 2.01e18,
		ElectronConductivity:   2.5,
		PhononConductivity:     8,
		SpinFlipRate:           0.092e12,
		LatticeConstant:        0.3636e-9,
		RefractiveIndex:        1.96,
		ExtinctionCoeff:        2.63,
		Magnetic:               true,
	},
}

// Substrate returns amorphous Si, used as the optional non-magnetic stack
// below the film. Its electron channel has constant heat capacity and no
// conductivity; the spin subsystem is absent.
func Substrate() Properties {
	return Properties{
		Name:                 "Si",
		Density:              2336,
		ElectronSpecificHeat: 100,
		PhononSpecificHeat:   603,
		PhononConductivity:   100,
		LatticeConstant:      0.5431e-9,
		RefractiveIndex:      3.6941,
		ExtinctionCoeff:      0.0065435,
	}
}

// DefaultCurieTemp returns the tabulated Curie temperature of a supported
// material, for callers that do not override Tc.
func DefaultCurieTemp(name string) (float64, error) {
	props, ok := table[name]
	if !ok {
		return 0, &demag.UnsupportedMaterialError{Name: name, Supported: Supported()}
	}
	return props.CurieTemp, nil
}

// Supported returns the magnetic material names, sorted.
func Supported() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps a material name and Curie temperature to its physical
// constants. The lookup is pure: identical inputs yield identical outputs.
func Resolve(name string, curieTemp float64) (Properties, error) {
	props, ok := table[name]
	if !ok {
		return Properties{}, &demag.UnsupportedMaterialError{Name: name, Supported: Supported()}
	}
	if curieTemp <= 0 {
		return Properties{}, &demag.InvalidParameterError{
			Field:  "Tc",
			Reason: "Curie temperature must be positive",
		}
	}
	props.CurieTemp = curieTemp
	if err := props.validate(); err != nil {
		return Properties{}, err
	}
	return props, nil
}

// validate rejects zero or negative constants; those are physically invalid
// and would poison the solver with silent NaNs.
func (p Properties) validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"density", p.Density},
		{"sommerfeld_coeff", p.SommerfeldCoeff},
		{"phonon_specific_heat", p.PhononSpecificHeat},
		{"electron_phonon_coupling", p.ElectronPhononCoupling},
		{"electron_conductivity", p.ElectronConductivity},
		{"phonon_conductivity", p.PhononConductivity},
		{"spin_flip_rate", p.SpinFlipRate},
		{"lattice_constant", p.LatticeConstant},
		{"refractive_index", p.RefractiveIndex},
		{"extinction_coeff", p.ExtinctionCoeff},
		{"curie_temp", p.CurieTemp},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return &demag.InvalidParameterError{
				Field:  c.field,
				Reason: "must be positive for material " + p.Name,
			}
		}
	}
	return nil
}
