package config

var Presets = map[string]map[string]*Config{
	"Ni": {
		"thin_film": {
			Material: "Ni", T0: 300, Tc: 631, Fluence: 2.5, PulseDuration: 0.1,
			Wavelength: 800, Layers: 10,
			TStart: -1, TEnd: 5, OutputStep: 0.005,
		},
		"on_substrate": {
			Material: "Ni", T0: 300, Tc: 631, Fluence: 5, PulseDuration: 0.05,
			Wavelength: 800, Layers: 20, Substrate: true, SubstrateLayers: 50,
			TStart: -1, TEnd: 5, OutputStep: 0.005,
		},
		"strong_quench": {
			Material: "Ni", T0: 300, Tc: 631, Fluence: 30, PulseDuration: 0.05,
			Wavelength: 800, Layers: 10,
			TStart: -1, TEnd: 10, OutputStep: 0.005,
		},
	},
	"Co": {
		"thin_film": {
			Material: "Co", T0: 300, Tc: 1388, Fluence: 30, PulseDuration: 0.05,
			Wavelength: 800, Layers: 20,
			TStart: -1, TEnd: 5, OutputStep: 0.005,
		},
		"cold_start": {
			Material: "Co", T0: 100, Tc: 1388, Fluence: 10, PulseDuration: 0.1,
			Wavelength: 800, Layers: 20,
			TStart: -1, TEnd: 5, OutputStep: 0.005,
		},
	},
	"Gd": {
		"slow_demag": {
			Material: "Gd", T0: 120, Tc: 292, Fluence: 2, PulseDuration: 0.1,
			Wavelength: 800, Layers: 10,
			TStart: -1, TEnd: 20, OutputStep: 0.01,
		},
	},
}

func GetPreset(materialName, preset string) *Config {
	materialPresets, ok := Presets[materialName]
	if !ok {
		return nil
	}
	cfg, ok := materialPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(materialName string) []string {
	materialPresets, ok := Presets[materialName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(materialPresets))
	for name := range materialPresets {
		names = append(names, name)
	}
	return names
}
