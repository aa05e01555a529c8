// Package config loads and saves run configuration and ships named presets
// for the supported materials.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ultrafast-lab/demag/internal/demag"
	"github.com/ultrafast-lab/demag/internal/solver"
)

const (
	DefaultT0            = 300.0
	DefaultFluence       = 2.5
	DefaultPulseDuration = 0.1
	DefaultWavelength    = 800.0
	DefaultLayers        = 10
)

// Config is the yaml-facing run description. Times are in ps, fluence in
// mJ/cm^2, wavelength in nm, matching the lab-units convention of Params.
type Config struct {
	Material        string  `yaml:"material"`
	T0              float64 `yaml:"t0"`
	Tc              float64 `yaml:"tc"`
	Fluence         float64 `yaml:"fluence"`
	PulseDuration   float64 `yaml:"pulse_duration"`
	Wavelength      float64 `yaml:"wavelength"`
	Layers          int     `yaml:"layers"`
	Substrate       bool    `yaml:"substrate"`
	SubstrateLayers int     `yaml:"substrate_layers"`

	TStart     float64 `yaml:"t_start"`
	TEnd       float64 `yaml:"t_end"`
	OutputStep float64 `yaml:"output_step"`
	Integrator string  `yaml:"integrator"`
	Tolerance  float64 `yaml:"tolerance"`
	MaxSteps   int     `yaml:"max_steps"`
	WallBudget string  `yaml:"wall_budget"`
}

func DefaultConfig() *Config {
	return &Config{
		Material:        "Ni",
		T0:              DefaultT0,
		Tc:              631,
		Fluence:         DefaultFluence,
		PulseDuration:   DefaultPulseDuration,
		Wavelength:      DefaultWavelength,
		Layers:          DefaultLayers,
		SubstrateLayers: 50,
		TStart:          -1,
		TEnd:            5,
		OutputStep:      0.005,
		Integrator:      "rk45",
		Tolerance:       1e-6,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToParams maps the config onto validated simulation parameters.
func (c *Config) ToParams() solver.Params {
	return solver.Params{
		Material:        c.Material,
		InitialTemp:     c.T0,
		CurieTemp:       c.Tc,
		Fluence:         c.Fluence,
		PulseDuration:   c.PulseDuration,
		Wavelength:      c.Wavelength,
		Layers:          c.Layers,
		Substrate:       c.Substrate,
		SubstrateLayers: c.SubstrateLayers,
	}
}

// ToRunConfig converts the ps-denominated window to the SI RunConfig,
// filling unset budgets from the defaults.
func (c *Config) ToRunConfig() demag.RunConfig {
	cfg := demag.DefaultRunConfig()
	cfg.TStart = c.TStart * 1e-12
	cfg.TEnd = c.TEnd * 1e-12
	cfg.OutputStep = c.OutputStep * 1e-12
	if c.Tolerance > 0 {
		cfg.Tolerance = c.Tolerance
	}
	if c.MaxSteps > 0 {
		cfg.MaxSteps = c.MaxSteps
	}
	if c.WallBudget != "" {
		if d, err := time.ParseDuration(c.WallBudget); err == nil {
			cfg.WallBudget = d
		}
	}
	return cfg
}
