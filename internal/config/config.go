package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"bactsim/internal/model"
	"bactsim/internal/sim"
)

const (
	DefaultHorizon    = 10.0
	DefaultSamples    = 100
	DefaultTolerance  = 1e-6
	DefaultIntegrator = "rk45"
)

type Config struct {
	Params     ParamsConfig `yaml:"params"`
	Horizon    float64      `yaml:"horizon"`
	Samples    int          `yaml:"samples"`
	Tolerance  float64      `yaml:"tolerance"`
	Integrator string       `yaml:"integrator"`
	Sweep      SweepConfig  `yaml:"sweep"`
}

type ParamsConfig struct {
	R         float64 `yaml:"r"`
	K         float64 `yaml:"k"`
	Threshold float64 `yaml:"threshold"`
	Alpha     float64 `yaml:"alpha"`
	Conc      float64 `yaml:"conc"`
	X0        float64 `yaml:"x0"`
	Y0        float64 `yaml:"y0"`
}

type SweepConfig struct {
	Param  string    `yaml:"param"`
	Values []float64 `yaml:"values"`
}

func DefaultConfig() *Config {
	p := model.DefaultParams()
	return &Config{
		Params: ParamsConfig{
			R:         p.R,
			K:         p.K,
			Threshold: p.T,
			Alpha:     p.Alpha,
			Conc:      p.C,
			X0:        p.X0,
			Y0:        p.Y0,
		},
		Horizon:    DefaultHorizon,
		Samples:    DefaultSamples,
		Tolerance:  DefaultTolerance,
		Integrator: DefaultIntegrator,
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

// ModelParams converts the YAML shape into the engine's parameter record.
func (c *Config) ModelParams() model.Params {
	return model.Params{
		R:     c.Params.R,
		K:     c.Params.K,
		T:     c.Params.Threshold,
		Alpha: c.Params.Alpha,
		C:     c.Params.Conc,
		X0:    c.Params.X0,
		Y0:    c.Params.Y0,
	}
}

// SimConfig converts the run settings into the engine's config.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Horizon:   c.Horizon,
		Samples:   c.Samples,
		Tolerance: c.Tolerance,
	}
}
