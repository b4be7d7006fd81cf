package config

// Range describes the sensible span of one model parameter, used for CLI
// help and for warning about out-of-range overrides.
type Range struct {
	Min, Max, Default, Step float64
	Description             string
}

// Ranges mirrors the reference parameter table.
var Ranges = map[string]Range{
	"r":         {0.1, 5.0, 1.0, 0.1, "growth rate"},
	"k":         {0.1, 1.1, 1.0, 0.05, "carrying capacity"},
	"threshold": {0.05, 1.0, 0.5, 0.05, "damage threshold"},
	"alpha":     {0.01, 5.0, 2.5, 0.02, "conversion coefficient (conc to damage)"},
	"conc":      {0.0, 2.0, 0.2, 0.05, "external concentration"},
	"x0":        {0.01, 1.0, 0.1, 0.01, "initial bacterial density"},
	"y0":        {0.0, 1.0, 0.0, 0.01, "initial damage"},
}

// ParamNames is the display order for parameter tables.
var ParamNames = []string{"r", "k", "threshold", "alpha", "conc", "x0", "y0"}

func presetWithHorizon(horizon float64) *Config {
	cfg := DefaultConfig()
	cfg.Horizon = horizon
	return cfg
}

// Presets are ready-made run configurations. The three horizons correspond
// to the short, default and long-run views of the same model.
var Presets = map[string]*Config{
	"default":  presetWithHorizon(DefaultHorizon),
	"longrun":  presetWithHorizon(30.0),
	"collapse": presetWithHorizon(6.0),
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}

// InRange reports whether a named parameter value sits inside its reference
// range. Unknown names report true; validation proper happens in the model.
func InRange(name string, value float64) bool {
	r, ok := Ranges[name]
	if !ok {
		return true
	}
	return value >= r.Min && value <= r.Max
}
