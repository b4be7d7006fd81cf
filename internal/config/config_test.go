package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10.0, cfg.Horizon)
	assert.Equal(t, 100, cfg.Samples)
	assert.Equal(t, "rk45", cfg.Integrator)
	assert.Equal(t, 0.5, cfg.Params.Threshold)
	assert.Equal(t, 2.5, cfg.Params.Alpha)
}

func TestModelParams(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.ModelParams()

	assert.Equal(t, cfg.Params.R, p.R)
	assert.Equal(t, cfg.Params.Threshold, p.T)
	assert.Equal(t, cfg.Params.Conc, p.C)
	require.NoError(t, p.Validate())
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Horizon = 6.0
	cfg.Params.Conc = 0.8
	cfg.Sweep = SweepConfig{Param: "conc", Values: []float64{0.2, 0.8}}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Horizon, loaded.Horizon)
	assert.Equal(t, cfg.Params.Conc, loaded.Params.Conc)
	assert.Equal(t, cfg.Sweep, loaded.Sweep)
}

func TestLoad_MissingFieldsKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("horizon: 30\nparams:\n  conc: 1.5\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30.0, cfg.Horizon)
	assert.Equal(t, 1.5, cfg.Params.Conc)
	// Untouched fields fall back to defaults.
	assert.Equal(t, 100, cfg.Samples)
	assert.Equal(t, 0.5, cfg.Params.Threshold)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("collapse")
	require.NotNil(t, cfg)
	assert.Equal(t, 6.0, cfg.Horizon)

	// Mutating the returned copy must not leak into the preset table.
	cfg.Horizon = 99
	assert.Equal(t, 6.0, GetPreset("collapse").Horizon)

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	assert.Len(t, names, 3)
	assert.Contains(t, names, "default")
	assert.Contains(t, names, "longrun")
	assert.Contains(t, names, "collapse")
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange("conc", 0.2))
	assert.False(t, InRange("conc", 3.0))
	assert.True(t, InRange("unknown", 1e9))
}
