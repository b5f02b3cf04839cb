package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/spatialcore/internal/core/observability/log"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	src := `
origin:
  rebase_threshold: 5000
simulation:
  step_rate: 30
  max_steps_per_frame: 16
physics:
  gravity: [0, -1.62, 0]
log:
  level: debug
  encoding: console
`
	c, err := LoadYAML(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 5000.0, c.Origin.RebaseThreshold)
	assert.Equal(t, 30.0, c.Simulation.StepRate)
	assert.Equal(t, 16, c.Simulation.MaxStepsPerFrame)
	assert.Equal(t, [3]float32{0, -1.62, 0}, c.Physics.Gravity)
	assert.Equal(t, Default().Physics.SleepDelay, c.Physics.SleepDelay, "unset keys keep defaults")
	assert.Equal(t, log.LevelDebug, c.Log.Logger().Level)
	assert.Equal(t, "console", c.Log.Logger().Encoding)
}

func TestLoadYAMLEmptyInput(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero threshold", func(c *Config) { c.Origin.RebaseThreshold = 0 }},
		{"negative rate", func(c *Config) { c.Simulation.StepRate = -60 }},
		{"no steps", func(c *Config) { c.Simulation.MaxStepsPerFrame = 0 }},
		{"negative activity", func(c *Config) { c.Physics.KinematicActivityThreshold = -1 }},
		{"negative workers", func(c *Config) { c.Physics.Workers = -2 }},
		{"bad encoding", func(c *Config) { c.Log.Encoding = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadYAMLRejectsUnknownKeys(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("origin:\n  threshold: 5\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  step_rate: 120\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 120.0, c.Simulation.StepRate)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
