// Package config describes a world's tunables and loads them from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/spatialcore/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Origin     OriginConfig     `json:"origin" yaml:"origin"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Physics    PhysicsConfig    `json:"physics" yaml:"physics"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

type OriginConfig struct {
	// RebaseThreshold is the distance from the local origin past which the
	// reference point triggers a rebase.
	RebaseThreshold float64 `json:"rebase_threshold" yaml:"rebase_threshold"`
	// EnsureAbsolute gives every entity with only a local Position an
	// absolute one before each frame, so rebases recompute instead of subtract.
	EnsureAbsolute bool `json:"ensure_absolute" yaml:"ensure_absolute"`
}

type SimulationConfig struct {
	// StepRate is the fixed step frequency in Hz.
	StepRate         float64 `json:"step_rate" yaml:"step_rate"`
	MaxStepsPerFrame int     `json:"max_steps_per_frame" yaml:"max_steps_per_frame"`
}

type PhysicsConfig struct {
	Gravity                    [3]float32 `json:"gravity" yaml:"gravity"`
	Workers                    int        `json:"workers" yaml:"workers"`
	KinematicActivityThreshold float32    `json:"kinematic_activity_threshold" yaml:"kinematic_activity_threshold"`
	DynamicActivityThreshold   float32    `json:"dynamic_activity_threshold" yaml:"dynamic_activity_threshold"`
	SleepDelay                 float32    `json:"sleep_delay" yaml:"sleep_delay"`
}

type LogConfig struct {
	Level    string `json:"level" yaml:"level"`
	Encoding string `json:"encoding" yaml:"encoding"`
	Sampling bool   `json:"sampling" yaml:"sampling"`
}

func Default() Config {
	return Config{
		Origin: OriginConfig{RebaseThreshold: 1000, EnsureAbsolute: true},
		Simulation: SimulationConfig{
			StepRate:         60,
			MaxStepsPerFrame: 8,
		},
		Physics: PhysicsConfig{
			Gravity:                    [3]float32{0, -9.81, 0},
			Workers:                    1,
			KinematicActivityThreshold: 0.01,
			DynamicActivityThreshold:   0.05,
			SleepDelay:                 0.5,
		},
		Log: LogConfig{Level: "info", Encoding: "json"},
	}
}

// Load reads a YAML file. Keys missing from the file keep their defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadYAML(f)
}

// LoadYAML decodes YAML over Default and validates the result.
func LoadYAML(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if !positive(c.Origin.RebaseThreshold) {
		errs = append(errs, fmt.Errorf("origin.rebase_threshold must be positive, got %v", c.Origin.RebaseThreshold))
	}
	if !positive(c.Simulation.StepRate) {
		errs = append(errs, fmt.Errorf("simulation.step_rate must be positive, got %v", c.Simulation.StepRate))
	}
	if c.Simulation.MaxStepsPerFrame < 1 {
		errs = append(errs, fmt.Errorf("simulation.max_steps_per_frame must be at least 1, got %d", c.Simulation.MaxStepsPerFrame))
	}
	if c.Physics.KinematicActivityThreshold < 0 || c.Physics.DynamicActivityThreshold < 0 {
		errs = append(errs, errors.New("physics activity thresholds must not be negative"))
	}
	if c.Physics.SleepDelay < 0 {
		errs = append(errs, fmt.Errorf("physics.sleep_delay must not be negative, got %v", c.Physics.SleepDelay))
	}
	if c.Physics.Workers < 0 {
		errs = append(errs, fmt.Errorf("physics.workers must not be negative, got %d", c.Physics.Workers))
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.encoding must be json or console, got %q", c.Log.Encoding))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Logger returns the logger settings in the form the log package expects.
func (c LogConfig) Logger() log.Config {
	return log.Config{
		Level:    log.ParseLevel(c.Level),
		Encoding: c.Encoding,
		Sampling: c.Sampling,
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
