// Package config loads globe-server settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/globe-quiz/core"
	"github.com/signalsfoundry/globe-quiz/internal/logging"
	"github.com/signalsfoundry/globe-quiz/internal/observability"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds everything cmd/globe-server needs to start.
type Config struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	StreamAddr  string `yaml:"stream_addr"`
	CatalogPath string `yaml:"catalog_path"` // empty uses the built-in table

	FrameInterval  time.Duration `yaml:"frame_interval"`
	SettleDelay    time.Duration `yaml:"settle_delay"`
	SpinDuration   time.Duration `yaml:"spin_duration"`
	SpinRate       float64       `yaml:"spin_rate"`       // rad/s
	TransitionRate float64       `yaml:"transition_rate"` // rad/s
	AxisTiltDeg    float64       `yaml:"axis_tilt_deg"`

	QuizIdleTimeout time.Duration `yaml:"quiz_idle_timeout"` // 0 keeps sessions until EndQuiz

	Camera  Camera                      `yaml:"camera"`
	Log     logging.Config              `yaml:"log"`
	Tracing observability.TracingConfig `yaml:"tracing"`
}

// Camera is the YAML form of core.Camera.
type Camera struct {
	Position [3]float64 `yaml:"position"`
	Forward  [3]float64 `yaml:"forward"`
}

// Core converts c to a core.Camera.
func (c Camera) Core() core.Camera {
	return core.Camera{
		Position: core.Vec3{X: c.Position[0], Y: c.Position[1], Z: c.Position[2]},
		Forward:  core.Vec3{X: c.Forward[0], Y: c.Forward[1], Z: c.Forward[2]},
	}
}

// Default returns the settings used when no file is given.
func Default() Config {
	cam := core.DefaultCamera
	return Config{
		GRPCAddr:       ":50061",
		MetricsAddr:    ":9091",
		StreamAddr:     ":8081",
		FrameInterval:  time.Second / 60,
		SettleDelay:    3 * time.Second,
		SpinDuration:   3 * time.Second,
		SpinRate:       core.DefaultSpinRate,
		TransitionRate: core.DefaultTransitionRate,
		AxisTiltDeg:    core.DefaultAxisTiltDegrees,

		QuizIdleTimeout: 30 * time.Minute,
		Camera: Camera{
			Position: [3]float64{cam.Position.X, cam.Position.Y, cam.Position.Z},
			Forward:  [3]float64{cam.Forward.X, cam.Forward.Y, cam.Forward.Z},
		},
		Log:     logging.Config{Level: "info", Format: "text"},
		Tracing: observability.DefaultTracingConfig(),
	}
}

// Load reads path over Default, applies environment overrides and validates
// the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	cfg.Log = logging.ConfigFromEnv(cfg.Log)
	cfg.Tracing = observability.TracingConfigFromEnvWith(cfg.Tracing)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overlays GLOBE_* variables onto cfg.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"GLOBE_GRPC_ADDR":    &c.GRPCAddr,
		"GLOBE_METRICS_ADDR": &c.MetricsAddr,
		"GLOBE_STREAM_ADDR":  &c.StreamAddr,
		"GLOBE_CATALOG":      &c.CatalogPath,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"GLOBE_FRAME_INTERVAL": &c.FrameInterval,
		"GLOBE_SETTLE_DELAY":   &c.SettleDelay,
		"GLOBE_SPIN_DURATION":  &c.SpinDuration,
		"GLOBE_QUIZ_IDLE":      &c.QuizIdleTimeout,
	}
	for key, dst := range durations {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
		*dst = d
	}

	floatVars := map[string]*float64{
		"GLOBE_SPIN_RATE":       &c.SpinRate,
		"GLOBE_TRANSITION_RATE": &c.TransitionRate,
		"GLOBE_AXIS_TILT_DEG":   &c.AxisTiltDeg,
	}
	for key, dst := range floatVars {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
		*dst = f
	}
	return nil
}

// Validate rejects settings the driver cannot run with.
func (c Config) Validate() error {
	switch {
	case c.GRPCAddr == "":
		return fmt.Errorf("%w: grpc_addr is required", ErrInvalidConfig)
	case c.FrameInterval <= 0:
		return fmt.Errorf("%w: frame_interval must be positive", ErrInvalidConfig)
	case c.SettleDelay < 0:
		return fmt.Errorf("%w: settle_delay must not be negative", ErrInvalidConfig)
	case c.SpinDuration < 0:
		return fmt.Errorf("%w: spin_duration must not be negative", ErrInvalidConfig)
	case c.QuizIdleTimeout < 0:
		return fmt.Errorf("%w: quiz_idle_timeout must not be negative", ErrInvalidConfig)
	case !finite(c.SpinRate):
		return fmt.Errorf("%w: spin_rate must be finite", ErrInvalidConfig)
	case !finite(c.TransitionRate) || c.TransitionRate < 0:
		return fmt.Errorf("%w: transition_rate must be a non-negative number", ErrInvalidConfig)
	case !finite(c.AxisTiltDeg):
		return fmt.Errorf("%w: axis_tilt_deg must be finite", ErrInvalidConfig)
	}
	for _, v := range append(c.Camera.Position[:], c.Camera.Forward[:]...) {
		if !finite(v) {
			return fmt.Errorf("%w: camera vectors must be finite", ErrInvalidConfig)
		}
	}
	return nil
}

// AxisTilt returns the configured tilt in radians.
func (c Config) AxisTilt() float64 {
	return c.AxisTiltDeg * math.Pi / 180
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
