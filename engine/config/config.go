// Package config loads the application configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Carmen-Shannon/taganka/common"
	"github.com/Carmen-Shannon/taganka/engine/camera"
	"github.com/Carmen-Shannon/taganka/engine/kinematics"
	"github.com/Carmen-Shannon/taganka/engine/scene"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full application configuration.
type Config struct {
	LogLevel  string          `yaml:"logLevel"`
	Window    WindowConfig    `yaml:"window"`
	Assets    AssetsConfig    `yaml:"assets"`
	Wheels    WheelsConfig    `yaml:"wheels"`
	Camera    CameraConfig    `yaml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Profiler  ProfilerConfig  `yaml:"profiler"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`

	// FrameLimit caps the frame rate; zero leaves it uncapped.
	FrameLimit float64 `yaml:"frameLimit"`

	// SoftwareRenderer forces the fallback adapter.
	SoftwareRenderer bool `yaml:"softwareRenderer"`
}

type AssetsConfig struct {
	Wheel   string `yaml:"wheel"`
	Terrain string `yaml:"terrain"`

	// Workers bounds concurrent mesh decoding; zero uses one per CPU.
	Workers int `yaml:"workers"`
}

type WheelsConfig struct {
	TireRadius   float64        `yaml:"tireRadius"`
	WheelBase    float64        `yaml:"wheelBase"`
	SteeringRate float64        `yaml:"steeringRate"`
	Mount        common.Vector3 `yaml:"mount"`
}

type CameraConfig struct {
	Eye    common.Vector3 `yaml:"eye"`
	Center common.Vector3 `yaml:"center"`
	Up     common.Vector3 `yaml:"up"`
	Fov    float64        `yaml:"fov"`
	Near   float64        `yaml:"near"`
	Far    float64        `yaml:"far"`
}

type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Address       string `yaml:"address"`
	AllowedOrigin string `yaml:"allowedOrigin"`
}

type ProfilerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Window: WindowConfig{
			Title:  "taganka",
			Width:  1280,
			Height: 720,
		},
		Assets: AssetsConfig{
			Wheel:   "assets/wheel.glb",
			Terrain: "assets/taganka8.glb",
		},
		Wheels: WheelsConfig{
			TireRadius:   kinematics.DefaultTireRadius,
			WheelBase:    kinematics.DefaultWheelBase,
			SteeringRate: kinematics.DefaultSteeringRate,
			Mount:        scene.DefaultMount,
		},
		Camera: CameraConfig{
			Eye:    camera.DefaultEye,
			Center: camera.DefaultCenter,
			Up:     camera.DefaultUp,
			Fov:    camera.DefaultFov,
			Near:   camera.DefaultNear,
			Far:    camera.DefaultFar,
		},
		Telemetry: TelemetryConfig{
			Address: "127.0.0.1:8089",
		},
		Profiler: ProfilerConfig{
			Interval: time.Second,
		},
	}
}

// Load reads the YAML file at path over the defaults.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - *Config: the merged, validated configuration
//   - error: an I/O, decode or validation error
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r over the defaults. Unknown keys are rejected.
// An empty document yields the defaults.
//
// Parameters:
//   - r: the YAML source
//
// Returns:
//   - *Config: the merged, validated configuration
//   - error: a decode or validation error
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	_, levelErr := zap.ParseAtomicLevel(c.LogLevel)
	check(levelErr == nil, "unknown log level %q", c.LogLevel)
	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	check(c.Window.FrameLimit >= 0, "frame limit %v must not be negative", c.Window.FrameLimit)
	check(c.Assets.Wheel != "", "wheel asset path is required")
	check(c.Assets.Workers >= 0, "asset workers %d must not be negative", c.Assets.Workers)
	check(c.Wheels.TireRadius > 0, "tire radius %v must be positive", c.Wheels.TireRadius)
	check(c.Wheels.WheelBase > 0, "wheelbase %v must be positive", c.Wheels.WheelBase)
	check(c.Camera.Fov > 0 && c.Camera.Fov < 180, "field of view %v must be in (0, 180)", c.Camera.Fov)
	check(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near, "clip planes %v..%v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far)
	check(c.Camera.Up.Magnitude() > 0, "camera up vector must be non-zero")
	check(!c.Telemetry.Enabled || c.Telemetry.Address != "", "telemetry address is required when enabled")
	return err
}

// NewLogger builds a production JSON logger at the configured level.
//
// Returns:
//   - *zap.Logger: the logger
//   - error: an unknown level or a sink error
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}
