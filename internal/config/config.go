// Package config loads librasio settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/librasio/internal/capture"
	"github.com/ayusman/librasio/internal/crop"
	"github.com/ayusman/librasio/internal/detector"
	"github.com/ayusman/librasio/internal/gesture"
	"github.com/ayusman/librasio/internal/logger"
	"github.com/ayusman/librasio/internal/stabilizer"
)

// Recognition sources for a stream.
const (
	SourceLandmarks = "landmarks"
	SourceImage     = "image"
)

// Environment variables that override file settings.
const (
	EnvAddr          = "LIBRAS_ADDR"
	EnvDatabase      = "LIBRAS_DB"
	EnvClassifierURL = "LIBRAS_CLASSIFIER_URL"
	EnvLogLevel      = "LIBRAS_LOG_LEVEL"
)

// StreamConfig configures one classification stream.
type StreamConfig struct {
	// Source is "landmarks" (rule tables) or "image" (external classifier).
	Source     string            `yaml:"source"`
	ThumbJoint int               `yaml:"thumb_joint"`
	Stabilizer stabilizer.Config `yaml:"stabilizer"`

	CropFraction        float64 `yaml:"crop_fraction"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// Unknown is shown while nothing is recognized.
	Unknown  string `yaml:"unknown"`
	Mirror   bool   `yaml:"mirror"`
	Language string `yaml:"language"`
}

// Duration is a time.Duration written to YAML as "2s".
type Duration time.Duration

// Std returns the standard library duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	v, err := time.ParseDuration(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*d = Duration(v)
	return nil
}

// Config represents the application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
		// StaticDir overrides the web directory search.
		StaticDir string `yaml:"static_dir"`
	} `yaml:"server"`

	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	Camera struct {
		DeviceID  int `yaml:"device_id"`
		Width     int `yaml:"width"`
		Height    int `yaml:"height"`
		ActiveFPS int `yaml:"active_fps"`
		IdleFPS   int `yaml:"idle_fps"`
		// MotionThreshold is the percent of changed pixels that counts as
		// motion. Zero disables the motion gate.
		MotionThreshold float64  `yaml:"motion_threshold"`
		StillAfter      Duration `yaml:"still_after"`
	} `yaml:"camera"`

	Detector struct {
		detector.Config `yaml:",inline"`
		Script          string `yaml:"script"`
		// Mock replaces the landmark service with an empty detector.
		Mock bool `yaml:"mock"`
	} `yaml:"detector"`

	Streams struct {
		// Active is the stream fed frames at startup; empty starts idle.
		Active   string       `yaml:"active"`
		Alphabet StreamConfig `yaml:"alphabet"`
		Words    StreamConfig `yaml:"words"`
	} `yaml:"streams"`

	Classifier struct {
		URL     string   `yaml:"url"`
		Timeout Duration `yaml:"timeout"`
	} `yaml:"classifier"`

	Plugins struct {
		// Dir holds one subdirectory per plugin. Empty disables plugins.
		Dir     string   `yaml:"dir"`
		Timeout Duration `yaml:"timeout"`
	} `yaml:"plugins"`

	Log logger.Options `yaml:"log"`

	Tray struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tray"`

	Metrics struct {
		ProcessInterval Duration `yaml:"process_interval"`
	} `yaml:"metrics"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Addr = ":8080"

	home, _ := os.UserHomeDir()
	cfg.Store.Path = filepath.Join(home, ".librasio", "librasio.db")

	cfg.Camera.DeviceID = 0
	cfg.Camera.Width = 1280
	cfg.Camera.Height = 720
	cfg.Camera.ActiveFPS = 15
	cfg.Camera.IdleFPS = 2
	cfg.Camera.MotionThreshold = capture.DefaultMotionThreshold
	cfg.Camera.StillAfter = Duration(capture.DefaultStillAfter)

	cfg.Detector.Config = detector.DefaultConfig()

	cfg.Streams.Active = "words"
	cfg.Streams.Alphabet = StreamConfig{
		Source:              SourceImage,
		ThumbJoint:          int(gesture.ThumbJointIP),
		Stabilizer:          stabilizer.Config{Policy: stabilizer.PolicyMajority, Window: stabilizer.DefaultWindow, Hold: stabilizer.DefaultHold},
		CropFraction:        crop.DefaultFraction,
		ConfidenceThreshold: 0.70,
		Unknown:             "?",
		Language:            gesture.LangEnglish,
	}
	cfg.Streams.Words = StreamConfig{
		Source:              SourceLandmarks,
		ThumbJoint:          int(gesture.ThumbJointMCP),
		Stabilizer:          stabilizer.Config{Policy: stabilizer.PolicyDebounce, Window: stabilizer.DefaultWindow, Hold: stabilizer.DefaultHold},
		CropFraction:        crop.DefaultFraction,
		ConfidenceThreshold: 0.70,
		Unknown:             gesture.DefaultPlaceholder,
		Mirror:              gesture.DefaultMirror,
		Language:            gesture.LangEnglish,
	}

	cfg.Classifier.Timeout = Duration(2 * time.Second)

	cfg.Plugins.Dir = filepath.Join(home, ".librasio", "plugins")
	cfg.Plugins.Timeout = Duration(2 * time.Second)

	cfg.Log.Level = "info"
	cfg.Tray.Enabled = true
	cfg.Metrics.ProcessInterval = Duration(5 * time.Second)

	return cfg
}

// Load loads configuration from file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithFallback attempts to load configuration from multiple locations.
// Priority: explicit path > ~/.librasio.yaml > /etc/librasio/config.yaml > defaults.
func LoadWithFallback(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(homeDir, ".librasio.yaml")
		if _, err := os.Stat(userConfigPath); err == nil {
			return Load(userConfigPath)
		}
	}

	systemConfigPath := "/etc/librasio/config.yaml"
	if _, err := os.Stat(systemConfigPath); err == nil {
		return Load(systemConfigPath)
	}

	return DefaultConfig(), nil
}

// LoadEnvFile reads a dotenv file into the process environment. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from LIBRAS_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvClassifierURL); v != "" {
		c.Classifier.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Camera.ActiveFPS <= 0 || c.Camera.IdleFPS <= 0 {
		return fmt.Errorf("camera: fps must be positive (active %d, idle %d)", c.Camera.ActiveFPS, c.Camera.IdleFPS)
	}
	if c.Camera.MotionThreshold < 0 || c.Camera.MotionThreshold > 100 {
		return fmt.Errorf("camera: motion_threshold must be in [0,100], got %g", c.Camera.MotionThreshold)
	}
	switch c.Streams.Active {
	case "", "alphabet", "words":
	default:
		return fmt.Errorf("streams: unknown active stream %q", c.Streams.Active)
	}
	if err := c.Streams.Alphabet.validate(); err != nil {
		return fmt.Errorf("streams.alphabet: %w", err)
	}
	if err := c.Streams.Words.validate(); err != nil {
		return fmt.Errorf("streams.words: %w", err)
	}
	return nil
}

func (s StreamConfig) validate() error {
	switch s.Source {
	case SourceLandmarks, SourceImage:
	default:
		return fmt.Errorf("unknown source %q", s.Source)
	}
	if s.ThumbJoint != int(gesture.ThumbJointMCP) && s.ThumbJoint != int(gesture.ThumbJointIP) {
		return fmt.Errorf("thumb_joint must be %d or %d, got %d", gesture.ThumbJointMCP, gesture.ThumbJointIP, s.ThumbJoint)
	}
	if err := s.Stabilizer.Validate(); err != nil {
		return err
	}
	if !(s.CropFraction > 0 && s.CropFraction <= 1) {
		return fmt.Errorf("crop_fraction must be in (0,1], got %g", s.CropFraction)
	}
	if !(s.ConfidenceThreshold > 0 && s.ConfidenceThreshold < 1) {
		return fmt.Errorf("confidence_threshold must be in (0,1), got %g", s.ConfidenceThreshold)
	}
	if !gesture.SupportedLanguage(s.Language) {
		return fmt.Errorf("unsupported language %q", s.Language)
	}
	return nil
}

// Save saves the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
