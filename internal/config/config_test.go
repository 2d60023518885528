package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/librasio/internal/stabilizer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 1, cfg.Detector.MaxHands)
	assert.Equal(t, 0.7, cfg.Detector.MinConfidence)
	assert.Equal(t, SourceImage, cfg.Streams.Alphabet.Source)
	assert.Equal(t, stabilizer.PolicyMajority, cfg.Streams.Alphabet.Stabilizer.Policy)
	assert.Equal(t, SourceLandmarks, cfg.Streams.Words.Source)
	assert.Equal(t, 2, cfg.Streams.Words.ThumbJoint)
	assert.Equal(t, "...", cfg.Streams.Words.Unknown)
	assert.Equal(t, 1.0, cfg.Camera.MotionThreshold)
	assert.Equal(t, 2*time.Second, cfg.Camera.StillAfter.Std())
	assert.Equal(t, 2*time.Second, cfg.Plugins.Timeout.Std())
	assert.Equal(t, ".librasio", filepath.Base(filepath.Dir(cfg.Plugins.Dir)))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  addr: "127.0.0.1:9000"
detector:
  max_hands: 2
  script: /opt/hand_landmarks.py
streams:
  active: alphabet
  alphabet:
    source: landmarks
    crop_fraction: 0.7
    stabilizer:
      policy: debounce
      hold: 3
  words:
    mirror: true
    language: pt-BR
classifier:
  url: http://localhost:5000/predict
  timeout: 500ms
camera:
  motion_threshold: 0
  still_after: 5s
plugins:
  dir: /opt/librasio/plugins
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 2, cfg.Detector.MaxHands)
	assert.Equal(t, 0.7, cfg.Detector.MinConfidence, "unset keys keep defaults")
	assert.Equal(t, "/opt/hand_landmarks.py", cfg.Detector.Script)
	assert.Equal(t, "alphabet", cfg.Streams.Active)
	assert.Equal(t, SourceLandmarks, cfg.Streams.Alphabet.Source)
	assert.Equal(t, 0.7, cfg.Streams.Alphabet.CropFraction)
	assert.Equal(t, stabilizer.PolicyDebounce, cfg.Streams.Alphabet.Stabilizer.Policy)
	assert.Equal(t, 3, cfg.Streams.Alphabet.Stabilizer.Hold)
	assert.True(t, cfg.Streams.Words.Mirror)
	assert.Equal(t, "pt-BR", cfg.Streams.Words.Language)
	assert.Equal(t, 500*time.Millisecond, cfg.Classifier.Timeout.Std())
	assert.Zero(t, cfg.Camera.MotionThreshold, "zero disables the motion gate")
	assert.Equal(t, 5*time.Second, cfg.Camera.StillAfter.Std())
	assert.Equal(t, "/opt/librasio/plugins", cfg.Plugins.Dir)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadWithFallback_Explicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  path: /tmp/x.db\n"), 0644))

	cfg, err := LoadWithFallback(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.Store.Path)
}

func TestLoadWithFallback_UserFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".librasio.yaml"), []byte("server:\n  addr: \":7000\"\n"), 0644))

	cfg, err := LoadWithFallback("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAddr, ":9999")
	t.Setenv(EnvDatabase, "/data/l.db")
	t.Setenv(EnvClassifierURL, "http://model:8501/predict")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "/data/l.db", cfg.Store.Path)
	assert.Equal(t, "http://model:8501/predict", cfg.Classifier.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("LIBRAS_ADDR=:6060\n"), 0644))

	os.Unsetenv(EnvAddr)
	t.Cleanup(func() { os.Unsetenv(EnvAddr) })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, ":6060", os.Getenv(EnvAddr))

	assert.NoError(t, LoadEnvFile(filepath.Join(dir, "absent.env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad source", func(c *Config) { c.Streams.Words.Source = "audio" }},
		{"bad thumb joint", func(c *Config) { c.Streams.Words.ThumbJoint = 4 }},
		{"bad policy", func(c *Config) { c.Streams.Alphabet.Stabilizer.Policy = "median" }},
		{"zero window", func(c *Config) { c.Streams.Alphabet.Stabilizer.Window = 0 }},
		{"fraction too large", func(c *Config) { c.Streams.Alphabet.CropFraction = 1.2 }},
		{"threshold out of range", func(c *Config) { c.Streams.Alphabet.ConfidenceThreshold = 1 }},
		{"language", func(c *Config) { c.Streams.Words.Language = "fr" }},
		{"active stream", func(c *Config) { c.Streams.Active = "numbers" }},
		{"fps", func(c *Config) { c.Camera.ActiveFPS = 0 }},
		{"motion threshold", func(c *Config) { c.Camera.MotionThreshold = 150 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Streams.Words.Mirror = true

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Streams.Words.Mirror)
	assert.Equal(t, cfg.Classifier.Timeout, loaded.Classifier.Timeout)
}
