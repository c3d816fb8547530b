package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"html-presenter/internal/models"
	"html-presenter/internal/scaler"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 800*time.Millisecond, cfg.Viewer.TransitionDuration)
	assert.Equal(t, scaler.DefaultOptions(), cfg.Scaler.Options())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Slides.Dir, cfg.Slides.Dir)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presenter.yml")
	yml := `
server:
  port: "9000"
viewer:
  transition_duration: 1200ms
  effects: [fade, cube]
scaler:
  margin_factor: 0.9
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))
	t.Setenv("PRESENTER_SERVER__HOST", "127.0.0.1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, 1200*time.Millisecond, cfg.Viewer.TransitionDuration)
	assert.InDelta(t, 0.9, cfg.Scaler.Options().MarginFactor, 1e-9)

	effects, err := cfg.Viewer.EffectSet()
	require.NoError(t, err)
	assert.Equal(t, []models.Effect{models.EffectFade, models.EffectCube}, effects)

	ec := cfg.Viewer.EngineConfig()
	assert.Equal(t, 1200*time.Millisecond, ec.Duration)
	for i := 0; i < 20; i++ {
		e := ec.Picker()
		assert.Contains(t, effects, e)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presenter.yml")
	require.NoError(t, os.WriteFile(path, []byte("viewer:\n  effects: [wobble]\n"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"tls without cert", func(c *Config) { c.TLS.Enabled = true }},
		{"bad tls version", func(c *Config) {
			c.TLS = TLSConfig{Enabled: true, CertFile: "a", KeyFile: "b", MinVersion: "2.0"}
		}},
		{"no database", func(c *Config) { c.Database.Path = "" }},
		{"zero duration", func(c *Config) { c.Viewer.TransitionDuration = 0 }},
		{"negative rescale", func(c *Config) { c.Viewer.LoadRescaleDelays = []time.Duration{-1} }},
		{"zero viewport", func(c *Config) { c.Viewer.Width = 0 }},
		{"bad margin", func(c *Config) { c.Scaler.MarginFactor = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yml")
	cfg := DefaultConfig()
	cfg.Server.Port = "7777"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7777", loaded.Server.Port)
	assert.Equal(t, cfg.Viewer.LoadRescaleDelays, loaded.Viewer.LoadRescaleDelays)
}
