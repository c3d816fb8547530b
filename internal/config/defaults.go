package config

import (
	"math/rand"
	"time"

	"html-presenter/internal/engine"
	"html-presenter/internal/scaler"
)

// DefaultPath is where Load looks when no path is given
const DefaultPath = "presenter.yml"

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	so := scaler.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
		},
		TLS: TLSConfig{
			MinVersion: "1.2",
		},
		Database: DatabaseConfig{
			Path: "./data/presenter.db",
		},
		Slides: SlidesConfig{
			Dir:         "./public/slides",
			Include:     []string{"**/*.html", "**/*.htm"},
			Watch:       true,
			MaxUploadMB: 32,
		},
		Viewer: ViewerConfig{
			Width:              1920,
			Height:             1080,
			TransitionDuration: 800 * time.Millisecond,
			AnimationDelay:     100 * time.Millisecond,
			LoadRescaleDelays:  []time.Duration{50 * time.Millisecond, 150 * time.Millisecond, 300 * time.Millisecond},
			ResizeRescaleDelay: 100 * time.Millisecond,
			InputRate:          10,
			InputBurst:         3,
			FrameInterval:      16 * time.Millisecond,
		},
		Scaler: ScalerConfig{
			MarginFactor:     so.MarginFactor,
			InitialDelay:     so.InitialDelay,
			MaxAttempts:      so.MaxAttempts,
			RetryInterval:    so.RetryInterval,
			MinContentWidth:  so.MinContentWidth,
			MinContentHeight: so.MinContentHeight,
			ResizeDebounce:   so.ResizeDebounce,
			VisibilityDelay:  so.VisibilityDelay,
			ElementStagger:   so.ElementStagger,
			ContainerStagger: so.ContainerStagger,
			ChildStagger:     so.ChildStagger,
			HintCooldown:     so.HintCooldown,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			MaxAge:         300,
		},
	}
}

// Options converts the section into controller options
func (s ScalerConfig) Options() scaler.Options {
	o := scaler.DefaultOptions()
	o.MarginFactor = s.MarginFactor
	o.InitialDelay = s.InitialDelay
	o.MaxAttempts = s.MaxAttempts
	o.RetryInterval = s.RetryInterval
	o.MinContentWidth = s.MinContentWidth
	o.MinContentHeight = s.MinContentHeight
	o.ResizeDebounce = s.ResizeDebounce
	o.VisibilityDelay = s.VisibilityDelay
	o.ElementStagger = s.ElementStagger
	o.ContainerStagger = s.ContainerStagger
	o.ChildStagger = s.ChildStagger
	o.HintCooldown = s.HintCooldown
	return o
}

// EngineConfig converts the viewer section into orchestrator settings
func (c ViewerConfig) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.Duration = c.TransitionDuration
	cfg.AnimationDelay = c.AnimationDelay
	cfg.LoadRescaleDelays = append([]time.Duration(nil), c.LoadRescaleDelays...)
	cfg.ResizeRescaleDelay = c.ResizeRescaleDelay
	cfg.SupersedePending = c.SupersedePending
	if effects, err := c.EffectSet(); err == nil {
		cfg.Picker = engine.SetPicker(rand.New(rand.NewSource(time.Now().UnixNano())), effects)
	}
	return cfg
}
