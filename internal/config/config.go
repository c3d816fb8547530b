package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"html-presenter/internal/engine"
	"html-presenter/internal/models"
)

// EnvPrefix prefixes environment overrides: PRESENTER_SERVER__PORT -> server.port
const EnvPrefix = "PRESENTER_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PRESENTER_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validTLSVersions = map[string]uint16{
	"1.0": tls.VersionTLS10,
	"1.1": tls.VersionTLS11,
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	if c.TLS.Enabled {
		if c.TLS.CertFile == "" || c.TLS.KeyFile == "" {
			return fmt.Errorf("tls.cert_file and tls.key_file are required when TLS is enabled")
		}
		if _, ok := validTLSVersions[c.TLS.MinVersion]; !ok {
			return fmt.Errorf("invalid tls.min_version %q: must be one of 1.0, 1.1, 1.2, 1.3", c.TLS.MinVersion)
		}
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Slides.Dir == "" {
		return fmt.Errorf("slides.dir is required")
	}
	if c.Slides.MaxUploadMB <= 0 {
		return fmt.Errorf("slides.max_upload_mb must be positive")
	}

	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("viewer.width and viewer.height must be positive")
	}
	if c.Viewer.TransitionDuration <= 0 {
		return fmt.Errorf("viewer.transition_duration must be positive")
	}
	if c.Viewer.AnimationDelay < 0 || c.Viewer.ResizeRescaleDelay < 0 {
		return fmt.Errorf("viewer delays must be non-negative")
	}
	for _, d := range c.Viewer.LoadRescaleDelays {
		if d < 0 {
			return fmt.Errorf("viewer.load_rescale_delays must be non-negative")
		}
	}
	if c.Viewer.InputRate < 0 || c.Viewer.InputBurst < 0 {
		return fmt.Errorf("viewer.input_rate and viewer.input_burst must be non-negative")
	}
	if _, err := c.Viewer.EffectSet(); err != nil {
		return err
	}

	if err := c.Scaler.Options().Validate(); err != nil {
		return fmt.Errorf("scaler: %w", err)
	}
	return nil
}

// TLSVersion returns the minimum TLS version, defaulting to 1.2
func (c TLSConfig) TLSVersion() uint16 {
	if v, ok := validTLSVersions[c.MinVersion]; ok {
		return v
	}
	return tls.VersionTLS12
}

// Addr is the listen address
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// EffectSet returns the effects transitions may pick from. Empty means the
// whole catalog.
func (c ViewerConfig) EffectSet() ([]models.Effect, error) {
	if len(c.Effects) == 0 {
		return engine.Effects(), nil
	}
	out := make([]models.Effect, 0, len(c.Effects))
	for _, name := range c.Effects {
		e := models.Effect(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := engine.Lookup(e, models.DirectionNext); !ok {
			return nil, fmt.Errorf("invalid viewer.effects entry %q", name)
		}
		out = append(out, e)
	}
	return out, nil
}
