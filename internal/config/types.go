package config

import "time"

// Config is the top-level presenter configuration, corresponding to presenter.yml
type Config struct {
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	TLS      TLSConfig      `yaml:"tls" koanf:"tls"`
	Database DatabaseConfig `yaml:"database" koanf:"database"`
	Slides   SlidesConfig   `yaml:"slides" koanf:"slides"`
	Viewer   ViewerConfig   `yaml:"viewer" koanf:"viewer"`
	Scaler   ScalerConfig   `yaml:"scaler" koanf:"scaler"`
	CORS     CORSConfig     `yaml:"cors" koanf:"cors"`
}

// ServerConfig holds the listen address
type ServerConfig struct {
	Host string `yaml:"host" koanf:"host"`
	Port string `yaml:"port" koanf:"port"`
}

// TLSConfig holds HTTPS settings
type TLSConfig struct {
	Enabled    bool   `yaml:"enabled" koanf:"enabled"`
	CertFile   string `yaml:"cert_file" koanf:"cert_file"`
	KeyFile    string `yaml:"key_file" koanf:"key_file"`
	MinVersion string `yaml:"min_version" koanf:"min_version"`
}

// DatabaseConfig locates the SQLite database for remotes and the transition journal
type DatabaseConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// SlidesConfig describes the static default slide set and uploads
type SlidesConfig struct {
	Dir         string   `yaml:"dir" koanf:"dir"`
	Include     []string `yaml:"include" koanf:"include"`
	Exclude     []string `yaml:"exclude" koanf:"exclude"`
	Watch       bool     `yaml:"watch" koanf:"watch"`
	MaxUploadMB int64    `yaml:"max_upload_mb" koanf:"max_upload_mb"`
}

// ViewerConfig tunes transitions and input handling
type ViewerConfig struct {
	Width              float64         `yaml:"width" koanf:"width"`
	Height             float64         `yaml:"height" koanf:"height"`
	TransitionDuration time.Duration   `yaml:"transition_duration" koanf:"transition_duration"`
	AnimationDelay     time.Duration   `yaml:"animation_delay" koanf:"animation_delay"`
	LoadRescaleDelays  []time.Duration `yaml:"load_rescale_delays" koanf:"load_rescale_delays"`
	ResizeRescaleDelay time.Duration   `yaml:"resize_rescale_delay" koanf:"resize_rescale_delay"`
	Effects            []string        `yaml:"effects" koanf:"effects"`
	SupersedePending   bool            `yaml:"supersede_pending" koanf:"supersede_pending"`
	InputRate          float64         `yaml:"input_rate" koanf:"input_rate"`
	InputBurst         int             `yaml:"input_burst" koanf:"input_burst"`
	Autoplay           bool            `yaml:"autoplay" koanf:"autoplay"`
	FrameInterval      time.Duration   `yaml:"frame_interval" koanf:"frame_interval"`
}

// ScalerConfig tunes the controller inside every surface
type ScalerConfig struct {
	MarginFactor     float64       `yaml:"margin_factor" koanf:"margin_factor"`
	InitialDelay     time.Duration `yaml:"initial_delay" koanf:"initial_delay"`
	MaxAttempts      int           `yaml:"max_attempts" koanf:"max_attempts"`
	RetryInterval    time.Duration `yaml:"retry_interval" koanf:"retry_interval"`
	MinContentWidth  float64       `yaml:"min_content_width" koanf:"min_content_width"`
	MinContentHeight float64       `yaml:"min_content_height" koanf:"min_content_height"`
	ResizeDebounce   time.Duration `yaml:"resize_debounce" koanf:"resize_debounce"`
	VisibilityDelay  time.Duration `yaml:"visibility_delay" koanf:"visibility_delay"`
	ElementStagger   time.Duration `yaml:"element_stagger" koanf:"element_stagger"`
	ContainerStagger time.Duration `yaml:"container_stagger" koanf:"container_stagger"`
	ChildStagger     time.Duration `yaml:"child_stagger" koanf:"child_stagger"`
	HintCooldown     time.Duration `yaml:"hint_cooldown" koanf:"hint_cooldown"`
}

// CORSConfig controls cross-origin access to the API
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials" koanf:"allow_credentials"`
	MaxAge           int      `yaml:"max_age" koanf:"max_age"`
}
