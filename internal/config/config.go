// Package config loads watchdeck configuration from file and
// environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"watchdeck/internal/core"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Stream    StreamConfig              `mapstructure:"stream"`
	Engine    EngineConfig              `mapstructure:"engine"`
	View      ViewConfig                `mapstructure:"view"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
	Notifiers map[string]NotifierConfig `mapstructure:"notifiers"`
	Debug     bool                      `mapstructure:"debug"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StreamConfig holds the upstream connection settings.
type StreamConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

// EngineConfig holds reconciliation loop settings.
type EngineConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	FrameBuffer  int           `mapstructure:"frame_buffer"`
}

// ViewConfig holds presentation settings.
type ViewConfig struct {
	ActiveWindow time.Duration `mapstructure:"active_window"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// NotifierConfig configures one side-channel sink.
type NotifierConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// Load reads configuration from file with environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// Defaults returns a config suitable for local development against the
// default upstream address.
func Defaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Stream: StreamConfig{
			Endpoint:       "ws://127.0.0.1:3000/ws",
			ReconnectDelay: 3 * time.Second,
		},
		Engine: EngineConfig{
			TickInterval: time.Second,
			FrameBuffer:  256,
		},
		View: ViewConfig{
			ActiveWindow: 60 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
	applyEnv(cfg)
	return cfg
}

// applyEnv overrides the endpoint from the environment, matching the
// upstream dashboard's deployment convention.
func applyEnv(cfg *Config) {
	if v := os.Getenv("STREAM_ENDPOINT"); v != "" {
		cfg.Stream.Endpoint = v
	}
}

// Validate checks the configuration. A malformed stream endpoint is a
// fatal startup error; everything else falls back to defaults.
func (c *Config) Validate() error {
	if c.Stream.Endpoint == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("stream.endpoint is required"))
	}
	u, err := url.Parse(c.Stream.Endpoint)
	if err != nil {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("stream.endpoint: %w", err))
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("stream.endpoint scheme must be ws or wss, got %q", u.Scheme))
	}
	if u.Host == "" {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("stream.endpoint has no host"))
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Stream.ReconnectDelay < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("stream.reconnect_delay is negative"))
	}
	if c.Engine.TickInterval < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("engine.tick_interval is negative"))
	}

	for name, n := range c.Notifiers {
		if n.Enabled && name == "webhook" && n.URL == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("notifiers.webhook.url is required when enabled"))
		}
	}
	return nil
}
