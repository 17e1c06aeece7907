// Package config loads respd's configuration, grounded on
// marmos91-dittofs's pkg/config (Load/MustLoad over a YAML file plus
// environment overrides) and the teacher's tcp.Config field set, which
// it expands with the idle-eviction, metrics and demo-store knobs
// SPEC_FULL.md §2 calls for.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tonge3199/respd/internal/logger"
)

// ServerConfig mirrors the teacher's tcp.Config (Address, MaxConnect,
// Timeout) plus the defaults spec.md §6 names explicitly.
type ServerConfig struct {
	Address              string        `mapstructure:"address"`
	MaxConnect           int           `mapstructure:"max_connect"`
	Backlog              int           `mapstructure:"backlog"`
	SessionBase          uint64        `mapstructure:"session_base"`
	RegistryCapacity     int           `mapstructure:"registry_capacity"`
	IdleCloseSeconds     time.Duration `mapstructure:"idle_close_seconds"`
	TickIntervalSeconds  time.Duration `mapstructure:"tick_interval_seconds"`
	MaxHeaderDigits      int           `mapstructure:"max_header_digits"`
	ReadBufferSize       int           `mapstructure:"read_buffer_size"`
}

// MetricsConfig controls the admin HTTP surface (internal/admin).
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// DemoConfig controls the badger-backed demo store the cmd/respd/demo
// handlers sit on top of.
type DemoConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DataDir string `mapstructure:"data_dir"`
}

// Config is the root, resolved configuration.
type Config struct {
	Server  ServerConfig     `mapstructure:"server"`
	Logger  logger.Settings  `mapstructure:"logger"`
	Metrics MetricsConfig    `mapstructure:"metrics"`
	Demo    DemoConfig       `mapstructure:"demo"`
}

// Default returns the spec-mandated defaults: 3600s idle-close, 600s
// tick interval, backlog 128, registry capacity 1024, session ids
// starting at 1000.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:             "127.0.0.1:6380",
			MaxConnect:          10000,
			Backlog:             128,
			SessionBase:         1000,
			RegistryCapacity:    1024,
			IdleCloseSeconds:    3600 * time.Second,
			TickIntervalSeconds: 600 * time.Second,
			MaxHeaderDigits:     20,
			ReadBufferSize:      4096,
		},
		Logger: logger.Settings{
			Level:  logger.LevelInfo,
			Stdout: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: "127.0.0.1:9120",
		},
		Demo: DemoConfig{
			Enabled: true,
			DataDir: "./data/respd-demo",
		},
	}
}

// Load resolves configuration from (in ascending priority) the built-in
// defaults, an optional YAML file at path, and RESPD_-prefixed
// environment variables — the same three-tier precedence
// cmd/dittofs/commands/root.go's --config flag plus env-var section
// documents.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RESPD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	setDefaults(v, def)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	cfg := def
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper, def Config) {
	v.SetDefault("server.address", def.Server.Address)
	v.SetDefault("server.max_connect", def.Server.MaxConnect)
	v.SetDefault("server.backlog", def.Server.Backlog)
	v.SetDefault("server.session_base", def.Server.SessionBase)
	v.SetDefault("server.registry_capacity", def.Server.RegistryCapacity)
	v.SetDefault("server.idle_close_seconds", def.Server.IdleCloseSeconds)
	v.SetDefault("server.tick_interval_seconds", def.Server.TickIntervalSeconds)
	v.SetDefault("server.max_header_digits", def.Server.MaxHeaderDigits)
	v.SetDefault("server.read_buffer_size", def.Server.ReadBufferSize)
	v.SetDefault("logger.level", def.Logger.Level)
	v.SetDefault("logger.stdout", def.Logger.Stdout)
	v.SetDefault("logger.filename", def.Logger.Filename)
	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.address", def.Metrics.Address)
	v.SetDefault("demo.enabled", def.Demo.Enabled)
	v.SetDefault("demo.data_dir", def.Demo.DataDir)
}
