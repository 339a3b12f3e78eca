// Package config loads ucirun CLI configuration from a config file and
// UCIRUN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the CLI's resolved configuration.
type Config struct {
	// EnginePath is the UCI engine binary path or name.
	EnginePath string `mapstructure:"engine_path"`

	// EngineArgs are extra command-line arguments for the engine.
	EngineArgs []string `mapstructure:"engine_args"`

	// Depth is the default search depth.
	Depth int `mapstructure:"depth"`

	// SkillLevel is the engine strength (0-20) for best-move searches.
	SkillLevel int `mapstructure:"skill_level"`

	// QuiescenceWindow is the streaming-analysis silence window.
	QuiescenceWindow time.Duration `mapstructure:"quiescence_window"`

	// SearchTimeout, when positive, replaces the depth-scaled search
	// deadline with a fixed one.
	SearchTimeout time.Duration `mapstructure:"search_timeout"`

	// LogLevel is the zerolog level name (trace, debug, info, ...).
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from the given file path, falling back to
// ./ucirun.yaml and ~/.config/ucirun/ucirun.yaml when path is empty.
// A missing default file is not an error; a missing explicit one is.
// Environment variables (UCIRUN_DEPTH, UCIRUN_ENGINE_PATH, ...) override
// file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("engine_path", "stockfish")
	v.SetDefault("engine_args", []string{})
	v.SetDefault("depth", 12)
	v.SetDefault("skill_level", 10)
	v.SetDefault("quiescence_window", 500*time.Millisecond)
	v.SetDefault("search_timeout", time.Duration(0))
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("UCIRUN")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("ucirun")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ucirun")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.EnginePath == "" {
		return errors.New("config: engine_path must not be empty")
	}
	if c.Depth < 1 {
		return fmt.Errorf("config: depth %d, want >= 1", c.Depth)
	}
	if c.SkillLevel < 0 || c.SkillLevel > 20 {
		return fmt.Errorf("config: skill_level %d, want 0-20", c.SkillLevel)
	}
	return nil
}
