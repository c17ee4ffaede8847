// Package config loads application-level defaults from the user's config
// file and environment. Per-book runtime settings (speed, pauses, positions)
// live in durable storage instead, owned by the engine.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds app-level defaults applied when a book has no persisted
// settings of its own.
type Config struct {
	WPM                int           `mapstructure:"wpm"`
	PunctuationPauseMs int           `mapstructure:"punctuation_pause_ms"`
	CountdownFrom      int           `mapstructure:"countdown_from"`
	CountdownInterval  time.Duration `mapstructure:"countdown_interval"`
	StateDir           string        `mapstructure:"state_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		WPM:                300,
		PunctuationPauseMs: 100,
		CountdownFrom:      3,
		CountdownInterval:  800 * time.Millisecond,
	}
}

// Load reads skim.yml from the user config directory, applying SKIM_*
// environment overrides. A missing file is not an error; defaults apply.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("skim")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "skim"))
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix("skim")
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("wpm", def.WPM)
	v.SetDefault("punctuation_pause_ms", def.PunctuationPauseMs)
	v.SetDefault("countdown_from", def.CountdownFrom)
	v.SetDefault("countdown_interval", def.CountdownInterval)
	v.SetDefault("state_dir", def.StateDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return def, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return def, err
	}
	return cfg, nil
}
