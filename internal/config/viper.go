package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// FromViper overlays explicitly-set viper keys onto the defaults.
// Only keys the user actually set are applied, so the config file can
// stay sparse without clobbering defaults.
func FromViper() (Config, error) {
	cfg := Default()

	if viper.IsSet("engine") {
		cfg.Engine = viper.GetString("engine")
	}
	if viper.IsSet("voice") {
		cfg.Voice = viper.GetString("voice")
	}
	if viper.IsSet("rate") {
		cfg.Rate = viper.GetFloat64("rate")
	}
	if viper.IsSet("pitch") {
		cfg.Pitch = viper.GetFloat64("pitch")
	}
	if viper.IsSet("volume") {
		cfg.Volume = viper.GetFloat64("volume")
	}
	if viper.IsSet("chunk_size") {
		cfg.ChunkSize = viper.GetInt("chunk_size")
	}
	if viper.IsSet("plain") {
		cfg.Plain = viper.GetBool("plain")
	}

	if viper.IsSet("piper.model") {
		cfg.Piper.ModelPath = viper.GetString("piper.model")
	}
	if viper.IsSet("piper.config") {
		cfg.Piper.ConfigPath = viper.GetString("piper.config")
	}
	if viper.IsSet("piper.sample_rate") {
		cfg.Piper.SampleRate = viper.GetInt("piper.sample_rate")
	}

	if viper.IsSet("gtts.language") {
		cfg.GTTS.Language = viper.GetString("gtts.language")
	}
	if viper.IsSet("gtts.requests_per_minute") {
		cfg.GTTS.RequestsPerMinute = viper.GetInt("gtts.requests_per_minute")
	}

	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Dir = viper.GetString("cache.dir")
	}
	if viper.IsSet("cache.memory_mb") {
		cfg.Cache.MemoryMB = viper.GetInt("cache.memory_mb")
	}
	if viper.IsSet("cache.disk_mb") {
		cfg.Cache.DiskMB = viper.GetInt("cache.disk_mb")
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
