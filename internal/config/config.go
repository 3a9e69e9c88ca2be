// Package config holds the runtime configuration for recite. Values
// layer in order: built-in defaults, the YAML config file (via viper),
// then RECITE_* environment variables. Command line flags are applied
// last by the CLI itself.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/recite-sh/recite/speech"
)

// Engine names accepted in configuration.
const (
	EnginePiper = "piper"
	EngineGTTS  = "gtts"
	EngineMock  = "mock"
	EngineAuto  = "auto" // first available of piper, gtts
)

// Config is the full runtime configuration.
type Config struct {
	Engine    string  `env:"ENGINE" yaml:"engine"`
	Voice     string  `env:"VOICE" yaml:"voice"`
	Rate      float64 `env:"RATE" yaml:"rate"`
	Pitch     float64 `env:"PITCH" yaml:"pitch"`
	Volume    float64 `env:"VOLUME" yaml:"volume"`
	ChunkSize int     `env:"CHUNK_SIZE" yaml:"chunk_size"`

	// Plain disables the interactive UI and prints progress as log
	// lines instead.
	Plain bool `env:"PLAIN" yaml:"plain"`

	Piper PiperConfig `envPrefix:"PIPER_" yaml:"piper"`
	GTTS  GTTSConfig  `envPrefix:"GTTS_" yaml:"gtts"`
	Cache CacheConfig `envPrefix:"CACHE_" yaml:"cache"`
}

// PiperConfig configures the piper engine.
type PiperConfig struct {
	ModelPath  string `env:"MODEL" yaml:"model"`
	ConfigPath string `env:"CONFIG" yaml:"config"`
	SampleRate int    `env:"SAMPLE_RATE" yaml:"sample_rate"`
}

// GTTSConfig configures the gtts engine.
type GTTSConfig struct {
	Language          string `env:"LANGUAGE" yaml:"language"`
	RequestsPerMinute int    `env:"RPM" yaml:"requests_per_minute"`
}

// CacheConfig configures the synthesized-audio cache.
type CacheConfig struct {
	Enabled  bool   `env:"ENABLED" yaml:"enabled"`
	Dir      string `env:"DIR" yaml:"dir"`
	MemoryMB int    `env:"MEMORY_MB" yaml:"memory_mb"`
	DiskMB   int    `env:"DISK_MB" yaml:"disk_mb"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine:    EngineAuto,
		Rate:      1.0,
		Pitch:     1.0,
		Volume:    1.0,
		ChunkSize: speech.DefaultMaxChunkLen,
		Piper: PiperConfig{
			SampleRate: 22050,
		},
		GTTS: GTTSConfig{
			Language:          "en",
			RequestsPerMinute: 50,
		},
		Cache: CacheConfig{
			Enabled:  true,
			MemoryMB: 64,
			DiskMB:   512,
		},
	}
}

// ApplyEnv overlays RECITE_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "RECITE_"}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// Validate checks cross-field consistency and value ranges.
func (c Config) Validate() error {
	switch c.Engine {
	case EnginePiper, EngineGTTS, EngineMock, EngineAuto:
	default:
		return fmt.Errorf("unknown engine %q (want %s, %s, %s or %s)",
			c.Engine, EnginePiper, EngineGTTS, EngineMock, EngineAuto)
	}
	if err := c.VoiceParams().Validate(); err != nil {
		return err
	}
	if c.ChunkSize <= 0 {
		return speech.ErrInvalidChunkSize
	}
	if c.Cache.Enabled && (c.Cache.MemoryMB < 0 || c.Cache.DiskMB < 0) {
		return fmt.Errorf("cache sizes must not be negative")
	}
	if c.GTTS.RequestsPerMinute <= 0 {
		return fmt.Errorf("gtts requests per minute must be positive")
	}
	return nil
}

// VoiceParams maps the configuration onto speech parameters.
func (c Config) VoiceParams() speech.VoiceParams {
	return speech.VoiceParams{
		Voice:  c.Voice,
		Rate:   c.Rate,
		Pitch:  c.Pitch,
		Volume: c.Volume,
	}
}

// WatchDebounce is how long file change bursts are coalesced before a
// document is re-read.
const WatchDebounce = 300 * time.Millisecond
