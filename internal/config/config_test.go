package config_test

import (
	"errors"
	"testing"

	"github.com/spf13/viper"

	"github.com/recite-sh/recite/internal/config"
	"github.com/recite-sh/recite/speech"
)

func TestDefaultIsValid(t *testing.T) {
	if err := config.Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown engine", func(c *config.Config) { c.Engine = "espeak" }},
		{"rate out of range", func(c *config.Config) { c.Rate = 3.0 }},
		{"volume out of range", func(c *config.Config) { c.Volume = 1.5 }},
		{"zero chunk size", func(c *config.Config) { c.ChunkSize = 0 }},
		{"negative cache", func(c *config.Config) { c.Cache.MemoryMB = -1 }},
		{"zero gtts rpm", func(c *config.Config) { c.GTTS.RequestsPerMinute = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidateWrapsVoiceParamErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Pitch = 5
	if err := cfg.Validate(); !errors.Is(err, speech.ErrInvalidVoiceParams) {
		t.Errorf("Validate() = %v, want ErrInvalidVoiceParams", err)
	}
}

func TestVoiceParamsMapping(t *testing.T) {
	cfg := config.Default()
	cfg.Voice = "en_US-amy-medium"
	cfg.Rate = 1.5
	p := cfg.VoiceParams()
	if p.Voice != "en_US-amy-medium" || p.Rate != 1.5 || p.Pitch != 1.0 || p.Volume != 1.0 {
		t.Errorf("VoiceParams() = %+v", p)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RECITE_ENGINE", "mock")
	t.Setenv("RECITE_RATE", "1.25")
	t.Setenv("RECITE_PIPER_MODEL", "/models/amy.onnx")
	t.Setenv("RECITE_CACHE_ENABLED", "false")

	cfg := config.Default()
	if err := config.ApplyEnv(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Engine != "mock" {
		t.Errorf("Engine = %q, want mock", cfg.Engine)
	}
	if cfg.Rate != 1.25 {
		t.Errorf("Rate = %v, want 1.25", cfg.Rate)
	}
	if cfg.Piper.ModelPath != "/models/amy.onnx" {
		t.Errorf("Piper.ModelPath = %q", cfg.Piper.ModelPath)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be overridden to false")
	}
}

func TestFromViperOverlaysOnlySetKeys(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("engine", "mock")
	viper.Set("rate", 0.75)
	viper.Set("piper.model", "/models/libritts.onnx")

	cfg, err := config.FromViper()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine != "mock" {
		t.Errorf("Engine = %q, want mock", cfg.Engine)
	}
	if cfg.Rate != 0.75 {
		t.Errorf("Rate = %v, want 0.75", cfg.Rate)
	}
	if cfg.Piper.ModelPath != "/models/libritts.onnx" {
		t.Errorf("Piper.ModelPath = %q", cfg.Piper.ModelPath)
	}
	// Untouched keys keep their defaults.
	if cfg.Volume != 1.0 || cfg.ChunkSize != speech.DefaultMaxChunkLen {
		t.Errorf("defaults clobbered: %+v", cfg)
	}
}

func TestFromViperRejectsInvalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("engine", "nonsense")
	if _, err := config.FromViper(); err == nil {
		t.Error("FromViper with bad engine should fail")
	}
}
