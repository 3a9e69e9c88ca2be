// Package piper synthesizes speech with a local piper binary. Piper
// writes raw 16-bit mono PCM on stdout, which maps directly onto the
// playback driver.
package piper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/recite-sh/recite/internal/audio"
	"github.com/recite-sh/recite/internal/cache"
	"github.com/recite-sh/recite/speech"
	"github.com/recite-sh/recite/speech/engines"
)

const (
	// DefaultSampleRate matches the medium piper voice models.
	DefaultSampleRate = 22050

	synthesisTimeout = 30 * time.Second
	maxTextSize      = 5000
)

// Config describes a piper installation.
type Config struct {
	// ModelPath points at the .onnx voice model. Required.
	ModelPath string

	// ConfigPath points at the model's JSON config. Defaults to the
	// model path with a .json extension.
	ConfigPath string

	// SampleRate of the model's output. Defaults to DefaultSampleRate.
	SampleRate int

	// Cache, when set, stores synthesized PCM keyed by text and voice
	// parameters.
	Cache *cache.Store

	// Logger for synthesis diagnostics.
	Logger *log.Logger
}

// New builds a piper-backed engine playing through sink. It fails fast
// when the binary or the model is missing, so callers can fall back to
// another engine before any playback starts.
func New(cfg Config, sink audio.Sink) (speech.Engine, error) {
	if _, err := exec.LookPath("piper"); err != nil {
		return nil, fmt.Errorf("%w: piper not found in PATH", speech.ErrEngineUnavailable)
	}
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("%w: piper model path is empty", speech.ErrEngineUnavailable)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: model not accessible: %v", speech.ErrEngineUnavailable, err)
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = strings.TrimSuffix(cfg.ModelPath, filepath.Ext(cfg.ModelPath)) + ".json"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	voiceID := strings.TrimSuffix(filepath.Base(cfg.ModelPath), filepath.Ext(cfg.ModelPath))
	voices := []speech.Voice{{
		ID:       voiceID,
		Name:     voiceID,
		Language: languageFromModel(voiceID),
		Default:  true,
	}}

	e := &synthesizer{cfg: cfg, voiceID: voiceID}
	return engines.NewDriver(sink, cfg.SampleRate, e.synthesize,
		engines.WithVoices(voices),
		engines.WithLogger(cfg.Logger),
	), nil
}

type synthesizer struct {
	cfg     Config
	voiceID string
}

// synthesize runs one piper process per chunk with the text on stdin.
// Pitch has no piper control knob, so it only participates in the
// cache key.
func (e *synthesizer) synthesize(ctx context.Context, text string, params speech.VoiceParams) ([]byte, error) {
	if len(text) > maxTextSize {
		return nil, fmt.Errorf("text too long: %d characters (max %d)", len(text), maxTextSize)
	}

	key := cache.Key("piper", e.voiceID, text, params.Rate, params.Pitch)
	if e.cfg.Cache != nil {
		if pcm, ok := e.cfg.Cache.Get(key); ok {
			return pcm, nil
		}
	}

	// Piper's length scale is the inverse of speaking rate.
	args := []string{
		"--model", e.cfg.ModelPath,
		"--config", e.cfg.ConfigPath,
		"--output-raw",
		"--length-scale", fmt.Sprintf("%.2f", 1.0/params.Rate),
	}
	if params.Voice != "" && params.Voice != e.voiceID {
		args = append(args, "--speaker", params.Voice)
	}

	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "piper", args...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("piper timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("piper failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	pcm := stdout.Bytes()
	if len(pcm) == 0 {
		return nil, fmt.Errorf("piper produced no audio: %s", strings.TrimSpace(stderr.String()))
	}
	e.cfg.Logger.Debug("piper synthesis",
		"chars", len(text),
		"bytes", len(pcm),
		"took", time.Since(start))

	if e.cfg.Cache != nil {
		if err := e.cfg.Cache.Put(key, pcm); err != nil {
			e.cfg.Logger.Debug("cache write failed", "error", err)
		}
	}
	return pcm, nil
}

// languageFromModel extracts the language tag from piper model names
// like en_US-amy-medium.
func languageFromModel(model string) string {
	if i := strings.IndexByte(model, '-'); i > 0 {
		return model[:i]
	}
	return ""
}
