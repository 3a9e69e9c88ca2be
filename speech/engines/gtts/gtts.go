// Package gtts synthesizes speech through the gtts-cli tool, which
// talks to Google Translate's TTS endpoint. The MP3 it returns is
// decoded to PCM with ffmpeg, and requests are rate limited so the
// endpoint does not block us.
package gtts

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/recite-sh/recite/internal/audio"
	"github.com/recite-sh/recite/internal/cache"
	"github.com/recite-sh/recite/speech"
	"github.com/recite-sh/recite/speech/engines"
)

const (
	// DefaultSampleRate for the decoded PCM.
	DefaultSampleRate = 24000

	// defaultRequestsPerMinute is conservative enough to avoid bans.
	defaultRequestsPerMinute = 50

	synthesisTimeout = 60 * time.Second
	maxTextSize      = 5000
)

// Config describes the gtts engine.
type Config struct {
	// Language is the BCP 47 code passed to gtts-cli. Defaults to en.
	Language string

	// SampleRate of the decoded PCM. Defaults to DefaultSampleRate.
	SampleRate int

	// RequestsPerMinute bounds calls to the synthesis endpoint.
	RequestsPerMinute int

	// Cache, when set, stores decoded PCM keyed by text and voice
	// parameters. Caching matters more here than for local engines
	// since every miss is a network round trip.
	Cache *cache.Store

	// Logger for synthesis diagnostics.
	Logger *log.Logger
}

// New builds a gtts-backed engine playing through sink. Both gtts-cli
// and ffmpeg must be on PATH.
func New(cfg Config, sink audio.Sink) (speech.Engine, error) {
	if _, err := exec.LookPath("gtts-cli"); err != nil {
		return nil, fmt.Errorf("%w: gtts-cli not found in PATH", speech.ErrEngineUnavailable)
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg not found in PATH", speech.ErrEngineUnavailable)
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	voices := []speech.Voice{{
		ID:       cfg.Language,
		Name:     "Google Translate (" + cfg.Language + ")",
		Language: cfg.Language,
		Default:  true,
	}}

	e := &synthesizer{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
	}
	return engines.NewDriver(sink, cfg.SampleRate, e.synthesize,
		engines.WithVoices(voices),
		engines.WithLogger(cfg.Logger),
	), nil
}

type synthesizer struct {
	cfg     Config
	limiter *rate.Limiter
}

func (e *synthesizer) synthesize(ctx context.Context, text string, params speech.VoiceParams) ([]byte, error) {
	if len(text) > maxTextSize {
		return nil, fmt.Errorf("text too long: %d characters (max %d)", len(text), maxTextSize)
	}

	lang := e.cfg.Language
	if params.Voice != "" {
		lang = params.Voice
	}

	key := cache.Key("gtts", lang, text, params.Rate, params.Pitch)
	if e.cfg.Cache != nil {
		if pcm, ok := e.cfg.Cache.Get(key); ok {
			return pcm, nil
		}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	mp3, err := e.fetchMP3(ctx, text, lang)
	if err != nil {
		return nil, err
	}
	pcm, err := e.decodeToPCM(ctx, mp3, params.Rate)
	if err != nil {
		return nil, err
	}

	if e.cfg.Cache != nil {
		if err := e.cfg.Cache.Put(key, pcm); err != nil {
			e.cfg.Logger.Debug("cache write failed", "error", err)
		}
	}
	return pcm, nil
}

func (e *synthesizer) fetchMP3(ctx context.Context, text, lang string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "gtts-cli", "-l", lang, "-o", "-", text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("gtts-cli timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("gtts-cli failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("gtts-cli produced no audio: %s", strings.TrimSpace(stderr.String()))
	}
	e.cfg.Logger.Debug("gtts synthesis", "chars", len(text), "bytes", stdout.Len(), "took", time.Since(start))
	return stdout.Bytes(), nil
}

// decodeToPCM converts MP3 to 16-bit mono PCM. The speaking rate is
// applied with ffmpeg's atempo filter, whose supported range matches
// the accepted rate bounds.
func (e *synthesizer) decodeToPCM(ctx context.Context, mp3 []byte, rate float64) ([]byte, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", e.cfg.SampleRate),
	}
	if rate != 1.0 {
		args = append(args, "-filter:a", fmt.Sprintf("atempo=%.2f", rate))
	}
	args = append(args, "pipe:1")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdin = bytes.NewReader(mp3)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffmpeg timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no PCM: %s", strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
