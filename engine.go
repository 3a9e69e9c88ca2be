package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"

	"github.com/recite-sh/recite/internal/audio"
	"github.com/recite-sh/recite/internal/cache"
	"github.com/recite-sh/recite/internal/config"
	"github.com/recite-sh/recite/speech"
	"github.com/recite-sh/recite/speech/engines/gtts"
	"github.com/recite-sh/recite/speech/engines/mock"
	"github.com/recite-sh/recite/speech/engines/piper"
)

// mockCharDelay paces the mock engine's silent playback.
const mockCharDelay = 25 * time.Millisecond

// buildEngine constructs the configured synthesis engine. With
// "auto" it tries piper first (local, no network), then gtts.
func buildEngine(cfg config.Config) (speech.Engine, error) {
	store, err := buildCache(cfg.Cache)
	if err != nil {
		log.Warn("audio cache disabled", "error", err)
		store = nil
	}

	switch cfg.Engine {
	case config.EngineMock:
		return mock.New(mock.WithAutoPlayback(mockCharDelay)), nil

	case config.EnginePiper:
		return buildPiper(cfg, store)

	case config.EngineGTTS:
		return buildGTTS(cfg, store)

	case config.EngineAuto:
		eng, perr := buildPiper(cfg, store)
		if perr == nil {
			return eng, nil
		}
		eng, gerr := buildGTTS(cfg, store)
		if gerr == nil {
			log.Debug("piper unavailable, using gtts", "error", perr)
			return eng, nil
		}
		return nil, fmt.Errorf("%w: piper: %v; gtts: %v",
			speech.ErrEngineUnavailable, perr, gerr)

	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

func buildPiper(cfg config.Config, store *cache.Store) (speech.Engine, error) {
	sink, err := audio.NewPlayer(cfg.Piper.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", speech.ErrEngineUnavailable, err)
	}
	eng, err := piper.New(piper.Config{
		ModelPath:  cfg.Piper.ModelPath,
		ConfigPath: cfg.Piper.ConfigPath,
		SampleRate: cfg.Piper.SampleRate,
		Cache:      store,
		Logger:     log.Default(),
	}, sink)
	if err != nil {
		_ = sink.Close()
		return nil, err
	}
	return eng, nil
}

func buildGTTS(cfg config.Config, store *cache.Store) (speech.Engine, error) {
	sink, err := audio.NewPlayer(gtts.DefaultSampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", speech.ErrEngineUnavailable, err)
	}
	eng, err := gtts.New(gtts.Config{
		Language:          cfg.GTTS.Language,
		RequestsPerMinute: cfg.GTTS.RequestsPerMinute,
		Cache:             store,
		Logger:            log.Default(),
	}, sink)
	if err != nil {
		_ = sink.Close()
		return nil, err
	}
	return eng, nil
}

// buildCache opens the audio cache per configuration. A nil store with
// a nil error means caching is simply turned off.
func buildCache(cfg config.CacheConfig) (*cache.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dir := cfg.Dir
	if dir == "" {
		var err error
		dir, err = defaultCacheDir()
		if err != nil {
			return nil, err
		}
	}
	return cache.NewStore(cache.Options{
		MemoryCapacity: int64(cfg.MemoryMB) << 20,
		DiskPath:       dir,
		DiskCapacity:   int64(cfg.DiskMB) << 20,
	})
}

func defaultCacheDir() (string, error) {
	return gap.NewScope(gap.User, "recite").CacheDir()
}
