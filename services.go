package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/lectio-app/lectio/internal/cache"
	"github.com/lectio-app/lectio/tts"
	"github.com/lectio-app/lectio/tts/audio"
	"github.com/lectio-app/lectio/tts/engines"
	ttsync "github.com/lectio-app/lectio/tts/sync"
	gap "github.com/muesli/go-app-paths"
)

// services is the playback stack: one audio device shared by recorded
// clips and synthesized speech, the clip cache, and the controller.
type services struct {
	cfg         tts.Config
	cache       *cache.Manager
	player      *audio.Player
	engine      tts.Engine
	synth       *engines.Synthesizer
	clips       *audio.ClipSource
	highlighter *ttsync.Highlighter
	controller  *tts.Controller
}

func newServices(cfg tts.Config) (*services, error) {
	logger := log.Default()
	s := &services{cfg: cfg, highlighter: ttsync.NewHighlighter()}

	if !cfg.Enabled {
		logger.Info("reading aloud disabled")
		s.controller = tts.NewController(nil, nil, s.highlighter, cfg, tts.WithLogger(logger))
		return s, nil
	}

	if cfg.Cache.Enabled {
		m, err := cache.NewManager(cfg.Cache.ToCacheConfig(audioCacheDir()), logger)
		if err != nil {
			// The disk tier is optional; fall back to memory only.
			logger.Warn("Could not open the audio cache on disk", "err", err)
			m, err = cache.NewManager(cfg.Cache.ToCacheConfig(""), logger)
			if err != nil {
				return nil, fmt.Errorf("unable to create audio cache: %w", err)
			}
		}
		if n := m.Prune(); n > 0 {
			logger.Debug("pruned stale audio", "entries", n)
		}
		s.cache = m
	}

	s.player = audio.NewPlayer(openDevice(cfg), audio.WithVolume(cfg.Volume), audio.WithLogger(logger))

	engine, err := engines.New(cfg, logger)
	if err != nil {
		_ = s.close()
		return nil, err
	}
	if err := engine.Available(); err != nil {
		logger.Warn("No speech engine available", "engine", engine.Name(), "err", err)
	}
	s.engine = engine
	s.synth = engines.NewSynthesizer(engine, s.player, cfg,
		engines.WithCache(s.cache),
		engines.WithSynthesizerLogger(logger))

	s.clips = audio.NewClipSource(s.player,
		audio.WithClipCache(s.cache),
		audio.WithClipTimeout(cfg.ClipTimeout),
		audio.WithClipLogger(logger))

	s.controller = tts.NewController(s.clips, s.synth, s.highlighter, cfg, tts.WithLogger(logger))
	return s, nil
}

// openDevice opens the system audio output. Without one, playback still
// runs its course on a silent device so the reader stays usable.
func openDevice(cfg tts.Config) audio.Device {
	dc := audio.DefaultDeviceConfig()
	dc.SampleRate = cfg.SampleRate

	dev, err := audio.NewOtoDevice(dc)
	if err != nil {
		log.Warn("No audio output, playback will be silent", "err", err)
		return audio.NewMockDevice(dc.SampleRate, dc.Channels, 1)
	}
	return dev
}

func audioCacheDir() string {
	dir, err := gap.NewScope(gap.User, "lectio").CacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "audio")
}

func (s *services) close() error {
	var errs []error
	if s.controller != nil {
		errs = append(errs, s.controller.Close())
	}
	if s.player != nil {
		errs = append(errs, s.player.Close())
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	return errors.Join(errs...)
}
