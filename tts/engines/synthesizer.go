package engines

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lectio-app/lectio/internal/cache"
	"github.com/lectio-app/lectio/tts"
	"golang.org/x/time/rate"
)

// Synthesizer speaks text on the audio device. It implements
// tts.Synthesizer on top of an Engine and an AudioPlayer.
type Synthesizer struct {
	engine  tts.Engine
	player  tts.AudioPlayer
	limiter *rate.Limiter
	cache   *cache.Manager
	logger  *log.Logger
}

// SynthesizerOption configures a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithCache stores synthesized audio so repeated sentences skip the engine.
func WithCache(m *cache.Manager) SynthesizerOption {
	return func(s *Synthesizer) { s.cache = m }
}

// WithSynthesizerLogger sets the logger.
func WithSynthesizerLogger(l *log.Logger) SynthesizerOption {
	return func(s *Synthesizer) { s.logger = l }
}

// NewSynthesizer creates a Synthesizer. Engine invocations are limited to
// cfg.SynthesisRate per second with a burst of cfg.SynthesisBurst.
func NewSynthesizer(engine tts.Engine, player tts.AudioPlayer, cfg tts.Config, opts ...SynthesizerOption) *Synthesizer {
	limit := rate.Inf
	if cfg.SynthesisRate > 0 {
		limit = rate.Limit(cfg.SynthesisRate)
	}
	s := &Synthesizer{
		engine:  engine,
		player:  player,
		limiter: rate.NewLimiter(limit, max(cfg.SynthesisBurst, 1)),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available implements tts.Synthesizer.
func (s *Synthesizer) Available() error {
	if s.engine == nil || s.player == nil {
		return tts.ErrSynthesisUnavailable
	}
	if err := s.engine.Available(); err != nil {
		return fmt.Errorf("%w: %w", tts.ErrSynthesisUnavailable, err)
	}
	return nil
}

// Speak synthesizes text and starts playing it. It blocks until playback
// has started.
func (s *Synthesizer) Speak(ctx context.Context, text string, voice tts.Voice) (tts.Playback, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, tts.ErrEmptyText
	}
	if s.engine == nil || s.player == nil {
		return nil, tts.ErrSynthesisUnavailable
	}

	audio, err := s.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.player.Play(audio)
}

// Synthesize returns audio for text, from the cache when possible.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Audio, error) {
	key := cache.Key(s.engine.Name(), voice.Language, strconv.FormatFloat(voice.Rate, 'f', 2, 64), text)
	if audio, ok := s.cached(key); ok {
		s.logger.Debug("speech cache hit", "chars", len(text))
		return audio, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	audio, err := s.engine.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, err
	}
	s.store(key, audio)
	return audio, nil
}

func (s *Synthesizer) cached(key string) (*tts.Audio, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	var audio tts.Audio
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&audio); err != nil {
		_ = s.cache.Delete(key)
		return nil, false
	}
	return &audio, true
}

func (s *Synthesizer) store(key string, audio *tts.Audio) {
	if s.cache == nil {
		return
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(audio); err != nil {
		s.logger.Warn("failed to encode speech for cache", "err", err)
		return
	}
	if err := s.cache.Put(key, buf.Bytes()); err != nil {
		s.logger.Debug("speech not cached", "err", err)
	}
}

var _ tts.Synthesizer = (*Synthesizer)(nil)
