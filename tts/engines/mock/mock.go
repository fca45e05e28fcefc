// Package mock provides a silent TTS engine for tests and for running
// without any speech software installed.
package mock

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/lectio-app/lectio/tts"
)

const sampleRate = 22050

// Engine produces silence sized to the text.
type Engine struct {
	cfg tts.MockConfig

	mu          sync.Mutex
	unavailable error
	failure     error
	texts       []string
}

// New creates a mock engine.
func New(cfg tts.MockConfig) *Engine {
	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = tts.DefaultMockConfig().WordsPerMinute
	}
	return &Engine{cfg: cfg}
}

// Name implements tts.Engine.
func (e *Engine) Name() string { return "mock" }

// Available returns the error set by SetUnavailable.
func (e *Engine) Available() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unavailable
}

// SetUnavailable makes Available return err. Pass nil to restore.
func (e *Engine) SetUnavailable(err error) {
	e.mu.Lock()
	e.unavailable = err
	e.mu.Unlock()
}

// SetFailure makes every Synthesize call fail with err. Pass nil to restore.
func (e *Engine) SetFailure(err error) {
	e.mu.Lock()
	e.failure = err
	e.mu.Unlock()
}

// CallCount returns the number of Synthesize calls.
func (e *Engine) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.texts)
}

// Texts returns every text passed to Synthesize.
func (e *Engine) Texts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.texts...)
}

// Synthesize implements tts.Engine.
func (e *Engine) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Audio, error) {
	e.mu.Lock()
	e.texts = append(e.texts, text)
	failure := e.failure
	e.mu.Unlock()

	if failure != nil {
		return nil, failure
	}
	if e.cfg.FailureRate > 0 && rand.Float64() < e.cfg.FailureRate {
		return nil, tts.ErrGenerationFailed
	}
	if strings.TrimSpace(text) == "" {
		return nil, tts.ErrEmptyText
	}

	if e.cfg.GenerationDelay > 0 {
		select {
		case <-time.After(e.cfg.GenerationDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d := e.duration(text, voice.Rate)
	n := int(d.Seconds()*sampleRate) * 2
	return &tts.Audio{
		Data:       make([]byte, n),
		Format:     tts.FormatPCM16,
		SampleRate: sampleRate,
		Channels:   1,
		Duration:   tts.PCMDuration(n, sampleRate, 1),
	}, nil
}

func (e *Engine) duration(text string, rate float64) time.Duration {
	if rate <= 0 {
		rate = 1
	}
	words := max(len(strings.Fields(text)), 1)
	return time.Duration(float64(words) * float64(time.Minute) / (float64(e.cfg.WordsPerMinute) * rate))
}

var _ tts.Engine = (*Engine)(nil)
