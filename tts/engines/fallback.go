package engines

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lectio-app/lectio/tts"
)

// FallbackEngine wraps a primary engine with a secondary one. A failed
// primary request is retried on the fallback; after maxFailures consecutive
// failures the primary is abandoned for good.
type FallbackEngine struct {
	primary     tts.Engine
	fallback    tts.Engine
	maxFailures int
	logger      *log.Logger

	mu            sync.Mutex
	failures      int
	usingFallback bool
}

// NewFallbackEngine creates an engine with automatic fallback.
func NewFallbackEngine(primary, fallback tts.Engine, maxFailures int, logger *log.Logger) *FallbackEngine {
	if maxFailures < 1 {
		maxFailures = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FallbackEngine{
		primary:     primary,
		fallback:    fallback,
		maxFailures: maxFailures,
		logger:      logger,
	}
}

// Name returns the name of the engine currently serving requests.
func (f *FallbackEngine) Name() string {
	return f.active().Name()
}

// Available succeeds when either engine can run. An unavailable primary
// switches to the fallback.
func (f *FallbackEngine) Available() error {
	if f.isUsingFallback() {
		return f.fallback.Available()
	}

	primaryErr := f.primary.Available()
	if primaryErr == nil {
		return nil
	}
	fallbackErr := f.fallback.Available()
	if fallbackErr != nil {
		return errors.Join(primaryErr, fallbackErr)
	}

	f.mu.Lock()
	if !f.usingFallback {
		f.usingFallback = true
		f.logger.Warn("primary engine not available, switching to fallback",
			"primary", f.primary.Name(), "fallback", f.fallback.Name(), "err", primaryErr)
	}
	f.mu.Unlock()
	return nil
}

// Synthesize implements tts.Engine.
func (f *FallbackEngine) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Audio, error) {
	if f.isUsingFallback() {
		return f.fallback.Synthesize(ctx, text, voice)
	}

	audio, err := f.primary.Synthesize(ctx, text, voice)
	if err == nil {
		f.mu.Lock()
		if f.failures > 0 {
			f.logger.Info("primary engine recovered", "failures", f.failures)
			f.failures = 0
		}
		f.mu.Unlock()
		return audio, nil
	}
	if ctx.Err() != nil || errors.Is(err, tts.ErrEmptyText) {
		return nil, err
	}

	f.mu.Lock()
	f.failures++
	f.logger.Warn("primary engine failed", "attempt", f.failures, "max", f.maxFailures, "err", err)
	if f.failures >= f.maxFailures && !f.usingFallback {
		f.usingFallback = true
		f.logger.Warn("switching to fallback engine", "fallback", f.fallback.Name(), "failures", f.failures)
	}
	f.mu.Unlock()

	audio, fbErr := f.fallback.Synthesize(ctx, text, voice)
	if fbErr != nil {
		return nil, fmt.Errorf("both engines failed: %w", errors.Join(err, fbErr))
	}
	return audio, nil
}

// Status describes which engine is in use.
func (f *FallbackEngine) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.usingFallback {
		return fmt.Sprintf("Using fallback engine (primary failed %d times)", f.failures)
	}
	if f.failures > 0 {
		return fmt.Sprintf("Using primary engine (%d recent failures)", f.failures)
	}
	return "Using primary engine"
}

// Reset returns to the primary engine.
func (f *FallbackEngine) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = 0
	f.usingFallback = false
}

func (f *FallbackEngine) active() tts.Engine {
	if f.isUsingFallback() {
		return f.fallback
	}
	return f.primary
}

func (f *FallbackEngine) isUsingFallback() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usingFallback
}

var _ tts.Engine = (*FallbackEngine)(nil)
