// Package engines turns text into speech: the concrete engines, the
// fallback chain between them, and the Synthesizer the playback controller
// talks to.
package engines

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lectio-app/lectio/tts"
	"github.com/lectio-app/lectio/tts/engines/espeak"
	"github.com/lectio-app/lectio/tts/engines/mock"
	"github.com/lectio-app/lectio/tts/engines/piper"
)

// New builds the engine selected by cfg.Engine. "auto" prefers Piper and
// falls back to espeak-ng.
func New(cfg tts.Config, logger *log.Logger) (tts.Engine, error) {
	if logger == nil {
		logger = log.Default()
	}

	switch cfg.Engine {
	case "piper":
		return piper.New(cfg.Piper, logger), nil
	case "espeak":
		return espeak.New(cfg.Espeak, logger), nil
	case "mock":
		return mock.New(cfg.Mock), nil
	case "auto", "":
		return NewFallbackEngine(
			piper.New(cfg.Piper, logger),
			espeak.New(cfg.Espeak, logger),
			cfg.MaxEngineFailures,
			logger,
		), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", tts.ErrInvalidConfig, cfg.Engine)
	}
}
