// Package espeak drives espeak-ng, the formant synthesizer used when no
// neural voice is installed.
package espeak

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lectio-app/lectio/tts"
	"github.com/lectio-app/lectio/tts/engines/internal/proc"
)

const (
	minWPM = 80
	maxWPM = 450
)

// Engine synthesizes WAV audio with espeak-ng.
type Engine struct {
	cfg    tts.EspeakConfig
	logger *log.Logger

	lookPath func(string) (string, error)
}

// New creates an espeak-ng engine.
func New(cfg tts.EspeakConfig, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		cfg:      cfg,
		logger:   logger.WithPrefix("espeak"),
		lookPath: exec.LookPath,
	}
}

// Name implements tts.Engine.
func (e *Engine) Name() string { return "espeak" }

// Available checks that the binary is on PATH.
func (e *Engine) Available() error {
	if _, err := e.lookPath(e.cfg.Binary); err != nil {
		return fmt.Errorf("%w: espeak binary %q: %v", tts.ErrEngineNotAvailable, e.cfg.Binary, err)
	}
	return nil
}

// Synthesize implements tts.Engine.
func (e *Engine) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, tts.ErrEmptyText
	}
	binary, err := e.lookPath(e.cfg.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: espeak binary %q: %v", tts.ErrEngineNotAvailable, e.cfg.Binary, err)
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, e.args(voice)...)
	proc.Configure(cmd)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.logger.Debug("synthesizing", "chars", len(text))
	out, err := cmd.Output()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: espeak: %v: %s", tts.ErrGenerationFailed, err, strings.TrimSpace(stderr.String()))
	}

	audio := &tts.Audio{Data: out, Format: tts.FormatWAV}
	if err := readHeader(audio); err != nil {
		return nil, err
	}
	return audio, nil
}

func (e *Engine) args(voice tts.Voice) []string {
	name := e.cfg.Voice
	if name == "" {
		name = strings.ToLower(voice.Language)
	}
	return []string{"-v", name, "-s", strconv.Itoa(e.wordsPerMinute(voice.Rate)), "--stdout", "--stdin"}
}

// wordsPerMinute scales the configured speed by the voice rate, within what
// espeak-ng accepts.
func (e *Engine) wordsPerMinute(rate float64) int {
	if rate <= 0 {
		rate = 1
	}
	wpm := int(math.Round(float64(e.cfg.WordsPerMinute) * rate))
	return min(max(wpm, minWPM), maxWPM)
}

// readHeader fills in the format fields from a canonical RIFF header.
func readHeader(a *tts.Audio) error {
	d := a.Data
	if len(d) < 44 || string(d[0:4]) != "RIFF" || string(d[8:12]) != "WAVE" {
		return fmt.Errorf("%w: espeak output is not WAV", tts.ErrGenerationFailed)
	}
	a.Channels = int(binary.LittleEndian.Uint16(d[22:24]))
	a.SampleRate = int(binary.LittleEndian.Uint32(d[24:28]))
	bits := int(binary.LittleEndian.Uint16(d[34:36]))
	if a.Channels <= 0 || a.SampleRate <= 0 || bits != 16 {
		return fmt.Errorf("%w: unsupported espeak WAV (%d ch, %d Hz, %d bit)",
			tts.ErrInvalidAudioFormat, a.Channels, a.SampleRate, bits)
	}
	frames := (len(d) - 44) / (2 * a.Channels)
	a.Duration = time.Duration(frames) * time.Second / time.Duration(a.SampleRate)
	return nil
}

var _ tts.Engine = (*Engine)(nil)
