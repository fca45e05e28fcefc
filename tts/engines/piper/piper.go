// Package piper runs the Piper neural TTS binary, one process per request.
package piper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lectio-app/lectio/tts"
	"github.com/lectio-app/lectio/tts/engines/internal/proc"
	"github.com/mitchellh/go-homedir"
)

// defaultSampleRate is what medium quality Piper voices produce when the
// model config cannot be read.
const defaultSampleRate = 22050

// Engine synthesizes speech with Piper. Every request starts a fresh process
// with the whole text already on stdin, which avoids the stdin/stdout
// deadlocks of a long-lived process.
type Engine struct {
	cfg    tts.PiperConfig
	logger *log.Logger

	lookPath func(string) (string, error)
}

// New creates a Piper engine.
func New(cfg tts.PiperConfig, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		cfg:      cfg,
		logger:   logger.WithPrefix("piper"),
		lookPath: exec.LookPath,
	}
}

// Name implements tts.Engine.
func (e *Engine) Name() string { return "piper" }

// ModelPath returns the .onnx model in use.
func (e *Engine) ModelPath() string {
	path := e.cfg.ModelPath
	if path == "" {
		path = filepath.Join(e.cfg.DataDir, e.cfg.Model+".onnx")
	}
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}
	return path
}

// Available checks that both the binary and the model can be found.
func (e *Engine) Available() error {
	if _, err := e.lookPath(e.cfg.Binary); err != nil {
		return fmt.Errorf("%w: piper binary %q: %v", tts.ErrEngineNotAvailable, e.cfg.Binary, err)
	}
	if _, err := os.Stat(e.ModelPath()); err != nil {
		return fmt.Errorf("%w: piper model %q: %v", tts.ErrEngineNotAvailable, e.ModelPath(), err)
	}
	return nil
}

// Synthesize implements tts.Engine. Output is raw 16-bit mono PCM at the
// model's sample rate.
func (e *Engine) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, tts.ErrEmptyText
	}
	binary, err := e.lookPath(e.cfg.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: piper binary %q: %v", tts.ErrEngineNotAvailable, e.cfg.Binary, err)
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	model := e.ModelPath()
	cmd := exec.CommandContext(ctx, binary, e.args(model, voice)...)
	proc.Configure(cmd)
	cmd.Stdin = strings.NewReader(text + "\n")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.logger.Debug("synthesizing", "chars", len(text), "model", filepath.Base(model))
	out, err := cmd.Output()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: piper: %v: %s", tts.ErrGenerationFailed, err, strings.TrimSpace(stderr.String()))
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("%w: piper produced no audio", tts.ErrGenerationFailed)
	}
	out = out[:len(out)&^1]

	rate := modelSampleRate(model)
	return &tts.Audio{
		Data:       out,
		Format:     tts.FormatPCM16,
		SampleRate: rate,
		Channels:   1,
		Duration:   tts.PCMDuration(len(out), rate, 1),
	}, nil
}

func (e *Engine) args(model string, voice tts.Voice) []string {
	args := []string{"--model", model, "--output-raw"}
	if voice.Rate > 0 && voice.Rate != 1 {
		args = append(args, "--length-scale", formatFloat(1/voice.Rate))
	}
	if e.cfg.NoiseScale > 0 {
		args = append(args, "--noise-scale", formatFloat(e.cfg.NoiseScale))
	}
	if e.cfg.NoiseW > 0 {
		args = append(args, "--noise-w", formatFloat(e.cfg.NoiseW))
	}
	if e.cfg.SentenceSilence > 0 {
		args = append(args, "--sentence-silence", formatFloat(e.cfg.SentenceSilence.Seconds()))
	}
	if e.cfg.SpeakerID > 0 {
		args = append(args, "--speaker", strconv.Itoa(e.cfg.SpeakerID))
	}
	return args
}

// modelSampleRate reads the sample rate from the JSON config Piper ships next
// to each model.
func modelSampleRate(model string) int {
	data, err := os.ReadFile(model + ".json")
	if err != nil {
		return defaultSampleRate
	}
	var cfg struct {
		Audio struct {
			SampleRate int `json:"sample_rate"`
		} `json:"audio"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil || cfg.Audio.SampleRate <= 0 {
		return defaultSampleRate
	}
	return cfg.Audio.SampleRate
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

var _ tts.Engine = (*Engine)(nil)
