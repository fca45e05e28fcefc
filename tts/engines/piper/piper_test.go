package piper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/lectio-app/lectio/tts"
)

// fakePiper writes a shell script standing in for the piper binary.
func fakePiper(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "piper")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("failed to write fake piper: %v", err)
	}
	return path
}

func testConfig(binary string) tts.PiperConfig {
	cfg := tts.DefaultPiperConfig()
	cfg.Binary = binary
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestModelPath(t *testing.T) {
	cfg := tts.DefaultPiperConfig()
	cfg.DataDir = "/opt/voices"
	e := New(cfg, nil)
	if got := e.ModelPath(); got != filepath.Join("/opt/voices", "en_GB-alba-medium.onnx") {
		t.Errorf("Expected model under data dir, got %s", got)
	}

	cfg.ModelPath = "/models/custom.onnx"
	e = New(cfg, nil)
	if got := e.ModelPath(); got != "/models/custom.onnx" {
		t.Errorf("Expected explicit model path, got %s", got)
	}
}

func TestArgs(t *testing.T) {
	cfg := tts.DefaultPiperConfig()
	cfg.SpeakerID = 2
	e := New(cfg, nil)

	args := strings.Join(e.args("m.onnx", tts.Voice{Language: "en-GB", Rate: 0.5}), " ")
	for _, want := range []string{
		"--model m.onnx",
		"--output-raw",
		"--length-scale 2.000",
		"--noise-scale 0.667",
		"--noise-w 0.800",
		"--sentence-silence 0.200",
		"--speaker 2",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("Expected args to contain %q, got %q", want, args)
		}
	}

	args = strings.Join(e.args("m.onnx", tts.Voice{Rate: 1}), " ")
	if strings.Contains(args, "--length-scale") {
		t.Errorf("Expected no length scale at normal rate, got %q", args)
	}
}

func TestAvailable(t *testing.T) {
	binary := fakePiper(t, "exit 0")
	cfg := testConfig(binary)
	cfg.ModelPath = filepath.Join(t.TempDir(), "voice.onnx")

	e := New(cfg, nil)
	if err := e.Available(); !errors.Is(err, tts.ErrEngineNotAvailable) {
		t.Errorf("Expected ErrEngineNotAvailable for missing model, got %v", err)
	}

	if err := os.WriteFile(cfg.ModelPath, []byte("onnx"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := e.Available(); err != nil {
		t.Errorf("Expected engine to be available, got %v", err)
	}

	cfg.Binary = filepath.Join(t.TempDir(), "missing")
	if err := New(cfg, nil).Available(); !errors.Is(err, tts.ErrEngineNotAvailable) {
		t.Errorf("Expected ErrEngineNotAvailable for missing binary, got %v", err)
	}
}

func TestSynthesize(t *testing.T) {
	dir := t.TempDir()
	stdin := filepath.Join(dir, "stdin.txt")
	binary := fakePiper(t, "cat > '"+stdin+"'\nprintf 'abcde'")

	cfg := testConfig(binary)
	cfg.ModelPath = filepath.Join(dir, "voice.onnx")
	if err := os.WriteFile(cfg.ModelPath+".json", []byte(`{"audio":{"sample_rate":16000}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	audio, err := New(cfg, nil).Synthesize(context.Background(), "  Hello there.  ", tts.DefaultVoice)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio.Data) != "abcd" {
		t.Errorf("Expected odd trailing byte to be dropped, got %q", audio.Data)
	}
	if audio.Format != tts.FormatPCM16 || audio.Channels != 1 {
		t.Errorf("Expected mono PCM16, got %v/%d", audio.Format, audio.Channels)
	}
	if audio.SampleRate != 16000 {
		t.Errorf("Expected sample rate from model config, got %d", audio.SampleRate)
	}

	got, err := os.ReadFile(stdin)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "Hello there.\n" {
		t.Errorf("Expected trimmed text on stdin, got %q", got)
	}
}

func TestSynthesizeFailure(t *testing.T) {
	binary := fakePiper(t, "cat > /dev/null\necho 'model load failed' >&2\nexit 1")
	e := New(testConfig(binary), nil)

	_, err := e.Synthesize(context.Background(), "Hello.", tts.DefaultVoice)
	if !errors.Is(err, tts.ErrGenerationFailed) {
		t.Fatalf("Expected ErrGenerationFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "model load failed") {
		t.Errorf("Expected stderr in error, got %v", err)
	}
}

func TestSynthesizeNoOutput(t *testing.T) {
	binary := fakePiper(t, "cat > /dev/null")
	_, err := New(testConfig(binary), nil).Synthesize(context.Background(), "Hello.", tts.DefaultVoice)
	if !errors.Is(err, tts.ErrGenerationFailed) {
		t.Errorf("Expected ErrGenerationFailed for empty output, got %v", err)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	e := New(tts.DefaultPiperConfig(), nil)
	if _, err := e.Synthesize(context.Background(), "   ", tts.DefaultVoice); !errors.Is(err, tts.ErrEmptyText) {
		t.Errorf("Expected ErrEmptyText, got %v", err)
	}
}

func TestSynthesizeCancel(t *testing.T) {
	binary := fakePiper(t, "cat > /dev/null\nsleep 10")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New(testConfig(binary), nil).Synthesize(ctx, "Hello.", tts.DefaultVoice)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("Expected cancellation to kill piper promptly, took %v", time.Since(start))
	}
}
