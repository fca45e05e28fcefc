package engines

import (
	"context"
	"errors"
	"testing"

	"github.com/lectio-app/lectio/tts"
	"github.com/lectio-app/lectio/tts/engines/mock"
)

// named gives a mock engine a distinct name.
type named struct {
	*mock.Engine
	name string
}

func (n named) Name() string { return n.name }

func newPair() (named, named) {
	return named{mock.New(tts.DefaultMockConfig()), "primary"},
		named{mock.New(tts.DefaultMockConfig()), "secondary"}
}

func TestFallbackEngine(t *testing.T) {
	primary, secondary := newPair()
	primary.SetFailure(errors.New("primary engine failure"))

	engine := NewFallbackEngine(primary, secondary, 2, nil)

	// First failure is retried on the fallback but does not switch yet.
	audio, err := engine.Synthesize(context.Background(), "test 1", tts.DefaultVoice)
	if err != nil || audio == nil {
		t.Fatalf("Expected fallback audio on first failure, got %v", err)
	}
	if engine.Name() != "primary" {
		t.Errorf("Expected primary to stay active, got %s", engine.Name())
	}

	if _, err := engine.Synthesize(context.Background(), "test 2", tts.DefaultVoice); err != nil {
		t.Fatalf("Expected second attempt to succeed with fallback: %v", err)
	}
	if status := engine.Status(); status != "Using fallback engine (primary failed 2 times)" {
		t.Errorf("Unexpected status: %s", status)
	}
	if engine.Name() != "secondary" {
		t.Errorf("Expected fallback to be active, got %s", engine.Name())
	}

	if _, err := engine.Synthesize(context.Background(), "test 3", tts.DefaultVoice); err != nil {
		t.Errorf("Expected subsequent calls to use fallback: %v", err)
	}
	if primary.CallCount() != 2 {
		t.Errorf("Expected primary to be skipped after switching, got %d calls", primary.CallCount())
	}
	if secondary.CallCount() != 3 {
		t.Errorf("Expected 3 fallback calls, got %d", secondary.CallCount())
	}

	engine.Reset()
	if engine.Name() != "primary" {
		t.Errorf("Expected Reset to restore primary, got %s", engine.Name())
	}
}

func TestFallbackEngineRecovery(t *testing.T) {
	primary, secondary := newPair()
	engine := NewFallbackEngine(primary, secondary, 3, nil)

	primary.SetFailure(errors.New("transient"))
	if _, err := engine.Synthesize(context.Background(), "one", tts.DefaultVoice); err != nil {
		t.Fatal(err)
	}
	primary.SetFailure(nil)
	if _, err := engine.Synthesize(context.Background(), "two", tts.DefaultVoice); err != nil {
		t.Fatal(err)
	}
	if status := engine.Status(); status != "Using primary engine" {
		t.Errorf("Expected failures to reset after success, got %q", status)
	}
}

func TestFallbackEngineBothFail(t *testing.T) {
	primary, secondary := newPair()
	errPrimary := errors.New("primary down")
	errSecondary := errors.New("secondary down")
	primary.SetFailure(errPrimary)
	secondary.SetFailure(errSecondary)

	_, err := NewFallbackEngine(primary, secondary, 3, nil).Synthesize(context.Background(), "x", tts.DefaultVoice)
	if !errors.Is(err, errPrimary) || !errors.Is(err, errSecondary) {
		t.Errorf("Expected both errors, got %v", err)
	}
}

func TestFallbackEngineCancelNotCounted(t *testing.T) {
	primary, secondary := newPair()
	primary.SetFailure(context.Canceled)
	engine := NewFallbackEngine(primary, secondary, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.Synthesize(ctx, "x", tts.DefaultVoice); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if engine.Name() != "primary" || secondary.CallCount() != 0 {
		t.Error("Expected a cancelled request not to trigger the fallback")
	}
}

func TestFallbackEngineAvailable(t *testing.T) {
	primary, secondary := newPair()
	primary.SetUnavailable(tts.ErrEngineNotAvailable)
	engine := NewFallbackEngine(primary, secondary, 3, nil)

	if err := engine.Available(); err != nil {
		t.Errorf("Expected fallback to make the chain available, got %v", err)
	}
	if engine.Name() != "secondary" {
		t.Errorf("Expected switch to fallback, got %s", engine.Name())
	}

	p2, s2 := newPair()
	p2.SetUnavailable(tts.ErrEngineNotAvailable)
	s2.SetUnavailable(errors.New("espeak missing"))
	if err := NewFallbackEngine(p2, s2, 3, nil).Available(); !errors.Is(err, tts.ErrEngineNotAvailable) {
		t.Errorf("Expected ErrEngineNotAvailable when both are missing, got %v", err)
	}
}
