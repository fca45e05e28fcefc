package tts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lectio-app/lectio/tts"
)

func TestWaitForChange(t *testing.T) {
	h := newHarness(t, tts.DefaultConfig())

	msg := tts.WaitForChange(h.ctrl)()
	changed, ok := msg.(tts.ChangedMsg)
	if !ok {
		t.Fatalf("Expected ChangedMsg, got %T", msg)
	}
	if changed.Status.Active {
		t.Error("Expected idle status after LoadUnit")
	}

	_ = h.ctrl.Close()
	// Drain whatever is left; the command must then report nil.
	for range h.ctrl.Changes() {
	}
	if msg := tts.WaitForChange(h.ctrl)(); msg != nil {
		t.Errorf("Expected nil after close, got %T", msg)
	}
}

func TestPreloadCmd(t *testing.T) {
	h := newHarness(t, tts.DefaultConfig())

	msg := tts.PreloadCmd(context.Background(), h.ctrl)()
	pre, ok := msg.(tts.PreloadedMsg)
	if !ok {
		t.Fatalf("Expected PreloadedMsg, got %T", msg)
	}
	if pre.UnitID != "unit1" || pre.Count != 3 || pre.Err != nil {
		t.Errorf("Unexpected preload result %+v", pre)
	}
}

func TestRequestCmd(t *testing.T) {
	target := tts.ParagraphTarget(9)
	msg := tts.RequestCmd(target, func() error { return tts.ErrTargetNotFound })()

	e, ok := msg.(tts.ErrorMsg)
	if !ok {
		t.Fatalf("Expected ErrorMsg, got %T", msg)
	}
	if !errors.Is(e.Err, tts.ErrTargetNotFound) || e.Target != target {
		t.Errorf("Unexpected error message %+v", e)
	}

	if msg := tts.RequestCmd(target, func() error { return nil })(); msg != nil {
		t.Errorf("Expected nil on success, got %T", msg)
	}
}
