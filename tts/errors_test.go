package tts

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsRecoverableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, true},
		{ErrClipUnavailable, true},
		{ErrSynthesisUnavailable, true},
		{fmt.Errorf("wrapped: %w", ErrControllerClosed), false},
		{ErrPlayerClosed, false},
		{ErrInvalidConfig, false},
	}
	for _, tt := range tests {
		if got := IsRecoverableError(tt.err); got != tt.want {
			t.Errorf("IsRecoverableError(%v): expected %v, got %v", tt.err, tt.want, got)
		}
	}
}

func TestPlaybackError(t *testing.T) {
	base := errors.New("connection refused")
	err := NewPlaybackError(base, "clip", "start").
		WithSeverity(SeverityWarning).
		WithContext("url", "http://example.com/a.mp3")

	if !errors.Is(err, base) {
		t.Error("Expected PlaybackError to unwrap to the base error")
	}
	if !strings.Contains(err.Error(), "clip start") {
		t.Errorf("Expected component and action in message, got %q", err.Error())
	}
	if err.Severity != SeverityWarning || err.Severity.String() != "warning" {
		t.Errorf("Expected warning severity, got %s", err.Severity)
	}
	if err.Context["url"] != "http://example.com/a.mp3" {
		t.Errorf("Expected url context, got %v", err.Context["url"])
	}
	if !err.IsRecoverable() {
		t.Error("Expected clip errors to be recoverable")
	}

	var target *PlaybackError
	if !errors.As(fmt.Errorf("outer: %w", err), &target) {
		t.Error("Expected errors.As to find PlaybackError")
	}

	empty := &PlaybackError{}
	if empty.Error() != "unknown playback error" {
		t.Errorf("Unexpected message %q", empty.Error())
	}
}
