package tts

import (
	"errors"
	"fmt"
)

// Common errors for lesson playback.
var (
	// Source errors
	ErrClipUnavailable      = errors.New("recorded clip unavailable")
	ErrSynthesisUnavailable = errors.New("speech synthesis unavailable")
	ErrEngineNotAvailable   = errors.New("TTS engine is not available")
	ErrGenerationFailed     = errors.New("audio generation failed")

	// Player errors
	ErrPlayerClosed       = errors.New("audio player is closed")
	ErrNothingToPlay      = errors.New("no audio to play")
	ErrInvalidAudioFormat = errors.New("invalid audio format")
	ErrPlaybackStopped    = errors.New("playback stopped")

	// Text errors
	ErrEmptyText = errors.New("nothing to speak")

	// Controller errors
	ErrControllerClosed = errors.New("playback controller closed")
	ErrNoUnit           = errors.New("no unit loaded")
	ErrTargetNotFound   = errors.New("playback target not found")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IsRecoverableError reports whether playback can carry on after err, possibly
// through a fallback.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, ErrControllerClosed),
		errors.Is(err, ErrPlayerClosed),
		errors.Is(err, ErrInvalidConfig):
		return false
	}
	return true
}

// ErrorSeverity represents the severity of an error.
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// PlaybackError records which component failed and what it was doing.
type PlaybackError struct {
	Err       error
	Component string // clip, synth, player, engine
	Action    string
	Severity  ErrorSeverity
	Context   map[string]any
}

// NewPlaybackError wraps err with component and action context.
func NewPlaybackError(err error, component, action string) *PlaybackError {
	return &PlaybackError{
		Err:       err,
		Component: component,
		Action:    action,
		Severity:  SeverityError,
		Context:   make(map[string]any),
	}
}

// Error implements the error interface.
func (e *PlaybackError) Error() string {
	msg := "unknown playback error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Component == "" {
		return msg
	}
	return fmt.Sprintf("%s %s: %s", e.Component, e.Action, msg)
}

// Unwrap returns the underlying error.
func (e *PlaybackError) Unwrap() error {
	return e.Err
}

// IsRecoverable checks if the error is recoverable.
func (e *PlaybackError) IsRecoverable() bool {
	return IsRecoverableError(e.Err)
}

// WithSeverity sets the error severity.
func (e *PlaybackError) WithSeverity(severity ErrorSeverity) *PlaybackError {
	e.Severity = severity
	return e
}

// WithContext adds context to the error.
func (e *PlaybackError) WithContext(key string, value any) *PlaybackError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
