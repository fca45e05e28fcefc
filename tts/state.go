package tts

import "strings"

// ButtonState is the UI state of a playable control.
type ButtonState int

const (
	ButtonIdle ButtonState = iota
	ButtonLoading
	ButtonPlaying
)

func (s ButtonState) String() string {
	switch s {
	case ButtonIdle:
		return "idle"
	case ButtonLoading:
		return "loading"
	case ButtonPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Control labels.
const (
	LabelRead         = "🔊 Read"
	LabelPlay         = "▶"
	LabelSpeaker      = "🔊"
	LabelLoading      = "⏳ Loading..."
	LabelLoadingShort = "⏳"
	LabelStop         = "■ Stop"
	LabelStopTTS      = "■ Stop (TTS)"
	LabelStopShort    = "■"
)

// IdleLabel is the label a control of kind shows at rest. Generic controls
// keep the "Read" wording when their current label has it.
func IdleLabel(kind ControlKind, current string) string {
	switch kind {
	case ControlParagraph:
		return LabelRead
	case ControlImplication:
		return LabelPlay
	case ControlVocabulary:
		return LabelSpeaker
	default:
		if strings.Contains(current, "Read") {
			return LabelRead
		}
		return LabelPlay
	}
}

// LoadingLabel is shown while a recorded clip is being fetched.
func LoadingLabel(kind ControlKind) string {
	if kind == ControlParagraph {
		return LabelLoading
	}
	return LabelLoadingShort
}

// PlayingLabel is shown while audio plays. whole marks a paragraph being
// synthesized in one utterance.
func PlayingLabel(kind ControlKind, whole bool) string {
	if kind != ControlParagraph {
		return LabelStopShort
	}
	if whole {
		return LabelStopTTS
	}
	return LabelStop
}

// StateMachine tracks one control's state through valid transitions.
type StateMachine struct {
	current     ButtonState
	transitions map[ButtonState][]ButtonState
}

// NewStateMachine creates a machine at ButtonIdle. Loading only precedes a
// recorded clip; synthesized playback goes straight to Playing.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: ButtonIdle,
		transitions: map[ButtonState][]ButtonState{
			ButtonIdle:    {ButtonLoading, ButtonPlaying},
			ButtonLoading: {ButtonPlaying, ButtonIdle},
			ButtonPlaying: {ButtonIdle},
		},
	}
}

// Transition moves to the given state if allowed.
func (sm *StateMachine) Transition(to ButtonState) bool {
	valid := false
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	sm.current = to
	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() ButtonState {
	return sm.current
}
