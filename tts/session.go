package tts

import "context"

// HandleKind tags the audio source of a session.
type HandleKind int

const (
	HandleNone HandleKind = iota
	HandleRecorded
	HandleSynthesized
)

func (k HandleKind) String() string {
	switch k {
	case HandleRecorded:
		return "recorded"
	case HandleSynthesized:
		return "synthesized"
	default:
		return "none"
	}
}

// Handle is the active audio of a session: a recorded clip or synthesized
// speech, never both.
type Handle struct {
	Kind     HandleKind
	Playback Playback
}

// Session is one playback, from the click that started it to its stop or
// end. The controller owns at most one.
type Session struct {
	gen     uint64
	target  Target
	id      ControlID
	control Control // nil when the document has no such control
	machine *StateMachine
	handle  Handle
	seq     *Sequence // paragraph-by-sentence fallback only

	ctx    context.Context
	cancel context.CancelFunc
}

func newSession(parent context.Context, gen uint64, target Target, control Control) *Session {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	return &Session{
		gen:     gen,
		target:  target,
		id:      target.Control(),
		control: control,
		machine: NewStateMachine(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// setState moves the armed control to st and shows label.
func (s *Session) setState(st ButtonState, label string) bool {
	ok := s.machine.Transition(st)
	if s.control != nil {
		s.control.SetState(st)
		s.control.SetLabel(label)
	}
	return ok
}

// reset restores the control's idle label.
func (s *Session) reset() {
	s.machine.Transition(ButtonIdle)
	if s.control != nil {
		s.control.SetState(ButtonIdle)
		s.control.SetLabel(IdleLabel(s.id.Kind, s.control.Label()))
	}
}

// halt stops whatever audio the session holds and cancels pending work.
func (s *Session) halt() {
	switch s.handle.Kind {
	case HandleRecorded:
		s.handle.Playback.Stop()
	case HandleSynthesized:
		// Drop the rest of the sequence before silencing the utterance.
		s.seq = nil
		s.cancel()
		s.handle.Playback.Stop()
	}
	s.cancel()
}
