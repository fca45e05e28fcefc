package tts

import "sync"

// Utterance is a Playback driven by its producer: the producer calls Finish
// when the audio ends, consumers call Stop to cut it short.
type Utterance struct {
	done     chan struct{}
	finish   sync.Once
	stopOnce sync.Once
	stop     func()

	mu  sync.Mutex
	err error
}

// NewUtterance creates a running utterance. stop, if non-nil, is called at
// most once when the utterance is stopped.
func NewUtterance(stop func()) *Utterance {
	return &Utterance{done: make(chan struct{}), stop: stop}
}

// Done is closed once the utterance has ended.
func (u *Utterance) Done() <-chan struct{} {
	return u.done
}

// Err returns why the utterance ended: nil on natural completion.
func (u *Utterance) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

// Finish ends the utterance. Only the first call has an effect.
func (u *Utterance) Finish(err error) {
	u.finish.Do(func() {
		u.mu.Lock()
		u.err = err
		u.mu.Unlock()
		close(u.done)
	})
}

// Stop halts the utterance and ends it with ErrPlaybackStopped.
func (u *Utterance) Stop() {
	u.stopOnce.Do(func() {
		if u.stop != nil {
			u.stop()
		}
	})
	u.Finish(ErrPlaybackStopped)
}

// Finished reports whether the utterance has ended.
func (u *Utterance) Finished() bool {
	select {
	case <-u.done:
		return true
	default:
		return false
	}
}
