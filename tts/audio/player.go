package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lectio-app/lectio/tts"
)

const defaultPollInterval = 20 * time.Millisecond

// Player implements tts.AudioPlayer on a Device. Each Play gets its own
// voice; stopping one playback leaves the others alone.
type Player struct {
	dev    Device
	logger *log.Logger
	poll   time.Duration

	mu     sync.Mutex
	volume float64
	closed bool
	active map[*tts.Utterance]Voice
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithVolume sets the initial volume.
func WithVolume(v float64) PlayerOption {
	return func(p *Player) { p.volume = v }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) PlayerOption {
	return func(p *Player) { p.logger = l }
}

// WithPollInterval sets how often voices are checked for completion.
func WithPollInterval(d time.Duration) PlayerOption {
	return func(p *Player) { p.poll = d }
}

// NewPlayer creates a player on dev.
func NewPlayer(dev Device, opts ...PlayerOption) *Player {
	p := &Player{
		dev:    dev,
		logger: log.Default(),
		poll:   defaultPollInterval,
		volume: 1.0,
		active: make(map[*tts.Utterance]Voice),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play decodes audio and starts it. The returned playback finishes when the
// device has drained the audio.
func (p *Player) Play(a *tts.Audio) (tts.Playback, error) {
	if p.isClosed() {
		return nil, tts.ErrPlayerClosed
	}
	pcm, err := Decode(a, p.dev.SampleRate(), p.dev.ChannelCount())
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, tts.ErrPlayerClosed
	}

	v := p.dev.NewVoice(bytes.NewReader(pcm))
	if v == nil {
		return nil, fmt.Errorf("%w: device refused a new voice", tts.ErrPlayerClosed)
	}
	v.SetVolume(p.volume)

	u := tts.NewUtterance(v.Pause)
	p.active[u] = v
	v.Play()

	p.logger.Debug("playing", "format", a.Format, "bytes", len(pcm))
	go p.watch(u, v)
	return u, nil
}

// watch finishes u once v has drained, then releases the voice.
func (p *Player) watch(u *tts.Utterance, v Voice) {
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-u.Done():
			break loop
		case <-ticker.C:
			if !v.IsPlaying() {
				u.Finish(v.Err())
				break loop
			}
		}
	}

	if err := v.Close(); err != nil {
		p.logger.Debug("failed to close voice", "err", err)
	}
	p.mu.Lock()
	delete(p.active, u)
	p.mu.Unlock()
}

// SetVolume sets the volume for current and future playbacks.
func (p *Player) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	for _, v := range p.active {
		v.SetVolume(volume)
	}
	return nil
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Active returns the number of playbacks in progress.
func (p *Player) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// Close stops every playback. Play fails afterwards.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	running := make([]*tts.Utterance, 0, len(p.active))
	for u := range p.active {
		running = append(running, u)
	}
	p.mu.Unlock()

	for _, u := range running {
		u.Stop()
	}
	return nil
}

func (p *Player) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

var _ tts.AudioPlayer = (*Player)(nil)
