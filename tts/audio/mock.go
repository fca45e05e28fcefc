package audio

import (
	"io"
	"sync"
	"time"
)

// MockDevice is a silent Device. Voices consume their audio in real time,
// divided by Speed.
type MockDevice struct {
	sampleRate int
	channels   int
	speed      float64

	mu     sync.Mutex
	voices []*MockVoice
}

// NewMockDevice creates a silent device. speed > 1 makes playback finish
// faster than real time.
func NewMockDevice(sampleRate, channels int, speed float64) *MockDevice {
	if speed <= 0 {
		speed = 1
	}
	return &MockDevice{sampleRate: sampleRate, channels: channels, speed: speed}
}

// NewMockPlayer returns a Player on a fast silent device, for tests.
func NewMockPlayer(opts ...PlayerOption) (*Player, *MockDevice) {
	dev := NewMockDevice(44100, 2, 100)
	opts = append([]PlayerOption{WithPollInterval(time.Millisecond)}, opts...)
	return NewPlayer(dev, opts...), dev
}

// NewVoice implements Device.
func (d *MockDevice) NewVoice(r io.Reader) Voice {
	data, err := io.ReadAll(r)
	frames := len(data) / (2 * d.channels)
	length := time.Duration(float64(frames) / float64(d.sampleRate) / d.speed * float64(time.Second))

	v := &MockVoice{data: data, length: length, err: err}
	d.mu.Lock()
	d.voices = append(d.voices, v)
	d.mu.Unlock()
	return v
}

// SampleRate implements Device.
func (d *MockDevice) SampleRate() int { return d.sampleRate }

// ChannelCount implements Device.
func (d *MockDevice) ChannelCount() int { return d.channels }

// Voices returns every voice created so far.
func (d *MockDevice) Voices() []*MockVoice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*MockVoice(nil), d.voices...)
}

// MockVoice is a voice on a MockDevice.
type MockVoice struct {
	data   []byte
	length time.Duration
	err    error

	mu      sync.Mutex
	started time.Time
	played  time.Duration // before the last pause
	playing bool
	paused  bool
	closed  bool
	volume  float64
}

func (v *MockVoice) Play() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.playing || v.closed {
		return
	}
	v.playing, v.paused = true, false
	v.started = time.Now()
}

func (v *MockVoice) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.playing {
		return
	}
	v.played += time.Since(v.started)
	v.playing, v.paused = false, true
}

// IsPlaying reports whether the voice is playing and has audio left.
func (v *MockVoice) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing && v.played+time.Since(v.started) < v.length
}

func (v *MockVoice) SetVolume(volume float64) {
	v.mu.Lock()
	v.volume = volume
	v.mu.Unlock()
}

func (v *MockVoice) Err() error { return v.err }

func (v *MockVoice) Close() error {
	v.mu.Lock()
	v.closed, v.playing = true, false
	v.mu.Unlock()
	return nil
}

// Len returns the number of PCM bytes the voice was given.
func (v *MockVoice) Len() int { return len(v.data) }

// Paused reports whether the voice was paused.
func (v *MockVoice) Paused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paused
}

// Closed reports whether the voice was released.
func (v *MockVoice) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Volume returns the voice volume.
func (v *MockVoice) Volume() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.volume
}
