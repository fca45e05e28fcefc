// Package audio plays lesson audio: recorded clips fetched from disk or the
// web, and synthesized speech. Everything is decoded to 16-bit PCM and fed to
// a single output device.
package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Voice is one stream on an output device. *oto.Player satisfies it.
type Voice interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(volume float64)
	Err() error
	Close() error
}

// Device is an output device that mixes any number of voices.
type Device interface {
	NewVoice(r io.Reader) Voice
	SampleRate() int
	ChannelCount() int
}

// OtoDevice is the system audio output.
type OtoDevice struct {
	ctx        *oto.Context
	sampleRate int
	channels   int
}

// DeviceConfig configures the output device.
type DeviceConfig struct {
	SampleRate int // 44100 or 48000
	Channels   int // 1 or 2
	BufferSize time.Duration
}

// DefaultDeviceConfig returns CD-quality stereo output.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		SampleRate: 44100,
		Channels:   2,
		BufferSize: 100 * time.Millisecond,
	}
}

// Validate checks the device configuration.
func (c DeviceConfig) Validate() error {
	if c.SampleRate != 44100 && c.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", c.Channels)
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("buffer size cannot be negative, got %v", c.BufferSize)
	}
	return nil
}

// NewOtoDevice opens the system audio output. oto allows one context per
// process, so this must be called once.
func NewOtoDevice(cfg DeviceConfig) (*OtoDevice, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid device config: %w", err)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   cfg.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	return &OtoDevice{ctx: ctx, sampleRate: cfg.SampleRate, channels: cfg.Channels}, nil
}

// NewVoice implements Device.
func (d *OtoDevice) NewVoice(r io.Reader) Voice { return d.ctx.NewPlayer(r) }

// SampleRate implements Device.
func (d *OtoDevice) SampleRate() int { return d.sampleRate }

// ChannelCount implements Device.
func (d *OtoDevice) ChannelCount() int { return d.channels }
