package tts

import (
	"context"
	"time"
)

// Voice holds the synthesis voice parameters.
type Voice struct {
	Language string  // BCP 47 tag, e.g. "en-GB"
	Rate     float64 // 1.0 = normal speed
}

// DefaultVoice is used for every fallback utterance: British English, slowed
// down for learners.
var DefaultVoice = Voice{Language: "en-GB", Rate: 0.85}

// Playback is one running piece of audio. Done is closed when it ends,
// naturally or not; Err then reports why.
type Playback interface {
	Done() <-chan struct{}
	Err() error
	Stop()
}

// ClipPlayer starts recorded clips. Start returns once playback has begun or
// failed.
type ClipPlayer interface {
	Start(ctx context.Context, ref string) (Playback, error)
}

// Prefetcher is implemented by clip players that can warm a cache.
type Prefetcher interface {
	Prefetch(ctx context.Context, ref string) error
}

// Synthesizer speaks text on the device.
type Synthesizer interface {
	// Available returns nil when speech can be produced.
	Available() error
	// Speak synthesizes text and starts playing it.
	Speak(ctx context.Context, text string, voice Voice) (Playback, error)
}

// Engine converts text to audio.
type Engine interface {
	Name() string
	Available() error
	Synthesize(ctx context.Context, text string, voice Voice) (*Audio, error)
}

// AudioPlayer plays decoded or encoded audio.
type AudioPlayer interface {
	Play(audio *Audio) (Playback, error)
}

// Highlighter marks the sentence being spoken.
type Highlighter interface {
	Attach(doc Document)
	Highlight(paragraph, sentence int)
	ClearAll()
}

// Audio represents generated or fetched audio data.
type Audio struct {
	Data       []byte
	Format     AudioFormat
	SampleRate int // PCM only; encoded formats carry their own
	Channels   int
	Duration   time.Duration
}

// AudioFormat represents the encoding of Audio.Data.
type AudioFormat int

const (
	// FormatPCM16 is signed 16-bit little endian PCM.
	FormatPCM16 AudioFormat = iota
	FormatWAV
	FormatMP3
)

func (f AudioFormat) String() string {
	switch f {
	case FormatPCM16:
		return "pcm16"
	case FormatWAV:
		return "wav"
	case FormatMP3:
		return "mp3"
	default:
		return "unknown"
	}
}

// PCMDuration computes the play time of 16-bit PCM data.
func PCMDuration(n, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	frames := n / (2 * channels)
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
