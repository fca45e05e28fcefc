package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
	"github.com/lectio-app/lectio/tts"
)

const resampleQuality = 4

// Decode converts audio of any supported format to interleaved signed 16-bit
// little endian PCM at the given rate and channel count.
func Decode(a *tts.Audio, sampleRate, channels int) ([]byte, error) {
	if a == nil || len(a.Data) == 0 {
		return nil, tts.ErrNothingToPlay
	}

	src, from, err := open(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", tts.ErrInvalidAudioFormat, a.Format, err)
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close() //nolint:errcheck
	}

	to := beep.SampleRate(sampleRate)
	var s beep.Streamer = src
	if from != to {
		s = beep.Resample(resampleQuality, from, to, src)
	}

	out := beep.Format{SampleRate: to, NumChannels: channels, Precision: 2}
	return drain(s, out)
}

func open(a *tts.Audio) (beep.Streamer, beep.SampleRate, error) {
	switch a.Format {
	case tts.FormatMP3:
		s, f, err := mp3.Decode(io.NopCloser(bytes.NewReader(a.Data)))
		if err != nil {
			return nil, 0, err
		}
		return s, f.SampleRate, nil
	case tts.FormatWAV:
		s, f, err := wav.Decode(bytes.NewReader(a.Data))
		if err != nil {
			return nil, 0, err
		}
		return s, f.SampleRate, nil
	case tts.FormatPCM16:
		if a.SampleRate <= 0 || a.Channels <= 0 {
			return nil, 0, fmt.Errorf("pcm needs a sample rate and channel count")
		}
		return &pcmStreamer{data: a.Data, channels: a.Channels}, beep.SampleRate(a.SampleRate), nil
	default:
		return nil, 0, fmt.Errorf("unsupported format")
	}
}

func drain(s beep.Streamer, out beep.Format) ([]byte, error) {
	var buf bytes.Buffer
	samples := make([][2]float64, 1024)
	frame := make([]byte, out.Width())
	for {
		n, ok := s.Stream(samples)
		for _, sample := range samples[:n] {
			out.EncodeSigned(frame, sample)
			buf.Write(frame)
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", tts.ErrInvalidAudioFormat, err)
	}
	if buf.Len() == 0 {
		return nil, tts.ErrNothingToPlay
	}
	return buf.Bytes(), nil
}

// pcmStreamer reads raw signed 16-bit little endian PCM. Mono is copied to
// both sides; channels beyond two are dropped.
type pcmStreamer struct {
	data     []byte
	channels int
	pos      int
}

func (s *pcmStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	width := 2 * s.channels
	for n < len(samples) && s.pos+width <= len(s.data) {
		left := sample16(s.data[s.pos:])
		right := left
		if s.channels > 1 {
			right = sample16(s.data[s.pos+2:])
		}
		samples[n] = [2]float64{left, right}
		s.pos += width
		n++
	}
	return n, n > 0
}

func (s *pcmStreamer) Err() error { return nil }

func sample16(b []byte) float64 {
	return float64(int16(binary.LittleEndian.Uint16(b))) / 32768
}
