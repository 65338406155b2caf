// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
	"math"

	"github.com/ik5/audstream/audio"
)

// ErrInjected is returned by a MockSource after FailAfter frames.
var ErrInjected = errors.New("injected decode failure")

// MockSource is a test helper that generates 16-bit PCM for testing.
// It implements audio.Source and audio.Seeker.
type MockSource struct {
	info      audio.Info
	generated int64 // frames generated so far
	waveform  func(frame int64, channel int) int16

	// FailAfter makes Read fail once this many frames were produced. Zero
	// disables it.
	FailAfter int64
	Closed    bool
}

// NewMockSource creates a new mock audio source.
// frames is the total number of frames to generate.
// waveform generates sample values given frame index and channel.
func NewMockSource(sampleRate, channels int, frames int64, waveform func(frame int64, channel int) int16) *MockSource {
	return &MockSource{
		info: audio.Info{
			SampleRate: sampleRate,
			Channels:   channels,
			BitDepth:   16,
			Frames:     frames,
			BitRate:    sampleRate * channels * 16,
		},
		waveform: waveform,
	}
}

// NewRampSource creates a source whose every sample equals its frame index.
func NewRampSource(sampleRate, channels int, frames int64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame int64, _ int) int16 {
		return int16(frame)
	})
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels int, frames int64, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame int64, _ int) int16 {
		t := float64(frame) / float64(sampleRate)
		return int16(math.Sin(2*math.Pi*frequency*t) * math.MaxInt16)
	})
}

func (m *MockSource) Info() audio.Info { return m.info }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

// Position is the index of the next frame Read will produce.
func (m *MockSource) Position() int64 { return m.generated }

func (m *MockSource) SeekFrame(frame int64) error {
	if frame < 0 {
		return io.ErrUnexpectedEOF
	}
	m.generated = min(frame, m.info.Frames)
	return nil
}

func (m *MockSource) Read(p []byte) (int, error) {
	if m.FailAfter > 0 && m.generated >= m.FailAfter {
		return 0, ErrInjected
	}
	if m.generated >= m.info.Frames {
		return 0, io.EOF
	}

	frames := int64(audio.FramesFor(len(p), m.info.Channels))
	if frames == 0 {
		return 0, audio.ErrInvalidDstSize
	}
	frames = min(frames, m.info.Frames-m.generated)

	fs := m.info.FrameSize()
	for f := range frames {
		for ch := range m.info.Channels {
			audio.PutSample(p[int(f)*fs+ch*audio.BytesPerSample:], m.waveform(m.generated+f, ch))
		}
	}

	m.generated += frames
	return int(frames) * fs, nil
}

// Ramp returns frames*channels interleaved samples where every sample of
// frame i equals i.
func Ramp(frames, channels int) []int16 {
	out := make([]int16, frames*channels)
	for i := range out {
		out[i] = int16(i / channels)
	}
	return out
}
