package audio

import (
	"io"
)

// mockSource is a test helper producing a ramp of 16-bit samples.
type mockSource struct {
	info      Info
	generated int64 // frames generated so far
}

func newMockSource(sampleRate, channels int, frames int64) *mockSource {
	return &mockSource{
		info: Info{
			SampleRate: sampleRate,
			Channels:   channels,
			BitDepth:   16,
			Frames:     frames,
		},
	}
}

func (m *mockSource) Info() Info   { return m.info }
func (m *mockSource) Close() error { return nil }

func (m *mockSource) Read(p []byte) (int, error) {
	if m.generated >= m.info.Frames {
		return 0, io.EOF
	}

	frames := int64(FramesFor(len(p), m.info.Channels))
	if frames == 0 {
		return 0, ErrInvalidDstSize
	}
	frames = min(frames, m.info.Frames-m.generated)

	fs := m.info.FrameSize()
	for f := range frames {
		for ch := range m.info.Channels {
			off := int(f)*fs + ch*BytesPerSample
			PutSample(p[off:], int16(m.generated+f))
		}
	}

	m.generated += frames
	return int(frames) * fs, nil
}
