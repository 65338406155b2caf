// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/utils"
)

// Format registers the AIFF decoder with an audio.Registry.
var Format = audio.Format{
	Name:       "aiff",
	Extensions: []string{"aif", "aiff", "aifc"},
	Magic: func(prefix []byte) bool {
		return audio.HasMagic(0, "FORM")(prefix) &&
			(audio.HasMagic(8, "AIFF")(prefix) || audio.HasMagic(8, "AIFC")(prefix))
	},
	Decoder: Decoder{},
}

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps go-audio aiff.Decoder to implement audio.Source
type source struct {
	dec    aiffReader
	info   audio.Info
	intBuf *goaudio.IntBuffer
}

func (s *source) Info() audio.Info { return s.info }
func (s *source) Close() error     { return nil }

func (s *source) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	channels := s.info.Channels
	frames := audio.FramesFor(len(p), channels)
	if frames == 0 {
		return 0, audio.ErrInvalidDstSize
	}

	want := frames * channels
	if s.intBuf == nil || cap(s.intBuf.Data) < want {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, want),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:want]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	n -= n % channels
	for i := range n {
		audio.PutSample(p[i*audio.BytesPerSample:], utils.IntToInt16(s.intBuf.Data[i], s.info.BitDepth))
	}

	// the remaining samples are returned as io.EOF on the next call
	if err != nil && err != io.EOF {
		return n * audio.BytesPerSample, fmt.Errorf("%w", err)
	}
	return n * audio.BytesPerSample, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	bitDepth := int(dec.BitDepth)

	return &source{
		dec: dec,
		info: audio.Info{
			SampleRate: format.SampleRate,
			Channels:   format.NumChannels,
			BitDepth:   bitDepth,
			Frames:     int64(dec.NumSampleFrames),
			BitRate:    format.SampleRate * format.NumChannels * bitDepth,
		},
	}, nil
}
