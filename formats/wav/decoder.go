// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/utils"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// Format registers the WAV decoder with an audio.Registry.
var Format = audio.Format{
	Name:       "wav",
	Extensions: []string{"wav", "wave"},
	Magic: func(prefix []byte) bool {
		return audio.HasMagic(0, "RIFF")(prefix) && audio.HasMagic(8, "WAVE")(prefix)
	},
	Decoder: Decoder{},
}

// pcmReader is an interface for wav.Decoder to allow testing
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec    pcmReader
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
			Data:           make([]int, want),
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: s.info.SampleRate},
			SourceBitDepth: s.info.BitDepth,
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

	// drop a trailing partial frame
	n -= n % channels

	for i := range n {
		v := s.intBuf.Data[i]
		if s.info.BitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		audio.PutSample(p[i*audio.BytesPerSample:], utils.IntToInt16(v, s.info.BitDepth))
	}

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
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, ErrOnlyPCMSupported
	}

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, ErrUnsupportedWavLayout
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	sampleRate := int(dec.SampleRate)

	frames := int64(-1)
	if dec.PCMSize > 0 {
		frames = int64(dec.PCMSize) / int64(channels*bitDepth/8)
	}

	return &source{
		dec: dec,
		info: audio.Info{
			SampleRate: sampleRate,
			Channels:   channels,
			BitDepth:   bitDepth,
			Frames:     frames,
			BitRate:    sampleRate * channels * bitDepth,
		},
	}, nil
}
