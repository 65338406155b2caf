// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"
	"io"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/utils"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// Format registers the FLAC decoder with an audio.Registry.
var Format = audio.Format{
	Name:       "flac",
	Extensions: []string{"flac"},
	Magic:      audio.HasMagic(0, "fLaC"),
	Decoder:    Decoder{},
}

// frameParser is an interface for flac.Stream to allow testing
type frameParser interface {
	ParseNext() (*frame.Frame, error)
}

type sampleSeeker interface {
	frameParser
	Seek(sampleNum uint64) (uint64, error)
}

type source struct {
	stream frameParser
	info   audio.Info

	cur *frame.Frame
	pos int // next sample index within cur
}

func (s *source) Info() audio.Info { return s.info }

// Close does not close the underlying reader; its owner does.
func (s *source) Close() error { return nil }

func (s *source) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	channels := s.info.Channels
	frames := audio.FramesFor(len(p), channels)
	if frames == 0 {
		return 0, audio.ErrInvalidDstSize
	}

	written := 0
	for written < frames {
		if s.cur == nil || s.pos >= len(s.cur.Subframes[0].Samples) {
			f, err := s.stream.ParseNext()
			if err != nil {
				if written > 0 && err == io.EOF {
					break
				}
				if err == io.EOF {
					return 0, io.EOF
				}
				return written * channels * audio.BytesPerSample, fmt.Errorf("%w", err)
			}
			if len(f.Subframes) != channels {
				return written * channels * audio.BytesPerSample,
					fmt.Errorf("%w: %d subframes", ErrChannelMismatch, len(f.Subframes))
			}
			s.cur, s.pos = f, 0
			continue
		}

		n := min(frames-written, len(s.cur.Subframes[0].Samples)-s.pos)
		for i := range n {
			off := (written + i) * channels * audio.BytesPerSample
			for ch, sub := range s.cur.Subframes {
				v := utils.IntToInt16(int(sub.Samples[s.pos+i]), s.info.BitDepth)
				audio.PutSample(p[off+ch*audio.BytesPerSample:], v)
			}
		}
		written += n
		s.pos += n
	}

	return written * channels * audio.BytesPerSample, nil
}

type seekableSource struct {
	*source
	seeker sampleSeeker
}

func (s *seekableSource) SeekFrame(frame int64) error {
	if frame < 0 {
		frame = 0
	}
	if _, err := s.seeker.Seek(uint64(frame)); err != nil {
		return fmt.Errorf("%w", err)
	}
	s.cur, s.pos = nil, 0
	return nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	var (
		stream *flac.Stream
		err    error
	)

	rs, seekable := r.(io.ReadSeeker)
	if seekable {
		stream, err = flac.NewSeek(rs)
	} else {
		stream, err = flac.New(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	si := stream.Info
	if si == nil || si.NChannels == 0 || si.SampleRate == 0 {
		return nil, ErrUnsupportedFlacLayout
	}

	frames := int64(-1)
	if si.NSamples > 0 {
		frames = int64(si.NSamples)
	}

	info := audio.Info{
		SampleRate: int(si.SampleRate),
		Channels:   int(si.NChannels),
		BitDepth:   int(si.BitsPerSample),
		Frames:     frames,
		VBR:        true,
	}

	return newSource(stream, info, seekable), nil
}

func newSource(stream frameParser, info audio.Info, seekable bool) audio.Source {
	src := &source{stream: stream, info: info}
	if sk, ok := stream.(sampleSeeker); ok && seekable {
		return &seekableSource{source: src, seeker: sk}
	}
	return src
}
