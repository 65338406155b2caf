// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/utils"
	"github.com/jfreymuth/oggvorbis"
)

// Format registers the Ogg Vorbis decoder with an audio.Registry.
var Format = audio.Format{
	Name:       "vorbis",
	Extensions: []string{"ogg", "oga"},
	Magic:      audio.HasMagic(0, "OggS"),
	Decoder:    Decoder{},
}

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

type oggSeeker interface {
	oggReader
	SetPosition(pos int64) error
}

type source struct {
	dec     oggReader
	info    audio.Info
	sampBuf []float32 // interleaved values from the decoder
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
	if cap(s.sampBuf) < want {
		s.sampBuf = make([]float32, want)
	}
	s.sampBuf = s.sampBuf[:want]

	// oggvorbis returns a count of values, always whole frames
	n, err := s.dec.Read(s.sampBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	n -= n % channels
	for i := range n {
		audio.PutSample(p[i*audio.BytesPerSample:], utils.Float32ToInt16(s.sampBuf[i]))
	}

	if err != nil && err != io.EOF {
		return n * audio.BytesPerSample, fmt.Errorf("%w", err)
	}
	return n * audio.BytesPerSample, nil
}

type seekableSource struct {
	*source
	seeker oggSeeker
}

func (s *seekableSource) SeekFrame(frame int64) error {
	if err := s.seeker.SetPosition(frame); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	_, seekable := r.(io.Seeker)
	return newSource(dec, seekable), nil
}

func newSource(dec oggReader, seekable bool) audio.Source {
	frames := int64(-1)
	if l := dec.Length(); l > 0 {
		frames = l
	}

	src := &source{
		dec: dec,
		info: audio.Info{
			SampleRate: dec.SampleRate(),
			Channels:   dec.Channels(),
			BitDepth:   32,
			Frames:     frames,
			VBR:        true,
		},
		sampBuf: make([]float32, 4096),
	}

	if sk, ok := dec.(oggSeeker); ok && seekable {
		return &seekableSource{source: src, seeker: sk}
	}
	return src
}
