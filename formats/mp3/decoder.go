// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audstream/audio"
)

// go-mp3 always produces interleaved 16-bit stereo
const (
	channels  = 2
	frameSize = channels * audio.BytesPerSample
)

// Format registers the MP3 decoder with an audio.Registry.
var Format = audio.Format{
	Name:       "mp3",
	Extensions: []string{"mp3", "mp2", "mp1", "mpga"},
	Magic: func(prefix []byte) bool {
		if audio.HasMagic(0, "ID3")(prefix) {
			return true
		}
		// MPEG audio frame sync
		return len(prefix) >= 2 && prefix[0] == 0xFF && prefix[1]&0xE0 == 0xE0
	},
	Decoder: Decoder{},
}

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

type mp3Seeker interface {
	mp3Reader
	Seek(offset int64, whence int) (int64, error)
}

type source struct {
	dec  mp3Reader
	info audio.Info
	// bytes of a frame split across two decoder reads
	carry []byte
}

func (s *source) Info() audio.Info { return s.info }
func (s *source) Close() error     { return nil }

func (s *source) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	want := len(p) - len(p)%frameSize
	if want == 0 {
		return 0, audio.ErrInvalidDstSize
	}

	n := copy(p, s.carry)
	s.carry = s.carry[:0]

	var err error
	for n < frameSize && err == nil {
		var m int
		m, err = s.dec.Read(p[n:want])
		n += m
	}

	if rem := n % frameSize; rem != 0 {
		s.carry = append(s.carry, p[n-rem:n]...)
		n -= rem
	}

	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}
	return n, nil
}

// seekableSource adds SeekFrame when the input could seek. go-mp3 cannot
// seek a plain io.Reader.
type seekableSource struct {
	*source
	seeker mp3Seeker
}

func (s *seekableSource) SeekFrame(frame int64) error {
	if _, err := s.seeker.Seek(frame*frameSize, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	s.carry = s.carry[:0]
	return nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec, isSeeker(r)), nil
}

func isSeeker(r io.Reader) bool {
	_, ok := r.(io.Seeker)
	return ok
}

func newSource(dec mp3Reader, seekable bool) audio.Source {
	frames := int64(-1)
	if l := dec.Length(); l > 0 {
		frames = l / frameSize
	}

	src := &source{
		dec: dec,
		info: audio.Info{
			SampleRate: dec.SampleRate(),
			Channels:   channels,
			BitDepth:   16,
			Frames:     frames,
		},
		carry: make([]byte, 0, frameSize),
	}

	if sk, ok := dec.(mp3Seeker); ok && seekable {
		return &seekableSource{source: src, seeker: sk}
	}
	return src
}
