// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// BytesPerSample is the width of one output sample: signed 16-bit PCM.
const BytesPerSample = 2

// SniffSize is the number of leading bytes a Format's Magic is shown.
const SniffSize = 12

// Info describes the PCM stream a Source produces.
type Info struct {
	SampleRate int
	Channels   int
	// BitDepth of the encoded data before conversion to 16-bit.
	BitDepth int
	// Frames is the total number of frames, or -1 when unknown.
	Frames int64
	// BitRate in bits per second, 0 when unknown.
	BitRate int
	VBR     bool
}

// FrameSize is the size of one interleaved output frame in bytes.
func (i Info) FrameSize() int { return i.Channels * BytesPerSample }

// Duration of the stream, or -1 when the frame count is unknown.
func (i Info) Duration() time.Duration {
	if i.Frames < 0 || i.SampleRate <= 0 {
		return -1
	}
	return time.Duration(i.Frames * int64(time.Second) / int64(i.SampleRate))
}

type Source interface {
	// Info of the decoded stream.
	Info() Info
	// Read fills p with interleaved signed 16-bit little-endian PCM. Only
	// whole frames are written. When n == 0 with err == io.EOF, the stream
	// is finished.
	Read(p []byte) (n int, err error)

	// Close releases any resources.
	Close() error
}

// Seeker is implemented by sources that can reposition themselves without
// decoding from the start.
type Seeker interface {
	SeekFrame(frame int64) error
}

// Decoder constructs a Source from an input reader. Decoders that need random
// access check for io.ReadSeeker themselves.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Format binds a decoder to the extensions and leading bytes it claims.
type Format struct {
	// Name is the registry key, e.g. "wav".
	Name       string
	Extensions []string
	// Magic reports whether the first SniffSize bytes belong to this format.
	Magic   func(prefix []byte) bool
	Decoder Decoder
}

// Registry for decoders by format name, extension and magic.
type Registry struct {
	formats []Format

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		mtx: &sync.Mutex{},
	}
}

// Register adds f, replacing a format registered under the same name.
func (r *Registry) Register(f Format) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for i := range r.formats {
		if r.formats[i].Name == f.Name {
			r.formats[i] = f
			return
		}
	}
	r.formats = append(r.formats, f)
}

func (r *Registry) Get(name string) (Format, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, f := range r.formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// ForExtension looks a format up by file extension, with or without the dot.
func (r *Registry) ForExtension(ext string) (Format, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return Format{}, false
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, f := range r.formats {
		for _, e := range f.Extensions {
			if e == ext {
				return f, true
			}
		}
	}
	return Format{}, false
}

// Sniff returns the first registered format whose Magic accepts prefix.
func (r *Registry) Sniff(prefix []byte) (Format, bool) {
	if len(prefix) > SniffSize {
		prefix = prefix[:SniffSize]
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, f := range r.formats {
		if f.Magic != nil && f.Magic(prefix) {
			return f, true
		}
	}
	return Format{}, false
}

// Select picks the format for a resource: content first, then extension.
// It fails with ErrUnknownFormat when neither matches.
func (r *Registry) Select(prefix []byte, ext string) (Format, error) {
	if f, ok := r.Sniff(prefix); ok {
		return f, nil
	}
	if f, ok := r.ForExtension(ext); ok {
		return f, nil
	}
	return Format{}, fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
}

// Names lists the registered formats in registration order.
func (r *Registry) Names() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	names := make([]string, len(r.formats))
	for i, f := range r.formats {
		names[i] = f.Name
	}
	return names
}

// HasMagic returns a Magic func matching a fixed signature at offset.
func HasMagic(offset int, sig string) func([]byte) bool {
	return func(prefix []byte) bool {
		if len(prefix) < offset+len(sig) {
			return false
		}
		return bytes.Equal(prefix[offset:offset+len(sig)], []byte(sig))
	}
}
