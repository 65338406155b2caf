// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ik5/audstream/resource"
)

// AudioStream is a readable, seekable stream of decoded PCM frames for one
// resource. It is meant for a single reader; Close may be called from any
// goroutine.
type AudioStream struct {
	id     uuid.UUID
	peer   *nativePeer
	format FileFormat

	framePos int64
}

func newAudioStream(id uuid.UUID, peer *nativePeer, f FileFormat) *AudioStream {
	return &AudioStream{id: id, peer: peer, format: f}
}

// Read reads whole frames into p. When the frame length is known, reading
// stops there.
func (s *AudioStream) Read(p []byte) (int, error) {
	const op = "read"

	if len(p) == 0 {
		return 0, nil
	}

	n := len(p)
	frameSize := s.format.Format.FrameSize
	if frameSize > 0 {
		n -= n % frameSize
		if n == 0 {
			return 0, newError(ErrInvalidArgument, op, s.peer.id.String(),
				fmt.Errorf("buffer of %d bytes holds no %d byte frame", len(p), frameSize))
		}
	}

	if fl := s.format.FrameLength; fl != NotSpecified && frameSize > 0 {
		remaining := (fl - s.framePos) * int64(frameSize)
		if remaining <= 0 {
			return 0, io.EOF
		}
		n = int(min(int64(n), remaining))
	}

	read, err := s.peer.ReadInto(p, 0, n)
	if frameSize > 0 {
		// a truncated trailing frame is dropped
		read -= read % frameSize
		s.framePos += int64(read / frameSize)
	}
	if read == 0 && err == nil {
		err = io.EOF
	}
	return read, err
}

// Skip discards up to n bytes, rounded down to whole frames, and returns how
// many were skipped.
func (s *AudioStream) Skip(n int64) (int64, error) {
	if fs := int64(s.format.Format.FrameSize); fs > 0 {
		n -= n % fs
	}
	if n <= 0 {
		return 0, nil
	}

	buf := make([]byte, min(n, DefaultBufferSize))
	var skipped int64
	for skipped < n {
		chunk := buf[:min(int64(len(buf)), n-skipped)]
		r, err := s.Read(chunk)
		skipped += int64(r)
		if err == io.EOF {
			return skipped, nil
		}
		if err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

// SeekTime repositions the stream at d from the start. The frame position
// is recomputed from the nominal frame rate, so it is an approximation.
func (s *AudioStream) SeekTime(d time.Duration) error {
	if err := s.peer.SeekTime(d); err != nil {
		return err
	}
	s.framePos = int64(float64(s.format.Format.FrameRate) * float64(d.Microseconds()) / 1e6)
	return nil
}

func (s *AudioStream) Seekable() bool { return s.peer.Seekable() }

// FramePosition is the index of the next frame to be read.
func (s *AudioStream) FramePosition() int64 { return s.framePos }

// FrameLength is the total number of frames, or NotSpecified.
func (s *AudioStream) FrameLength() int64 { return s.format.FrameLength }

func (s *AudioStream) Format() AudioFormat { return s.format.Format }

func (s *AudioStream) FileFormat() FileFormat { return s.format }

// ID identifies the stream in logs.
func (s *AudioStream) ID() uuid.UUID { return s.id }

func (s *AudioStream) Identifier() resource.Identifier { return s.peer.id }

// Close releases the decode session. Calling it again does nothing.
func (s *AudioStream) Close() error { return s.peer.Close() }
