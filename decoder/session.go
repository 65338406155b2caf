// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"io"
	"sync"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/engine"
	"github.com/pkg/errors"
)

// session is one open decode. Calls on a session are serialized by mtx;
// close only takes mtx after the resource is gone so a blocked read returns.
type session struct {
	id       string
	format   audio.Format
	in       *input
	src      audio.Source
	info     audio.Info
	seekable bool

	buf []byte
	// error seen after a partial read, reported by the next refill
	pending error

	mtx sync.Mutex
}

func newSession(id string, f audio.Format, in *input, src audio.Source, chunkSize int) *session {
	info := src.Info()

	size := chunkSize - chunkSize%info.FrameSize()
	if size == 0 {
		size = info.FrameSize()
	}

	return &session{
		id:       id,
		format:   f,
		in:       in,
		src:      src,
		info:     info,
		seekable: in.seekable,
		buf:      make([]byte, size),
	}
}

// refill decodes the next chunk. An empty chunk marks the end of the stream.
func (s *session) refill() ([]byte, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.pending != nil {
		err := s.pending
		s.pending = nil
		return nil, err
	}

	n, err := s.src.Read(s.buf)
	if n > 0 {
		if err != nil && err != io.EOF {
			s.pending = errors.Wrap(err, "read pcm")
		}
		return s.buf[:n], nil
	}
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "read pcm")
	}
	return s.buf[:0], nil
}

// seek repositions the session at the frame closest to ticks.
func (s *session) seek(ticks int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	frame := ticksToFrame(ticks, s.info.SampleRate)
	if s.info.Frames >= 0 && frame > s.info.Frames {
		frame = s.info.Frames
	}
	s.pending = nil

	if sk, ok := s.src.(audio.Seeker); ok {
		return errors.Wrapf(sk.SeekFrame(frame), "seek %s to frame %d", s.format.Name, frame)
	}
	return s.redecode(frame)
}

// redecode restarts the backend from the first byte and discards PCM up to
// frame. Used by backends without native seeking.
func (s *session) redecode(frame int64) error {
	if err := s.in.rewind(); err != nil {
		return err
	}

	src, err := s.format.Decoder.Decode(s.in.r)
	if err != nil {
		return errors.Wrapf(err, "restart %s", s.format.Name)
	}
	_ = s.src.Close()
	s.src = src

	remaining := frame * int64(s.info.FrameSize())
	for remaining > 0 {
		n, err := s.src.Read(s.buf[:min(remaining, int64(len(s.buf)))])
		remaining -= int64(n)
		if err == io.EOF || (n == 0 && err == nil) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "skip to position")
		}
	}
	return nil
}

// close releases the resource first, unblocking a read in progress.
func (s *session) close() error {
	err := s.in.close()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if cerr := s.src.Close(); err == nil {
		err = cerr
	}
	return errors.Wrap(err, "release session")
}

// ticksToFrame converts 100 ns ticks to a frame index without overflowing
// for long positions.
func ticksToFrame(ticks int64, sampleRate int) int64 {
	rate := int64(sampleRate)
	sec, rem := ticks/engine.TicksPerSecond, ticks%engine.TicksPerSecond
	return sec*rate + rem*rate/engine.TicksPerSecond
}
