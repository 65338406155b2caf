// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ik5/audstream/engine"
	"github.com/ik5/audstream/resource"
	"github.com/sirupsen/logrus"
)

// DefaultBufferSize is the initial capacity of a peer's buffer.
const DefaultBufferSize = 32 * 1024

type peerState int

const (
	peerUnopened peerState = iota
	peerOpen
	peerClosed
)

// nativePeer turns the engine's chunked refills into a byte stream over one
// decode session.
//
// mtx guards handle and state and is never held across an engine call. The
// buffer belongs to the reading goroutine; Close never touches it.
type nativePeer struct {
	eng engine.Engine
	id  resource.Identifier
	log logrus.FieldLogger

	handle   engine.Handle
	state    peerState
	seekable bool
	// the session was released because the stream ended
	exhausted bool

	buf      []byte
	pos, lim int

	mtx *sync.Mutex
}

func newNativePeer(eng engine.Engine, id resource.Identifier, bufferSize int, log logrus.FieldLogger) *nativePeer {
	return &nativePeer{
		eng: eng,
		id:  id,
		log: log.WithField("id", id),
		buf: make([]byte, bufferSize),
		mtx: &sync.Mutex{},
	}
}

func (p *nativePeer) open() error {
	const op = "open"

	p.mtx.Lock()
	if p.state != peerUnopened {
		p.mtx.Unlock()
		return newError(ErrIllegalState, op, p.id.String(), errors.New("peer was already opened"))
	}
	p.mtx.Unlock()

	h, err := p.eng.Open(p.id.String())
	if err != nil {
		return translate(op, p.id.String(), err)
	}
	seekable := p.eng.Seekable(h)

	p.mtx.Lock()
	p.handle, p.state, p.seekable = h, peerOpen, seekable
	p.mtx.Unlock()

	p.log.WithFields(logrus.Fields{"handle": h, "seekable": seekable}).Debug("session opened")
	return nil
}

// live returns the open handle. After exhaustion it returns Closed and no
// error; after an explicit close it fails.
func (p *nativePeer) live(op string) (engine.Handle, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.state == peerOpen {
		return p.handle, nil
	}
	if p.exhausted {
		return engine.Closed, nil
	}
	return engine.Closed, newError(ErrIllegalState, op, p.id.String(), errors.New("stream is not open"))
}

func (p *nativePeer) Seekable() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.seekable
}

// Buffered returns the number of unread bytes in the buffer.
func (p *nativePeer) Buffered() int { return p.lim - p.pos }

// SetBufferSize replaces the buffer. Only allowed while it is empty.
func (p *nativePeer) SetBufferSize(n int) error {
	const op = "set buffer size"

	if n <= 0 {
		return newError(ErrInvalidArgument, op, p.id.String(), fmt.Errorf("size %d", n))
	}
	if p.Buffered() > 0 {
		return newError(ErrIllegalState, op, p.id.String(),
			fmt.Errorf("%d unread bytes remain", p.Buffered()))
	}

	p.buf, p.pos, p.lim = make([]byte, n), 0, 0
	return nil
}

// fill refills the empty buffer. A closed peer leaves it empty.
func (p *nativePeer) fill() error {
	const op = "refill"

	h, err := p.live(op)
	if err != nil || h == engine.Closed {
		return err
	}

	chunk, err := p.eng.Refill(h)
	if err != nil {
		return translate(op, p.id.String(), err)
	}

	// the buffer is empty, so growing it is allowed
	if len(chunk) > len(p.buf) {
		p.buf = make([]byte, len(chunk))
	}
	p.pos, p.lim = 0, copy(p.buf, chunk)
	return nil
}

// finish releases the session once the stream is exhausted.
func (p *nativePeer) finish() error {
	p.mtx.Lock()
	if p.state == peerOpen {
		p.exhausted = true
	}
	p.mtx.Unlock()

	p.log.Debug("end of stream")
	return p.Close()
}

// ReadByte returns the next byte, or io.EOF once the stream has ended.
func (p *nativePeer) ReadByte() (byte, error) {
	if p.pos >= p.lim {
		if err := p.fill(); err != nil {
			return 0, err
		}
	}
	if p.pos >= p.lim {
		if err := p.finish(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	b := p.buf[p.pos]
	p.pos++
	return b, nil
}

// ReadInto copies up to n bytes into b[off:]. It returns io.EOF only when
// the stream had already ended and nothing was copied.
func (p *nativePeer) ReadInto(b []byte, off, n int) (int, error) {
	const op = "read"

	switch {
	case n < 0:
		return 0, newError(ErrInvalidArgument, op, p.id.String(), fmt.Errorf("length must be >= 0: %d", n))
	case off < 0:
		return 0, newError(ErrInvalidArgument, op, p.id.String(), fmt.Errorf("offset must be >= 0: %d", off))
	case len(b)-off < n:
		return 0, newError(ErrInvalidArgument, op, p.id.String(),
			fmt.Errorf("%d bytes do not fit at offset %d of a %d byte buffer", n, off, len(b)))
	case n == 0:
		return 0, nil
	}

	read := 0
	for read < n {
		if p.pos >= p.lim {
			if err := p.fill(); err != nil {
				return read, err
			}
			if p.pos >= p.lim {
				if err := p.finish(); err != nil {
					return read, err
				}
				break
			}
		}

		c := copy(b[off+read:off+n], p.buf[p.pos:p.lim])
		p.pos += c
		read += c
	}

	if read == 0 {
		return 0, io.EOF
	}
	return read, nil
}

// Read implements io.Reader.
func (p *nativePeer) Read(b []byte) (int, error) {
	return p.ReadInto(b, 0, len(b))
}

// SeekTime repositions the session at d from the start and drops whatever is
// still buffered.
func (p *nativePeer) SeekTime(d time.Duration) error {
	const op = "seek"

	p.mtx.Lock()
	h, state, seekable := p.handle, p.state, p.seekable
	p.mtx.Unlock()

	if state != peerOpen {
		return newError(ErrIllegalState, op, p.id.String(), errors.New("cannot seek on closed stream"))
	}
	if !seekable {
		return newError(ErrUnsupportedOperation, op, p.id.String(), errors.New("seeking is not supported"))
	}
	if d < 0 {
		return newError(ErrInvalidArgument, op, p.id.String(), fmt.Errorf("negative position %s", d))
	}

	if err := p.eng.Seek(h, d.Nanoseconds()/100); err != nil {
		return translate(op, p.id.String(), err)
	}

	p.pos, p.lim = 0, 0
	return nil
}

// Close releases the session. Only the first call reaches the engine, and
// the handle is cleared before the release so it can never be released
// twice.
func (p *nativePeer) Close() error {
	p.mtx.Lock()
	h := p.handle
	p.handle, p.state = engine.Closed, peerClosed
	p.mtx.Unlock()

	if h == engine.Closed {
		return nil
	}

	log := p.log.WithField("handle", h)
	if err := p.eng.Close(h); err != nil {
		log.WithError(err).Warn("session release failed")
		return translate("close", p.id.String(), err)
	}

	log.Debug("session closed")
	return nil
}
