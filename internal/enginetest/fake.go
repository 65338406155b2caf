// SPDX-License-Identifier: EPL-2.0

// Package enginetest provides a scriptable engine.Engine for tests.
package enginetest

import (
	"sync"

	"github.com/ik5/audstream/engine"
)

// Resource scripts what the fake engine serves for one identifier.
type Resource struct {
	Descriptor engine.Descriptor
	// Data is the full decoded stream.
	Data []byte
	// ChunkSize is the size of each refill chunk, 4096 when zero.
	ChunkSize int
	Seekable  bool

	ProbeErr error
	OpenErr  error
	SeekErr  error
	CloseErr error
	// RefillErr is returned by the FailRefillAt-th refill (1-based).
	RefillErr    error
	FailRefillAt int
}

// Calls counts the calls made on the fake engine.
type Calls struct {
	Probe      int
	ProbeBytes int
	Open       int
	Seekable   int
	Refill     int
	Seek       int
	Close      int
}

type session struct {
	res     *Resource
	pos     int
	refills int
}

// Engine is a fake engine.Engine serving scripted resources.
type Engine struct {
	// Resources maps identifiers to their scripts.
	Resources map[string]*Resource
	// PrefixProbe answers ProbeBytes. A nil PrefixProbe fails with
	// CodeUnsupportedByteStream.
	PrefixProbe func(prefix []byte) (engine.Descriptor, error)
	// BeforeProbe runs before every Probe, outside the lock.
	BeforeProbe func(id string)
	// BeforeRefill runs before every refill, outside the lock.
	BeforeRefill func(h engine.Handle)

	calls     Calls
	sessions  map[engine.Handle]*session
	last      engine.Handle
	released  []engine.Handle
	lastSeek  int64
	lastProbe []byte

	mtx sync.Mutex
}

var _ engine.Engine = (*Engine)(nil)

func New() *Engine {
	return &Engine{
		Resources: make(map[string]*Resource),
		sessions:  make(map[engine.Handle]*session),
	}
}

// Add registers r under id and returns it.
func (e *Engine) Add(id string, r *Resource) *Resource {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.Resources[id] = r
	return r
}

func (e *Engine) Calls() Calls {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.calls
}

// Released lists every handle passed to a successful or failed Close, in order.
func (e *Engine) Released() []engine.Handle {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return append([]engine.Handle(nil), e.released...)
}

// Open sessions.
func (e *Engine) Len() int {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return len(e.sessions)
}

// LastSeek returns the ticks of the last Seek call.
func (e *Engine) LastSeek() int64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return e.lastSeek
}

// LastPrefix returns a copy of the bytes passed to the last ProbeBytes call.
func (e *Engine) LastPrefix() []byte {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return append([]byte(nil), e.lastProbe...)
}

func (e *Engine) Probe(id string) (engine.Descriptor, error) {
	if e.BeforeProbe != nil {
		e.BeforeProbe(id)
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.calls.Probe++
	r, ok := e.Resources[id]
	if !ok {
		return engine.Descriptor{}, &engine.Error{Op: "probe", ID: id, Code: engine.CodeFileNotFound, Msg: "no such resource"}
	}
	if r.ProbeErr != nil {
		return engine.Descriptor{}, r.ProbeErr
	}
	return r.Descriptor, nil
}

func (e *Engine) ProbeBytes(buf []byte, length int) (engine.Descriptor, error) {
	e.mtx.Lock()
	e.calls.ProbeBytes++
	e.lastProbe = append(e.lastProbe[:0], buf[:length]...)
	probe := e.PrefixProbe
	e.mtx.Unlock()

	if probe == nil {
		return engine.Descriptor{}, &engine.Error{Op: "probe bytes", Code: engine.CodeUnsupportedByteStream, Msg: "unsupported byte stream"}
	}
	return probe(buf[:length])
}

func (e *Engine) Open(id string) (engine.Handle, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.calls.Open++
	r, ok := e.Resources[id]
	if !ok {
		return engine.Closed, &engine.Error{Op: "open", ID: id, Code: engine.CodeFileNotFound, Msg: "no such resource"}
	}
	if r.OpenErr != nil {
		return engine.Closed, r.OpenErr
	}

	e.last++
	e.sessions[e.last] = &session{res: r}
	return e.last, nil
}

func (e *Engine) Seekable(h engine.Handle) bool {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.calls.Seekable++
	s, ok := e.sessions[h]
	return ok && s.res.Seekable
}

func (e *Engine) Refill(h engine.Handle) ([]byte, error) {
	if e.BeforeRefill != nil {
		e.BeforeRefill(h)
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.calls.Refill++
	s, ok := e.sessions[h]
	if !ok {
		return nil, &engine.Error{Op: "refill", Code: engine.CodeClosed, Msg: "session is closed"}
	}

	s.refills++
	if s.res.FailRefillAt > 0 && s.refills == s.res.FailRefillAt {
		return nil, s.res.RefillErr
	}

	size := s.res.ChunkSize
	if size <= 0 {
		size = 4096
	}
	end := min(s.pos+size, len(s.res.Data))
	chunk := append([]byte(nil), s.res.Data[s.pos:end]...)
	s.pos = end
	return chunk, nil
}

func (e *Engine) Seek(h engine.Handle, ticks int64) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.calls.Seek++
	e.lastSeek = ticks
	s, ok := e.sessions[h]
	if !ok {
		return &engine.Error{Op: "seek", Code: engine.CodeClosed, Msg: "session is closed"}
	}
	if s.res.SeekErr != nil {
		return s.res.SeekErr
	}

	d := s.res.Descriptor
	frame := int64(float64(d.FrameRate) * float64(ticks) / engine.TicksPerSecond)
	s.pos = min(int(frame)*d.PacketSize, len(s.res.Data))
	return nil
}

func (e *Engine) Close(h engine.Handle) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.calls.Close++
	e.released = append(e.released, h)
	s, ok := e.sessions[h]
	if !ok {
		return &engine.Error{Op: "close", Code: engine.CodeClosed, Msg: "session is closed"}
	}
	delete(e.sessions, h)
	return s.res.CloseErr
}

// Pattern returns n deterministic bytes, distinct across chunk boundaries.
func Pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i % 251)
	}
	return out
}

// Descriptor returns a 16-bit little-endian PCM descriptor.
func Descriptor(sampleRate, channels int, durationMicros int64) engine.Descriptor {
	return engine.Descriptor{
		SampleRate:     float32(sampleRate),
		SampleSize:     16,
		Channels:       channels,
		PacketSize:     2 * channels,
		FrameRate:      float32(sampleRate),
		DurationMicros: durationMicros,
	}
}
