// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"bytes"
	"io"
	"sync"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/engine"
	"github.com/ik5/audstream/resource"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Engine decodes resources in-process. It is safe for concurrent use.
type Engine struct {
	cfg Config
	log logrus.FieldLogger

	sessions map[engine.Handle]*session
	last     engine.Handle

	mtx *sync.Mutex
}

var _ engine.Engine = (*Engine)(nil)

// New creates an engine from cfg.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid decoder config")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Engine{
		cfg:      cfg,
		log:      cfg.Logger.WithField("component", "decoder"),
		sessions: make(map[engine.Handle]*session),
		mtx:      &sync.Mutex{},
	}, nil
}

// Probe opens id, describes it and releases it again.
func (e *Engine) Probe(id string) (engine.Descriptor, error) {
	const op = "probe"

	ident := resource.Identifier(id)
	in, err := e.openInput(op, ident)
	if err != nil {
		return engine.Descriptor{}, err
	}
	defer in.close()

	f, src, err := e.decode(op, ident, in)
	if err != nil {
		return engine.Descriptor{}, err
	}
	defer src.Close()

	return describe(f, src.Info()), nil
}

// ProbeBytes describes the content in buf[:length], a prefix of some
// resource. The duration is unknown unless the container header states
// the frame count.
func (e *Engine) ProbeBytes(buf []byte, length int) (engine.Descriptor, error) {
	const op = "probe bytes"

	if length < 0 || length > len(buf) {
		return engine.Descriptor{}, &engine.Error{Op: op, Code: engine.CodeInvalidArg, Msg: "length out of range"}
	}

	// hide io.Seeker: backends must not size the stream from a prefix
	data := buf[:length]
	in := &input{
		r:      struct{ io.Reader }{bytes.NewReader(data)},
		prefix: data[:min(length, audio.SniffSize)],
		length: -1,
	}

	f, src, err := e.decode(op, "", in)
	if err != nil {
		return engine.Descriptor{}, err
	}
	defer src.Close()

	d := describe(f, src.Info())
	if len(f.Extensions) > 0 {
		d.Container = f.Extensions[0]
	}
	return d, nil
}

// Open starts a decode session for id.
func (e *Engine) Open(id string) (engine.Handle, error) {
	const op = "open"

	ident := resource.Identifier(id)
	in, err := e.openInput(op, ident)
	if err != nil {
		return engine.Closed, err
	}

	f, src, err := e.decode(op, ident, in)
	if err != nil {
		_ = in.close()
		return engine.Closed, err
	}

	s := newSession(id, f, in, src, e.cfg.ChunkSize)

	e.mtx.Lock()
	e.last++
	h := e.last
	e.sessions[h] = s
	e.mtx.Unlock()

	e.log.WithFields(logrus.Fields{
		"handle":   h,
		"id":       id,
		"format":   f.Name,
		"seekable": s.seekable,
	}).Debug("session opened")

	return h, nil
}

// Seekable reports whether h can be repositioned. Unknown handles are not.
func (e *Engine) Seekable(h engine.Handle) bool {
	s, ok := e.session(h)
	return ok && s.seekable
}

// Refill returns the next chunk of PCM for h. The chunk is reused by the
// next call on h.
func (e *Engine) Refill(h engine.Handle) ([]byte, error) {
	const op = "refill"

	s, ok := e.session(h)
	if !ok {
		return nil, closedError(op, h)
	}

	chunk, err := s.refill()
	if err != nil {
		// a concurrent Close pulls the resource from under the read
		if _, still := e.session(h); !still {
			return nil, closedError(op, h)
		}
		return nil, &engine.Error{Op: op, ID: s.id, Code: engine.CodeFail, Err: err}
	}
	return chunk, nil
}

// Seek moves h to ticks, in 100 ns units from the start of the stream.
func (e *Engine) Seek(h engine.Handle, ticks int64) error {
	const op = "seek"

	s, ok := e.session(h)
	if !ok {
		return closedError(op, h)
	}
	if !s.seekable {
		return &engine.Error{Op: op, ID: s.id, Code: engine.CodeNotSeekable, Msg: "resource cannot seek"}
	}
	if ticks < 0 {
		return &engine.Error{Op: op, ID: s.id, Code: engine.CodeInvalidArg, Msg: "negative position"}
	}

	if err := s.seek(ticks); err != nil {
		if _, still := e.session(h); !still {
			return closedError(op, h)
		}
		return &engine.Error{Op: op, ID: s.id, Code: engine.CodeFail, Err: err}
	}

	e.log.WithFields(logrus.Fields{"handle": h, "ticks": ticks}).Debug("session seeked")
	return nil
}

// Close releases h. The handle is dead afterwards even if releasing the
// resource failed.
func (e *Engine) Close(h engine.Handle) error {
	const op = "close"

	e.mtx.Lock()
	s, ok := e.sessions[h]
	delete(e.sessions, h)
	e.mtx.Unlock()

	if !ok {
		return closedError(op, h)
	}

	log := e.log.WithFields(logrus.Fields{"handle": h, "id": s.id})
	if err := s.close(); err != nil {
		log.WithError(err).Warn("session release failed")
		return &engine.Error{Op: op, ID: s.id, Code: engine.CodeFail, Err: err}
	}

	log.Debug("session closed")
	return nil
}

// Len returns the number of open sessions.
func (e *Engine) Len() int {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return len(e.sessions)
}

func (e *Engine) session(h engine.Handle) (*session, bool) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	s, ok := e.sessions[h]
	return s, ok
}

// decode selects a backend for in and starts decoding it.
func (e *Engine) decode(op string, id resource.Identifier, in *input) (audio.Format, audio.Source, error) {
	f, err := e.cfg.Registry.Select(in.prefix, id.Extension())
	if err != nil {
		return audio.Format{}, nil, &engine.Error{
			Op:   op,
			ID:   id.String(),
			Code: engine.CodeUnsupportedByteStream,
			Err:  errors.Wrap(err, "select backend"),
		}
	}

	src, err := f.Decoder.Decode(in.r)
	if err != nil {
		return audio.Format{}, nil, &engine.Error{
			Op:   op,
			ID:   id.String(),
			Code: engine.CodeInvalidFormat,
			Err:  errors.Wrapf(err, "decode %s", f.Name),
		}
	}

	info := src.Info()
	if info.Channels <= 0 || info.SampleRate <= 0 {
		_ = src.Close()
		return audio.Format{}, nil, &engine.Error{
			Op:   op,
			ID:   id.String(),
			Code: engine.CodeInvalidFormat,
			Err:  errors.Wrapf(ErrBadLayout, "%s: %d channels at %d Hz", f.Name, info.Channels, info.SampleRate),
		}
	}

	return f, src, nil
}

// describe maps a backend's PCM layout to a descriptor.
func describe(f audio.Format, info audio.Info) engine.Descriptor {
	return engine.Descriptor{
		SampleRate:     float32(info.SampleRate),
		SampleSize:     audio.BytesPerSample * 8,
		Channels:       info.Channels,
		PacketSize:     info.FrameSize(),
		FrameRate:      float32(info.SampleRate),
		BigEndian:      false,
		DurationMicros: durationMicros(info),
		BitRate:        info.BitRate,
		VBR:            info.VBR,
	}
}

// durationMicros rounds up, so sampleRate*micros/1e6 floors back to the
// exact frame count for any rate below 1 MHz.
func durationMicros(info audio.Info) int64 {
	if info.Frames < 0 || info.SampleRate <= 0 {
		return -1
	}
	rate := int64(info.SampleRate)
	return (info.Frames*1_000_000 + rate - 1) / rate
}

func closedError(op string, h engine.Handle) error {
	return &engine.Error{Op: op, Code: engine.CodeClosed, Msg: "session is closed", Err: errors.Errorf("handle %d", h)}
}
