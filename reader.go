// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/ik5/audstream/decoder"
	"github.com/ik5/audstream/resource"
	"github.com/sirupsen/logrus"
)

// Reader opens audio resources as streams and reports their formats.
type Reader struct {
	cfg      Config
	resolver *Resolver
	log      logrus.FieldLogger
}

// NewReader creates a Reader from cfg.
func NewReader(cfg Config) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reader config: %w", err)
	}
	cfg.setDefaults()

	log := cfg.Logger.WithField("component", "audstream")
	return &Reader{
		cfg:      cfg,
		resolver: NewResolver(cfg.Engine, cfg.Cache, log),
		log:      log,
	}, nil
}

// NewDefaultReader creates a Reader over the in-process decoder with every
// built-in format and the shared cache.
func NewDefaultReader() (*Reader, error) {
	eng, err := decoder.New(decoder.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	return NewReader(Config{Engine: eng})
}

func (r *Reader) Resolver() *Resolver { return r.resolver }

// FileFormat describes the local file at path.
func (r *Reader) FileFormat(path string) (FileFormat, error) {
	id, err := localIdentifier("file format", path)
	if err != nil {
		return FileFormat{}, err
	}
	return r.resolver.Resolve(id)
}

// FileFormatURL describes the resource at a file, http or https URL.
func (r *Reader) FileFormatURL(raw string) (FileFormat, error) {
	id, err := urlIdentifier("file format", raw)
	if err != nil {
		return FileFormat{}, err
	}
	return r.resolver.Resolve(id)
}

// FileFormatFromReader describes the content at the current position of rs,
// which is left where it was.
func (r *Reader) FileFormatFromReader(rs io.ReadSeeker) (FileFormat, error) {
	return r.resolver.ResolveFromPrefix(rs)
}

// Stream opens the local file at path.
func (r *Reader) Stream(path string) (*AudioStream, error) {
	id, err := localIdentifier("stream", path)
	if err != nil {
		return nil, err
	}
	return r.openStream(id)
}

// StreamURL opens the resource at a file, http or https URL.
func (r *Reader) StreamURL(raw string) (*AudioStream, error) {
	id, err := urlIdentifier("stream", raw)
	if err != nil {
		return nil, err
	}
	return r.openStream(id)
}

// StreamFromReader always fails: streams can only be decoded from
// identifiers. The content is still probed so format errors win.
func (r *Reader) StreamFromReader(rs io.ReadSeeker) (*AudioStream, error) {
	if _, err := r.resolver.ResolveFromPrefix(rs); err != nil {
		return nil, err
	}
	return nil, newError(ErrUnsupportedOperation, "stream", "", errors.New("streams from readers are not supported"))
}

func (r *Reader) openStream(id resource.Identifier) (s *AudioStream, err error) {
	f, err := r.resolver.Resolve(id)
	if err != nil {
		return nil, err
	}

	sid, err := uuid.NewRandom()
	if err != nil {
		return nil, newError(ErrIO, "stream", id.String(), err)
	}

	peer := newNativePeer(r.cfg.Engine, id, r.cfg.BufferSize, r.log.WithField("stream", sid))
	if err := peer.open(); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = peer.Close()
		}
	}()

	if f.Format.FrameSize < 0 {
		return nil, newError(ErrUnsupportedFormat, "stream", id.String(),
			fmt.Errorf("frame size %d", f.Format.FrameSize))
	}

	return newAudioStream(sid, peer, f), nil
}

// localIdentifier checks that path is a readable file before normalizing it.
func localIdentifier(op, path string) (resource.Identifier, error) {
	if path == "" {
		return "", newError(ErrInvalidArgument, op, path, resource.ErrEmptyPath)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", newError(ErrResourceNotFound, op, path, err)
	}
	_ = f.Close()

	id, err := resource.FromPath(path)
	if err != nil {
		return "", newError(ErrInvalidArgument, op, path, err)
	}
	return id, nil
}

func urlIdentifier(op, raw string) (resource.Identifier, error) {
	id, err := resource.FromURL(raw)
	if err != nil {
		return "", newError(ErrInvalidArgument, op, raw, err)
	}
	return id, nil
}
