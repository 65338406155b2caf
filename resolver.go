// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audstream/engine"
	"github.com/ik5/audstream/resource"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// PrefixProbeSize is how many bytes ResolveFromPrefix reads.
const PrefixProbeSize = 8 * 1024

// Resolver answers what format a resource is without keeping it open.
type Resolver struct {
	eng   engine.Engine
	cache *FormatCache
	log   logrus.FieldLogger

	group singleflight.Group
}

func NewResolver(eng engine.Engine, cache *FormatCache, log logrus.FieldLogger) *Resolver {
	if cache == nil {
		cache = SharedCache()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{eng: eng, cache: cache, log: log}
}

// Resolve returns the format of id from the cache, probing the engine on a
// miss. Failed probes are not cached. Concurrent misses for one identifier
// share a single probe.
func (r *Resolver) Resolve(id resource.Identifier) (FileFormat, error) {
	if f, ok := r.cache.Get(id); ok {
		r.log.WithField("id", id).Debug("format cache hit")
		return f, nil
	}

	v, err, _ := r.group.Do(id.String(), func() (any, error) {
		return r.probe(id)
	})
	if err != nil {
		return FileFormat{}, err
	}
	return v.(FileFormat), nil
}

func (r *Resolver) probe(id resource.Identifier) (FileFormat, error) {
	const op = "resolve"

	d, err := r.eng.Probe(id.String())
	if err != nil {
		return FileFormat{}, translate(op, id.String(), err)
	}

	t, err := fileTypeOf(id)
	if err != nil {
		return FileFormat{}, newError(ErrUnsupportedFormat, op, id.String(), err)
	}

	f := newFileFormat(t, byteLength(id), d)

	log := r.log.WithFields(logrus.Fields{"id": id, "type": t.Name})
	if evicted, ok := r.cache.Put(id, f); ok {
		log = log.WithField("evicted", evicted)
	}
	log.Debug("format probed")

	return f, nil
}

// ResolveFromPrefix probes the next PrefixProbeSize bytes of rs with a single
// read and puts rs back where it was. The cache is not involved.
func (r *Resolver) ResolveFromPrefix(rs io.ReadSeeker) (f FileFormat, err error) {
	const op = "resolve prefix"

	if rs == nil {
		return FileFormat{}, newError(ErrInvalidArgument, op, "", errors.New("nil reader"))
	}

	mark, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return FileFormat{}, newError(ErrIO, op, "", err)
	}
	defer func() {
		if _, serr := rs.Seek(mark, io.SeekStart); serr != nil && err == nil {
			f, err = FileFormat{}, newError(ErrIO, op, "", fmt.Errorf("reset: %w", serr))
		}
	}()

	buf := make([]byte, PrefixProbeSize)
	n, err := rs.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return FileFormat{}, newError(ErrIO, op, "", err)
	}
	if n == 0 {
		return FileFormat{}, newError(ErrUnsupportedFormat, op, "", errors.New("empty stream"))
	}

	d, err := r.eng.ProbeBytes(buf, n)
	if err != nil {
		return FileFormat{}, translate(op, "", err)
	}
	if d.Container == "" {
		return FileFormat{}, newError(ErrUnsupportedFormat, op, "", errors.New("engine reported no container"))
	}

	return newFileFormat(FileTypeForExtension(d.Container), NotSpecified, d), nil
}
