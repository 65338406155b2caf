// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"bufio"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/engine"
	"github.com/ik5/audstream/resource"
	"github.com/pkg/errors"
)

// input is an opened resource, positioned at its first byte.
type input struct {
	r        io.Reader
	closer   io.Closer
	prefix   []byte
	seekable bool
	// length in bytes, -1 when unknown
	length int64
}

func (in *input) close() error {
	if in.closer == nil {
		return nil
	}
	return in.closer.Close()
}

// rewind repositions a seekable input at its first byte.
func (in *input) rewind() error {
	rs, ok := in.r.(io.Seeker)
	if !ok {
		return errors.New("input cannot seek")
	}
	_, err := rs.Seek(0, io.SeekStart)
	return errors.Wrap(err, "rewind")
}

func (e *Engine) openInput(op string, id resource.Identifier) (*input, error) {
	switch id.Scheme() {
	case "file":
		return openFile(op, id)
	case "http", "https":
		return e.openHTTP(op, id)
	default:
		return nil, &engine.Error{Op: op, ID: id.String(), Code: engine.CodeInvalidArg, Msg: "unsupported scheme"}
	}
}

func openFile(op string, id resource.Identifier) (*input, error) {
	p, err := id.LocalPath()
	if err != nil {
		return nil, &engine.Error{Op: op, ID: id.String(), Code: engine.CodeInvalidArg, Err: err}
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, &engine.Error{Op: op, ID: id.String(), Code: fileCode(err), Err: err}
	}

	st, err := f.Stat()
	if err == nil && st.IsDir() {
		err = errors.Errorf("%s is a directory", p)
	}
	if err != nil {
		_ = f.Close()
		return nil, &engine.Error{Op: op, ID: id.String(), Code: engine.CodePathNotFound, Err: err}
	}

	prefix := make([]byte, audio.SniffSize)
	n, err := io.ReadFull(f, prefix)
	if err == nil || err == io.ErrUnexpectedEOF || err == io.EOF {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		_ = f.Close()
		return nil, &engine.Error{Op: op, ID: id.String(), Code: engine.CodeFail, Err: errors.Wrap(err, "read prefix")}
	}

	return &input{r: f, closer: f, prefix: prefix[:n], seekable: true, length: st.Size()}, nil
}

func fileCode(err error) engine.Code {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return engine.CodeFileNotFound
	case errors.Is(err, fs.ErrPermission):
		return engine.CodeAccessDenied
	default:
		return engine.CodePathNotFound
	}
}

func (e *Engine) openHTTP(op string, id resource.Identifier) (*input, error) {
	resp, err := e.cfg.HTTPClient.Get(id.String())
	if err != nil {
		return nil, &engine.Error{Op: op, ID: id.String(), Code: engine.CodeBadNetPath, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		code := engine.CodeBadNetPath
		if resp.StatusCode == http.StatusNotFound {
			code = engine.CodeFileNotFound
		}
		return nil, &engine.Error{Op: op, ID: id.String(), Code: code, Msg: resp.Status}
	}

	br := bufio.NewReader(resp.Body)
	prefix, err := br.Peek(audio.SniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		_ = resp.Body.Close()
		return nil, &engine.Error{Op: op, ID: id.String(), Code: engine.CodeNetworkFailed, Err: errors.Wrap(err, "read prefix")}
	}

	return &input{
		r:      br,
		closer: resp.Body,
		prefix: append([]byte(nil), prefix...),
		length: resp.ContentLength,
	}, nil
}
