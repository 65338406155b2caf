// SPDX-License-Identifier: EPL-2.0

package resource

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"
)

// MaxAllowedColons is the number of colons left unescaped in an identifier:
// one for the scheme and one for a drive letter.
const MaxAllowedColons = 2

// Identifier locates a resource for the decoding engine. It is created once
// per request and never modified.
type Identifier string

// String returns the identifier as passed to the engine.
func (id Identifier) String() string { return string(id) }

// Scheme returns the lower-cased URL scheme, or "" when there is none.
func (id Identifier) Scheme() string {
	i := strings.IndexByte(string(id), ':')
	if i <= 0 {
		return ""
	}
	return strings.ToLower(string(id[:i]))
}

// IsLocal reports whether the identifier addresses a local file.
func (id Identifier) IsLocal() bool { return id.Scheme() == "file" }

// LocalPath returns the filesystem path addressed by a file: identifier,
// with all escaping undone.
func (id Identifier) LocalPath() (string, error) {
	if !id.IsLocal() {
		return "", fmt.Errorf("%w: %s", ErrNotLocal, id)
	}
	u, err := url.Parse(string(id))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	// file:/c:/dir keeps the leading slash in front of the drive
	if runtime.GOOS == "windows" && isDrivePath(strings.TrimPrefix(p, "/")) {
		p = strings.TrimPrefix(p, "/")
	}
	return filepath.FromSlash(p), nil
}

// Extension returns the lower-cased extension of the last path segment
// without the dot, or "" when the segment has none.
func (id Identifier) Extension() string {
	p := string(id)
	if u, err := url.Parse(p); err == nil {
		p = u.Path
		if p == "" {
			p = u.Opaque
		}
	}
	ext := path.Ext(path.Base(p))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FromPath converts a local filesystem path into its identifier.
//
// The path is turned into a file: URI, then the punctuation set
// ", ; $ & + = ? [ ] @" and every colon after the first MaxAllowedColons
// are percent-escaped. All other characters pass through unchanged.
func FromPath(p string) (Identifier, error) {
	if p == "" {
		return "", ErrEmptyPath
	}
	if !utf8.ValidString(p) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}

	uri, err := fileURI(p)
	if err != nil {
		return "", err
	}

	return Identifier(escapePunctuation(uri)), nil
}

// FromURL validates a file, http or https URL and returns it as an identifier.
// The URL is not re-escaped.
func FromURL(raw string) (Identifier, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		if u.Path == "" && u.Opaque == "" {
			return "", fmt.Errorf("%w: %q has no path", ErrInvalidURL, raw)
		}
	case "http", "https":
		if u.Host == "" {
			return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	return Identifier(raw), nil
}

// fileURI renders p the way a file: URI is spelled: forward slashes, a
// leading slash, a trailing slash for directories, and characters that are
// illegal in a URI path quoted.
func fileURI(p string) (string, error) {
	if isDrivePath(p) {
		p = strings.ReplaceAll(p, `\`, "/")
	} else {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", p, err)
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			abs += string(filepath.Separator)
		}
		p = filepath.ToSlash(abs)
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	var b strings.Builder
	b.Grow(len(p) + 5)
	b.WriteString("file:")
	for i := 0; i < len(p); i++ {
		c := p[i]
		if mustQuote(c) {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}

	return b.String(), nil
}

func escapePunctuation(uri string) string {
	var b strings.Builder
	b.Grow(len(uri))

	colons := 0
	for _, r := range uri {
		switch r {
		case ':':
			if colons < MaxAllowedColons {
				colons++
				b.WriteRune(r)
				continue
			}
			fallthrough
		case ',', ';', '$', '&', '+', '=', '?', '[', ']', '@':
			b.WriteString(url.QueryEscape(string(r)))
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// isDrivePath reports whether p starts with a drive letter such as "c:".
func isDrivePath(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
		return false
	}
	return len(p) == 2 || p[2] == '\\' || p[2] == '/'
}

func mustQuote(c byte) bool {
	if c < 0x20 || c == 0x7f {
		return true
	}
	return strings.IndexByte(" \"#%<>\\^`{|}", c) >= 0
}
