// SPDX-License-Identifier: EPL-2.0

package resource

import "errors"

var (
	// ErrEmptyPath is returned when an empty path is normalized.
	ErrEmptyPath = errors.New("empty path")

	// ErrInvalidPath is returned when a path cannot be encoded as UTF-8.
	ErrInvalidPath = errors.New("path is not valid UTF-8")

	// ErrInvalidURL is returned when a URL cannot be parsed.
	ErrInvalidURL = errors.New("invalid resource URL")

	// ErrUnsupportedScheme is returned for URLs other than file, http and https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")

	// ErrNotLocal is returned when a local path is requested from a remote identifier.
	ErrNotLocal = errors.New("identifier does not address a local file")
)
