// SPDX-License-Identifier: EPL-2.0

package decoder

import "github.com/pkg/errors"

var (
	// ErrRegistryRequired is returned when Config.Registry is nil.
	ErrRegistryRequired = errors.New("decoder registry is required")

	// ErrHTTPClientRequired is returned when Config.HTTPClient is nil.
	ErrHTTPClientRequired = errors.New("http client is required")

	// ErrInvalidChunkSize is returned when Config.ChunkSize is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrBadLayout is returned when a backend reports no channels or no sample rate.
	ErrBadLayout = errors.New("decoder reported an empty PCM layout")
)
