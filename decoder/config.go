// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ik5/audstream/audio"
	"github.com/sirupsen/logrus"
)

// DefaultChunkSize is the number of PCM bytes handed out per Refill.
const DefaultChunkSize = 32 * 1024

// Config holds the engine configuration.
type Config struct {
	// Registry selects the backend for a resource.
	Registry *audio.Registry
	// HTTPClient fetches http and https resources.
	HTTPClient *http.Client
	// ChunkSize caps a single Refill. It is rounded down to whole frames.
	ChunkSize int
	// Logger defaults to logrus.StandardLogger() when nil.
	Logger logrus.FieldLogger
}

// DefaultConfig returns a configuration using every built-in format.
func DefaultConfig() Config {
	return Config{
		Registry:   DefaultRegistry(),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		ChunkSize:  DefaultChunkSize,
		Logger:     logrus.StandardLogger(),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Registry == nil {
		return ErrRegistryRequired
	}

	if c.HTTPClient == nil {
		return ErrHTTPClientRequired
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChunkSize, c.ChunkSize)
	}

	return nil
}
