// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"errors"
	"fmt"

	"github.com/ik5/audstream/engine"
	"github.com/sirupsen/logrus"
)

var (
	// ErrEngineRequired is returned when Config.Engine is nil.
	ErrEngineRequired = errors.New("decoding engine is required")
	// ErrInvalidBufferSize is returned when Config.BufferSize is negative.
	ErrInvalidBufferSize = errors.New("buffer size must not be negative")
)

// Config holds the Reader configuration.
type Config struct {
	Engine engine.Engine
	// Cache defaults to SharedCache().
	Cache *FormatCache
	// BufferSize is the initial stream buffer capacity, DefaultBufferSize
	// when zero.
	BufferSize int
	// Logger defaults to logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Engine == nil {
		return ErrEngineRequired
	}

	if c.BufferSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBufferSize, c.BufferSize)
	}

	return nil
}

func (c *Config) setDefaults() {
	if c.Cache == nil {
		c.Cache = SharedCache()
	}
	if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
}
