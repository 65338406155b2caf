// Package audiotest holds PCM sources and container fixtures shared by the
// decoder tests.
package audiotest
