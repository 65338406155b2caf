// SPDX-License-Identifier: EPL-2.0

// Package engine defines the narrow contract between the stream layer and a
// decoding engine.
//
// An engine owns all decode state. Callers only ever hold a Handle, an opaque
// key that is valid from Open until Close and is never handed out again after
// it has been released. Every call blocks until the engine is done; there are
// no callbacks and no background work.
package engine

// Handle identifies an open decode session. The zero value means closed or
// never opened.
type Handle uint64

// Closed is the handle value of a session that is not open.
const Closed Handle = 0

// TicksPerSecond is the engine's time granularity: 100 ns ticks.
const TicksPerSecond = 10_000_000

// Descriptor is the probe result for a resource.
type Descriptor struct {
	// SampleRate in Hz.
	SampleRate float32
	// SampleSize in bits.
	SampleSize int
	Channels   int
	// PacketSize is the size of one frame in bytes.
	PacketSize int
	FrameRate  float32
	BigEndian  bool
	// DurationMicros is negative when the duration is unknown.
	DurationMicros int64
	// BitRate in bits per second, 0 when unknown.
	BitRate int
	VBR     bool
	// Container is an extension hint ("wav", "mp3", ...) for callers that
	// have no identifier to derive one from. It may be empty.
	Container string
}

// Engine is the decoding backend.
//
// Refill returns the next chunk of decoded bytes. The returned slice is only
// valid until the next call on the same handle. An empty chunk with a nil
// error signals the end of the stream.
type Engine interface {
	Probe(id string) (Descriptor, error)
	ProbeBytes(buf []byte, length int) (Descriptor, error)

	Open(id string) (Handle, error)
	Seekable(h Handle) bool
	Refill(h Handle) ([]byte, error)
	Seek(h Handle, ticks int64) error
	Close(h Handle) error
}
