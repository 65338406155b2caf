package flac

import "errors"

var (
	// ErrUnsupportedFlacLayout indicates a stream without channels or sample rate
	ErrUnsupportedFlacLayout = errors.New("unsupported FLAC layout")

	// ErrChannelMismatch indicates a frame whose subframe count differs from the stream info
	ErrChannelMismatch = errors.New("FLAC frame channel count mismatch")
)
