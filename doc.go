// SPDX-License-Identifier: EPL-2.0

// Package audstream exposes audio resources decoded by a decoding engine as
// seekable streams of PCM bytes, and answers what format a resource is
// without decoding it.
//
// # Streams
//
// A Reader normalizes local paths into resource identifiers, resolves their
// format and opens a decode session per stream:
//
//	r, err := audstream.NewDefaultReader()
//	s, err := r.Stream("/music/track.wav")
//	defer s.Close()
//
//	_, err = io.Copy(out, s) // whole frames of 16-bit little-endian PCM
//
// The stream pulls decoded chunks from the engine into a 32 KiB buffer and
// releases the session as soon as the engine reports the end. Seekable
// sessions can be repositioned with SeekTime; FramePosition is then
// recomputed from the nominal frame rate.
//
// # Formats
//
// FileFormat probes a resource once and memoizes the answer in a FormatCache.
// The cache shared by default readers holds DefaultCacheCapacity entries and
// evicts in insertion order:
//
//	f, err := r.FileFormat("/music/track.mp3")
//	fmt.Println(f.Type, f.Format.SampleRate, f.FrameLength)
//
// # Errors
//
// Failures are *Error values. Use errors.Is against ErrUnsupportedFormat,
// ErrResourceNotFound, ErrIO, ErrInvalidArgument, ErrIllegalState and
// ErrUnsupportedOperation. The engine's raw code, when there is one, is kept
// in Error.Code and printed in hexadecimal.
//
// # Concurrency
//
// A stream is meant for one reader. Close may be called from any goroutine,
// including while a read is blocked in the engine; that read then fails with
// ErrIllegalState. Resolvers and caches are safe for concurrent use.
package audstream
