// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff. Uncompressed AIFF and AIFF-C
// at 8, 16, 24 and 32 bits are delivered as little-endian 16-bit PCM, so the
// big-endian storage of the file never leaks to callers.
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrUnsupportedBitDepth) {
//	    // 12-bit and friends
//	}
//
// Like the WAV decoder, a reader without Seek is buffered in memory first.
package aiff
