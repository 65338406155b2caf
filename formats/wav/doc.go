// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes WAV files.
//
// Decoding uses github.com/go-audio/wav. Integer PCM at 8, 16, 24 and 32 bits
// is accepted and delivered as 16-bit little-endian PCM through audio.Source.
// Non-seekable readers are buffered in memory first because go-audio needs
// random access to walk the RIFF chunks.
//
//	src, err := wav.Decoder{}.Decode(file)
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    // not RIFF/WAVE
//	}
//
// WritePCM16 produces a canonical 44-byte-header PCM file:
//
//	err := wav.WritePCM16(out, 44100, 2, samples)
package wav
