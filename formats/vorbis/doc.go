// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis decoding via github.com/jfreymuth/oggvorbis.
//
// Vorbis decodes to float32; the source converts each value to signed 16-bit
// PCM with utils.Float32ToInt16. Vorbis is always reported as VBR.
//
// Seeking and the frame count need an io.ReadSeeker input. For a plain
// io.Reader, Info().Frames is -1 and the source does not implement
// audio.Seeker.
package vorbis
