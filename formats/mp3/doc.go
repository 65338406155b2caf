// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio through
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always emits interleaved 16-bit little-endian stereo, which is
// already the audio.Source wire format, so Read only keeps frames whole.
// Mono files are duplicated across both channels by go-mp3 itself.
//
// When the input implements io.Seeker the returned source also implements
// audio.Seeker, and the frame count comes from go-mp3's Length. Otherwise
// Info().Frames is -1.
package mp3
