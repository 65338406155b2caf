// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC streams through github.com/mewkiz/flac.
//
// Frames are parsed lazily, one FLAC block at a time, and their subframes
// interleaved into 16-bit PCM. Sample-accurate seeking is available when the
// input is an io.ReadSeeker.
package flac
