// SPDX-License-Identifier: EPL-2.0

// Package decoder is the in-process implementation of engine.Engine.
//
// It keeps every decode session in an arena keyed by engine.Handle. Handles
// increase monotonically and are never reused, so a stale handle can only
// ever miss. Sessions read local files and http(s) resources, pick a backend
// from an audio.Registry by content first and extension second, and hand out
// interleaved signed 16-bit little-endian PCM in chunks of Config.ChunkSize.
//
//	eng, err := decoder.New(decoder.DefaultConfig())
//	h, err := eng.Open("file:/music/track.wav")
//	defer eng.Close(h)
//	for {
//	    chunk, err := eng.Refill(h)
//	    if err != nil || len(chunk) == 0 {
//	        break
//	    }
//	}
//
// Failures are *engine.Error values carrying the raw code the stream layer
// translates.
package decoder
