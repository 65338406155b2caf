// SPDX-License-Identifier: EPL-2.0

// Package audio defines the contract between the decoding engine and the
// per-format decoders in formats/*.
//
// This package contains:
//   - Source interface for decoded PCM output
//   - Seeker interface for sources with native repositioning
//   - Decoder interface constructing a Source from a reader
//   - Format registry keyed by name, extension and magic bytes
//
// # Source Interface
//
// Every decoder produces the same output layout, interleaved signed 16-bit
// little-endian PCM, regardless of the encoded bit depth:
//
//	type Source interface {
//	    Info() Info
//	    Read(p []byte) (int, error)
//	    Close() error
//	}
//
// Read writes whole frames only. A buffer smaller than one frame is rejected
// with ErrInvalidDstSize.
//
// # Format Registry
//
// The registry lets the engine pick a decoder from the first bytes of a
// resource, falling back to its extension:
//
//	registry := audio.NewRegistry()
//	registry.Register(audio.Format{
//	    Name:       "wav",
//	    Extensions: []string{"wav"},
//	    Magic:      audio.HasMagic(8, "WAVE"),
//	    Decoder:    wav.Decoder{},
//	})
//	f, ok := registry.Sniff(header)
//
// # Error Handling
//
// Sources return io.EOF when no more data is available:
//
//	for {
//	    n, err := source.Read(buf)
//	    if err == io.EOF {
//	        break // Normal end of stream
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // Use buf[:n]
//	}
package audio
