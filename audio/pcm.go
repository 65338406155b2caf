// SPDX-License-Identifier: EPL-2.0

package audio

import "encoding/binary"

// PutSample writes v as a little-endian 16-bit sample at p[0:2].
func PutSample(p []byte, v int16) {
	binary.LittleEndian.PutUint16(p, uint16(v))
}

// Sample reads the little-endian 16-bit sample at p[0:2].
func Sample(p []byte) int16 {
	return int16(binary.LittleEndian.Uint16(p))
}

// FramesFor returns how many whole frames of the given channel count fit
// into a buffer of n bytes.
func FramesFor(n, channels int) int {
	if channels <= 0 {
		return 0
	}
	return n / (channels * BytesPerSample)
}
