// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 converts a sample in [-1, 1] to signed 16-bit PCM.
// Values outside the range are clamped.
func Float32ToInt16(x float32) int16 {
	if x >= 1 {
		return 32767
	}
	if x <= -1 {
		return -32768
	}

	if x < 0 {
		return int16(x * 32768.0)
	}
	return int16(x * 32767.0)
}

// IntToInt16 rescales an integer sample of the given bit depth to 16 bits.
// 8-bit input must already be signed.
func IntToInt16(v int, bitDepth int) int16 {
	switch {
	case bitDepth <= 0 || bitDepth == 16:
		return clamp16(v)
	case bitDepth < 16:
		return clamp16(v << (16 - bitDepth))
	default:
		return clamp16(v >> (bitDepth - 16))
	}
}

func clamp16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
