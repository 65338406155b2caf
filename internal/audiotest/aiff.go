// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"math/bits"
)

// AIFF16 builds a minimal uncompressed 16-bit AIFF file.
func AIFF16(sampleRate, channels int, samples []int16) []byte {
	frames := len(samples) / channels
	dataSize := uint32(len(samples) * 2)

	buf := new(bytes.Buffer)

	buf.WriteString("FORM")
	_ = binary.Write(buf, binary.BigEndian, uint32(4+8+18+8+8+dataSize))
	buf.WriteString("AIFF")

	buf.WriteString("COMM")
	_ = binary.Write(buf, binary.BigEndian, uint32(18))
	_ = binary.Write(buf, binary.BigEndian, uint16(channels))
	_ = binary.Write(buf, binary.BigEndian, uint32(frames))
	_ = binary.Write(buf, binary.BigEndian, uint16(16))
	buf.Write(extended(sampleRate))

	buf.WriteString("SSND")
	_ = binary.Write(buf, binary.BigEndian, 8+dataSize)
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // offset
	_ = binary.Write(buf, binary.BigEndian, uint32(0)) // block size
	for _, s := range samples {
		_ = binary.Write(buf, binary.BigEndian, s)
	}

	return buf.Bytes()
}

// extended encodes a positive integer as an 80-bit IEEE 754 extended float.
func extended(v int) []byte {
	out := make([]byte, 10)
	if v <= 0 {
		return out
	}

	u := uint64(v)
	exp := 63 - bits.LeadingZeros64(u)
	binary.BigEndian.PutUint16(out[0:2], uint16(16383+exp))
	binary.BigEndian.PutUint64(out[2:10], u<<(63-exp))
	return out
}
