// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"fmt"
	"os"
	"time"

	"github.com/ik5/audstream/engine"
	"github.com/ik5/audstream/resource"
)

// NotSpecified marks an unknown length, frame count or rate.
const NotSpecified = -1

// Property keys.
const (
	PropDuration = "duration" // microseconds, int64
	PropBitRate  = "bitrate"  // bits per second, int
	PropVBR      = "vbr"      // bool
)

type Encoding string

// PCMSigned is the only encoding streams are delivered in.
const PCMSigned Encoding = "PCM_SIGNED"

// AudioFormat describes the decoded PCM a stream delivers.
type AudioFormat struct {
	Encoding         Encoding
	SampleRate       float32
	SampleSizeInBits int
	Channels         int
	// FrameSize in bytes.
	FrameSize int
	FrameRate float32
	BigEndian bool

	bitRate int
	vbr     bool
}

// Properties returns bitrate when known and vbr always. The map is a copy.
func (f AudioFormat) Properties() map[string]any {
	props := make(map[string]any, 2)
	if f.bitRate > 0 {
		props[PropBitRate] = f.bitRate
	}
	props[PropVBR] = f.vbr
	return props
}

func (f AudioFormat) String() string {
	order := "little-endian"
	if f.BigEndian {
		order = "big-endian"
	}
	return fmt.Sprintf("%s %.1f Hz, %d bit, %d channels, %d bytes/frame, %.1f frames/second, %s",
		f.Encoding, f.SampleRate, f.SampleSizeInBits, f.Channels, f.FrameSize, f.FrameRate, order)
}

// FileFormat describes a resource. It is immutable once built.
type FileFormat struct {
	Type FileType
	// ByteLength of the resource, NotSpecified unless it is a local file.
	ByteLength int64
	Format     AudioFormat
	// FrameLength is NotSpecified when the duration is unknown.
	FrameLength int64

	durationMicros int64
}

// Duration of the resource, or NotSpecified.
func (f FileFormat) Duration() time.Duration {
	if f.durationMicros <= 0 {
		return NotSpecified
	}
	return time.Duration(f.durationMicros) * time.Microsecond
}

// Properties returns duration in microseconds when known. The map is a copy.
func (f FileFormat) Properties() map[string]any {
	props := make(map[string]any, 1)
	if f.durationMicros > 0 {
		props[PropDuration] = f.durationMicros
	}
	return props
}

func newFileFormat(t FileType, byteLength int64, d engine.Descriptor) FileFormat {
	frameLength := int64(NotSpecified)
	if d.SampleRate >= 0 && d.DurationMicros >= 0 {
		frameLength = int64(float64(d.SampleRate) * float64(d.DurationMicros) / 1e6)
	}

	return FileFormat{
		Type:       t,
		ByteLength: byteLength,
		Format: AudioFormat{
			Encoding:         PCMSigned,
			SampleRate:       d.SampleRate,
			SampleSizeInBits: d.SampleSize,
			Channels:         d.Channels,
			FrameSize:        d.PacketSize,
			FrameRate:        d.FrameRate,
			BigEndian:        d.BigEndian,
			bitRate:          d.BitRate,
			vbr:              d.VBR,
		},
		FrameLength:    frameLength,
		durationMicros: d.DurationMicros,
	}
}

// byteLength is the size of a local file, NotSpecified otherwise.
func byteLength(id resource.Identifier) int64 {
	if !id.IsLocal() {
		return NotSpecified
	}
	p, err := id.LocalPath()
	if err != nil {
		return NotSpecified
	}
	st, err := os.Stat(p)
	if err != nil {
		return NotSpecified
	}
	return st.Size()
}
