package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audstream/audio"
)

// mockMP3Reader simulates the gomp3.Decoder for testing
type mockMP3Reader struct {
	sampleRate   int
	samples      []int16 // PCM samples (16-bit)
	offset       int     // in bytes
	maxRead      int     // cap on bytes per Read, 0 for none
	returnErrors bool
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }
func (m *mockMP3Reader) Length() int64   { return int64(len(m.samples) * 2) }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}

	raw := make([]byte, len(m.samples)*2)
	for i, s := range m.samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}

	if m.offset >= len(raw) {
		return 0, io.EOF
	}

	end := len(raw)
	if m.maxRead > 0 {
		end = min(end, m.offset+m.maxRead)
	}
	n := copy(buf, raw[m.offset:end])
	m.offset += n
	return n, nil
}

// mockMP3Seeker adds go-mp3's byte offset Seek
type mockMP3Seeker struct {
	mockMP3Reader
	seeks []int64
}

func (m *mockMP3Seeker) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart || offset < 0 {
		return 0, errors.New("bad seek")
	}
	m.seeks = append(m.seeks, offset)
	m.offset = int(offset)
	return offset, nil
}

func decodeAll(t *testing.T, src audio.Source, bufSize int) []int16 {
	t.Helper()

	var out []int16
	buf := make([]byte, bufSize)
	for {
		n, err := src.Read(buf)
		if n%4 != 0 {
			t.Fatalf("Read() = %d, not frame aligned", n)
		}
		for i := 0; i < n; i += 2 {
			out = append(out, audio.Sample(buf[i:]))
		}
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("This is not MP3 data")} {
		if _, err := (Decoder{}).Decode(bytes.NewReader(data)); err == nil {
			t.Errorf("Decode(%q) error = nil, want error", data)
		}
	}
}

func TestSource_Info(t *testing.T) {
	t.Parallel()

	src := newSource(&mockMP3Reader{sampleRate: 22050, samples: make([]int16, 20)}, false)
	info := src.Info()

	if info.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050", info.SampleRate)
	}
	if info.Channels != 2 {
		t.Errorf("Channels = %d, want 2", info.Channels)
	}
	if info.Frames != 10 {
		t.Errorf("Frames = %d, want 10", info.Frames)
	}
	if _, ok := src.(audio.Seeker); ok {
		t.Error("non-seekable source implements audio.Seeker")
	}
}

func TestSource_Read(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 1, -1, 100, -100, 32767, -32768, 7}

	tests := []struct {
		name    string
		bufSize int
		maxRead int
	}{
		{"one shot", 64, 0},
		{"frame sized", 4, 0},
		{"odd buffer", 6, 0},
		{"split frames", 8, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newSource(&mockMP3Reader{sampleRate: 44100, samples: samples, maxRead: tt.maxRead}, false)
			got := decodeAll(t, src, tt.bufSize)

			if len(got) != len(samples) {
				t.Fatalf("decoded %d samples, want %d", len(got), len(samples))
			}
			for i := range samples {
				if got[i] != samples[i] {
					t.Errorf("sample[%d] = %d, want %d", i, got[i], samples[i])
				}
			}
		})
	}
}

func TestSource_ReadErrors(t *testing.T) {
	t.Parallel()

	src := newSource(&mockMP3Reader{sampleRate: 44100, samples: []int16{1, 2}}, false)
	if _, err := src.Read(make([]byte, 3)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("Read(3) error = %v, want ErrInvalidDstSize", err)
	}

	failing := newSource(&mockMP3Reader{sampleRate: 44100, returnErrors: true}, false)
	if _, err := failing.Read(make([]byte, 8)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Read() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	dec := &mockMP3Seeker{mockMP3Reader: mockMP3Reader{sampleRate: 44100, samples: []int16{0, 0, 1, 1, 2, 2, 3, 3}}}
	src := newSource(dec, true)

	seeker, ok := src.(audio.Seeker)
	if !ok {
		t.Fatal("seekable source does not implement audio.Seeker")
	}

	if err := seeker.SeekFrame(2); err != nil {
		t.Fatalf("SeekFrame(2) error = %v", err)
	}
	if len(dec.seeks) != 1 || dec.seeks[0] != 8 {
		t.Errorf("Seek offsets = %v, want [8]", dec.seeks)
	}

	got := decodeAll(t, src, 64)
	want := []int16{2, 2, 3, 3}
	if len(got) != len(want) {
		t.Fatalf("decoded %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestFormat_Magic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix []byte
		want   bool
	}{
		{[]byte("ID3\x04\x00"), true},
		{[]byte{0xFF, 0xFB, 0x90, 0x00}, true},
		{[]byte{0xFF, 0x00}, false},
		{[]byte("RIFF"), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := Format.Magic(tt.prefix); got != tt.want {
			t.Errorf("Magic(% x) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

func BenchmarkSource_Read(b *testing.B) {
	samples := make([]int16, 4096)
	buf := make([]byte, 8192)

	b.ReportAllocs()

	for b.Loop() {
		src := newSource(&mockMP3Reader{sampleRate: 44100, samples: samples}, false)
		_, _ = src.Read(buf)
	}
}
