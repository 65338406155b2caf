package decoder

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/engine"
	"github.com/ik5/audstream/formats/wav"
	"github.com/ik5/audstream/internal/audiotest"
	"github.com/ik5/audstream/resource"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRate     = 8000
	testChannels = 2
	testFrames   = 8000
)

func wavBytes(t *testing.T, frames int) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	require.NoError(t, wav.WritePCM16(buf, testRate, testChannels, audiotest.Ramp(frames, testChannels)))
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) resource.Identifier {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	id, err := resource.FromPath(p)
	require.NoError(t, err)
	return id
}

func newEngine(t *testing.T, chunk int) (*Engine, *test.Hook) {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	cfg := DefaultConfig()
	cfg.Logger = logger
	if chunk > 0 {
		cfg.ChunkSize = chunk
	}

	e, err := New(cfg)
	require.NoError(t, err)
	return e, hook
}

func requireCode(t *testing.T, err error, want engine.Code) {
	t.Helper()

	require.Error(t, err)
	code, ok := engine.CodeOf(err)
	require.True(t, ok, "error %v carries no engine code", err)
	assert.Equal(t, want, code, "error: %v", err)
}

// drain reads h to the end and returns the samples.
func drain(t *testing.T, e *Engine, h engine.Handle) []int16 {
	t.Helper()

	var out []int16
	for {
		chunk, err := e.Refill(h)
		require.NoError(t, err)
		if len(chunk) == 0 {
			return out
		}
		require.Zero(t, len(chunk)%(testChannels*audio.BytesPerSample), "chunk not frame aligned")
		for i := 0; i < len(chunk); i += 2 {
			out = append(out, audio.Sample(chunk[i:]))
		}
	}
}

func TestNew_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"no registry", func(c *Config) { c.Registry = nil }, ErrRegistryRequired},
		{"no client", func(c *Config) { c.HTTPClient = nil }, ErrHTTPClientRequired},
		{"zero chunk", func(c *Config) { c.ChunkSize = 0 }, ErrInvalidChunkSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	cfg := DefaultConfig()
	cfg.Logger = nil
	e, err := New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, e.log)
}

func TestEngine_Probe(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t, 0)
	id := writeFile(t, "tone.wav", wavBytes(t, testFrames))

	d, err := e.Probe(id.String())
	require.NoError(t, err)

	assert.Equal(t, float32(testRate), d.SampleRate)
	assert.Equal(t, float32(testRate), d.FrameRate)
	assert.Equal(t, 16, d.SampleSize)
	assert.Equal(t, testChannels, d.Channels)
	assert.Equal(t, 4, d.PacketSize)
	assert.False(t, d.BigEndian)
	assert.Equal(t, int64(1_000_000), d.DurationMicros)
	assert.Equal(t, testRate*testChannels*16, d.BitRate)
	assert.Zero(t, e.Len(), "probe must not leave a session behind")
}

func TestEngine_ProbeAIFF(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t, 0)
	id := writeFile(t, "tone.aiff", audiotest.AIFF16(22050, 1, audiotest.Ramp(2205, 1)))

	d, err := e.Probe(id.String())
	require.NoError(t, err)

	assert.Equal(t, float32(22050), d.SampleRate)
	assert.Equal(t, 1, d.Channels)
	assert.Equal(t, 2, d.PacketSize)
	assert.Equal(t, int64(100_000), d.DurationMicros)
}

func TestEngine_ProbeErrors(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t, 0)
	dir := t.TempDir()
	missing, err := resource.FromPath(filepath.Join(dir, "missing.wav"))
	require.NoError(t, err)
	dirID, err := resource.FromPath(dir)
	require.NoError(t, err)

	tests := []struct {
		name string
		id   string
		want engine.Code
	}{
		{"missing", missing.String(), engine.CodeFileNotFound},
		{"directory", dirID.String(), engine.CodePathNotFound},
		{"unknown content", writeFile(t, "noise.xyz", []byte(strings.Repeat("z", 64))).String(), engine.CodeUnsupportedByteStream},
		{"no extension", writeFile(t, "noise", []byte(strings.Repeat("z", 64))).String(), engine.CodeUnsupportedByteStream},
		{"corrupt wav", writeFile(t, "broken.wav", []byte(strings.Repeat("z", 64))).String(), engine.CodeInvalidFormat},
		{"bad scheme", "ftp://example.com/a.wav", engine.CodeInvalidArg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := e.Probe(tt.id)
			requireCode(t, err, tt.want)
		})
	}
}

func TestEngine_ContentBeatsExtension(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t, 0)
	id := writeFile(t, "mislabeled.mp3", wavBytes(t, 100))

	h, err := e.Open(id.String())
	require.NoError(t, err)
	defer e.Close(h)

	assert.Len(t, drain(t, e, h), 100*testChannels)
}

func TestEngine_ProbeBytes(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t, 0)
	data := wavBytes(t, testFrames)
	prefix := data[:8192]

	d, err := e.ProbeBytes(prefix, len(prefix))
	require.NoError(t, err)
	assert.Equal(t, "wav", d.Container)
	assert.Equal(t, testChannels, d.Channels)
	assert.Equal(t, float32(testRate), d.SampleRate)
	// the RIFF header states the frame count, a prefix is enough
	assert.Equal(t, int64(1_000_000), d.DurationMicros)

	_, err = e.ProbeBytes(prefix, len(prefix)+1)
	requireCode(t, err, engine.CodeInvalidArg)

	_, err = e.ProbeBytes([]byte("definitely not audio"), 20)
	requireCode(t, err, engine.CodeUnsupportedByteStream)
	assert.ErrorIs(t, err, audio.ErrUnknownFormat)
}

// scanningDecoder sizes its stream by seeking to the end, as go-mp3 and
// oggvorbis do when their input can seek.
type scanningDecoder struct{}

func (scanningDecoder) Decode(r io.Reader) (audio.Source, error) {
	frames := int64(-1)
	if rs, ok := r.(io.Seeker); ok {
		end, err := rs.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, err
		}
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		frames = end / 4
	}
	return audiotest.NewRampSource(testRate, testChannels, frames), nil
}

func TestEngine_ProbeBytesUnknownLength(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	reg.Register(audio.Format{
		Name:       "scan",
		Extensions: []string{"scan"},
		Magic:      audio.HasMagic(0, "SCAN"),
		Decoder:    scanningDecoder{},
	})

	logger, _ := test.NewNullLogger()
	cfg := DefaultConfig()
	cfg.Registry = reg
	cfg.Logger = logger
	e, err := New(cfg)
	require.NoError(t, err)

	data := append([]byte("SCAN"), make([]byte, testFrames*4-4)...)

	d, err := e.ProbeBytes(data[:8192], 8192)
	require.NoError(t, err)
	assert.Equal(t, "scan", d.Container)
	assert.Equal(t, int64(-1), d.DurationMicros, "duration derived from a prefix")

	id := writeFile(t, "tone.scan", data)
	d, err = e.Probe(id.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), d.DurationMicros)
}

func TestDurationMicros(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rate   int
		frames int64
		want   int64
	}{
		{"whole seconds", 8000, 8000, 1_000_000},
		{"44.1 kHz", 44100, 1000, 22676},
		{"11.025 kHz", 11025, 1000, 90703},
		{"48 kHz", 48000, 1, 21},
		{"empty", 44100, 0, 0},
		{"unknown frames", 44100, -1, -1},
		{"no rate", 0, 100, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := audio.Info{SampleRate: tt.rate, Channels: 2, Frames: tt.frames}
			got := durationMicros(info)
			assert.Equal(t, tt.want, got)

			// flooring rate*micros/1e6 gives the frame count back
			if tt.frames >= 0 && tt.rate > 0 {
				assert.Equal(t, tt.frames, int64(float64(tt.rate)*float64(got)/1e6))
			}
		})
	}
}

func TestEngine_RefillReadsEverything(t *testing.T) {
	t.Parallel()

	// 10 bytes rounds down to two stereo frames per chunk
	for _, chunk := range []int{10, 4096, DefaultChunkSize} {
		e, _ := newEngine(t, chunk)
		id := writeFile(t, "tone.wav", wavBytes(t, testFrames))

		h, err := e.Open(id.String())
		require.NoError(t, err)
		assert.True(t, e.Seekable(h))

		got := drain(t, e, h)
		require.Len(t, got, testFrames*testChannels)
		for i, s := range got {
			if s != int16(i/testChannels) {
				t.Fatalf("chunk %d: sample[%d] = %d, want %d", chunk, i, s, i/testChannels)
			}
		}

		// end of stream is sticky
		c, err := e.Refill(h)
		require.NoError(t, err)
		assert.Empty(t, c)

		require.NoError(t, e.Close(h))
	}
}

func TestEngine_SeekRedecodes(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t, 64)
	id := writeFile(t, "tone.wav", wavBytes(t, testFrames))

	h, err := e.Open(id.String())
	require.NoError(t, err)
	defer e.Close(h)

	_, err = e.Refill(h)
	require.NoError(t, err)

	// half a second in 100 ns ticks
	require.NoError(t, e.Seek(h, engine.TicksPerSecond/2))

	chunk, err := e.Refill(h)
	require.NoError(t, err)
	require.NotEmpty(t, chunk)
	assert.Equal(t, int16(testRate/2), audio.Sample(chunk))

	// seeking past the end lands on the end
	require.NoError(t, e.Seek(h, 10*engine.TicksPerSecond))
	chunk, err = e.Refill(h)
	require.NoError(t, err)
	assert.Empty(t, chunk)

	require.NoError(t, e.Seek(h, 0))
	assert.Len(t, drain(t, e, h), testFrames*testChannels)

	requireCode(t, e.Seek(h, -1), engine.CodeInvalidArg)
}

func TestEngine_ClosedHandles(t *testing.T) {
	t.Parallel()

	e, hook := newEngine(t, 0)
	id := writeFile(t, "tone.wav", wavBytes(t, 100))

	h1, err := e.Open(id.String())
	require.NoError(t, err)
	require.NoError(t, e.Close(h1))

	_, err = e.Refill(h1)
	requireCode(t, err, engine.CodeClosed)
	requireCode(t, e.Seek(h1, 0), engine.CodeClosed)
	requireCode(t, e.Close(h1), engine.CodeClosed)
	assert.False(t, e.Seekable(h1))

	h2, err := e.Open(id.String())
	require.NoError(t, err)
	assert.Greater(t, h2, h1, "handles must never be reused")
	require.NoError(t, e.Close(h2))

	assert.Zero(t, e.Len())

	var opened, closed int
	for _, entry := range hook.AllEntries() {
		switch entry.Message {
		case "session opened":
			opened++
		case "session closed":
			closed++
		}
	}
	assert.Equal(t, 2, opened)
	assert.Equal(t, 2, closed)
}

func TestEngine_ConcurrentClose(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t, 64)
	id := writeFile(t, "tone.wav", wavBytes(t, testFrames))

	h, err := e.Open(id.String())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = e.Close(h)
	}()
	wg.Wait()

	_, err = e.Refill(h)
	requireCode(t, err, engine.CodeClosed)
}

func TestEngine_HTTP(t *testing.T) {
	t.Parallel()

	data := wavBytes(t, 500)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tone.wav":
			_, _ = w.Write(data)
		case "/boom.wav":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	e, _ := newEngine(t, 0)

	h, err := e.Open(srv.URL + "/tone.wav")
	require.NoError(t, err)
	defer e.Close(h)

	assert.False(t, e.Seekable(h))
	requireCode(t, e.Seek(h, 0), engine.CodeNotSeekable)
	assert.Len(t, drain(t, e, h), 500*testChannels)

	_, err = e.Probe(srv.URL + "/missing.wav")
	requireCode(t, err, engine.CodeFileNotFound)

	_, err = e.Probe(srv.URL + "/boom.wav")
	requireCode(t, err, engine.CodeBadNetPath)
}

func TestTicksToFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ticks int64
		rate  int
		want  int64
	}{
		{0, 44100, 0},
		{engine.TicksPerSecond, 44100, 44100},
		{engine.TicksPerSecond / 2, 8000, 4000},
		{1, 8000, 0},
		{3600 * 24 * 365 * engine.TicksPerSecond, 48000, 3600 * 24 * 365 * 48000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ticksToFrame(tt.ticks, tt.rate), "ticks %d at %d Hz", tt.ticks, tt.rate)
	}
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"wav", "aiff", "flac", "vorbis", "mp3"}, DefaultRegistry().Names())
}
