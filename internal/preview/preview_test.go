package preview

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hexplorer/internal/buffer"
	"hexplorer/internal/classify"
	"hexplorer/internal/config"
	"hexplorer/internal/hexdump"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer("utf-8")
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestLoadText(t *testing.T) {
	r := newRenderer(t)
	path := writeFile(t, "notes.txt", []byte("first\nsecond ✓\n"))

	p, err := r.Load(path, 0)
	require.NoError(t, err)

	assert.Equal(t, classify.Text, p.Kind)
	assert.Equal(t, []string{"first\n", "second ✓\n"}, p.Lines)
	assert.Equal(t, 2, p.LineCount)
	assert.Equal(t, 6+9, p.CharCount)
	assert.Equal(t, "first\nsecond ✓\n", p.String())
	assert.Zero(t, p.AddressWidth)
	assert.False(t, p.Truncated)
}

func TestLoadBinary(t *testing.T) {
	r := newRenderer(t)
	data := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	path := writeFile(t, "image.png", data)

	p, err := r.Load(path, 0)
	require.NoError(t, err)

	assert.Equal(t, classify.Binary, p.Kind)
	assert.Equal(t, 4, p.AddressWidth)
	require.Len(t, p.Lines, 1)
	assert.Equal(t, hexdump.Collect(data, int64(len(data))), p.Lines)
	assert.Contains(t, p.Lines[0], "89 50 4E 47 0D 0A 1A 0A")
	assert.True(t, strings.HasSuffix(p.Lines[0], ".PNG....\n"))
}

func TestLoadMissingFileReturnsIOError(t *testing.T) {
	r := newRenderer(t)
	p, err := r.Load(filepath.Join(t.TempDir(), "missing"), 0)

	assert.Nil(t, p)
	var ioErr *buffer.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestRenderTruncatedUsesFileSizeForWidth(t *testing.T) {
	r := newRenderer(t)
	data := bytes.Repeat([]byte{0xFF}, 400)
	path := writeFile(t, "blob.bin", data)

	p, err := r.Load(path, 32)
	require.NoError(t, err)

	assert.True(t, p.Truncated)
	assert.Equal(t, int64(400), p.Size)
	assert.Equal(t, 6, p.AddressWidth)
	assert.Len(t, p.Lines, 2)
}

func TestRenderTruncatedMidRuneStaysText(t *testing.T) {
	r := newRenderer(t)
	path := writeFile(t, "jp.txt", []byte("日本語のテキスト"))

	p, err := r.Load(path, 4)
	require.NoError(t, err)

	assert.True(t, p.Truncated)
	assert.Equal(t, classify.Text, p.Kind)
	assert.Equal(t, []string{"日"}, p.Lines)
}

func TestRenderEmptySource(t *testing.T) {
	r := newRenderer(t)
	p := r.Render(buffer.FromBytes("empty", nil))

	assert.Equal(t, classify.Text, p.Kind)
	assert.Zero(t, p.LineCount)
	assert.Zero(t, p.CharCount)
	assert.Empty(t, p.String())
}

func TestRenderLatin1(t *testing.T) {
	r, err := NewRenderer("ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "ISO-8859-1", r.Encoding())

	p := r.Render(buffer.FromBytes("latin", []byte{'n', 0xE9, '\n'}))
	assert.Equal(t, classify.Text, p.Kind)
	assert.Equal(t, []string{"né\n"}, p.Lines)
}

func TestNewRendererUnknownEncoding(t *testing.T) {
	_, err := NewRenderer("bogus-encoding")
	assert.Error(t, err)
}

func TestWriteTo(t *testing.T) {
	p := &Preview{Lines: []string{"a\n", "b"}}
	var buf bytes.Buffer
	n, err := p.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "a\nb", buf.String())
}

func TestPolicy(t *testing.T) {
	p := PolicyFrom(config.DefaultConfig().Preview)

	assert.True(t, p.Allows(0))
	assert.True(t, p.Allows(5119))
	assert.False(t, p.Allows(5120))

	p.PreviewLarge = true
	assert.True(t, p.Allows(1<<30))
}

func TestStreamBinaryMatchesLoad(t *testing.T) {
	r := newRenderer(t)
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(255 - i%256)
	}
	path := writeFile(t, "data.bin", data)

	var out bytes.Buffer
	kind, err := r.Stream(&out, path)
	require.NoError(t, err)
	assert.Equal(t, classify.Binary, kind)

	p, err := r.Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, p.String(), out.String())
}

func TestStreamText(t *testing.T) {
	r := newRenderer(t)
	content := strings.Repeat("line of text\n", 50)
	path := writeFile(t, "long.txt", []byte(content))

	var out bytes.Buffer
	kind, err := r.Stream(&out, path)
	require.NoError(t, err)
	assert.Equal(t, classify.Text, kind)
	assert.Equal(t, content, out.String())
}

func TestStreamDecodesConfiguredEncoding(t *testing.T) {
	r, err := NewRenderer("ISO-8859-1")
	require.NoError(t, err)
	path := writeFile(t, "latin.txt", []byte{'c', 'a', 'f', 0xE9})

	var out bytes.Buffer
	kind, err := r.Stream(&out, path)
	require.NoError(t, err)
	assert.Equal(t, classify.Text, kind)
	assert.Equal(t, "café", out.String())
}

func TestStreamMissing(t *testing.T) {
	r := newRenderer(t)
	var out bytes.Buffer
	_, err := r.Stream(&out, filepath.Join(t.TempDir(), "nope"))

	var ioErr *buffer.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Empty(t, out.String())
}

func TestStreamFallsBackWhenTextStopsDecoding(t *testing.T) {
	tests := []struct {
		encoding string
		data     []byte
	}{
		{"utf-8", append([]byte("hello world\n"), 0xFF, 0xFE, 0x00, 0x01)},
		// a high surrogate followed by 'x' has no low half
		{"UTF-16LE", []byte{'h', 0, 'i', 0, '\n', 0, 0x00, 0xD8, 'x', 0}},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			r, err := NewRenderer(tt.encoding)
			require.NoError(t, err)
			path := writeFile(t, "mixed", tt.data)

			var out bytes.Buffer
			kind, err := r.Stream(&out, path)
			require.NoError(t, err)

			p, err := r.Load(path, 0)
			require.NoError(t, err)
			assert.Equal(t, classify.Binary, p.Kind)
			assert.Equal(t, p.Kind, kind)
			assert.Equal(t, p.String(), out.String())
		})
	}
}

func TestStreamUTF16OddLengthIsBinary(t *testing.T) {
	r, err := NewRenderer("UTF-16LE")
	require.NoError(t, err)
	path := writeFile(t, "odd", []byte{'h', 0, 'i', 0, '!'})

	var out bytes.Buffer
	kind, err := r.Stream(&out, path)
	require.NoError(t, err)
	assert.Equal(t, classify.Binary, kind)
	assert.True(t, strings.HasPrefix(out.String(), "0x0000:"))
}

// failingSource serves data until failAt, then returns err.
type failingSource struct {
	*bytes.Reader
	failAt int64
	err    error
}

func (f *failingSource) Read(p []byte) (int, error) {
	pos, _ := f.Seek(0, io.SeekCurrent)
	if pos >= f.failAt {
		return 0, f.err
	}
	if rem := f.failAt - pos; int64(len(p)) > rem {
		p = p[:rem]
	}
	return f.Reader.Read(p)
}

func TestStreamReadErrorWritesNothing(t *testing.T) {
	boom := errors.New("device gone")
	tests := []struct {
		name string
		data []byte
	}{
		{"text", bytes.Repeat([]byte("some text\n"), 100)},
		{"binary", bytes.Repeat([]byte{0xFF, 0x00}, 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRenderer(t)
			src := &failingSource{Reader: bytes.NewReader(tt.data), failAt: 64, err: boom}

			var out bytes.Buffer
			_, err := r.StreamFrom(&out, src, int64(len(tt.data)), "flaky")
			require.Error(t, err)

			var ioErr *buffer.IOError
			assert.True(t, errors.As(err, &ioErr))
			assert.ErrorIs(t, err, boom)
			assert.Empty(t, out.String(), "no partial output after a failed read")
		})
	}
}

func TestStreamDirectory(t *testing.T) {
	r := newRenderer(t)
	var out bytes.Buffer
	_, err := r.Stream(&out, t.TempDir())

	var ioErr *buffer.IOError
	assert.True(t, errors.As(err, &ioErr))
	assert.Empty(t, out.String())
}

func TestSniff(t *testing.T) {
	r := newRenderer(t)
	text := writeFile(t, "a.txt", []byte("日本語のテキスト"))
	bin := writeFile(t, "a.bin", []byte{'o', 'k', 0xFF})

	kind, err := r.Sniff(text, 4)
	require.NoError(t, err)
	assert.Equal(t, classify.Text, kind)

	kind, err = r.Sniff(bin, 4096)
	require.NoError(t, err)
	assert.Equal(t, classify.Binary, kind)

	_, err = r.Sniff(filepath.Join(t.TempDir(), "missing"), 16)
	assert.Error(t, err)
}
