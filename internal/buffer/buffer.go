package buffer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// IOError reports a file that could not be opened or read. It is never
// recovered inside the renderers; callers abandon the preview.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) IsPermission() bool {
	return errors.Is(e.Err, fs.ErrPermission)
}

// WrapIO wraps err as an *IOError unless it already is one.
func WrapIO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// Source is an immutable view of a file's bytes, possibly only a prefix.
type Source struct {
	path      string
	size      int64
	data      []byte
	truncated bool
}

// FromBytes builds a Source over data already in memory.
func FromBytes(path string, data []byte) *Source {
	return &Source{
		path: path,
		size: int64(len(data)),
		data: data,
	}
}

// Open reads at most limit bytes of filename. A limit <= 0 reads everything.
func Open(filename string, limit int64) (*Source, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, WrapIO("open", filename, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, WrapIO("stat", filename, err)
	}
	if info.IsDir() {
		return nil, WrapIO("open", filename, errors.New("is a directory"))
	}

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, WrapIO("read", filename, err)
	}

	size := info.Size()
	if size < int64(len(data)) {
		// grew while reading, or a special file reporting zero size
		size = int64(len(data))
	}

	return &Source{
		path:      filename,
		size:      size,
		data:      data,
		truncated: int64(len(data)) < size,
	}, nil
}

func (s *Source) Path() string {
	return s.path
}

// Size is the size of the file on disk, which may exceed len(Data()).
func (s *Source) Size() int64 {
	return s.size
}

func (s *Source) Data() []byte {
	return s.data
}

func (s *Source) Truncated() bool {
	return s.truncated
}
