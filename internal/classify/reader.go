package classify

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// ErrNotText is returned by a Reader at the first input that does not decode.
var ErrNotText = errors.New("content does not decode as text")

var replacementChar = []byte(string(utf8.RuneError))

// Reader returns a reader yielding the decoded UTF-8 text of r. It applies the
// same test as Classify incrementally, so a stream that reads to EOF without
// ErrNotText would have classified as Text as a whole. Errors from r itself
// are passed through unchanged.
func (c *Classifier) Reader(r io.Reader) io.Reader {
	if c == nil || c.enc == nil {
		return &checkedReader{r: r, ok: utf8.Valid}
	}
	src := &sourceReader{r: r}
	return &checkedReader{
		r:   transform.NewReader(src, c.enc.NewDecoder()),
		src: src,
		ok: func(b []byte) bool {
			return !bytes.Contains(b, replacementChar)
		},
	}
}

// checkedReader runs ok over everything read. An incomplete rune at the end
// of one read is held back and checked together with the next.
type checkedReader struct {
	r    io.Reader
	src  *sourceReader
	ok   func([]byte) bool
	tail []byte
}

func (c *checkedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		chunk := make([]byte, 0, len(c.tail)+n)
		chunk = append(chunk, c.tail...)
		chunk = append(chunk, p[:n]...)
		complete := TrimPartialRune(chunk)
		if !c.ok(complete) {
			return 0, ErrNotText
		}
		c.tail = append(c.tail[:0], chunk[len(complete):]...)
	}
	switch {
	case err == nil:
	case err == io.EOF:
		if len(c.tail) > 0 {
			return n, ErrNotText
		}
	case c.src != nil && c.src.err == nil:
		// the decoder failed, not the source
		return n, ErrNotText
	}
	return n, err
}

// sourceReader remembers the last error of the underlying reader so it can be
// told apart from a decoder error.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}
