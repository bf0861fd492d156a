// Package preview turns a file into display lines: classify the bytes, then
// render them as text or as a hex dump.
package preview

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"hexplorer/internal/buffer"
	"hexplorer/internal/classify"
	"hexplorer/internal/config"
	"hexplorer/internal/hexdump"
	"hexplorer/internal/logging"
	"hexplorer/internal/textview"

	"github.com/sirupsen/logrus"
)

type Preview struct {
	Path string
	Kind classify.Kind
	// Lines are text lines verbatim or formatted dump rows, each ending in
	// its own terminator where the source had one.
	Lines     []string
	LineCount int
	// CharCount is only meaningful for text.
	CharCount int
	// AddressWidth is only meaningful for binary.
	AddressWidth int
	Size         int64
	Truncated    bool
}

func (p *Preview) String() string {
	return strings.Join(p.Lines, "")
}

// WriteTo writes the rendered lines to w.
func (p *Preview) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, line := range p.Lines {
		n, err := io.WriteString(w, line)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Policy is the size gate applied before anything is read.
type Policy struct {
	SmallFileThreshold int64
	PreviewLarge       bool
	MaxBytes           int64
}

func PolicyFrom(cfg config.Preview) Policy {
	return Policy{
		SmallFileThreshold: cfg.SmallFileThreshold,
		PreviewLarge:       cfg.PreviewLarge,
		MaxBytes:           cfg.MaxBytes,
	}
}

// Allows reports whether a file of the given size should be previewed at all.
func (p Policy) Allows(size int64) bool {
	return size < p.SmallFileThreshold || p.PreviewLarge
}

type Renderer struct {
	classifier *classify.Classifier
	log        *logrus.Entry
}

func NewRenderer(encoding string) (*Renderer, error) {
	c, err := classify.New(encoding)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		classifier: c,
		log:        logging.NewLogger("preview"),
	}, nil
}

func (r *Renderer) Encoding() string {
	return r.classifier.Encoding()
}

// Load reads at most maxBytes of path (0 means all) and renders it. On error
// nothing is rendered.
func (r *Renderer) Load(path string, maxBytes int64) (*Preview, error) {
	src, err := buffer.Open(path, maxBytes)
	if err != nil {
		r.log.WithError(err).WithField("path", path).Warn("preview read failed")
		return nil, err
	}
	return r.Render(src), nil
}

// Render classifies and renders src. It does no IO.
func (r *Renderer) Render(src *buffer.Source) *Preview {
	data := src.Data()
	res := r.classify(src)
	p := &Preview{
		Path:      src.Path(),
		Kind:      res.Kind,
		Size:      src.Size(),
		Truncated: src.Truncated(),
	}

	switch res.Kind {
	case classify.Text:
		rendered := textview.Render(res.Lines)
		p.Lines = rendered.Lines
		p.LineCount = rendered.LineCount
		p.CharCount = rendered.CharCount
	default:
		p.AddressWidth = hexdump.AddressWidth(src.Size())
		p.Lines = hexdump.Collect(data, src.Size())
		p.LineCount = len(p.Lines)
	}

	r.log.WithFields(logrus.Fields{
		"path":      p.Path,
		"kind":      p.Kind,
		"size":      p.Size,
		"truncated": p.Truncated,
	}).Debug("rendered preview")
	return p
}

// Sniff classifies the first n bytes of path without rendering them.
func (r *Renderer) Sniff(path string, n int64) (classify.Kind, error) {
	src, err := buffer.Open(path, n)
	if err != nil {
		return classify.Binary, err
	}
	return r.classify(src).Kind, nil
}

// classify drops a rune cut off by truncation before classifying.
func (r *Renderer) classify(src *buffer.Source) classify.Result {
	data := src.Data()
	if src.Truncated() && r.classifier.Encoding() == classify.DefaultEncoding {
		data = classify.TrimPartialRune(data)
	}
	return r.classifier.Classify(data)
}

// Stream writes a preview of the whole file to w without holding it in
// memory. The file is streamed as text until it stops decoding, then dumped
// as hex from the start, so the result always agrees with Load(path, 0).
// Output is spooled to a temporary file and copied to w only after the whole
// file was read, so a failed read writes nothing.
func (r *Renderer) Stream(w io.Writer, path string) (classify.Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return classify.Binary, buffer.WrapIO("open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return classify.Binary, buffer.WrapIO("stat", path, err)
	}
	if info.IsDir() {
		return classify.Binary, buffer.WrapIO("open", path, errors.New("is a directory"))
	}
	return r.StreamFrom(w, f, info.Size(), path)
}

// StreamFrom is Stream over an already open source of the given size. path
// is only used for errors and logging.
func (r *Renderer) StreamFrom(w io.Writer, src io.ReadSeeker, size int64, path string) (classify.Kind, error) {
	log := r.log.WithField("path", path)

	spool, err := os.CreateTemp("", "hexplorer-*")
	if err != nil {
		return classify.Binary, fmt.Errorf("failed to create spool file: %w", err)
	}
	defer func() {
		_ = spool.Close()
		_ = os.Remove(spool.Name())
	}()

	kind := classify.Text
	_, err = io.Copy(spool, r.classifier.Reader(src))
	switch {
	case errors.Is(err, classify.ErrNotText):
		log.Debug("content does not decode, dumping as binary")
		kind = classify.Binary
		if err := rewind(src, spool); err != nil {
			return kind, buffer.WrapIO("seek", path, err)
		}
	case err != nil:
		return kind, buffer.WrapIO("read", path, err)
	}

	if kind == classify.Binary {
		bw := bufio.NewWriter(spool)
		if _, err := hexdump.NewDumper(size).Dump(bw, src); err != nil {
			return kind, buffer.WrapIO("read", path, err)
		}
		if err := bw.Flush(); err != nil {
			return kind, fmt.Errorf("failed to write spool file: %w", err)
		}
	}

	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return kind, fmt.Errorf("failed to rewind spool file: %w", err)
	}
	if _, err := io.Copy(w, spool); err != nil {
		return kind, err
	}
	log.WithField("kind", kind).Debug("streamed preview")
	return kind, nil
}

func rewind(src io.Seeker, spool *os.File) error {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := spool.Truncate(0); err != nil {
		return err
	}
	_, err := spool.Seek(0, io.SeekStart)
	return err
}
