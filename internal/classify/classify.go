// Package classify decides whether a byte slice is shown as text or as a hex
// dump.
//
// The only signal is decodability: bytes that decode cleanly in the
// configured encoding are text, anything else is binary. There is no magic
// number table and no NUL byte sniffing, so a binary blob that happens to be
// valid UTF-8 is classified as text. That is a known limitation.
package classify

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

type Kind int

const (
	Text Kind = iota
	Binary
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Binary:
		return "binary"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Result is the outcome of a classification. Content and Lines are only set
// for Text; Binary callers keep using the raw bytes.
type Result struct {
	Kind    Kind
	Content string
	Lines   []string
}

const DefaultEncoding = "utf-8"

// Classifier decodes with a fixed encoding. The zero value uses UTF-8.
type Classifier struct {
	name string
	enc  encoding.Encoding
}

// New returns a Classifier for the IANA encoding name. UTF-8 aliases skip
// the x/text decoder and use utf8.Valid directly.
func New(name string) (*Classifier, error) {
	if isUTF8(name) {
		return &Classifier{name: DefaultEncoding}, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown text encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported text encoding %q", name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	return &Classifier{name: canonical, enc: enc}, nil
}

func isUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// Encoding returns the canonical name of the configured encoding.
func (c *Classifier) Encoding() string {
	if c == nil || c.name == "" {
		return DefaultEncoding
	}
	return c.name
}

// Classify is safe on a nil receiver, which behaves as UTF-8.
func (c *Classifier) Classify(data []byte) Result {
	if c == nil || c.enc == nil {
		return Classify(data)
	}
	decoded, err := c.enc.NewDecoder().Bytes(data)
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
		return Result{Kind: Binary}
	}
	return textResult(string(decoded))
}

// Classify uses UTF-8.
func Classify(data []byte) Result {
	if !utf8.Valid(data) {
		return Result{Kind: Binary}
	}
	return textResult(string(data))
}

func textResult(content string) Result {
	return Result{
		Kind:    Text,
		Content: content,
		Lines:   SplitLines(content),
	}
}

// SplitLines splits after every '\n', keeping the terminator on each line.
// The final line has no terminator unless s ends with one. An empty string
// has no lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// TrimPartialRune drops an incomplete UTF-8 sequence at the end of a
// truncated prefix so the cut point does not decide the classification.
// Invalid bytes that are not an incomplete sequence are left in place.
func TrimPartialRune(data []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		start := len(data) - i
		if !utf8.RuneStart(data[start]) {
			continue
		}
		if utf8.FullRune(data[start:]) {
			return data
		}
		return data[:start]
	}
	return data
}
