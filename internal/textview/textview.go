// Package textview turns decoded lines into display lines plus line and
// character counts.
package textview

import (
	"strings"
	"unicode/utf8"
)

type Rendered struct {
	Lines     []string
	LineCount int
	// CharCount counts code points, terminators included.
	CharCount int
}

// Render never truncates. Whether a file is small enough to render is
// decided by the caller.
func Render(lines []string) Rendered {
	r := Rendered{
		Lines:     lines,
		LineCount: len(lines),
	}
	for _, line := range lines {
		r.CharCount += utf8.RuneCountInString(line)
	}
	return r
}

// String concatenates the lines verbatim.
func (r Rendered) String() string {
	return strings.Join(r.Lines, "")
}
