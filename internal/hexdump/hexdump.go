// Package hexdump renders bytes as fixed-width rows of address, hex pairs and
// an ASCII gutter, 16 bytes per row.
package hexdump

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

const (
	BytesPerRow = 16

	// AddressColumnWidth is the minimum width the "0x...: " field is padded to.
	AddressColumnWidth = 10

	// HexColumnWidth fits 16 pairs, 15 separators and the gap after the 8th pair.
	HexColumnWidth = BytesPerRow*3 - 1 + 1

	groupSize = 8
)

// AddressWidth returns the number of hex digits used for addresses in a dump
// of a file of the given size.
func AddressWidth(size int64) int {
	switch {
	case size > 1<<24:
		return 10
	case size > 1<<16:
		return 8
	case size > 1<<8:
		return 6
	default:
		return 4
	}
}

// Line is one dump row covering up to 16 source bytes.
type Line struct {
	Address uint64
	Hex     []string
	ASCII   string
}

func newLine(addr uint64, chunk []byte) Line {
	hex := make([]string, len(chunk))
	ascii := make([]byte, len(chunk))
	for i, b := range chunk {
		hex[i] = fmt.Sprintf("%02X", b)
		ascii[i] = printable(b)
	}
	return Line{Address: addr, Hex: hex, ASCII: string(ascii)}
}

// printable keeps ASCII 32..126 and maps everything else, including CR and
// LF, to '.', so the gutter always stays on one physical line.
func printable(b byte) byte {
	if b >= 32 && b < 127 {
		return b
	}
	return '.'
}

// HexColumn joins the pairs with single spaces and an extra space after the
// 8th pair.
func (l Line) HexColumn() string {
	var b strings.Builder
	b.Grow(HexColumnWidth)
	for i, h := range l.Hex {
		if i > 0 {
			b.WriteByte(' ')
			if i == groupSize {
				b.WriteByte(' ')
			}
		}
		b.WriteString(h)
	}
	return b.String()
}

// FormatAddress renders addr as 0x-prefixed, zero-padded lowercase hex
// followed by ": ".
func FormatAddress(addr uint64, width int) string {
	return fmt.Sprintf("0x%0*x: ", width, addr)
}

// Format renders the row with the given address width, terminated by '\n'.
func (l Line) Format(width int) string {
	return fmt.Sprintf("%-*s %-*s %s\n",
		AddressColumnWidth, FormatAddress(l.Address, width),
		HexColumnWidth, l.HexColumn(),
		l.ASCII)
}

// Lines yields one Line per 16-byte window of data. The sequence is
// stateless over data and can be ranged over more than once.
func Lines(data []byte) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for off := 0; off < len(data); off += BytesPerRow {
			end := min(off+BytesPerRow, len(data))
			if !yield(newLine(uint64(off), data[off:end])) {
				return
			}
		}
	}
}

// Collect renders data into formatted rows. size is the size of the whole
// file, which decides the address width even when data is only a prefix.
func Collect(data []byte, size int64) []string {
	width := AddressWidth(size)
	rows := make([]string, 0, (len(data)+BytesPerRow-1)/BytesPerRow)
	for l := range Lines(data) {
		rows = append(rows, l.Format(width))
	}
	return rows
}

// ReadError is a failure of the underlying reader during a dump.
type ReadError struct {
	Offset uint64
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read at offset %d: %v", e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Dumper streams a dump from a reader.
type Dumper struct {
	width int
}

func NewDumper(size int64) *Dumper {
	return &Dumper{width: AddressWidth(size)}
}

func (d *Dumper) Width() int {
	return d.width
}

// Dump reads r 16 bytes at a time and writes formatted rows to w. Read
// errors are returned as *ReadError and are not retried; rows written before
// the failure stay in w. It returns the number of rows written.
func (d *Dumper) Dump(w io.Writer, r io.Reader) (int, error) {
	buf := make([]byte, BytesPerRow)
	var addr uint64
	rows := 0
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			if _, werr := io.WriteString(w, newLine(addr, buf[:n]).Format(d.width)); werr != nil {
				return rows, werr
			}
			rows++
			addr += uint64(n)
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return rows, nil
		default:
			return rows, &ReadError{Offset: addr, Err: err}
		}
	}
}
