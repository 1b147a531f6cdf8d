// Package source provides a byte-by-byte cursor over BF source text that
// tracks (offset, line, column) as it reads.
package source

import (
	"bufio"
	"io"
)

// Location is a position in the source file.
type Location struct {
	Offset int // byte offset from start of file
	Line   int // 1-based line number
	Column int // 1-based column number
}

// StartLocation is the location of the first byte of a file.
var StartLocation = Location{Offset: 0, Line: 1, Column: 1}

// next advances the location past the given byte.
func (l *Location) next(b byte) {
	l.Offset++
	if b == '\n' {
		l.Line++
		l.Column = 1
	} else {
		l.Column++
	}
}

// Cursor reads bytes from an underlying reader while tracking the current
// Location. It is the only component in the toolchain that touches the raw
// byte stream.
type Cursor struct {
	r   *bufio.Reader
	loc Location
}

// NewCursor wraps r in a Cursor starting at StartLocation.
func NewCursor(r io.Reader) *Cursor {
	return &Cursor{r: bufio.NewReader(r), loc: StartLocation}
}

// Location returns the location of the next byte that Next will return.
func (c *Cursor) Location() Location {
	return c.loc
}

// Next returns the next byte and the location it was read from. At end of
// stream it returns (0, loc, io.EOF). Any other error is a hard read
// failure and is returned unwrapped.
func (c *Cursor) Next() (byte, Location, error) {
	b, err := c.r.ReadByte()
	if err != nil {
		return 0, c.loc, err
	}
	loc := c.loc
	c.loc.next(b)
	return b, loc, nil
}
