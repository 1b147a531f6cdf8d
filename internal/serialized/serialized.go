// Package serialized provides the packed byte-stream carrier for BF
// programs: an alternative to internal/ir.Program for the fastest
// interpreter path. Each instruction occupies one byte (opcode only) or
// five bytes (opcode + little-endian u32 label), and labels are byte
// offsets into the buffer rather than IR indices.
package serialized

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/lcox74/catbf/internal/source"
)

// Opcodes, per the wire format.
const (
	OpHalt byte = 0
	OpInc  byte = 1
	OpDec  byte = 2
	OpNext byte = 3
	OpPrev byte = 4
	OpPut  byte = 5
	OpGet  byte = 6
	OpJz   byte = 7
	OpJnz  byte = 8
)

const (
	widthOpcode = 1
	widthLabel  = 4
	widthNoArgs = widthOpcode
	widthJump   = widthOpcode + widthLabel
)

// Program is an immutable, packed instruction buffer. The buffer always
// ends with an OpHalt byte.
type Program struct {
	Code []byte
}

// ParseError mirrors ir.ParseError for the packed encoder.
type ParseError struct {
	Msg string
	Loc source.Location
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Msg, e.Loc.Line, e.Loc.Column)
}

type loopStart struct {
	offset int
	loc    source.Location
}

// encoder writes instructions into a growable byte buffer, patching
// forward-jump placeholders in place when the matching ']' is seen.
type encoder struct {
	buf []byte
}

func (e *encoder) ip() int {
	return len(e.buf)
}

func (e *encoder) writeAt(pos int, b []byte) {
	need := pos + len(b)
	if len(e.buf) < need {
		e.buf = append(e.buf, make([]byte, need-len(e.buf))...)
	}
	copy(e.buf[pos:need], b)
}

func (e *encoder) putOpcode(pos int, op byte) {
	e.writeAt(pos, []byte{op})
}

func (e *encoder) putLabel(pos int, label int) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(label))
	e.writeAt(pos, buf[:])
}

func (e *encoder) putJump(pos int, op byte, label int) {
	e.putOpcode(pos, op)
	e.putLabel(pos+widthOpcode, label)
}

// Parse consumes a source cursor and produces a packed Program. Jump labels
// are byte offsets into the buffer, computed the same way ir.Parse computes
// IR indices: the '[' site gets patched with the offset just past the
// matching ']', and the ']' site's Jnz targets the byte just past the '['.
func Parse(cur *source.Cursor) (Program, error) {
	enc := &encoder{}
	var loopStarts []loopStart

	for {
		b, loc, err := cur.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Program{}, fmt.Errorf("reading source: %w", err)
		}

		pos := enc.ip()
		switch b {
		case '+':
			enc.putOpcode(pos, OpInc)
		case '-':
			enc.putOpcode(pos, OpDec)
		case '>':
			enc.putOpcode(pos, OpNext)
		case '<':
			enc.putOpcode(pos, OpPrev)
		case ',':
			enc.putOpcode(pos, OpGet)
		case '.':
			enc.putOpcode(pos, OpPut)
		case '[':
			loopStarts = append(loopStarts, loopStart{offset: pos, loc: loc})
			enc.putJump(pos, OpJz, 0) // placeholder, patched on ']'
		case ']':
			if len(loopStarts) == 0 {
				return Program{}, &ParseError{Msg: "unmatched ']'", Loc: loc}
			}
			open := loopStarts[len(loopStarts)-1]
			loopStarts = loopStarts[:len(loopStarts)-1]

			body := open.offset + widthJump
			enc.putJump(pos, OpJnz, body)

			after := enc.ip()
			enc.putJump(open.offset, OpJz, after)
		default:
			// comment byte, ignored
		}
	}

	if len(loopStarts) > 0 {
		return Program{}, &ParseError{Msg: "unmatched '['", Loc: loopStarts[0].loc}
	}

	enc.putOpcode(enc.ip(), OpHalt)
	return Program{Code: enc.buf}, nil
}

// Decoder walks a Program's packed buffer one instruction at a time.
type Decoder struct {
	code []byte
	ip   int
}

// NewDecoder returns a Decoder positioned at the start of p.
func NewDecoder(p Program) *Decoder {
	return &Decoder{code: p.Code}
}

// IP returns the decoder's current byte offset.
func (d *Decoder) IP() int {
	return d.ip
}

// Jump sets the decoder's byte offset directly, used for Jz/Jnz targets.
func (d *Decoder) Jump(offset int) {
	d.ip = offset
}

// ErrBadLabel is returned when the decoder's IP does not point at a valid
// opcode start, which can only happen against a corrupt buffer.
var ErrBadLabel = errors.New("serialized: label out of bounds")

// Decode reads and consumes one instruction at the current IP, advancing it
// past the instruction. It returns the opcode and, for Jz/Jnz, the decoded
// label (a byte offset).
func (d *Decoder) Decode() (op byte, label int, err error) {
	if d.ip < 0 || d.ip >= len(d.code) {
		return 0, 0, ErrBadLabel
	}
	op = d.code[d.ip]
	switch op {
	case OpHalt, OpInc, OpDec, OpNext, OpPrev, OpPut, OpGet:
		d.ip += widthNoArgs
		return op, 0, nil
	case OpJz, OpJnz:
		if d.ip+widthJump > len(d.code) {
			return 0, 0, ErrBadLabel
		}
		label = int(binary.LittleEndian.Uint32(d.code[d.ip+widthOpcode : d.ip+widthJump]))
		d.ip += widthJump
		return op, label, nil
	default:
		return 0, 0, ErrBadLabel
	}
}
