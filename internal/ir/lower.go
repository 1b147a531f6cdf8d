package ir

import (
	"errors"
	"fmt"
	"io"

	"github.com/lcox74/catbf/internal/source"
)

// ParseError is returned when lowering source to IR fails.
type ParseError struct {
	Msg string
	Loc source.Location
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Msg, e.Loc.Line, e.Loc.Column)
}

// unmatchedLoopOpen builds the ParseError for a '[' with no matching ']'.
func unmatchedLoopOpen(loc source.Location) *ParseError {
	return &ParseError{Msg: "unmatched '['", Loc: loc}
}

// unmatchedLoopClose builds the ParseError for a ']' with no matching '['.
func unmatchedLoopClose(loc source.Location) *ParseError {
	return &ParseError{Msg: "unmatched ']'", Loc: loc}
}

// loopStart records where a '[' was opened, for back-patching its Jz target
// once the matching ']' is seen.
type loopStart struct {
	ip  int
	loc source.Location
}

// Parse consumes a source cursor and lowers it to a Program. Bytes other
// than the eight BF command characters are treated as comments and ignored.
func Parse(cur *source.Cursor) (Program, error) {
	var code []Instruction
	var loopStarts []loopStart

	for {
		b, loc, err := cur.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Program{}, fmt.Errorf("reading source: %w", err)
		}

		switch b {
		case '+':
			code = append(code, Instruction{Kind: Inc})
		case '-':
			code = append(code, Instruction{Kind: Dec})
		case '>':
			code = append(code, Instruction{Kind: Next})
		case '<':
			code = append(code, Instruction{Kind: Prev})
		case ',':
			code = append(code, Instruction{Kind: Get})
		case '.':
			code = append(code, Instruction{Kind: Put})
		case '[':
			loopStarts = append(loopStarts, loopStart{ip: len(code), loc: loc})
			code = append(code, Instruction{Kind: Jz})
		case ']':
			if len(loopStarts) == 0 {
				return Program{}, unmatchedLoopClose(loc)
			}
			open := loopStarts[len(loopStarts)-1]
			loopStarts = loopStarts[:len(loopStarts)-1]

			body := open.ip + 1
			code = append(code, Instruction{Kind: Jnz, Target: body})

			after := len(code)
			code[open.ip] = Instruction{Kind: Jz, Target: after}
		default:
			// comment character, ignored
		}
	}

	if len(loopStarts) > 0 {
		return Program{}, unmatchedLoopOpen(loopStarts[0].loc)
	}

	code = append(code, Instruction{Kind: Halt})
	return Program{Code: code}, nil
}
