package serialized_test

import (
	"strings"
	"testing"

	"github.com/lcox74/catbf/internal/serialized"
	"github.com/lcox74/catbf/internal/source"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) serialized.Program {
	t.Helper()
	p, err := serialized.Parse(source.NewCursor(strings.NewReader(src)))
	require.NoError(t, err)
	return p
}

func TestParseEndsWithHalt(t *testing.T) {
	p := parse(t, "+")
	require.Equal(t, []byte{serialized.OpInc, serialized.OpHalt}, p.Code)
}

func TestDecodeRoundTripsSimpleProgram(t *testing.T) {
	p := parse(t, "+++.")

	dec := serialized.NewDecoder(p)
	op, _, err := dec.Decode()
	require.NoError(t, err)
	require.Equal(t, serialized.OpInc, op)

	op, _, err = dec.Decode()
	require.NoError(t, err)
	require.Equal(t, serialized.OpInc, op)

	op, _, err = dec.Decode()
	require.NoError(t, err)
	require.Equal(t, serialized.OpInc, op)

	op, _, err = dec.Decode()
	require.NoError(t, err)
	require.Equal(t, serialized.OpPut, op)

	op, _, err = dec.Decode()
	require.NoError(t, err)
	require.Equal(t, serialized.OpHalt, op)
}

func TestDecodeLoopLabelsAreByteOffsets(t *testing.T) {
	p := parse(t, "[-]")

	dec := serialized.NewDecoder(p)
	op, label, err := dec.Decode()
	require.NoError(t, err)
	require.Equal(t, serialized.OpJz, op)
	require.Equal(t, 11, label) // past the 5-byte Jz, 1-byte Dec, and 5-byte Jnz

	op, _, err = dec.Decode()
	require.NoError(t, err)
	require.Equal(t, serialized.OpDec, op)

	op, label, err = dec.Decode()
	require.NoError(t, err)
	require.Equal(t, serialized.OpJnz, op)
	require.Equal(t, 5, label) // back to the Dec byte, past the Jz instruction
}

func TestDecodeBadLabelOnCorruptBuffer(t *testing.T) {
	p := serialized.Program{Code: []byte{serialized.OpJz, 0xff, 0xff, 0xff, 0xff}}
	dec := serialized.NewDecoder(p)
	_, _, err := dec.Decode()
	require.NoError(t, err) // the label itself decodes fine, it's just garbage

	dec.Jump(999)
	_, _, err = dec.Decode()
	require.ErrorIs(t, err, serialized.ErrBadLabel)
}

func TestParseUnmatchedLoopReportsLocation(t *testing.T) {
	_, err := serialized.Parse(source.NewCursor(strings.NewReader("+[")))
	require.Error(t, err)

	var parseErr *serialized.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 2, parseErr.Loc.Column)
}
