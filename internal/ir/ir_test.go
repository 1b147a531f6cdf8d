package ir_test

import (
	"strings"
	"testing"

	"github.com/lcox74/catbf/internal/ir"
	"github.com/lcox74/catbf/internal/source"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) ir.Program {
	t.Helper()
	p, err := ir.Parse(source.NewCursor(strings.NewReader(src)))
	require.NoError(t, err)
	return p
}

func TestParseSimpleRun(t *testing.T) {
	p := parse(t, "+++")
	require.Equal(t, []ir.Instruction{
		{Kind: ir.Inc},
		{Kind: ir.Inc},
		{Kind: ir.Inc},
		{Kind: ir.Halt},
	}, p.Code)
}

func TestParseIgnoresComments(t *testing.T) {
	p := parse(t, "+ hello -")
	require.Equal(t, []ir.Instruction{
		{Kind: ir.Inc},
		{Kind: ir.Dec},
		{Kind: ir.Halt},
	}, p.Code)
}

func TestParseLoopTargets(t *testing.T) {
	p := parse(t, "[-]")
	require.Equal(t, []ir.Instruction{
		{Kind: ir.Jz, Target: 3},
		{Kind: ir.Dec},
		{Kind: ir.Jnz, Target: 1},
		{Kind: ir.Halt},
	}, p.Code)
}

func TestParseLoopBetweenInstructions(t *testing.T) {
	p := parse(t, "++[>+<-]>.")
	require.Equal(t, 11, p.Len())
	require.Equal(t, ir.Jz, p.Code[2].Kind)
	require.Equal(t, 8, p.Code[2].Target)
	require.Equal(t, ir.Jnz, p.Code[7].Kind)
	require.Equal(t, 3, p.Code[7].Target)
}

func TestParseUnmatchedOpen(t *testing.T) {
	_, err := ir.Parse(source.NewCursor(strings.NewReader("+[")))
	require.Error(t, err)

	var parseErr *ir.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 2, parseErr.Loc.Column)
}

func TestParseUnmatchedClose(t *testing.T) {
	_, err := ir.Parse(source.NewCursor(strings.NewReader("+]")))
	require.Error(t, err)

	var parseErr *ir.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 2, parseErr.Loc.Column)
}

func TestDumpLabelsJumpTargets(t *testing.T) {
	p := parse(t, "[-]")
	dump := ir.Dump(p)
	require.True(t, strings.HasPrefix(dump, "    jz label_3\nlabel_1:\n"))
	require.Contains(t, dump, "jz label_3")
	require.Contains(t, dump, "jnz label_1")
}
