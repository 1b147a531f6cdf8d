package gas_test

import (
	"strings"
	"testing"

	"github.com/lcox74/catbf/internal/codegen/gas"
	"github.com/lcox74/catbf/internal/ir"
	"github.com/lcox74/catbf/internal/source"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	p, err := ir.Parse(source.NewCursor(strings.NewReader(src)))
	require.NoError(t, err)
	return gas.NewGenerator(p).Generate()
}

func TestGenerateDeclaresMain(t *testing.T) {
	asm := generate(t, "+")
	require.Contains(t, asm, ".globl main\n")
	require.Contains(t, asm, "main:\n")
}

func TestGenerateCallsRuntimeFunctions(t *testing.T) {
	asm := generate(t, "+-><,.")
	require.Contains(t, asm, "call create_tape")
	require.Contains(t, asm, "call destroy_tape")
	require.Contains(t, asm, "call grow_next")
	require.Contains(t, asm, "call grow_prev")
	require.Contains(t, asm, "call get")
	require.Contains(t, asm, "call put")
}

func TestGenerateEmitsUniqueGrowthLabelsPerSite(t *testing.T) {
	asm := generate(t, ">>")
	require.Contains(t, asm, ".growed_next_0:")
	require.Contains(t, asm, ".growed_next_1:")
}

func TestGenerateLabelsEveryInstruction(t *testing.T) {
	asm := generate(t, "[-]")
	require.Contains(t, asm, ".label_0:\n")
	require.Contains(t, asm, ".label_1:\n")
	require.Contains(t, asm, ".label_2:\n")
	require.Contains(t, asm, ".label_3:\n")
	require.Contains(t, asm, "jz .label_3")
	require.Contains(t, asm, "jnz .label_1")
}
