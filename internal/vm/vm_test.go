package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lcox74/catbf/internal/ir"
	"github.com/lcox74/catbf/internal/serialized"
	"github.com/lcox74/catbf/internal/source"
	"github.com/lcox74/catbf/internal/vm"
	"github.com/stretchr/testify/require"
)

func runIR(t *testing.T, src, input string) string {
	t.Helper()
	p, err := ir.Parse(source.NewCursor(strings.NewReader(src)))
	require.NoError(t, err)

	var out bytes.Buffer
	m := vm.New(vm.WithInput(strings.NewReader(input)), vm.WithOutput(&out))
	require.NoError(t, m.Run(p))
	return out.String()
}

func runSerialized(t *testing.T, src, input string) string {
	t.Helper()
	p, err := serialized.Parse(source.NewCursor(strings.NewReader(src)))
	require.NoError(t, err)

	var out bytes.Buffer
	m := vm.New(vm.WithInput(strings.NewReader(input)), vm.WithOutput(&out))
	require.NoError(t, m.RunSerialized(p))
	return out.String()
}

func TestIncrementAndPrint(t *testing.T) {
	require.Equal(t, "\x03", runIR(t, "+++.", ""))
	require.Equal(t, "\x03", runSerialized(t, "+++.", ""))
}

func TestEchoInput(t *testing.T) {
	// ',' leaves the flag at the cursor and the byte one cell to the right.
	require.Equal(t, "A", runIR(t, ",>.", "A"))
	require.Equal(t, "A", runSerialized(t, ",>.", "A"))
}

func TestLoopMultiplies(t *testing.T) {
	require.Equal(t, "\x02", runIR(t, "++[>+<-]>.", ""))
	require.Equal(t, "\x02", runSerialized(t, "++[>+<-]>.", ""))
}

func TestEmptyLoopIsNoOp(t *testing.T) {
	require.Equal(t, "", runIR(t, "[]", ""))
}

func TestGetAtEOFZeroesFlagCell(t *testing.T) {
	// cell 0 gets the flag, which is 0 at end of input, and '.' prints it
	// without moving the cursor.
	require.Equal(t, "\x00", runIR(t, ",.", ""))
}

func TestHelloWorld(t *testing.T) {
	const hello = `++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++.`
	require.Equal(t, "Hello World!\n", runIR(t, hello, ""))
}

func TestRunSerializedReportsCorruptLabel(t *testing.T) {
	p := serialized.Program{Code: []byte{serialized.OpJz, 0xff, 0xff, 0xff, 0x7f}}
	m := vm.New()
	err := m.RunSerialized(p)
	require.Error(t, err)
}
