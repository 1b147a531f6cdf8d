package tape_test

import (
	"testing"

	"github.com/lcox74/catbf/internal/tape"
	"github.com/stretchr/testify/require"
)

func TestFixedTapeWrapsAtEdges(t *testing.T) {
	tp := tape.NewFixedTape(3)
	require.Equal(t, byte(0), tp.Byte())

	tp.Prev()
	require.Equal(t, byte(0), tp.Byte()) // wrapped to the last cell
	tp.SetByte(9)

	tp.Next()
	require.Equal(t, byte(0), tp.Byte()) // wrapped back to cell 0

	tp.Next()
	tp.Next()
	require.Equal(t, byte(9), tp.Byte()) // cell 2, the one we wrote
}

func TestFixedTapeIncDecWraps(t *testing.T) {
	tp := tape.NewFixedTape(1)
	tp.Dec()
	require.Equal(t, byte(255), tp.Byte())
	tp.Inc()
	require.Equal(t, byte(0), tp.Byte())
}

func TestGrowingTapeGrowsForward(t *testing.T) {
	tp := tape.NewGrowingTape()
	for i := 0; i < tape.ChunkSize; i++ {
		tp.Next()
	}
	tp.SetByte(42)
	require.Equal(t, byte(42), tp.Byte())
}

func TestGrowingTapeGrowsBackward(t *testing.T) {
	tp := tape.NewGrowingTape()
	tp.Prev()
	tp.SetByte(7)
	require.Equal(t, byte(7), tp.Byte())

	tp.Next()
	require.Equal(t, byte(0), tp.Byte()) // back to the original cell 0
}
