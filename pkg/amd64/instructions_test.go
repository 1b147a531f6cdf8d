package amd64_test

import (
	"testing"

	"github.com/lcox74/catbf/pkg/amd64"
	"github.com/stretchr/testify/require"
)

func TestIncbMemR12R14Encoding(t *testing.T) {
	require.Equal(t, []byte{0x43, 0xfe, 0x04, 0x34}, amd64.IncbMemR12R14())
}

func TestCallAbsoluteEncodesMovabsAndCall(t *testing.T) {
	code := amd64.CallAbsolute(0x1122334455667788)
	require.Len(t, code, 12)
	require.Equal(t, []byte{0x48, 0xb8}, code[:2])
	require.Equal(t, []byte{0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11}, code[2:10])
	require.Equal(t, []byte{0xff, 0xd0}, code[10:])
}

func TestJmpRel32EncodesLittleEndianDisplacement(t *testing.T) {
	code := amd64.JmpRel32(-2)
	require.Equal(t, byte(0xe9), code[0])
	require.Equal(t, []byte{0xfe, 0xff, 0xff, 0xff}, code[1:])
}

func TestPatchRel32OverwritesInPlace(t *testing.T) {
	buf := make([]byte, 8)
	amd64.PatchRel32(buf, 2, 0x11223344)
	require.Equal(t, []byte{0x44, 0x33, 0x22, 0x11}, buf[2:6])
}
