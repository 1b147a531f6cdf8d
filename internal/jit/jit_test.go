package jit_test

import (
	"strings"
	"testing"

	"github.com/lcox74/catbf/internal/ir"
	"github.com/lcox74/catbf/internal/jit"
	"github.com/lcox74/catbf/internal/source"
	"github.com/stretchr/testify/require"
)

func TestCompileSucceedsOnSimpleProgram(t *testing.T) {
	if !jit.TargetSupported {
		t.Skip("jit unsupported on this platform")
	}

	p, err := ir.Parse(source.NewCursor(strings.NewReader("+++.")))
	require.NoError(t, err)

	exe, err := jit.Compile(p)
	require.NoError(t, err)
	defer exe.Close()
}

func TestCompileReturnsUnsupportedTargetErrorWhenDisabled(t *testing.T) {
	if jit.TargetSupported {
		t.Skip("only meaningful where jit is unsupported")
	}

	p, err := ir.Parse(source.NewCursor(strings.NewReader("+")))
	require.NoError(t, err)

	_, err = jit.Compile(p)
	require.ErrorIs(t, err, jit.UnsupportedTargetError{})
}
