package aot_test

import (
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lcox74/catbf/internal/codegen/aot"
	"github.com/lcox74/catbf/internal/ir"
	"github.com/lcox74/catbf/internal/source"
	"github.com/stretchr/testify/require"
)

func TestCompileWritesRuntimeAndAssembly(t *testing.T) {
	if !aot.TargetSupported {
		t.Skip("aot unsupported on this platform")
	}
	if _, err := exec.LookPath("cc"); err != nil {
		t.Skip("no system C compiler available")
	}

	p, err := ir.Parse(source.NewCursor(strings.NewReader("+++.")))
	require.NoError(t, err)

	dir := t.TempDir()
	err = aot.Compile(p, dir)
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(dir, "runtime.c"))
	require.FileExists(t, filepath.Join(dir, "prog.s"))
	require.FileExists(t, filepath.Join(dir, "prog"))
}

func TestCompileFailsCleanlyOnUnwritableDirectory(t *testing.T) {
	if !aot.TargetSupported {
		t.Skip("aot unsupported on this platform")
	}

	p, err := ir.Parse(source.NewCursor(strings.NewReader("+")))
	require.NoError(t, err)

	err = aot.Compile(p, "/nonexistent/definitely/not/writable")
	require.Error(t, err)

	var ioErr *aot.IOError
	require.ErrorAs(t, err, &ioErr)
}
