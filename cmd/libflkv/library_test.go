//go:build darwin || linux

package main

import (
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rawbytedev/flkv"
	"github.com/rawbytedev/flkv/native"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLibrary compiles this package as a C shared library.
func buildLibrary(t *testing.T) string {
	if testing.Short() {
		t.Skip("builds the shared library")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not in PATH")
	}
	out, err := exec.Command(goBin, "env", "CGO_ENABLED").Output()
	if err != nil || strings.TrimSpace(string(out)) != "1" {
		t.Skip("cgo disabled")
	}
	lib := filepath.Join(t.TempDir(), "libflkv.so")
	build := exec.Command(goBin, "build", "-buildmode=c-shared", "-o", lib, ".")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("build shared library: %v\n%s", err, out)
	}
	return lib
}

func TestSharedLibrary(t *testing.T) {
	lib, err := native.Load(buildLibrary(t))
	require.NoError(t, err, "every symbol must be exported")

	db, err := lib.Open(filepath.Join(t.TempDir(), "db"), false)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("apple"), []byte("red")))
	got, err := db.Get([]byte("apple"))
	require.NoError(t, err)
	assert.Equal(t, []byte("red"), got)

	got, err = db.Get([]byte("pear"))
	require.NoError(t, err)
	assert.Empty(t, got)

	batch, err := lib.NewBatch()
	require.NoError(t, err)
	require.NoError(t, batch.Put([]byte("pear"), []byte("green")))
	require.NoError(t, db.Write(batch, true))
	assert.ErrorIs(t, db.Write(batch, true), flkv.ErrBatchConsumed)

	got, err = db.Get([]byte("pear"))
	require.NoError(t, err)
	assert.Equal(t, []byte("green"), got)
	require.NoError(t, db.Flush())
}
