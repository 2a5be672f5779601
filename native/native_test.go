//go:build darwin || linux

package native

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rawbytedev/flkv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadLibrary needs a library built with
//
//	go build -buildmode=c-shared -o libflkv.so ./cmd/libflkv
func loadLibrary(t *testing.T) *Library {
	path := os.Getenv("FLKV_LIB")
	if path == "" {
		t.Skip("FLKV_LIB not set")
	}
	lib, err := Load(path)
	require.NoError(t, err)
	return lib
}

func TestSymbolsOrder(t *testing.T) {
	names := Symbols()
	require.Len(t, names, 12)
	assert.Equal(t, "db_open", names[0])
	assert.Equal(t, "batch_free", names[len(names)-1])
}

func TestLoadMissingLibrary(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.so"))
	assert.Error(t, err)
}

func TestNativeRoundTrip(t *testing.T) {
	lib := loadLibrary(t)
	db, err := lib.Open(filepath.Join(t.TempDir(), "db"), false)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("apple"), []byte("red")))
	got, err := db.Get([]byte("apple"))
	require.NoError(t, err)
	assert.Equal(t, []byte("red"), got)

	got, err = db.Get([]byte("missing"))
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, db.Put([]byte("empty"), nil))
	got, err = db.Get([]byte("empty"))
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, db.Delete([]byte("apple")))
	got, err = db.Get([]byte("apple"))
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, db.Flush())

	assert.ErrorIs(t, db.Put(nil, []byte("v")), ErrCallFailed)
}

func TestNativeBatch(t *testing.T) {
	lib := loadLibrary(t)
	db, err := lib.Open("", true)
	require.NoError(t, err)
	defer db.Close()

	batch, err := lib.NewBatch()
	require.NoError(t, err)
	require.NoError(t, batch.Put([]byte("a"), []byte("1")))
	require.NoError(t, batch.Put([]byte("b"), []byte("2")))
	require.NoError(t, db.Write(batch, true))

	got, err := db.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)

	assert.ErrorIs(t, db.Write(batch, true), flkv.ErrBatchConsumed)
	assert.ErrorIs(t, batch.Put([]byte("c"), []byte("3")), flkv.ErrBatchConsumed)

	cleared, err := lib.NewBatch()
	require.NoError(t, err)
	require.NoError(t, cleared.Put([]byte("c"), []byte("3")))
	require.NoError(t, cleared.Clear())
	require.NoError(t, db.Write(cleared, false))
	got, err = db.Get([]byte("c"))
	require.NoError(t, err)
	assert.Empty(t, got)

	unused, err := lib.NewBatch()
	require.NoError(t, err)
	unused.Free()
	unused.Free()
}

func TestNativeClosedDB(t *testing.T) {
	lib := loadLibrary(t)
	db, err := lib.Open("", true)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())
	assert.ErrorIs(t, db.Put([]byte("k"), []byte("v")), flkv.ErrClosed)
	_, err = db.Get([]byte("k"))
	assert.ErrorIs(t, err, flkv.ErrClosed)
}
