package pebbledb_test

import (
	"bytes"
	"testing"

	"github.com/rawbytedev/flkv"
	"github.com/rawbytedev/flkv/internal/testutil"
	"github.com/rawbytedev/flkv/pebbledb"
	"github.com/stretchr/testify/require"
)

// TestPebbleBatchOperations tests batch Put and Get operations.
func TestPebbleBatchOperations(t *testing.T) {
	db := testutil.SetupDB(t, "pebble")
	defer db.Close()
	batch := flkv.NewBatch()
	keys := make([][]byte, 5)
	values := make([][]byte, 5)
	for i := 0; i < 5; i++ {
		keys[i] = testutil.RandomBytes(16)
		values[i] = testutil.RandomBytes(32)
		err := batch.Put(keys[i], values[i])
		require.NoError(t, err, "Error adding Put operation to batch")
	}
	err := db.Write(t.Context(), batch, true)
	require.NoError(t, err, "Error committing batch operations")
	for i := 0; i < 5; i++ {
		retrievedValue, err := db.Get(t.Context(), keys[i])
		require.NoError(t, err, "Error getting value after batch commit")
		require.Equal(t, values[i], retrievedValue, "Retrieved value does not match expected after batch commit")
	}
}

// TestPebbleInMemory checks that an in-memory store leaves nothing on disk.
func TestPebbleInMemory(t *testing.T) {
	tmp := t.TempDir()
	db, err := pebbledb.NewPebbleDB(pebbledb.Config{Dir: tmp, InMemory: true})
	require.NoError(t, err)
	require.NoError(t, db.Put(t.Context(), []byte("k"), []byte("v")))
	require.NoError(t, db.Flush(t.Context()))
	require.NoError(t, db.Close())

	reopened, err := pebbledb.NewPebbleDB(pebbledb.Config{Dir: tmp})
	require.NoError(t, err)
	defer reopened.Close()
	_, err = reopened.Get(t.Context(), []byte("k"))
	require.ErrorIs(t, err, flkv.ErrNotFound)
}

// TestPebbleFlushPersists reopens the directory after a flush.
func TestPebbleFlushPersists(t *testing.T) {
	tmp := t.TempDir()
	db, err := pebbledb.NewPebbleDB(*pebbledb.DefaultOptions(tmp))
	require.NoError(t, err)
	require.NoError(t, db.Put(t.Context(), []byte("k"), []byte("v")))
	require.NoError(t, db.Flush(t.Context()))
	require.NoError(t, db.Close())

	reopened, err := pebbledb.NewPebbleDB(*pebbledb.DefaultOptions(tmp))
	require.NoError(t, err)
	defer reopened.Close()
	value, err := reopened.Get(t.Context(), []byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), value)
}

// Helper to fill database with test values
func fillPebbleValues(t *testing.T, db flkv.Core) ([][]byte, [][]byte) {
	keys := make([][]byte, 10)
	values := make([][]byte, 10)
	for i := 0; i < 10; i++ {
		keys[i] = testutil.RandomBytes(16)
		values[i] = testutil.RandomBytes(32)
		prefKey := make([]byte, 0)
		prefKey = append(prefKey, []byte("pre_")...)
		prefKey = append(prefKey, keys[i]...)
		err := db.Put(t.Context(), prefKey, values[i])
		require.NoError(t, err)
	}
	return keys, values
}

// TestPebbleReverseIterator tests full reverse iteration
func TestPebbleReverseIterator(t *testing.T) {
	tmp := t.TempDir()
	dbInterface, err := pebbledb.NewPebbleDB(pebbledb.Config{Dir: tmp})
	require.NoError(t, err)

	pdb := dbInterface.(*pebbledb.PebbleDB)
	require.NotNil(t, pdb)
	defer pdb.Close()

	_, values := fillPebbleValues(t, pdb)

	it := pebbledb.NewReverseIterator(pdb)
	require.NotNil(t, it, "Reverse iterator should not be nil")
	defer it.Release()

	count := 0
	for it.Next() {
		count++
		require.NotNil(t, it.Key(), "Key should not be nil")
		value := it.Value()
		require.NotNil(t, value, "Value should not be nil")

		found := false
		for i := 0; i < len(values); i++ {
			if bytes.Equal(values[i], value) {
				found = true
				break
			}
		}
		require.True(t, found, "Retrieved value should be from inserted values")
	}
	require.Equal(t, 10, count, "Should iterate exactly 10 times")
	require.NoError(t, it.Error(), "Iterator should have no errors")
}

// TestPebbleReversePrefixIterator tests reverse iteration with prefix
func TestPebbleReversePrefixIterator(t *testing.T) {
	tmp := t.TempDir()
	dbInterface, err := pebbledb.NewPebbleDB(pebbledb.Config{Dir: tmp})
	require.NoError(t, err)

	pdb := dbInterface.(*pebbledb.PebbleDB)
	defer pdb.Close()

	_, _ = fillPebbleValues(t, pdb)
	require.NoError(t, pdb.Put(t.Context(), []byte("zzz"), []byte("outside")))

	it := pebbledb.NewReversePrefixIterator(pdb, []byte("pre_"))
	defer it.Release()

	count := 0
	for it.Next() {
		count++
		require.True(t, bytes.HasPrefix(it.Key(), []byte("pre_")), "Key should have prefix")
	}
	require.Equal(t, 10, count, "Should iterate exactly 10 times")
	require.NoError(t, it.Error(), "Iterator should have no errors")
}

// TestPebbleReverseIteratorOrder verifies reverse order
func TestPebbleReverseIteratorOrder(t *testing.T) {
	tmp := t.TempDir()
	dbInterface, err := pebbledb.NewPebbleDB(pebbledb.Config{Dir: tmp})
	require.NoError(t, err)

	pdb := dbInterface.(*pebbledb.PebbleDB)
	defer pdb.Close()

	keys := [][]byte{
		[]byte("key_01"),
		[]byte("key_02"),
		[]byte("key_03"),
		[]byte("key_04"),
		[]byte("key_05"),
	}
	for _, key := range keys {
		err := pdb.Put(t.Context(), key, []byte("value"))
		require.NoError(t, err)
	}

	forwardKeys := make([][]byte, 0)
	it := pdb.Scan([]byte("key_"))
	for it.Next() {
		forwardKeys = append(forwardKeys, it.Key())
	}
	it.Release()

	reverseKeys := make([][]byte, 0)
	rit := pebbledb.NewReversePrefixIterator(pdb, []byte("key_"))
	for rit.Next() {
		reverseKeys = append(reverseKeys, rit.Key())
	}
	rit.Release()

	require.Equal(t, keys, forwardKeys)
	require.Equal(t, len(forwardKeys), len(reverseKeys), "Should have same count")
	for i := 0; i < len(forwardKeys); i++ {
		require.Equal(t, forwardKeys[i], reverseKeys[len(reverseKeys)-1-i], "Keys should be in reverse order")
	}
}
