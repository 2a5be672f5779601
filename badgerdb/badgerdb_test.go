package badgerdb_test

import (
	"bytes"
	"testing"

	"github.com/rawbytedev/flkv"
	"github.com/rawbytedev/flkv/badgerdb"
	"github.com/rawbytedev/flkv/internal/testutil"
	"github.com/stretchr/testify/require"
)

// TestBadgerBatchOperations tests batch Put and Get operations.
func TestBadgerBatchOperations(t *testing.T) {
	db := testutil.SetupDB(t, "badger")
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

// TestBadgerInMemory checks the memory flag: writes work, flush is a no-op.
func TestBadgerInMemory(t *testing.T) {
	db, err := badgerdb.NewBadgerDB(badgerdb.Config{InMemory: true})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put(t.Context(), []byte("k"), []byte("v")))
	require.NoError(t, db.Flush(t.Context()))

	batch := flkv.NewBatch()
	require.NoError(t, batch.Delete([]byte("k")))
	require.NoError(t, batch.Put([]byte("k2"), nil))
	require.NoError(t, db.Write(t.Context(), batch, true))

	_, err = db.Get(t.Context(), []byte("k"))
	require.ErrorIs(t, err, flkv.ErrNotFound)
	value, err := db.Get(t.Context(), []byte("k2"))
	require.NoError(t, err)
	require.Equal(t, []byte{}, value)
}

// Helper to fill database with test values
func fillBadgerValues(t *testing.T, db flkv.Core) ([][]byte, [][]byte) {
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

// TestBadgerReverseIterator tests full reverse iteration
func TestBadgerReverseIterator(t *testing.T) {
	tmp := t.TempDir()
	dbInterface, err := badgerdb.NewBadgerDB(badgerdb.Config{Dir: tmp})
	require.NoError(t, err)

	// Type assertion to get concrete type
	bdb := dbInterface.(*badgerdb.BadgerDB)
	require.NotNil(t, bdb)
	defer bdb.Close()

	_, values := fillBadgerValues(t, bdb)

	it := badgerdb.NewReverseIterator(bdb)
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
	require.Equal(t, 10, count, "Should iterate 10 times")
	require.NoError(t, it.Error(), "Iterator should have no errors")
}

// TestBadgerReversePrefixIterator tests reverse iteration with prefix
func TestBadgerReversePrefixIterator(t *testing.T) {
	tmp := t.TempDir()
	dbInterface, err := badgerdb.NewBadgerDB(badgerdb.Config{Dir: tmp})
	require.NoError(t, err)

	bdb := dbInterface.(*badgerdb.BadgerDB)
	defer bdb.Close()

	_, _ = fillBadgerValues(t, bdb)
	// the exclusive upper bound of "pre_" must not be returned
	require.NoError(t, bdb.Put(t.Context(), flkv.PrefixUpperBound([]byte("pre_")), []byte("outside")))
	require.NoError(t, bdb.Put(t.Context(), []byte("aaa"), []byte("outside")))

	it := badgerdb.NewReversePrefixIterator(bdb, []byte("pre_"))
	defer it.Release()

	count := 0
	for it.Next() {
		count++
		key := it.Key()
		require.True(t, bytes.HasPrefix(key, []byte("pre_")), "Key should have prefix")
	}
	require.Equal(t, 10, count, "Should iterate exactly 10 times")
	require.NoError(t, it.Error(), "Iterator should have no errors")
}

// TestBadgerReverseIteratorOrder verifies reverse order
func TestBadgerReverseIteratorOrder(t *testing.T) {
	tmp := t.TempDir()
	dbInterface, err := badgerdb.NewBadgerDB(badgerdb.Config{Dir: tmp})
	require.NoError(t, err)

	bdb := dbInterface.(*badgerdb.BadgerDB)
	defer bdb.Close()

	keys := [][]byte{
		[]byte("key_01"),
		[]byte("key_02"),
		[]byte("key_03"),
		[]byte("key_04"),
		[]byte("key_05"),
	}
	for _, key := range keys {
		err := bdb.Put(t.Context(), key, []byte("value"))
		require.NoError(t, err)
	}

	forwardKeys := make([][]byte, 0)
	it := bdb.Scan([]byte("key_"))
	for it.Next() {
		forwardKeys = append(forwardKeys, it.Key())
	}
	it.Release()

	reverseKeys := make([][]byte, 0)
	rit := badgerdb.NewReversePrefixIterator(bdb, []byte("key_"))
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
