package flkv

import "context"

// Core defines the main interface for a key-value database
type Core interface {
	// Put inserts or updates a key-value pair in the database
	Put(ctx context.Context, key []byte, value []byte) error
	// Get retrieves the value for a given key. Returns ErrNotFound if the key is absent
	Get(ctx context.Context, key []byte) ([]byte, error)
	// Delete removes a key-value pair from the database
	Delete(ctx context.Context, key []byte) error
	// Flush forces buffered writes to stable storage
	Flush(ctx context.Context) error
	// Write applies every operation of the batch atomically, in order
	Write(ctx context.Context, batch *Batch, sync bool) error
	// Scan returns an iterator to traverse key-value pairs with the specified prefix
	Scan(prefix []byte) Iterator
	// Close closes the database connection
	Close() error
}

// Iterator defines methods for iterating over key-value pairs in the database
type Iterator interface {
	Next() bool    // advances the iterator to the next key-value pair
	Key() []byte   // returns the current key
	Value() []byte // returns the current value
	Release()      // releases the iterator resources
	Error() error  // returns any error encountered during iteration
}

// BatchWriter receives the operations of a Batch during Replay.
type BatchWriter interface {
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}
