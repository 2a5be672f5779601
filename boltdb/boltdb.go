package boltdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rawbytedev/flkv"
	"github.com/rawbytedev/flkv/helpers"
	"go.etcd.io/bbolt"
)

// BoltDB stores every pair in a single bucket of a bbolt file. Each update
// runs in its own read-write transaction, which bbolt fsyncs on commit.
type BoltDB struct {
	db      *bbolt.DB
	bucket  []byte
	tempDir string // set for in-memory stores
	mu      sync.RWMutex
	closed  bool
}

type boltWriter struct {
	bucket *bbolt.Bucket
}

// NewBoltDB opens (or creates) Dir/flkv.bolt.
func NewBoltDB(cfg Config) (flkv.Core, error) {
	opts := &bbolt.Options{Timeout: time.Second}
	if cfg.BoltConfigs != nil {
		copied := *cfg.BoltConfigs
		opts = &copied
	}
	dir := cfg.Dir
	var tempDir string
	if cfg.InMemory {
		var err error
		tempDir, err = os.MkdirTemp("", "flkv-bolt-")
		if err != nil {
			return nil, fmt.Errorf("create temporary bolt dir: %w", err)
		}
		dir = tempDir
		opts.NoSync = true
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create bolt dir %q: %w", dir, err)
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}

	db, err := bbolt.Open(filepath.Join(dir, DefaultFileName), 0o600, opts)
	if err != nil {
		removeTemp(tempDir)
		return nil, fmt.Errorf("failed to open BoltDB: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		db.Close()
		removeTemp(tempDir)
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return &BoltDB{db: db, bucket: []byte(bucket), tempDir: tempDir}, nil
}

func removeTemp(dir string) error {
	if dir == "" {
		return nil
	}
	return os.RemoveAll(dir)
}

// Put inserts or updates a key-value pair in the database.
func (b *BoltDB) Put(ctx context.Context, key, value []byte) error {
	if err := flkv.CheckKey(key); err != nil {
		return err
	}
	return b.update(ctx, func(bucket *bbolt.Bucket) error {
		return bucket.Put(key, flkv.NormalizeValue(value))
	})
}

// Get retrieves the value for a given key. Returns flkv.ErrNotFound if not found.
func (b *BoltDB) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := flkv.CheckKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, flkv.ErrClosed
	}
	var result []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		// a cursor tells a missing key apart from an empty value
		k, v := tx.Bucket(b.bucket).Cursor().Seek(key)
		if k == nil || !bytes.Equal(k, key) {
			return flkv.ErrNotFound
		}
		// v is only valid for the life of the transaction
		result = make([]byte, len(v))
		copy(result, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a key-value pair from the database.
func (b *BoltDB) Delete(ctx context.Context, key []byte) error {
	if err := flkv.CheckKey(key); err != nil {
		return err
	}
	return b.update(ctx, func(bucket *bbolt.Bucket) error {
		return bucket.Delete(key)
	})
}

// Flush fdatasyncs the database file. Commits are already synced unless NoSync is set.
func (b *BoltDB) Flush(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return flkv.ErrClosed
	}
	return helpers.IgnoreContext(ctx, b.db.Sync)
}

// Write applies the batch in one transaction. bbolt always syncs on commit,
// so sync makes no difference.
func (b *BoltDB) Write(ctx context.Context, batch *flkv.Batch, sync bool) error {
	return b.update(ctx, func(bucket *bbolt.Bucket) error {
		return batch.Replay(&boltWriter{bucket: bucket})
	})
}

func (w *boltWriter) Put(key, value []byte) error {
	return w.bucket.Put(key, value)
}

func (w *boltWriter) Delete(key []byte) error {
	return w.bucket.Delete(key)
}

func (b *BoltDB) update(ctx context.Context, fn func(*bbolt.Bucket) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return flkv.ErrClosed
	}
	return helpers.IgnoreContext(ctx, func() error {
		return b.db.Update(func(tx *bbolt.Tx) error {
			return fn(tx.Bucket(b.bucket))
		})
	})
}

// Scan copies the matching pairs out of a read transaction. Holding a bbolt
// read transaction open for the life of an iterator would block remapping
// when writers grow the file.
func (b *BoltDB) Scan(prefix []byte) flkv.Iterator {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return flkv.NewErrIterator(flkv.ErrClosed)
	}
	var keys, values [][]byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(b.bucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			kCopy := make([]byte, len(k))
			copy(kCopy, k)
			vCopy := make([]byte, len(v))
			copy(vCopy, v)
			keys = append(keys, kCopy)
			values = append(values, vCopy)
		}
		return nil
	})
	if err != nil {
		return flkv.NewErrIterator(err)
	}
	return flkv.NewSliceIterator(keys, values)
}

// Path returns the location of the database file.
func (b *BoltDB) Path() string {
	return b.db.Path()
}

// Close closes the database, and removes the backing file of an in-memory store.
func (b *BoltDB) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return errors.Join(b.db.Close(), removeTemp(b.tempDir))
}
