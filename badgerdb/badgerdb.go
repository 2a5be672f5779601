package badgerdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/rawbytedev/flkv"
	"github.com/rawbytedev/flkv/helpers"
	flog "github.com/rawbytedev/flkv/log"
)

type BadgerDB struct {
	db       *badger.DB
	inMemory bool
	mu       sync.RWMutex
	closed   bool
}

type badgerWriter struct {
	txn *badger.Txn
}

type badgerIterator struct {
	txn      *badger.Txn
	iterator *badger.Iterator
	prefix   []byte
	reverse  bool
	started  bool
	valid    bool
	released bool
	err      []error
}

// NewBadgerDB initializes and returns a BadgerDB instance at the specified path.
func NewBadgerDB(cfg Config) (flkv.Core, error) {
	var opts badger.Options
	if cfg.BadgerConfigs != nil {
		opts = *cfg.BadgerConfigs
	} else {
		opts = badger.DefaultOptions(cfg.Dir).WithLogger(flog.NewEngineLogger("badger"))
	}
	if cfg.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Dir, err)
	}
	return &BadgerDB{db: db, inMemory: opts.InMemory}, nil
}

// Put inserts or updates a key-value pair in the database.
func (b *BadgerDB) Put(ctx context.Context, key, value []byte) error {
	if err := flkv.CheckKey(key); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return flkv.ErrClosed
	}
	return helpers.IgnoreContext(ctx, func() error {
		return b.db.Update(func(txn *badger.Txn) error {
			return txn.Set(key, flkv.NormalizeValue(value))
		})
	})
}

// Get retrieves the value for a given key. Returns flkv.ErrNotFound if not found.
func (b *BadgerDB) Get(ctx context.Context, key []byte) ([]byte, error) {
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
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, flkv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// Delete removes a key-value pair from the database.
func (b *BadgerDB) Delete(ctx context.Context, key []byte) error {
	if err := flkv.CheckKey(key); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return flkv.ErrClosed
	}
	return helpers.IgnoreContext(ctx, func() error {
		return b.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
	})
}

// Flush syncs the value log and memtables to disk. In-memory stores have nothing to sync.
func (b *BadgerDB) Flush(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return flkv.ErrClosed
	}
	if b.inMemory {
		return ctx.Err()
	}
	return helpers.IgnoreContext(ctx, b.db.Sync)
}

// Close closes the BadgerDB instance and releases all resources.
func (b *BadgerDB) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

// Write applies the batch inside a single read-write transaction.
/*
The whole batch has to fit in one badger transaction: batches larger than
the transaction limits fail with badger.ErrTxnTooBig and nothing is written.
*/
func (b *BadgerDB) Write(ctx context.Context, batch *flkv.Batch, sync bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return flkv.ErrClosed
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return batch.Replay(&badgerWriter{txn: txn})
	})
	if err != nil {
		return err
	}
	if sync && !b.inMemory {
		return b.db.Sync()
	}
	return nil
}

func (w *badgerWriter) Put(key, value []byte) error {
	return w.txn.Set(key, value)
}

func (w *badgerWriter) Delete(key []byte) error {
	return w.txn.Delete(key)
}

func (b *BadgerDB) Scan(prefix []byte) flkv.Iterator {
	return b.newIterator(prefix, false)
}

func (b *BadgerDB) newIterator(prefix []byte, reverse bool) flkv.Iterator {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return flkv.NewErrIterator(flkv.ErrClosed)
	}
	txn := b.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Reverse = reverse
	return &badgerIterator{
		txn:      txn,
		iterator: txn.NewIterator(opts),
		prefix:   append([]byte{}, prefix...),
		reverse:  reverse,
	}
}

func (it *badgerIterator) Next() bool {
	if it.released {
		return false
	}
	if !it.started {
		it.started = true
		it.seekFirst()
	} else {
		it.iterator.Next()
	}
	it.valid = it.iterator.ValidForPrefix(it.prefix)
	return it.valid
}

// seekFirst positions the iterator on the first key of the prefix range in
// iteration order. A reverse seek lands on the greatest key <= target, so the
// exclusive upper bound itself has to be skipped when it exists.
func (it *badgerIterator) seekFirst() {
	if !it.reverse {
		it.iterator.Seek(it.prefix)
		return
	}
	upper := flkv.PrefixUpperBound(it.prefix)
	if upper == nil {
		it.iterator.Rewind()
		return
	}
	it.iterator.Seek(upper)
	if it.iterator.Valid() && bytes.Equal(it.iterator.Item().Key(), upper) {
		it.iterator.Next()
	}
}

func (it *badgerIterator) Key() []byte {
	if !it.valid {
		return nil
	}
	return it.iterator.Item().KeyCopy(nil) // safer, doesn't make changes to key
}

func (it *badgerIterator) Value() []byte {
	if !it.valid {
		return nil
	}
	data, err := it.iterator.Item().ValueCopy(nil)
	if err != nil {
		it.err = append(it.err, err)
		return nil
	}
	if data == nil {
		data = []byte{}
	}
	return data
}

func (it *badgerIterator) Release() {
	if it.released {
		return
	}
	it.released = true
	it.valid = false
	it.iterator.Close()
	it.txn.Discard()
}

func (it *badgerIterator) Error() error {
	if len(it.err) == 0 {
		return nil
	}
	return it.err[len(it.err)-1] // returns the most recent error
}

// special methods to use with an instance of badgerdb for some other operations
func NewIterator(b *BadgerDB) flkv.Iterator {
	return b.newIterator(nil, false)
}

func NewReverseIterator(b *BadgerDB) flkv.Iterator {
	return b.newIterator(nil, true)
}

func NewPrefixIterator(b *BadgerDB, prefix []byte) flkv.Iterator {
	return b.newIterator(prefix, false)
}

func NewReversePrefixIterator(b *BadgerDB, prefix []byte) flkv.Iterator {
	return b.newIterator(prefix, true)
}
