package pebbledb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/rawbytedev/flkv"
	"github.com/rawbytedev/flkv/helpers"
	flog "github.com/rawbytedev/flkv/log"
)

type PebbleDB struct {
	db     *pebble.DB
	mu     sync.RWMutex
	closed bool
}

type pebbleWriter struct {
	batch *pebble.Batch
}

type pebbleIterator struct {
	Iterator *pebble.Iterator
	started  bool
	valid    bool
	released bool
	err      []error
}

type pebbleReverseIterator struct {
	Iterator *pebble.Iterator
	started  bool
	valid    bool
	released bool
	err      []error
}

// NewPebbleDB initializes and returns a flkv.Core instance at the specified path(PebbleDB).
func NewPebbleDB(cfg Config) (flkv.Core, error) {
	var opts *pebble.Options
	if cfg.PebbleConfigs != nil {
		opts = cfg.PebbleConfigs.Clone()
	} else {
		opts = &pebble.Options{}
	}
	if opts.Logger == nil {
		opts.Logger = flog.NewEngineLogger("pebble")
	}
	if cfg.InMemory {
		opts.FS = vfs.NewMem()
	}
	db, err := pebble.Open(cfg.Dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble at %q: %w", cfg.Dir, err)
	}
	return &PebbleDB{db: db}, nil
}

// --- Basic CRUD operations ---

// Put inserts or updates a key-value pair in the database.
func (p *PebbleDB) Put(ctx context.Context, key []byte, value []byte) error {
	if err := flkv.CheckKey(key); err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return flkv.ErrClosed
	}
	return helpers.IgnoreContext(ctx, func() error {
		return p.db.Set(key, flkv.NormalizeValue(value), pebble.Sync)
	})
}

// Get retrieves the value for a given key. Returns flkv.ErrNotFound if not found.
func (p *PebbleDB) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := flkv.CheckKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, flkv.ErrClosed
	}
	val, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, flkv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	// val is only valid until closer is closed
	result := make([]byte, len(val))
	copy(result, val)
	return result, nil
}

// Delete removes a key-value pair from the database.
func (p *PebbleDB) Delete(ctx context.Context, key []byte) error {
	if err := flkv.CheckKey(key); err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return flkv.ErrClosed
	}
	return helpers.IgnoreContext(ctx, func() error {
		return p.db.Delete(key, pebble.Sync)
	})
}

// Flush writes the memtable out to an sstable.
func (p *PebbleDB) Flush(ctx context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return flkv.ErrClosed
	}
	return helpers.IgnoreContext(ctx, p.db.Flush)
}

// Close closes the database and releases all resources.
func (p *PebbleDB) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}

// -- Batch operations

// Write replays the batch into a pebble batch and commits it in one step.
func (p *PebbleDB) Write(ctx context.Context, batch *flkv.Batch, sync bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return flkv.ErrClosed
	}
	pb := p.db.NewBatch()
	defer pb.Close()
	if err := batch.Replay(&pebbleWriter{batch: pb}); err != nil {
		return err
	}
	opts := pebble.NoSync
	if sync {
		opts = pebble.Sync
	}
	return pb.Commit(opts)
}

func (w *pebbleWriter) Put(key []byte, value []byte) error {
	return w.batch.Set(key, value, nil)
}

func (w *pebbleWriter) Delete(key []byte) error {
	return w.batch.Delete(key, nil)
}

// -- Iterator operations

func (p *PebbleDB) Scan(prefix []byte) flkv.Iterator {
	it, err := p.newIter(prefix)
	if err != nil {
		return flkv.NewErrIterator(err)
	}
	return &pebbleIterator{Iterator: it}
}

func (p *PebbleDB) newIter(prefix []byte) (*pebble.Iterator, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, flkv.ErrClosed
	}
	opts := &pebble.IterOptions{UpperBound: flkv.PrefixUpperBound(prefix)}
	if len(prefix) > 0 {
		opts.LowerBound = prefix
	}
	return p.db.NewIter(opts)
}

func (it *pebbleIterator) Next() bool {
	if it.released {
		return false
	}
	// this comes from how iterators works in pebble
	if !it.started {
		it.valid = it.Iterator.First()
		it.started = true
	} else {
		it.valid = it.Iterator.Next()
	}
	return it.valid
}

func (it *pebbleIterator) Key() []byte {
	if !it.valid {
		return nil
	}
	return append([]byte{}, it.Iterator.Key()...)
}

func (it *pebbleIterator) Value() []byte {
	if !it.valid {
		return nil
	}
	data, err := it.Iterator.ValueAndErr()
	if err != nil {
		it.err = append(it.err, err)
		return nil
	}
	return append([]byte{}, data...)
}

func (it *pebbleIterator) Release() {
	if it.released {
		return
	}
	it.valid = false
	it.released = true
	if err := it.Iterator.Close(); err != nil {
		it.err = append(it.err, err)
	}
}

func (it *pebbleIterator) Error() error {
	if len(it.err) == 0 {
		if it.released {
			return nil
		}
		return it.Iterator.Error()
	}
	return it.err[len(it.err)-1] // returns the most recent error
}

// --- specials methods to use with an instance of pebbledb for some other operations

func NewIterator(p *PebbleDB) flkv.Iterator {
	return p.Scan(nil)
}

func NewPrefixIterator(p *PebbleDB, prefix []byte) flkv.Iterator {
	return p.Scan(prefix)
}

// --- Reverse Iterators ---

func NewReverseIterator(p *PebbleDB) flkv.Iterator {
	return NewReversePrefixIterator(p, nil)
}

func NewReversePrefixIterator(p *PebbleDB, prefix []byte) flkv.Iterator {
	it, err := p.newIter(prefix)
	if err != nil {
		return flkv.NewErrIterator(err)
	}
	return &pebbleReverseIterator{Iterator: it}
}

func (it *pebbleReverseIterator) Next() bool {
	if it.released {
		return false
	}
	if !it.started {
		it.valid = it.Iterator.Last()
		it.started = true
	} else {
		it.valid = it.Iterator.Prev()
	}
	return it.valid
}

func (it *pebbleReverseIterator) Key() []byte {
	if !it.valid {
		return nil
	}
	return append([]byte{}, it.Iterator.Key()...)
}

func (it *pebbleReverseIterator) Value() []byte {
	if !it.valid {
		return nil
	}
	data, err := it.Iterator.ValueAndErr()
	if err != nil {
		it.err = append(it.err, err)
		return nil
	}
	return append([]byte{}, data...)
}

func (it *pebbleReverseIterator) Release() {
	if it.released {
		return
	}
	it.valid = false
	it.released = true
	if err := it.Iterator.Close(); err != nil {
		it.err = append(it.err, err)
	}
}

func (it *pebbleReverseIterator) Error() error {
	if len(it.err) == 0 {
		if it.released {
			return nil
		}
		return it.Iterator.Error()
	}
	return it.err[len(it.err)-1]
}
