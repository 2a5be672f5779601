// Package leveldb is the default engine. It keeps the on-disk format of
// LevelDB and supports a purely in-memory mode backed by goleveldb's memory
// storage.
//
// Single Put and Delete calls are appended to the journal without fsync, like
// LevelDB does by default. Durability is obtained with Flush or with a synced
// batch write.
package leveldb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rawbytedev/flkv"
	"github.com/rawbytedev/flkv/helpers"
	goleveldb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// flushRange is unbounded: goleveldb only writes the memtable out when it
// overlaps the compacted range.
var flushRange = util.Range{}

// numLevels is the level count goleveldb opens with by default.
const numLevels = 7

type LevelDB struct {
	db     *goleveldb.DB
	mu     sync.RWMutex
	closed bool
}

type levelWriter struct {
	batch *goleveldb.Batch
}

type levelIterator struct {
	iterator iterator.Iterator
	valid    bool
	released bool
	err      error
}

// NewLevelDB opens a LevelDB store in cfg.Dir, or in memory when cfg.InMemory is set.
func NewLevelDB(cfg Config) (flkv.Core, error) {
	var (
		db  *goleveldb.DB
		err error
	)
	if cfg.InMemory {
		db, err = goleveldb.Open(storage.NewMemStorage(), cfg.LevelDBConfigs)
	} else {
		db, err = goleveldb.OpenFile(cfg.Dir, cfg.LevelDBConfigs)
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %q: %w", cfg.Dir, err)
	}
	return &LevelDB{db: db}, nil
}

// Put inserts or updates a key-value pair in the database.
func (l *LevelDB) Put(ctx context.Context, key, value []byte) error {
	if err := flkv.CheckKey(key); err != nil {
		return err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return flkv.ErrClosed
	}
	return helpers.IgnoreContext(ctx, func() error {
		return l.db.Put(key, flkv.NormalizeValue(value), nil)
	})
}

// Get retrieves the value for a given key. Returns flkv.ErrNotFound if not found.
func (l *LevelDB) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := flkv.CheckKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, flkv.ErrClosed
	}
	// goleveldb already returns a copy
	value, err := l.db.Get(key, nil)
	if errors.Is(err, goleveldb.ErrNotFound) {
		return nil, flkv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Delete removes a key-value pair from the database.
func (l *LevelDB) Delete(ctx context.Context, key []byte) error {
	if err := flkv.CheckKey(key); err != nil {
		return err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return flkv.ErrClosed
	}
	return helpers.IgnoreContext(ctx, func() error {
		return l.db.Delete(key, nil)
	})
}

// Flush writes the memtable out to table files and compacts them.
func (l *LevelDB) Flush(ctx context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return flkv.ErrClosed
	}
	return helpers.IgnoreContext(ctx, func() error {
		return l.db.CompactRange(flushRange)
	})
}

// TableFiles returns the number of table files across all levels.
func (l *LevelDB) TableFiles() (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return 0, flkv.ErrClosed
	}
	total := 0
	for level := 0; level < numLevels; level++ {
		v, err := l.db.GetProperty(fmt.Sprintf("leveldb.num-files-at-level%d", level))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// Write applies the batch atomically; sync fsyncs the journal before returning.
func (l *LevelDB) Write(ctx context.Context, batch *flkv.Batch, sync bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return flkv.ErrClosed
	}
	lb := new(goleveldb.Batch)
	if err := batch.Replay(&levelWriter{batch: lb}); err != nil {
		return err
	}
	return l.db.Write(lb, &opt.WriteOptions{Sync: sync})
}

func (w *levelWriter) Put(key, value []byte) error {
	w.batch.Put(key, value)
	return nil
}

func (w *levelWriter) Delete(key []byte) error {
	w.batch.Delete(key)
	return nil
}

// Close closes the database and releases all resources.
func (l *LevelDB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}

func (l *LevelDB) Scan(prefix []byte) flkv.Iterator {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return flkv.NewErrIterator(flkv.ErrClosed)
	}
	var slice *util.Range
	if len(prefix) > 0 {
		slice = util.BytesPrefix(prefix)
	}
	return &levelIterator{iterator: l.db.NewIterator(slice, nil)}
}

func (it *levelIterator) Next() bool {
	if it.released {
		return false
	}
	it.valid = it.iterator.Next()
	return it.valid
}

// Key and Value copy: goleveldb reuses the buffers on Next.
func (it *levelIterator) Key() []byte {
	if !it.valid {
		return nil
	}
	return append([]byte{}, it.iterator.Key()...)
}

func (it *levelIterator) Value() []byte {
	if !it.valid {
		return nil
	}
	return append([]byte{}, it.iterator.Value()...)
}

func (it *levelIterator) Release() {
	if it.released {
		return
	}
	it.released = true
	it.valid = false
	it.err = it.iterator.Error()
	it.iterator.Release()
}

func (it *levelIterator) Error() error {
	if it.released {
		return it.err
	}
	return it.iterator.Error()
}
