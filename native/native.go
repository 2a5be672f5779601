//go:build darwin || linux

// Package native loads the flkv C library with purego and drives it without
// cgo. Load checks that every exported symbol is present before binding.
package native

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/rawbytedev/flkv"
)

var ErrCallFailed = errors.New("native: call failed")

// kvBuffer mirrors the C KvBuffer.
type kvBuffer struct {
	data   uintptr
	length uintptr
}

type functions struct {
	dbOpen        func(name string, memory bool) uintptr
	dbPut         func(db uintptr, key, value *kvBuffer) bool
	dbGet         func(db uintptr, key *kvBuffer) uintptr
	dbDelete      func(db uintptr, key *kvBuffer) bool
	dbFlush       func(db uintptr) bool
	dbCreateBatch func() uintptr
	batchClear    func(batch uintptr) bool
	batchAddKV    func(batch uintptr, key, value *kvBuffer) bool
	dbPutBatch    func(db, batch uintptr, sync bool) bool
	dbClose       func(db uintptr)
	bufferFree    func(buf uintptr)
	batchFree     func(batch uintptr) bool
}

func (f *functions) table() []struct {
	name string
	fptr any
} {
	return []struct {
		name string
		fptr any
	}{
		{"db_open", &f.dbOpen},
		{"db_put", &f.dbPut},
		{"db_get", &f.dbGet},
		{"db_delete", &f.dbDelete},
		{"db_flush", &f.dbFlush},
		{"db_create_batch", &f.dbCreateBatch},
		{"batch_clear", &f.batchClear},
		{"batch_add_kv", &f.batchAddKV},
		{"db_put_batch", &f.dbPutBatch},
		{"db_close", &f.dbClose},
		{"buffer_free", &f.bufferFree},
		{"batch_free", &f.batchFree},
	}
}

// Symbols returns the names Load resolves.
func Symbols() []string {
	var f functions
	var names []string
	for _, fn := range f.table() {
		names = append(names, fn.name)
	}
	return names
}

type Library struct {
	path   string
	handle uintptr
	fns    functions
}

// Load opens the shared library at path.
func Load(path string) (*Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	lib := &Library{path: path, handle: handle}
	for _, fn := range lib.fns.table() {
		sym, err := purego.Dlsym(handle, fn.name)
		if err != nil {
			purego.Dlclose(handle) //nolint:errcheck
			return nil, fmt.Errorf("load %s: missing symbol %s: %w", path, fn.name, err)
		}
		purego.RegisterFunc(fn.fptr, sym)
	}
	return lib, nil
}

func (l *Library) Path() string { return l.path }

// Close unloads the library. Stores still open through it must be closed first.
func (l *Library) Close() error {
	return purego.Dlclose(l.handle)
}

// buffer fills a kvBuffer with b. The caller must keep pinner alive until the
// call using the buffer returns.
func buffer(pinner *runtime.Pinner, b []byte) *kvBuffer {
	buf := &kvBuffer{length: uintptr(len(b))}
	if len(b) > 0 {
		pinner.Pin(&b[0])
		buf.data = uintptr(unsafe.Pointer(&b[0]))
	}
	pinner.Pin(buf)
	return buf
}

type DB struct {
	lib    *Library
	handle uintptr
	closed atomic.Bool
}

// Open calls db_open. memory selects a store that keeps nothing on disk.
func (l *Library) Open(name string, memory bool) (*DB, error) {
	h := l.fns.dbOpen(name, memory)
	if h == 0 {
		return nil, fmt.Errorf("%w: db_open %q", ErrCallFailed, name)
	}
	return &DB{lib: l, handle: h}, nil
}

func (d *DB) check(op string, ok bool) error {
	if !ok {
		return fmt.Errorf("%w: %s", ErrCallFailed, op)
	}
	return nil
}

func (d *DB) Put(key, value []byte) error {
	if d.closed.Load() {
		return flkv.ErrClosed
	}
	var pinner runtime.Pinner
	defer pinner.Unpin()
	return d.check("db_put", d.lib.fns.dbPut(d.handle, buffer(&pinner, key), buffer(&pinner, value)))
}

// Get returns an empty value for a missing key, like db_get.
func (d *DB) Get(key []byte) ([]byte, error) {
	if d.closed.Load() {
		return nil, flkv.ErrClosed
	}
	var pinner runtime.Pinner
	defer pinner.Unpin()
	ptr := d.lib.fns.dbGet(d.handle, buffer(&pinner, key))
	if ptr == 0 {
		return nil, d.check("db_get", false)
	}
	defer d.lib.fns.bufferFree(ptr)

	buf := (*kvBuffer)(unsafe.Pointer(ptr)) //nolint:govet
	value := make([]byte, buf.length)
	if buf.length > 0 {
		copy(value, unsafe.Slice((*byte)(unsafe.Pointer(buf.data)), buf.length)) //nolint:govet
	}
	return value, nil
}

func (d *DB) Delete(key []byte) error {
	if d.closed.Load() {
		return flkv.ErrClosed
	}
	var pinner runtime.Pinner
	defer pinner.Unpin()
	return d.check("db_delete", d.lib.fns.dbDelete(d.handle, buffer(&pinner, key)))
}

func (d *DB) Flush() error {
	if d.closed.Load() {
		return flkv.ErrClosed
	}
	return d.check("db_flush", d.lib.fns.dbFlush(d.handle))
}

// Write applies batch and consumes it, whether or not it succeeds.
func (d *DB) Write(batch *Batch, sync bool) error {
	if d.closed.Load() {
		return flkv.ErrClosed
	}
	h := batch.handle.Swap(0)
	if h == 0 {
		return flkv.ErrBatchConsumed
	}
	return d.check("db_put_batch", d.lib.fns.dbPutBatch(d.handle, h, sync))
}

// Close is idempotent.
func (d *DB) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	d.lib.fns.dbClose(d.handle)
	return nil
}

type Batch struct {
	lib    *Library
	handle atomic.Uintptr
}

func (l *Library) NewBatch() (*Batch, error) {
	h := l.fns.dbCreateBatch()
	if h == 0 {
		return nil, fmt.Errorf("%w: db_create_batch", ErrCallFailed)
	}
	b := &Batch{lib: l}
	b.handle.Store(h)
	return b, nil
}

func (b *Batch) Put(key, value []byte) error {
	h := b.handle.Load()
	if h == 0 {
		return flkv.ErrBatchConsumed
	}
	var pinner runtime.Pinner
	defer pinner.Unpin()
	if !b.lib.fns.batchAddKV(h, buffer(&pinner, key), buffer(&pinner, value)) {
		return fmt.Errorf("%w: batch_add_kv", ErrCallFailed)
	}
	return nil
}

func (b *Batch) Clear() error {
	h := b.handle.Load()
	if h == 0 {
		return flkv.ErrBatchConsumed
	}
	if !b.lib.fns.batchClear(h) {
		return fmt.Errorf("%w: batch_clear", ErrCallFailed)
	}
	return nil
}

// Free releases a batch that was never written. Freeing twice is a no-op.
func (b *Batch) Free() {
	if h := b.handle.Swap(0); h != 0 {
		b.lib.fns.batchFree(h)
	}
}
