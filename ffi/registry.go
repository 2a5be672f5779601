// Package ffi implements the semantics of the C entry points over Go values.
// Stores and batches are addressed by opaque non-zero handles. Zero is the null
// handle and every operation on an unknown handle fails without side effects.
package ffi

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rawbytedev/flkv"
	"github.com/rawbytedev/flkv/configs"
	flog "github.com/rawbytedev/flkv/log"
	"github.com/rawbytedev/flkv/store"
)

// Symbols lists every symbol the shared library exports.
var Symbols = []string{
	"db_open",
	"db_put",
	"db_get",
	"db_delete",
	"db_flush",
	"db_create_batch",
	"batch_clear",
	"batch_add_kv",
	"db_put_batch",
	"db_close",
	"buffer_free",
	"batch_free",
}

type Registry struct {
	base    configs.StoreConfig
	stores  *xsync.MapOf[uintptr, flkv.Core]
	batches *xsync.MapOf[uintptr, *flkv.Batch]
	next    atomic.Uintptr
}

// NewRegistry returns a registry opening stores with the engine and engine
// options of base. The directory and memory flag come from each Open call.
func NewRegistry(base configs.StoreConfig) *Registry {
	return &Registry{
		base:    base,
		stores:  xsync.NewMapOf[uintptr, flkv.Core](),
		batches: xsync.NewMapOf[uintptr, *flkv.Batch](),
	}
}

func (r *Registry) handle() uintptr {
	return r.next.Add(1)
}

// Open opens the store called name and returns its handle, or 0 on failure.
func (r *Registry) Open(name string, memory bool) (h uintptr) {
	defer guard("db_open", func() { h = 0 })
	if name == "" && !memory {
		flog.FFI.Error().Msg("db_open: empty name for a persistent store")
		return 0
	}
	cfg := r.base
	def := cfg.Defaults()
	def.Dir, def.InMemory = name, memory
	cfg.Default = &def

	db, err := store.Open(context.Background(), cfg)
	if err != nil {
		flog.FFI.Error().Err(err).Str("name", name).Bool("memory", memory).Msg("db_open failed")
		return 0
	}
	h = r.handle()
	r.stores.Store(h, db)
	flog.FFI.Debug().Uint64("handle", uint64(h)).Str("name", name).Msg("db_open")
	return h
}

func (r *Registry) store(op string, h uintptr) (flkv.Core, bool) {
	db, ok := r.stores.Load(h)
	if !ok {
		flog.FFI.Warn().Str("op", op).Uint64("handle", uint64(h)).Err(flkv.ErrInvalidHandle).Msg("rejected")
	}
	return db, ok
}

func (r *Registry) batch(op string, h uintptr) (*flkv.Batch, bool) {
	b, ok := r.batches.Load(h)
	if !ok {
		flog.FFI.Warn().Str("op", op).Uint64("batch", uint64(h)).Err(flkv.ErrInvalidHandle).Msg("rejected")
	}
	return b, ok
}

// guard turns a panic of op into a failure result. Engines panic on
// invariant violations and a panic must not unwind into the C caller.
func guard(op string, fail func()) {
	if p := recover(); p != nil {
		flog.FFI.Error().Str("op", op).Interface("panic", p).Msg("recovered")
		fail()
	}
}

func failed(op string, err error) bool {
	if err != nil {
		flog.FFI.Error().Str("op", op).Err(err).Msg("operation failed")
		return false
	}
	return true
}

func (r *Registry) Put(h uintptr, key, value []byte) (ok bool) {
	defer guard("db_put", func() { ok = false })
	db, ok := r.store("db_put", h)
	if !ok {
		return false
	}
	return failed("db_put", db.Put(context.Background(), key, value))
}

// Get returns the value of key. A missing key is not a failure: it yields an
// empty value and ok set to true.
func (r *Registry) Get(h uintptr, key []byte) (value []byte, ok bool) {
	defer guard("db_get", func() { value, ok = nil, false })
	db, ok := r.store("db_get", h)
	if !ok {
		return nil, false
	}
	value, err := db.Get(context.Background(), key)
	if errors.Is(err, flkv.ErrNotFound) {
		return []byte{}, true
	}
	if !failed("db_get", err) {
		return nil, false
	}
	return value, true
}

func (r *Registry) Delete(h uintptr, key []byte) (ok bool) {
	defer guard("db_delete", func() { ok = false })
	db, ok := r.store("db_delete", h)
	if !ok {
		return false
	}
	return failed("db_delete", db.Delete(context.Background(), key))
}

func (r *Registry) Flush(h uintptr) (ok bool) {
	defer guard("db_flush", func() { ok = false })
	db, ok := r.store("db_flush", h)
	if !ok {
		return false
	}
	return failed("db_flush", db.Flush(context.Background()))
}

// CreateBatch allocates an empty batch. It never fails.
func (r *Registry) CreateBatch() uintptr {
	h := r.handle()
	r.batches.Store(h, flkv.NewBatch())
	return h
}

func (r *Registry) BatchClear(b uintptr) bool {
	batch, ok := r.batch("batch_clear", b)
	if !ok {
		return false
	}
	batch.Clear()
	return true
}

func (r *Registry) BatchAddKV(b uintptr, key, value []byte) bool {
	batch, ok := r.batch("batch_add_kv", b)
	if !ok {
		return false
	}
	return failed("batch_add_kv", batch.Put(key, value))
}

// BatchFree drops a batch that was never applied.
func (r *Registry) BatchFree(b uintptr) bool {
	_, ok := r.batches.LoadAndDelete(b)
	return ok
}

// PutBatch applies batch b to store h. b is consumed whatever the outcome.
func (r *Registry) PutBatch(h, b uintptr, sync bool) (ok bool) {
	defer guard("db_put_batch", func() { ok = false })
	batch, ok := r.batches.LoadAndDelete(b)
	if !ok {
		return failed("db_put_batch", flkv.ErrBatchConsumed)
	}
	db, ok := r.store("db_put_batch", h)
	if !ok {
		return false
	}
	return failed("db_put_batch", db.Write(context.Background(), batch, sync))
}

// Close closes the store and invalidates h. Unknown handles are ignored.
func (r *Registry) Close(h uintptr) {
	defer guard("db_close", func() {})
	db, ok := r.stores.LoadAndDelete(h)
	if !ok {
		return
	}
	if err := db.Close(); err != nil {
		flog.FFI.Error().Err(err).Uint64("handle", uint64(h)).Msg("db_close failed")
	}
}

// CloseAll closes every open store and drops every batch.
func (r *Registry) CloseAll() {
	r.stores.Range(func(h uintptr, _ flkv.Core) bool {
		r.Close(h)
		return true
	})
	r.batches.Clear()
}

// Stores reports how many stores are open.
func (r *Registry) Stores() int { return r.stores.Size() }

// Batches reports how many batches are allocated and not yet consumed.
func (r *Registry) Batches() int { return r.batches.Size() }
