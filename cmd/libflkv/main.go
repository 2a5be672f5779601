// Command libflkv builds the flkv C library:
//
//	go build -buildmode=c-shared -o libflkv.so ./cmd/libflkv
//
// Store and batch handles are opaque uintptr_t values, 0 is the null handle.
// KvBuffer arguments are borrowed: their bytes are copied before the call
// returns and the caller keeps ownership. The KvBuffer returned by db_get is
// owned by the caller and must be released with buffer_free.
package main

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>

typedef struct KvBuffer {
  const unsigned char *data;
  uintptr_t length;
} KvBuffer;
*/
import "C"

import (
	"unsafe"
)

func main() {}

// bytesOf copies the contents of buf. A nil buf is rejected.
func bytesOf(buf *C.KvBuffer) ([]byte, bool) {
	if buf == nil {
		return nil, false
	}
	return copyBuffer(unsafe.Pointer(buf.data), uint64(buf.length))
}

// db_open opens the store "default" when name is NULL or not UTF-8.
//
//export db_open
func db_open(name *C.char, memory C.bool) C.uintptr_t {
	var goName *string
	if name != nil {
		s := C.GoString(name)
		goName = &s
	}
	return C.uintptr_t(registry.Open(storeName(goName), bool(memory)))
}

//export db_put
func db_put(db C.uintptr_t, key, value *C.KvBuffer) C.bool {
	k, ok := bytesOf(key)
	if !ok {
		return false
	}
	v, ok := bytesOf(value)
	if !ok {
		return false
	}
	return C.bool(registry.Put(uintptr(db), k, v))
}

// db_get returns NULL on failure. A missing key yields an empty buffer.
//
//export db_get
func db_get(db C.uintptr_t, key *C.KvBuffer) *C.KvBuffer {
	k, ok := bytesOf(key)
	if !ok {
		return nil
	}
	value, ok := registry.Get(uintptr(db), k)
	if !ok {
		return nil
	}
	out := (*C.KvBuffer)(C.malloc(C.size_t(unsafe.Sizeof(C.KvBuffer{}))))
	out.data = nil
	out.length = C.uintptr_t(len(value))
	if len(value) > 0 {
		out.data = (*C.uchar)(C.CBytes(value))
	}
	return out
}

//export db_delete
func db_delete(db C.uintptr_t, key *C.KvBuffer) C.bool {
	k, ok := bytesOf(key)
	if !ok {
		return false
	}
	return C.bool(registry.Delete(uintptr(db), k))
}

//export db_flush
func db_flush(db C.uintptr_t) C.bool {
	return C.bool(registry.Flush(uintptr(db)))
}

//export db_create_batch
func db_create_batch() C.uintptr_t {
	return C.uintptr_t(registry.CreateBatch())
}

//export batch_clear
func batch_clear(batch C.uintptr_t) C.bool {
	return C.bool(registry.BatchClear(uintptr(batch)))
}

//export batch_add_kv
func batch_add_kv(batch C.uintptr_t, key, value *C.KvBuffer) C.bool {
	k, ok := bytesOf(key)
	if !ok {
		return false
	}
	v, ok := bytesOf(value)
	if !ok {
		return false
	}
	return C.bool(registry.BatchAddKV(uintptr(batch), k, v))
}

// db_put_batch consumes batch even when it fails.
//
//export db_put_batch
func db_put_batch(db, batch C.uintptr_t, sync C.bool) C.bool {
	return C.bool(registry.PutBatch(uintptr(db), uintptr(batch), bool(sync)))
}

//export db_close
func db_close(db C.uintptr_t) {
	registry.Close(uintptr(db))
}

//export buffer_free
func buffer_free(buf *C.KvBuffer) {
	if buf == nil {
		return
	}
	C.free(unsafe.Pointer(buf.data))
	C.free(unsafe.Pointer(buf))
}

//export batch_free
func batch_free(batch C.uintptr_t) C.bool {
	return C.bool(registry.BatchFree(uintptr(batch)))
}
