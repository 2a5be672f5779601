package main

import (
	"bytes"
	"math"
	"unicode/utf8"
	"unsafe"
)

// defaultName is opened when db_open gets a NULL or non UTF-8 name.
const defaultName = "default"

// maxBufferLen bounds a KvBuffer length accepted from the host.
const maxBufferLen = math.MaxInt32

// copyBuffer copies length bytes starting at data. A zero length is an empty
// value whatever data is.
func copyBuffer(data unsafe.Pointer, length uint64) ([]byte, bool) {
	if length == 0 {
		return []byte{}, true
	}
	if data == nil || length > maxBufferLen {
		return nil, false
	}
	return bytes.Clone(unsafe.Slice((*byte)(data), int(length))), true
}

// storeName maps the db_open name argument, nil when the pointer was NULL.
func storeName(name *string) string {
	if name == nil || !utf8.ValidString(*name) {
		return defaultName
	}
	return *name
}
