package flkv

import "errors"

var (
	ErrNotFound      = errors.New("flkv: key not found")
	ErrClosed        = errors.New("flkv: database is closed")
	ErrEmptyKey      = errors.New("flkv: key is empty")
	ErrInvalidHandle = errors.New("flkv: invalid handle")
	ErrBatchConsumed = errors.New("flkv: batch already applied")
	ErrUnknownEngine = errors.New("flkv: unknown engine")
)

// CheckKey rejects keys no engine can store.
func CheckKey(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return nil
}

// NormalizeValue maps a nil value to an empty one so that every engine stores
// and returns the same thing.
func NormalizeValue(value []byte) []byte {
	if value == nil {
		return []byte{}
	}
	return value
}
