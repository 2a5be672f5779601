package flkv

import "sync"

// IdealBatchSize is the amount of queued key and value bytes after which
// callers should apply a batch instead of growing it further.
const IdealBatchSize = 100 * 1024

type opKind uint8

const (
	opPut opKind = iota
	opDelete
)

type op struct {
	kind  opKind
	key   []byte
	value []byte
}

// Batch is an ordered collection of pending writes. It is not bound to a
// database: the same batch can be applied to any Core through Core.Write.
// Keys and values are copied when queued, so callers may reuse their buffers.
type Batch struct {
	mu   sync.Mutex
	ops  []op
	size int
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Put queues an insert or update of key.
func (b *Batch) Put(key, value []byte) error {
	if err := CheckKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, op{
		kind:  opPut,
		key:   append([]byte{}, key...),
		value: append([]byte{}, value...),
	})
	b.size += len(key) + len(value)
	return nil
}

// Delete queues the removal of key.
func (b *Batch) Delete(key []byte) error {
	if err := CheckKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, op{kind: opDelete, key: append([]byte{}, key...)})
	b.size += len(key)
	return nil
}

// Clear drops every queued operation. The batch can be reused afterwards.
func (b *Batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = b.ops[:0]
	b.size = 0
}

// Len returns the number of queued operations.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ops)
}

// Size returns the number of key and value bytes queued.
func (b *Batch) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Replay feeds every queued operation to w in insertion order and stops at
// the first error.
func (b *Batch) Replay(w BatchWriter) error {
	b.mu.Lock()
	ops := make([]op, len(b.ops))
	copy(ops, b.ops)
	b.mu.Unlock()

	for _, o := range ops {
		var err error
		switch o.kind {
		case opPut:
			err = w.Put(o.key, NormalizeValue(o.value))
		case opDelete:
			err = w.Delete(o.key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
