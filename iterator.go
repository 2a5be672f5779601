package flkv

// NewErrIterator returns an iterator that yields nothing and reports err.
func NewErrIterator(err error) Iterator {
	return &errIterator{err: err}
}

type errIterator struct {
	err error
}

func (it *errIterator) Next() bool    { return false }
func (it *errIterator) Key() []byte   { return nil }
func (it *errIterator) Value() []byte { return nil }
func (it *errIterator) Release()      {}
func (it *errIterator) Error() error  { return it.err }

// NewSliceIterator iterates over already materialized pairs. keys and values
// must have the same length and keys must already be sorted.
func NewSliceIterator(keys, values [][]byte) Iterator {
	return &sliceIterator{keys: keys, values: values, pos: -1}
}

type sliceIterator struct {
	keys   [][]byte
	values [][]byte
	pos    int
}

func (it *sliceIterator) Next() bool {
	if it.pos+1 >= len(it.keys) {
		it.pos = len(it.keys)
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator) valid() bool {
	return it.pos >= 0 && it.pos < len(it.keys)
}

func (it *sliceIterator) Key() []byte {
	if !it.valid() {
		return nil
	}
	return it.keys[it.pos]
}

func (it *sliceIterator) Value() []byte {
	if !it.valid() {
		return nil
	}
	return it.values[it.pos]
}

func (it *sliceIterator) Release() {
	it.keys, it.values = nil, nil
	it.pos = 0
}

func (it *sliceIterator) Error() error { return nil }
