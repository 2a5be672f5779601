package flkv

// PrefixUpperBound returns the smallest key greater than every key starting
// with prefix, or nil when no such key exists (empty prefix or all 0xff).
func PrefixUpperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] < 0xff {
			upper[i]++
			return upper[:i+1]
		}
	}
	return nil
}
