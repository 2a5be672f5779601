package stats

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObserveCountsOpsAndErrors(t *testing.T) {
	s := New()
	start := time.Now()
	s.Observe("leveldb", OpPut, start, nil)
	s.Observe("leveldb", OpPut, start, errors.New("boom"))
	s.Observe("pebble", OpGet, start, nil)

	assert.EqualValues(t, 2, s.Ops("leveldb", OpPut))
	assert.EqualValues(t, 1, s.Errors("leveldb", OpPut))
	assert.EqualValues(t, 1, s.Ops("pebble", OpGet))
	assert.EqualValues(t, 0, s.Errors("pebble", OpGet))
}

func TestWritePrometheus(t *testing.T) {
	s := New()
	s.Observe("bolt", OpFlush, time.Now(), nil)
	s.AddBytes("bolt", OpPut, 42)

	var buf bytes.Buffer
	s.WritePrometheus(&buf)
	out := buf.String()
	assert.Contains(t, out, `flkv_ops_total{engine="bolt",op="flush"} 1`)
	assert.Contains(t, out, `flkv_bytes_total{engine="bolt",op="put"} 42`)
	assert.Contains(t, out, "flkv_op_duration_seconds_bucket")
}
