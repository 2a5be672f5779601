// Package stats counts store operations with VictoriaMetrics metrics.
package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

const (
	OpOpen   = "open"
	OpPut    = "put"
	OpGet    = "get"
	OpDelete = "delete"
	OpFlush  = "flush"
	OpWrite  = "write"
	OpScan   = "scan"
	OpClose  = "close"
)

// Set groups the metrics of every store opened by the process.
type Set struct {
	set *metrics.Set
}

var Default = New()

func New() *Set {
	return &Set{set: metrics.NewSet()}
}

func (s *Set) counter(name, engine, op string) *metrics.Counter {
	return s.set.GetOrCreateCounter(fmt.Sprintf(`%s{engine=%q,op=%q}`, name, engine, op))
}

// Observe records one call of op on engine that started at start.
func (s *Set) Observe(engine, op string, start time.Time, err error) {
	s.counter("flkv_ops_total", engine, op).Inc()
	if err != nil {
		s.counter("flkv_errors_total", engine, op).Inc()
	}
	s.set.GetOrCreateHistogram(fmt.Sprintf(`flkv_op_duration_seconds{engine=%q,op=%q}`, engine, op)).UpdateDuration(start)
}

// AddBytes counts payload bytes moved by op.
func (s *Set) AddBytes(engine, op string, n int) {
	s.counter("flkv_bytes_total", engine, op).Add(n)
}

// Ops returns how many times op ran on engine.
func (s *Set) Ops(engine, op string) uint64 {
	return s.counter("flkv_ops_total", engine, op).Get()
}

// Errors returns how many calls of op failed on engine.
func (s *Set) Errors(engine, op string) uint64 {
	return s.counter("flkv_errors_total", engine, op).Get()
}

// WritePrometheus writes every metric in Prometheus text format.
func (s *Set) WritePrometheus(w io.Writer) {
	s.set.WritePrometheus(w)
}
