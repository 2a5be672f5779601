package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rawbytedev/flkv"
	flog "github.com/rawbytedev/flkv/log"
	"github.com/rawbytedev/flkv/stats"
	"github.com/spf13/cobra"
)

const perfKeyPrefix = "__perf"

type perfConfig struct {
	threads   int
	keys      int
	valueSize int
	batchSize int
	skip      []string
	metrics   bool
}

func (a *app) perfCmd() *cobra.Command {
	conf := perfConfig{}
	var skip string
	cmd := &cobra.Command{
		Use:   "perf",
		Short: "Performance testing tool for flkv stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf.skip = strings.Split(skip, ",")
			return a.runPerf(cmd, conf)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&skip, "skip", "", WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	flags.IntVar(&conf.threads, "threads", 10, WrapString("Number of goroutines to use for the benchmark"))
	flags.IntVar(&conf.keys, "keys", 100, WrapString("How many different keys to use for the tests"))
	flags.IntVar(&conf.valueSize, "value-size", 128, WrapString("Size of the written values in bytes"))
	flags.IntVar(&conf.batchSize, "batch-size", 100, WrapString("Operations per batch in the batch test"))
	flags.BoolVar(&conf.metrics, "metrics", false, WrapString("Print the collected metrics in Prometheus format"))
	return cmd
}

func (a *app) runPerf(cmd *cobra.Command, conf perfConfig) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	if conf.keys <= 0 || conf.threads <= 0 || conf.batchSize <= 0 {
		return fmt.Errorf("threads, keys and batch-size must be positive")
	}
	fmt.Fprintf(out, "Threads: %d, keys: %d, value size: %d bytes\n\n", conf.threads, conf.keys, conf.valueSize)

	keys := make([][]byte, conf.keys)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("%s-%d", perfKeyPrefix, i))
	}
	value := make([]byte, conf.valueSize)
	defer func() {
		for _, k := range keys {
			if err := a.db.Delete(ctx, k); err != nil {
				flog.CLI.Warn().Err(err).Msg("perf cleanup")
			}
		}
	}()

	benchmarks := []struct {
		name string
		fn   func(i int) error
	}{
		{"put", func(i int) error {
			return a.db.Put(ctx, keys[i%len(keys)], value)
		}},
		{"get", func(i int) error {
			_, err := a.db.Get(ctx, keys[i%len(keys)])
			if errors.Is(err, flkv.ErrNotFound) {
				return nil
			}
			return err
		}},
		{"batch", func(i int) error {
			batch := flkv.NewBatch()
			for j := 0; j < conf.batchSize; j++ {
				if err := batch.Put(keys[(i+j)%len(keys)], value); err != nil {
					return err
				}
			}
			return a.db.Write(ctx, batch, false)
		}},
	}

	for _, bench := range benchmarks {
		if slices.Contains(conf.skip, bench.name) {
			continue
		}
		var failures atomic.Int64
		result := testing.Benchmark(func(b *testing.B) {
			b.SetParallelism(conf.threads)
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for i := 0; pb.Next(); i++ {
					if err := bench.fn(i); err != nil {
						failures.Add(1)
						flog.CLI.Debug().Err(err).Str("bench", bench.name).Msg("operation failed")
					}
				}
			})
		})
		printResult(out, bench.name, result, failures.Load())
	}

	if conf.metrics {
		fmt.Fprintln(out)
		stats.Default.WritePrometheus(out)
	}
	return nil
}

func printResult(out io.Writer, name string, r testing.BenchmarkResult, failures int64) {
	opsPerSec := 0.0
	if r.T > 0 {
		opsPerSec = float64(r.N) / r.T.Seconds()
	}
	fmt.Fprintf(out, "%-8s %10d ops %12s/op %12.0f ops/s %6d failed\n",
		name, r.N, time.Duration(r.NsPerOp()), opsPerSec, failures)
}
