package store

import (
	"context"
	"errors"
	"time"

	"github.com/rawbytedev/flkv"
	flog "github.com/rawbytedev/flkv/log"
	"github.com/rawbytedev/flkv/stats"
	"github.com/rs/zerolog"
)

type instrumented struct {
	db     flkv.Core
	engine string
	stats  *stats.Set
	log    zerolog.Logger
}

// Instrument records every call on db in set under the engine label.
func Instrument(db flkv.Core, engine string, set *stats.Set) flkv.Core {
	return &instrumented{
		db:     db,
		engine: engine,
		stats:  set,
		log:    flog.Store.With().Str("engine", engine).Logger(),
	}
}

// done records op. A missing key is an answer, not a failure.
func (s *instrumented) done(op string, start time.Time, err error) {
	if errors.Is(err, flkv.ErrNotFound) {
		err = nil
	}
	s.stats.Observe(s.engine, op, start, err)
	if err != nil {
		s.log.Debug().Err(err).Str("op", op).Dur("took", time.Since(start)).Msg("operation failed")
	}
}

func (s *instrumented) Put(ctx context.Context, key, value []byte) error {
	start := time.Now()
	err := s.db.Put(ctx, key, value)
	s.done(stats.OpPut, start, err)
	if err == nil {
		s.stats.AddBytes(s.engine, stats.OpPut, len(key)+len(value))
	}
	return err
}

func (s *instrumented) Get(ctx context.Context, key []byte) ([]byte, error) {
	start := time.Now()
	value, err := s.db.Get(ctx, key)
	s.done(stats.OpGet, start, err)
	if err == nil {
		s.stats.AddBytes(s.engine, stats.OpGet, len(value))
	}
	return value, err
}

func (s *instrumented) Delete(ctx context.Context, key []byte) error {
	start := time.Now()
	err := s.db.Delete(ctx, key)
	s.done(stats.OpDelete, start, err)
	return err
}

func (s *instrumented) Flush(ctx context.Context) error {
	start := time.Now()
	err := s.db.Flush(ctx)
	s.done(stats.OpFlush, start, err)
	return err
}

func (s *instrumented) Write(ctx context.Context, batch *flkv.Batch, sync bool) error {
	start := time.Now()
	err := s.db.Write(ctx, batch, sync)
	s.done(stats.OpWrite, start, err)
	if err == nil {
		s.stats.AddBytes(s.engine, stats.OpWrite, batch.Size())
	}
	return err
}

func (s *instrumented) Scan(prefix []byte) flkv.Iterator {
	start := time.Now()
	it := s.db.Scan(prefix)
	s.done(stats.OpScan, start, it.Error())
	return it
}

func (s *instrumented) Close() error {
	start := time.Now()
	err := s.db.Close()
	s.done(stats.OpClose, start, err)
	s.log.Debug().Msg("store closed")
	return err
}
