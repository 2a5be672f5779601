// Package redisdb keeps a store inside a Redis server. Every store opened with
// the same namespace shares the same keys. The memory flag has no meaning here:
// persistence is whatever the server is configured for.
package redisdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rawbytedev/flkv"
)

const (
	scanCount = 512
	mgetChunk = 256
)

type RedisDB struct {
	client    *redis.Client
	namespace string
	mu        sync.RWMutex
	closed    bool
}

type redisWriter struct {
	ctx  context.Context
	pipe redis.Pipeliner
	db   *RedisDB
}

// NewRedisDB connects to the server and checks it answers.
func NewRedisDB(ctx context.Context, cfg Config) (flkv.Core, error) {
	opts := &redis.Options{Addr: cfg.Address}
	if cfg.RedisConfigs != nil {
		copied := *cfg.RedisConfigs
		opts = &copied
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis at %s: %w", opts.Addr, err)
	}
	return &RedisDB{client: client, namespace: keyPrefix(cfg.Namespace)}, nil
}

// keyPrefix is length-prefixed so that no namespace is a prefix of another:
// "a" and "a:b" become "1:a:" and "3:a:b:".
func keyPrefix(namespace string) string {
	return fmt.Sprintf("%d:%s:", len(namespace), namespace)
}

func (r *RedisDB) key(key []byte) string {
	return r.namespace + string(key)
}

// Put inserts or updates a key-value pair in the database.
func (r *RedisDB) Put(ctx context.Context, key, value []byte) error {
	if err := flkv.CheckKey(key); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return flkv.ErrClosed
	}
	return r.client.Set(ctx, r.key(key), flkv.NormalizeValue(value), 0).Err()
}

// Get retrieves the value for a given key. Returns flkv.ErrNotFound if not found.
func (r *RedisDB) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := flkv.CheckKey(key); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, flkv.ErrClosed
	}
	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, flkv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Delete removes a key-value pair from the database.
func (r *RedisDB) Delete(ctx context.Context, key []byte) error {
	if err := flkv.CheckKey(key); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return flkv.ErrClosed
	}
	return r.client.Del(ctx, r.key(key)).Err()
}

// Flush only checks the server answers, writes are acknowledged by the server
// once applied and durability is owned by its persistence settings.
func (r *RedisDB) Flush(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return flkv.ErrClosed
	}
	return r.client.Ping(ctx).Err()
}

// Write sends the batch as one MULTI/EXEC transaction.
func (r *RedisDB) Write(ctx context.Context, batch *flkv.Batch, sync bool) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return flkv.ErrClosed
	}
	if batch.Len() == 0 {
		return ctx.Err()
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return batch.Replay(&redisWriter{ctx: ctx, pipe: pipe, db: r})
	})
	return err
}

func (w *redisWriter) Put(key, value []byte) error {
	return w.pipe.Set(w.ctx, w.db.key(key), value, 0).Err()
}

func (w *redisWriter) Delete(key []byte) error {
	return w.pipe.Del(w.ctx, w.db.key(key)).Err()
}

// Scan snapshots the matching keys with SCAN, sorts them, and loads the values
// with MGET. Keys deleted in between are skipped.
func (r *RedisDB) Scan(prefix []byte) flkv.Iterator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return flkv.NewErrIterator(flkv.ErrClosed)
	}
	ctx := context.Background()
	pattern := escapeGlob(r.key(prefix)) + "*"

	var names []string
	iter := r.client.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		names = append(names, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return flkv.NewErrIterator(err)
	}
	// SCAN may return a key more than once
	sort.Strings(names)
	names = dedupe(names)

	keys := make([][]byte, 0, len(names))
	values := make([][]byte, 0, len(names))
	for start := 0; start < len(names); start += mgetChunk {
		end := min(start+mgetChunk, len(names))
		res, err := r.client.MGet(ctx, names[start:end]...).Result()
		if err != nil {
			return flkv.NewErrIterator(err)
		}
		for i, v := range res {
			s, ok := v.(string)
			if !ok {
				continue
			}
			keys = append(keys, []byte(strings.TrimPrefix(names[start+i], r.namespace)))
			values = append(values, []byte(s))
		}
	}
	return flkv.NewSliceIterator(keys, values)
}

// Close closes the client connection pool.
func (r *RedisDB) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.client.Close()
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for _, s := range sorted {
		if len(out) == 0 || s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

// escapeGlob quotes the characters SCAN MATCH treats as patterns.
func escapeGlob(s string) string {
	var sb strings.Builder
	for _, c := range []byte(s) {
		switch c {
		case '*', '?', '[', ']', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
