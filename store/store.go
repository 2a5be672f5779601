// Package store opens the engine named by a configs.StoreConfig.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rawbytedev/flkv"
	"github.com/rawbytedev/flkv/badgerdb"
	"github.com/rawbytedev/flkv/boltdb"
	"github.com/rawbytedev/flkv/configs"
	"github.com/rawbytedev/flkv/leveldb"
	flog "github.com/rawbytedev/flkv/log"
	"github.com/rawbytedev/flkv/pebbledb"
	"github.com/rawbytedev/flkv/redisdb"
	"github.com/rawbytedev/flkv/stats"
)

// Open opens the configured engine and wraps it with metrics and debug logs.
func Open(ctx context.Context, cfg configs.StoreConfig) (flkv.Core, error) {
	start := time.Now()
	engine := cfg.Engine
	if engine == "" {
		engine = configs.DefaultEngine
	}
	db, err := openEngine(ctx, engine, cfg)
	stats.Default.Observe(string(engine), stats.OpOpen, start, err)
	if err != nil {
		flog.Store.Error().Err(err).Str("engine", string(engine)).Msg("open failed")
		return nil, err
	}
	flog.Store.Debug().Str("engine", string(engine)).Str("dir", cfg.Defaults().Dir).
		Bool("memory", cfg.Defaults().InMemory).Msg("store opened")
	return Instrument(db, string(engine), stats.Default), nil
}

func openEngine(ctx context.Context, engine configs.Engine, cfg configs.StoreConfig) (flkv.Core, error) {
	def := cfg.Defaults()
	switch engine {
	case configs.EngineLevelDB:
		return leveldb.NewLevelDB(leveldb.Config{Dir: def.Dir, InMemory: def.InMemory, LevelDBConfigs: cfg.LevelDBConfigs})
	case configs.EnginePebble:
		return pebbledb.NewPebbleDB(pebbledb.Config{Dir: def.Dir, InMemory: def.InMemory, PebbleConfigs: cfg.PebbleConfigs})
	case configs.EngineBadger:
		return badgerdb.NewBadgerDB(badgerdb.Config{Dir: def.Dir, InMemory: def.InMemory, BadgerConfigs: cfg.BadgerConfigs})
	case configs.EngineBolt:
		return boltdb.NewBoltDB(boltdb.Config{Dir: def.Dir, InMemory: def.InMemory, Bucket: boltdb.DefaultBucket, BoltConfigs: cfg.BoltConfigs})
	case configs.EngineRedis:
		rcfg := redisdb.Config{Address: def.RedisAddr, Namespace: namespace(def.Dir), RedisConfigs: cfg.RedisConfigs}
		return redisdb.NewRedisDB(ctx, rcfg)
	default:
		return nil, fmt.Errorf("%w: %q", flkv.ErrUnknownEngine, engine)
	}
}

// namespace derives the redis key namespace from the store name.
func namespace(dir string) string {
	if dir == "" {
		return "flkv"
	}
	return filepath.Clean(dir)
}
