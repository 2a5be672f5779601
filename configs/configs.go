package configs

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/dgraph-io/badger/v4"
	"github.com/rawbytedev/flkv"
	"github.com/redis/go-redis/v9"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"go.etcd.io/bbolt"
)

type Engine string

const (
	EngineLevelDB Engine = "leveldb"
	EnginePebble  Engine = "pebble"
	EngineBadger  Engine = "badger"
	EngineBolt    Engine = "bolt"
	EngineRedis   Engine = "redis"

	DefaultEngine = EngineLevelDB
)

// Engines lists every engine store.Open knows about.
var Engines = []Engine{EngineLevelDB, EnginePebble, EngineBadger, EngineBolt, EngineRedis}

// ParseEngine accepts the engine names case-insensitively. Empty means DefaultEngine.
func ParseEngine(name string) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultEngine, nil
	}
	for _, e := range Engines {
		if string(e) == name {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", flkv.ErrUnknownEngine, name)
}

// StoreConfig selects an engine and carries its native options. Engine
// specific options take precedence over Default where both apply.
type StoreConfig struct {
	Engine         Engine
	BadgerConfigs  *badger.Options
	PebbleConfigs  *pebble.Options
	LevelDBConfigs *opt.Options
	BoltConfigs    *bbolt.Options
	RedisConfigs   *redis.Options
	Default        *DefaultOptions
}

type DefaultOptions struct {
	Dir       string // some databases may require to specify the storage directory seperatly
	InMemory  bool   // the memory flag of db_open
	RedisAddr string
}

// NewStoreConfig is the configuration behind db_open(name, memory).
func NewStoreConfig(engine Engine, dir string, inMemory bool) StoreConfig {
	return StoreConfig{
		Engine:  engine,
		Default: &DefaultOptions{Dir: dir, InMemory: inMemory},
	}
}

// Defaults never returns nil.
func (c StoreConfig) Defaults() DefaultOptions {
	if c.Default == nil {
		return DefaultOptions{}
	}
	return *c.Default
}
