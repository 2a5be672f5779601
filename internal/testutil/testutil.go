// Package testutil holds helpers shared by the engine and store tests.
package testutil

import (
	"crypto/rand"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rawbytedev/flkv"
	"github.com/rawbytedev/flkv/configs"
	"github.com/rawbytedev/flkv/store"
	"github.com/stretchr/testify/require"
)

// RandomBytes returns n random bytes.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

// SetupDB opens a store of the named engine in a fresh temporary directory.
// Accepts the short engine names ("pebble") and the package names ("pebbledb").
func SetupDB(t testing.TB, name string) flkv.Core {
	t.Helper()
	engine, err := configs.ParseEngine(engineAlias(name))
	require.NoError(t, err)
	cfg := configs.NewStoreConfig(engine, t.TempDir(), false)
	if engine == configs.EngineRedis {
		cfg.Default.RedisAddr = RedisAddr(t)
	}
	db, err := store.Open(t.Context(), cfg)
	require.NoError(t, err, "open %s", name)
	return db
}

// RedisAddr returns FLKV_REDIS_ADDR when set, otherwise the address of an
// in-process server stopped when the test ends.
func RedisAddr(t testing.TB) string {
	t.Helper()
	if addr := os.Getenv("FLKV_REDIS_ADDR"); addr != "" {
		return addr
	}
	return miniredis.RunT(t).Addr()
}

func engineAlias(name string) string {
	switch name {
	case "pebbledb":
		return string(configs.EnginePebble)
	case "badgerdb":
		return string(configs.EngineBadger)
	case "boltdb":
		return string(configs.EngineBolt)
	case "redisdb":
		return string(configs.EngineRedis)
	}
	return name
}
