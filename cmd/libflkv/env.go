package main

import (
	"github.com/rawbytedev/flkv/configs"
	"github.com/rawbytedev/flkv/ffi"
	flog "github.com/rawbytedev/flkv/log"
	"github.com/spf13/viper"
)

var registry = newRegistry()

// newRegistry reads FLKV_ENGINE, FLKV_REDIS_ADDR, FLKV_LOG_LEVEL and
// FLKV_LOG_FORMAT. The host decides the directory and memory flag per db_open.
func newRegistry() *ffi.Registry {
	v := viper.New()
	configs.InitEnv(v)

	if opts, err := configs.LogOptionsFromViper(v); err != nil {
		flog.FFI.Warn().Err(err).Msg("invalid log settings, keeping defaults")
	} else {
		flog.Init(opts)
	}

	cfg, err := configs.FromViper(v)
	if err != nil {
		flog.FFI.Error().Err(err).Str("fallback", string(configs.DefaultEngine)).Msg("invalid engine")
		cfg = configs.StoreConfig{Engine: configs.DefaultEngine, Default: &configs.DefaultOptions{RedisAddr: v.GetString(configs.KeyRedisAddr)}}
	}
	return ffi.NewRegistry(cfg)
}
