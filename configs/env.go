package configs

import (
	"strings"

	"github.com/joho/godotenv"
	flog "github.com/rawbytedev/flkv/log"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable, e.g. FLKV_ENGINE.
const EnvPrefix = "flkv"

// Keys shared by the CLI flags and the environment.
const (
	KeyEngine    = "engine"
	KeyDir       = "dir"
	KeyMemory    = "memory"
	KeySync      = "sync"
	KeyRedisAddr = "redis-addr"
	KeyLogLevel  = "log-level"
	KeyLogFormat = "log-format"
)

// InitEnv loads .env files and makes v read FLKV_* variables.
func InitEnv(v *viper.Viper) {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv() // read in environment variables that match

	v.SetDefault(KeyEngine, string(DefaultEngine))
	v.SetDefault(KeyDir, "data")
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "console")
}

// FromViper builds a StoreConfig from the values bound in v.
func FromViper(v *viper.Viper) (StoreConfig, error) {
	engine, err := ParseEngine(v.GetString(KeyEngine))
	if err != nil {
		return StoreConfig{}, err
	}
	cfg := NewStoreConfig(engine, v.GetString(KeyDir), v.GetBool(KeyMemory))
	cfg.Default.RedisAddr = v.GetString(KeyRedisAddr)
	return cfg, nil
}

// LogOptionsFromViper reads the log level and format.
func LogOptionsFromViper(v *viper.Viper) (flog.Options, error) {
	level, err := flog.ParseLogLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return flog.Options{}, err
	}
	typ, err := flog.ParseLoggerType(v.GetString(KeyLogFormat))
	if err != nil {
		return flog.Options{}, err
	}
	return flog.Options{LogLevel: level, Type: typ}, nil
}
