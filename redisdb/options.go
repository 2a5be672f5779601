package redisdb

import "github.com/redis/go-redis/v9"

// Redis configurable options.
type Config struct {
	// Redis server address, ignored when RedisConfigs is set.
	Address string
	// Namespace is prepended to every key as "<len(namespace)>:<namespace>:".
	Namespace    string
	RedisConfigs *redis.Options
}

// DefaultOptions.
func DefaultOptions(namespace string) *Config {
	return &Config{Address: "localhost:6379", Namespace: namespace}
}
