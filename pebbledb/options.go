package pebbledb

import "github.com/cockroachdb/pebble"

// specific pebbledb options
type Config struct {
	Dir           string
	InMemory      bool // keep every file in a memory filesystem, nothing survives Close
	PebbleConfigs *pebble.Options
}

func DefaultOptions(Dir string) *Config {
	return &Config{Dir: Dir}
}
