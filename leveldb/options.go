package leveldb

import "github.com/syndtr/goleveldb/leveldb/opt"

// specific leveldb options
type Config struct {
	Dir            string
	InMemory       bool // back the store with storage.NewMemStorage, Dir is ignored
	LevelDBConfigs *opt.Options
}

func DefaultOptions(Dir string) *Config {
	return &Config{Dir: Dir}
}
