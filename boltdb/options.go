package boltdb

import "go.etcd.io/bbolt"

const (
	DefaultBucket   = "flkv"
	DefaultFileName = "flkv.bolt"
)

// specific boltdb options
type Config struct {
	Dir         string
	InMemory    bool   // use a throwaway file in a temporary directory removed on Close
	Bucket      string // defaults to DefaultBucket
	BoltConfigs *bbolt.Options
}

func DefaultOptions(Dir string) *Config {
	return &Config{Dir: Dir, Bucket: DefaultBucket}
}
