package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Engine names accepted by OpenEngine.
const (
	EngineBadger = "badger"
	EngineRedis  = "redis"
	EngineMemory = "memory"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
)

// Mutation is one write in a batch. Delete removes Key and ignores Value.
type Mutation struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// KVEngine defines the key/value operations the session store needs.
//
// Implementations must be safe for concurrent use. Batch applies all
// mutations atomically: either every mutation is visible or none is.
type KVEngine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Batch applies mutations in a single transaction.
	Batch(ctx context.Context, muts []Mutation) error

	// Close releases the engine.
	Close() error
}

// KVConfig configures a key/value engine.
type KVConfig struct {
	// Engine is one of "badger", "redis", "memory".
	// Default: "badger"
	Engine string

	// Dir is the storage directory (badger only).
	Dir string

	Badger BadgerConfig
	Redis  RedisConfig
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic value log GC runs.
	// Default: 10m
	GCInterval string

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 1MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 16MB
	ValueLogFileSize int64

	// SyncWrites enables fsync after each write.
	// Default: true, a login must survive a crash right after it.
	SyncWrites bool
}

// RedisConfig configures the shared Redis engine.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key.
	// Default: "delivtrack:"
	Prefix string
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Engine: EngineBadger,
		Dir:    dir,
		Badger: DefaultBadgerConfig(),
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "delivtrack:",
		},
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
//
// The session store holds two tiny values, so the caches and value log
// are sized far below Badger's server-oriented defaults.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        1 << 20,  // 1MB
		ValueLogFileSize: 16 << 20, // 16MB
		SyncWrites:       true,
	}
}

// OpenEngine opens the engine named by cfg.Engine.
func OpenEngine(cfg KVConfig, logger *slog.Logger) (KVEngine, error) {
	switch cfg.Engine {
	case "", EngineBadger:
		return NewBadgerEngine(cfg, logger)
	case EngineRedis:
		return NewRedisEngine(cfg.Redis)
	case EngineMemory:
		return NewMemoryEngine(), nil
	default:
		return nil, fmt.Errorf("storage: unknown engine %q", cfg.Engine)
	}
}
