package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis"
)

// RedisEngine implements KVEngine on a shared Redis server.
type RedisEngine struct {
	client *redis.Client
	prefix string
}

// NewRedisEngine connects to the configured Redis server and verifies it
// answers PING.
func NewRedisEngine(cfg RedisConfig) (*RedisEngine, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis: addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}

	return NewRedisEngineWithClient(client, cfg.Prefix), nil
}

// NewRedisEngineWithClient wraps an existing client.
func NewRedisEngineWithClient(client *redis.Client, prefix string) *RedisEngine {
	return &RedisEngine{client: client, prefix: prefix}
}

func (e *RedisEngine) key(k []byte) string {
	return e.prefix + string(k)
}

// Get retrieves a value by key.
func (e *RedisEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	v, err := e.client.WithContext(ctx).Get(e.key(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get: %w", err)
	}
	return v, nil
}

// Set stores a key-value pair without expiry.
func (e *RedisEngine) Set(ctx context.Context, key, value []byte) error {
	if err := e.client.WithContext(ctx).Set(e.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set: %w", err)
	}
	return nil
}

// Delete removes a key.
func (e *RedisEngine) Delete(ctx context.Context, key []byte) error {
	if err := e.client.WithContext(ctx).Del(e.key(key)).Err(); err != nil {
		return fmt.Errorf("redis: del: %w", err)
	}
	return nil
}

// Batch applies mutations in a MULTI/EXEC transaction.
func (e *RedisEngine) Batch(ctx context.Context, muts []Mutation) error {
	pipeline := e.client.WithContext(ctx).TxPipeline()
	for _, m := range muts {
		if m.Delete {
			pipeline.Del(e.key(m.Key))
		} else {
			pipeline.Set(e.key(m.Key), m.Value, 0)
		}
	}
	if _, err := pipeline.Exec(); err != nil {
		return fmt.Errorf("redis: exec batch: %w", err)
	}
	return nil
}

// Close closes the client.
func (e *RedisEngine) Close() error {
	return e.client.Close()
}
