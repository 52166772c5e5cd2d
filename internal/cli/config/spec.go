package config

import "time"

// CLIConfig is the configuration for delivtrack.
type CLIConfig struct {
	API    APISection    `koanf:"api" yaml:"api"`
	Store  StoreSection  `koanf:"store" yaml:"store"`
	Output OutputSection `koanf:"output" yaml:"output"`
	Log    LogSection    `koanf:"log" yaml:"log"`
}

// APISection configures the backend connection.
type APISection struct {
	URL       string        `koanf:"url" yaml:"url"`
	Timeout   time.Duration `koanf:"timeout" yaml:"timeout"`
	RateLimit float64       `koanf:"rate_limit" yaml:"rate_limit"` // requests per second, 0 disables
	CAFile    string        `koanf:"ca_file" yaml:"ca_file"`
	Insecure  bool          `koanf:"insecure" yaml:"insecure"`
}

// StoreSection configures where the session is persisted.
type StoreSection struct {
	Engine      string       `koanf:"engine" yaml:"engine"` // badger, redis, memory
	Dir         string       `koanf:"dir" yaml:"dir"`
	SealKeyFile string       `koanf:"seal_key_file" yaml:"seal_key_file"`
	Redis       RedisSection `koanf:"redis" yaml:"redis"`
}

// RedisSection configures the redis engine.
type RedisSection struct {
	Addr     string `koanf:"addr" yaml:"addr"`
	Password string `koanf:"password" yaml:"password"`
	DB       int    `koanf:"db" yaml:"db"`
	Prefix   string `koanf:"prefix" yaml:"prefix"`
}

// OutputSection configures rendering.
type OutputSection struct {
	Format string `koanf:"format" yaml:"format"` // table, json, yaml
}

// LogSection configures diagnostics on stderr.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Values flattens the configuration into dotted keys. Durations are
// rendered as strings so the map round-trips through YAML.
func (c *CLIConfig) Values() map[string]any {
	return map[string]any{
		"api.url":              c.API.URL,
		"api.timeout":          c.API.Timeout.String(),
		"api.rate_limit":       c.API.RateLimit,
		"api.ca_file":          c.API.CAFile,
		"api.insecure":         c.API.Insecure,
		"store.engine":         c.Store.Engine,
		"store.dir":            c.Store.Dir,
		"store.seal_key_file":  c.Store.SealKeyFile,
		"store.redis.addr":     c.Store.Redis.Addr,
		"store.redis.password": c.Store.Redis.Password,
		"store.redis.db":       c.Store.Redis.DB,
		"store.redis.prefix":   c.Store.Redis.Prefix,
		"output.format":        c.Output.Format,
		"log.level":            c.Log.Level,
		"log.format":           c.Log.Format,
	}
}
