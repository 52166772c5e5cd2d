package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Verify validates the configuration.
func Verify(cfg *CLIConfig) error {
	if err := verifyAPI(&cfg.API); err != nil {
		return err
	}
	if err := verifyStore(&cfg.Store); err != nil {
		return err
	}
	if !oneOf(cfg.Output.Format, "table", "json", "yaml") {
		return fmt.Errorf("output.format must be table, json or yaml, got %q", cfg.Output.Format)
	}
	if !oneOf(cfg.Log.Level, "debug", "info", "warn", "error") {
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", cfg.Log.Level)
	}
	if !oneOf(cfg.Log.Format, "text", "json") {
		return fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}
	return nil
}

func verifyAPI(cfg *APISection) error {
	if cfg.URL == "" {
		return fmt.Errorf("api.url is required")
	}
	raw := cfg.URL
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("api.url %q is not a valid URL", cfg.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.url scheme must be http or https, got %q", u.Scheme)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	return nil
}

func verifyStore(cfg *StoreSection) error {
	switch cfg.Engine {
	case "badger":
		if cfg.Dir == "" {
			return fmt.Errorf("store.dir is required for the badger engine")
		}
	case "redis":
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis engine")
		}
	case "memory":
	default:
		return fmt.Errorf("store.engine must be badger, redis or memory, got %q", cfg.Engine)
	}
	if cfg.Redis.DB < 0 {
		return fmt.Errorf("store.redis.db must not be negative")
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
