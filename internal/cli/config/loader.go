package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/knadh/koanf/maps"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/delivtrack-go/internal/infra/confloader"
)

// ErrUnknownKey is returned by Set for keys CLIConfig does not define.
var ErrUnknownKey = errors.New("unknown configuration key")

// Load layers defaults, the YAML file at path, DELIVTRACK_* variables and
// overrides (highest priority, usually from flags). A missing file is
// not an error. An empty path means DefaultConfigPath.
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	l := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOptionalFile(),
		confloader.WithDefaults(Default().Values()),
	)

	cfg := &CLIConfig{}
	if err := l.Load(cfg); err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if err := l.LoadMap(overrides); err != nil {
			return nil, err
		}
		if err := l.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	if err := expandPaths(cfg); err != nil {
		return nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	values := Default().Values()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set writes one key into the file at path, keeping the file's other
// values. The environment is not consulted so it never leaks into the
// file.
func Set(path, key, value string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, ok := Default().Values()[key]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	l := confloader.NewLoader()
	if err := l.LoadMap(Default().Values()); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		if err := l.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := l.LoadMap(map[string]any{key: value}); err != nil {
		return nil, err
	}

	cfg := &CLIConfig{}
	if err := l.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := Verify(cfg); err != nil {
		return nil, err
	}
	if err := Save(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML with 0600 permissions, creating the directory
// with 0700. The file is replaced atomically.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(maps.Unflatten(cfg.Values(), "."))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cli-*.yaml")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func expandPaths(cfg *CLIConfig) error {
	for _, p := range []*string{&cfg.Store.Dir, &cfg.Store.SealKeyFile, &cfg.API.CAFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}
