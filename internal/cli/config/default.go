package config

import (
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
)

// Default configuration values.
const (
	DefaultAPIURL      = "http://localhost:8080/api/v1"
	DefaultTimeout     = 10 * time.Second
	DefaultStoreEngine = "badger"
	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisPrefix = "delivtrack:"
	DefaultOutput      = "table"
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"

	homeDirName    = ".delivtrack"
	configFileName = "cli.yaml"
	sessionDirName = "session"
	historyName    = "history"
)

// Home returns ~/.delivtrack.
func Home() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeDirName), nil
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return inHome(configFileName)
}

// DefaultHistoryPath returns the shell history file path.
func DefaultHistoryPath() string {
	return inHome(historyName)
}

func inHome(name string) string {
	home, err := Home()
	if err != nil {
		return filepath.Join(homeDirName, name)
	}
	return filepath.Join(home, name)
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		API: APISection{
			URL:     DefaultAPIURL,
			Timeout: DefaultTimeout,
		},
		Store: StoreSection{
			Engine: DefaultStoreEngine,
			Dir:    inHome(sessionDirName),
			Redis: RedisSection{
				Addr:   DefaultRedisAddr,
				Prefix: DefaultRedisPrefix,
			},
		},
		Output: OutputSection{
			Format: DefaultOutput,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
