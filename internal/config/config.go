package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultOnRamp       = 500
	defaultHistoryLimit = 25
	defaultListenAddr   = "127.0.0.1:8080"
	defaultLogLevel     = "info"

	configFile = "config.json"
	envPrefix  = "SIMCHAIN"
)

// HomeEnv overrides the config directory.
const HomeEnv = envPrefix + "_HOME"

// DefaultDir returns $SIMCHAIN_HOME or ~/.simchain.
func DefaultDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".simchain"), nil
}

// Load reads config from dir (or creates defaults), then applies
// SIMCHAIN_<KEY> environment overrides. dir defaults to DefaultDir().
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	for key, val := range defaults(dir) {
		v.SetDefault(key, val)
	}

	path := filepath.Join(dir, configFile)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.configDir = dir
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	switch c.KeyStorage {
	case KeyStorageFile, KeyStorageKeychain:
	default:
		return fmt.Errorf("key_storage must be %q or %q, got %q", KeyStorageFile, KeyStorageKeychain, c.KeyStorage)
	}
	if c.OnRampAmount <= 0 {
		return fmt.Errorf("onramp_amount must be greater than zero")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit can't be negative")
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// Keys lists the settable keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "data_dir":
		return c.DataDir, nil
	case "default_chain":
		return c.DefaultChain, nil
	case "chains_file":
		return c.ChainsFile, nil
	case "key_storage":
		return c.KeyStorage, nil
	case "onramp_amount":
		return strconv.FormatFloat(c.OnRampAmount, 'f', -1, 64), nil
	case "history_limit":
		return strconv.Itoa(c.HistoryLimit), nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set parses value into key and validates the result. It does not save.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	next := *c
	if err := set(&next, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

var setters = map[string]func(*Config, string) error{
	"data_dir":      func(c *Config, v string) error { c.DataDir = v; return nil },
	"default_chain": func(c *Config, v string) error { c.DefaultChain = strings.ToLower(v); return nil },
	"chains_file":   func(c *Config, v string) error { c.ChainsFile = v; return nil },
	"key_storage":   func(c *Config, v string) error { c.KeyStorage = strings.ToLower(v); return nil },
	"listen_addr":   func(c *Config, v string) error { c.ListenAddr = v; return nil },
	"log_level":     func(c *Config, v string) error { c.LogLevel = strings.ToLower(v); return nil },
	"onramp_amount": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.OnRampAmount = f
		return nil
	},
	"history_limit": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.HistoryLimit = n
		return nil
	},
}

// --- helpers ---

func defaults(dir string) map[string]any {
	return map[string]any{
		"data_dir":      filepath.Join(dir, "data"),
		"default_chain": "",
		"chains_file":   "",
		"key_storage":   KeyStorageFile,
		"onramp_amount": defaultOnRamp,
		"history_limit": defaultHistoryLimit,
		"listen_addr":   defaultListenAddr,
		"log_level":     defaultLogLevel,
	}
}
