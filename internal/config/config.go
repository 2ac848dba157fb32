// Package config loads keypad host configuration from a YAML (or JSON) file
// and KEYPAD_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "keypad.yaml"

// Config is the complete host configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Session SessionConfig `yaml:"session" mapstructure:"session"`
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Input   InputConfig   `yaml:"input" mapstructure:"input"`
}

type StoreConfig struct {
	Backend string      `yaml:"backend" mapstructure:"backend"`
	Dir     string      `yaml:"dir" mapstructure:"dir"`
	Redis   RedisConfig `yaml:"redis" mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" mapstructure:"addr"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

type SessionConfig struct {
	LockTTL time.Duration `yaml:"lock_ttl" mapstructure:"lock_ttl"`
}

type HTTPConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

type InputConfig struct {
	MaxSize int `yaml:"max_size" mapstructure:"max_size"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendFile,
			Dir:     filepath.Join(".keypad", "sessions"),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "keypad:session:",
			},
		},
		Session: SessionConfig{LockTTL: 30 * time.Second},
		HTTP:    HTTPConfig{Port: 8080},
		Log:     LogConfig{Level: "info"},
		Input:   InputConfig{MaxSize: 4096},
	}
}

// envKeys maps environment variables to config keys.
var envKeys = map[string]string{
	"KEYPAD_STORE_BACKEND":        "store.backend",
	"KEYPAD_STORE_DIR":            "store.dir",
	"KEYPAD_STORE_REDIS_ADDR":     "store.redis.addr",
	"KEYPAD_STORE_REDIS_PASSWORD": "store.redis.password",
	"KEYPAD_STORE_REDIS_DB":       "store.redis.db",
	"KEYPAD_STORE_REDIS_PREFIX":   "store.redis.prefix",
	"KEYPAD_STORE_REDIS_TTL":      "store.redis.ttl",
	"KEYPAD_SESSION_LOCK_TTL":     "session.lock_ttl",
	"KEYPAD_HTTP_PORT":            "http.port",
	"KEYPAD_LOG_LEVEL":            "log.level",
	"KEYPAD_MAX_INPUT_SIZE":       "input.max_size",
}

// Load reads path (YAML, or JSON by extension) over the defaults and then
// applies environment overrides. A missing file is not an error unless
// required is true.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := readFile(path)
		switch {
		case os.IsNotExist(err) && !required:
		case err != nil:
			return cfg, err
		default:
			if err := decode(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overlays the KEYPAD_* variables found by lookup onto cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	raw := map[string]any{}
	for env, key := range envKeys {
		if val, ok := lookup(env); ok {
			setPath(raw, key, val)
		}
	}
	if len(raw) == 0 {
		return nil
	}
	if err := decode(raw, cfg); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	return nil
}

// Validate checks enumerated and numeric settings.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q (want memory, file or redis)", c.Store.Backend)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	if c.Session.LockTTL < 0 || c.Store.Redis.TTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &raw)
	} else {
		// Default to YAML
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return raw, nil
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func setPath(m map[string]any, key, val string) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = val
}
