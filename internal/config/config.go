package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration of the arbor binary.
type Config struct {
	// Database is the SQLite dialogue database. Ignored when Fixture is set.
	Database string `mapstructure:"database"`
	// Fixture is a YAML/JSON dataset served from memory instead of a database.
	Fixture string `mapstructure:"fixture"`

	Redis    RedisConfig `mapstructure:"redis"`
	HTTP     HTTPConfig  `mapstructure:"http"`
	MaxDepth int         `mapstructure:"max_depth"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// RedisConfig enables the read-through cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

// EnvPrefix namespaces the environment overrides.
const EnvPrefix = "ARBOR_"

// envKeys maps environment variable suffixes to config paths.
var envKeys = map[string][]string{
	"DATABASE":       {"database"},
	"FIXTURE":        {"fixture"},
	"REDIS_ADDR":     {"redis", "addr"},
	"REDIS_PASSWORD": {"redis", "password"},
	"REDIS_DB":       {"redis", "db"},
	"REDIS_TTL":      {"redis", "ttl"},
	"REDIS_PREFIX":   {"redis", "prefix"},
	"HTTP_PORT":      {"http", "port"},
	"MAX_DEPTH":      {"max_depth"},
	"LOG_LEVEL":      {"log_level"},
	"LOG_FORMAT":     {"log_format"},
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Database: "dialogue.db",
		Redis: RedisConfig{
			TTL:    10 * time.Minute,
			Prefix: "arbor:",
		},
		HTTP:      HTTPConfig{Port: 8080},
		MaxDepth:  domain.DefaultMaxDepth,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads the YAML file at path (optional; empty skips it), applies the
// ARBOR_* environment overrides from environ and decodes the result over the
// defaults.
func Load(path string, environ []string) (Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if keys, known := envKeys[strings.TrimPrefix(name, EnvPrefix)]; known {
			set(raw, keys, value)
		}
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.Database == "" && c.Fixture == "" {
		errs = append(errs, errors.New("either database or fixture must be set"))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.HTTP.Port))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	if c.Redis.TTL < 0 {
		errs = append(errs, fmt.Errorf("redis.ttl must not be negative, got %s", c.Redis.TTL))
	}
	return errors.Join(errs...)
}

func set(m map[string]any, keys []string, value string) {
	for _, k := range keys[:len(keys)-1] {
		child, ok := m[k].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[k] = child
		}
		m = child
	}
	m[keys[len(keys)-1]] = value
}
