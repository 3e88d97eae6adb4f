package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"chunkloader/preset"
)

const appName = "chunkloader"

// Backend names accepted by storage.backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

type Config struct {
	Listen   string  `koanf:"listen"`
	LogLevel string  `koanf:"log_level"` // "debug", "info", "warn" or "error"
	Storage  Storage `koanf:"storage"`
}

// Storage selects where presets are persisted.
type Storage struct {
	Backend    string      `koanf:"backend"`
	Key        string      `koanf:"key"`
	Dir        string      `koanf:"dir"`         // file backend
	SQLitePath string      `koanf:"sqlite_path"` // sqlite backend
	Redis      RedisConfig `koanf:"redis"`
	S3         S3Config    `koanf:"s3"`
}

type RedisConfig struct {
	URL string `koanf:"url"` // e.g. "redis://localhost:6379/0"
}

type S3Config struct {
	Endpoint  string `koanf:"endpoint"` // set for MinIO and other S3-compatible stores
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Prefix    string `koanf:"prefix"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	dataDir := filepath.Join(xdg.DataHome, appName)
	return &Config{
		Listen:   ":8080",
		LogLevel: "info",
		Storage: Storage{
			Backend:    BackendFile,
			Key:        preset.DefaultKey,
			Dir:        dataDir,
			SQLitePath: filepath.Join(dataDir, "presets.db"),
			Redis:      RedisConfig{URL: "redis://localhost:6379/0"},
			S3:         S3Config{Region: "us-east-1"},
		},
	}
}

// Load reads the standard config files and applies environment overrides.
func Load() (*Config, error) {
	return LoadFiles(getConfigPaths()...)
}

// LoadFiles reads the given TOML files in order (last wins); missing files
// are skipped. CHUNKLOADER_* variables are applied on top.
func LoadFiles(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("loading %s: %w", path, err)
			}
		}
	}

	// Environment overrides files.
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Storage.Dir = expandPath(cfg.Storage.Dir)
	cfg.Storage.SQLitePath = expandPath(cfg.Storage.SQLitePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/chunkloader/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

const envPrefix = "CHUNKLOADER_"

// envSections are the nested tables, most specific first, so that
// CHUNKLOADER_STORAGE_S3_ACCESS_KEY becomes storage.s3.access_key.
var envSections = []string{"storage_redis_", "storage_s3_", "storage_"}

// envKey maps an environment variable name to its koanf key.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	for _, section := range envSections {
		if strings.HasPrefix(key, section) {
			head := strings.ReplaceAll(section, "_", ".")
			return head + strings.TrimPrefix(key, section)
		}
	}
	return key
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Storage.Key == "" {
		return errors.New("storage.key must not be empty")
	}
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendRedis, BackendMemory:
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return lvl, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenBackend connects the configured preset backend. The returned closer
// releases its connection and is never nil.
func (s Storage) OpenBackend(ctx context.Context) (preset.Backend, io.Closer, error) {
	switch s.Backend {
	case BackendMemory:
		return preset.NewMemoryBackend(), nopCloser{}, nil
	case BackendFile:
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating data dir: %w", err)
		}
		return preset.NewFileBackend(s.Dir), nopCloser{}, nil
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(s.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating data dir: %w", err)
		}
		b, err := preset.OpenSQLite(s.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	case BackendRedis:
		b, err := preset.DialRedis(s.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	case BackendS3:
		b, err := preset.DialS3(ctx, preset.S3Options{
			Endpoint:  s.S3.Endpoint,
			Bucket:    s.S3.Bucket,
			Region:    s.S3.Region,
			AccessKey: s.S3.AccessKey,
			SecretKey: s.S3.SecretKey,
			Prefix:    s.S3.Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return b, nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", s.Backend)
}
