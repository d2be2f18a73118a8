// Package config loads ziptree settings from defaults, an optional YAML
// file and ZIPTREE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const appName = "ziptree"

// Cache backends accepted in [CacheConfig.Backend].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

var backends = []string{BackendNone, BackendFile, BackendRedis, BackendMongo}

// ErrInvalid is returned by [Config.Validate].
var ErrInvalid = errors.New("config: invalid value")

// Config stores all configuration of the application.
type Config struct {
	LogLevel string       `mapstructure:"log_level"`
	Server   ServerConfig `mapstructure:"server"`
	Cache    CacheConfig  `mapstructure:"cache"`
	Build    BuildConfig  `mapstructure:"build"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	MaxTrees     int           `mapstructure:"max_trees"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`

	RedisURL        string `mapstructure:"redis_url"`
	MongoURI        string `mapstructure:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection"`
}

// BuildConfig holds indexing defaults.
type BuildConfig struct {
	Workers int    `mapstructure:"workers"`
	Limit   uint64 `mapstructure:"limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_trees", 256)
	v.SetDefault("server.max_body_bytes", 8<<20)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")

	v.SetDefault("cache.backend", BackendFile)
	v.SetDefault("cache.dir", DefaultCacheDir())
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.prefix", "")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("cache.mongo_database", appName)
	v.SetDefault("cache.mongo_collection", "cache")

	v.SetDefault("build.workers", 4)
	v.SetDefault("build.limit", 150)
}

// Load reads the configuration. An empty path searches for ziptree.yaml in
// the working directory and in $XDG_CONFIG_HOME/ziptree; a missing file is
// not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appName))
		}
	}

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the rest of the program cannot use.
func (c *Config) Validate() error {
	if !slices.Contains(backends, c.Cache.Backend) {
		return fmt.Errorf("%w: cache.backend %q (want one of %s)", ErrInvalid, c.Cache.Backend, strings.Join(backends, ", "))
	}
	if c.Cache.Backend == BackendFile && c.Cache.Dir == "" {
		return fmt.Errorf("%w: cache.dir is required for the file backend", ErrInvalid)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache.ttl must be positive", ErrInvalid)
	}
	if c.Build.Workers < 1 {
		return fmt.Errorf("%w: build.workers must be at least 1", ErrInvalid)
	}
	if c.Server.MaxTrees < 1 {
		return fmt.Errorf("%w: server.max_trees must be at least 1", ErrInvalid)
	}
	return nil
}

// DefaultCacheDir returns the cache directory using the XDG standard
// (~/.cache/ziptree/). It returns "" when no home directory is known.
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", appName)
}
