package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the search paths at empty temporary directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 256, cfg.Server.MaxTrees)
	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, filepath.Join(dir, "cache", "ziptree"), cfg.Cache.Dir)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 4, cfg.Build.Workers)
	assert.Equal(t, uint64(150), cfg.Build.Limit)
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	doc := `
server:
  addr: "127.0.0.1:9000"
cache:
  backend: redis
  ttl: 2h
build:
  limit: 40
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ziptree.yaml"), []byte(doc), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, uint64(40), cfg.Build.Limit)
	assert.Equal(t, 4, cfg.Build.Workers)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("build:\n  workers: 2\n"), 0o644))
	t.Setenv("ZIPTREE_BUILD_WORKERS", "8")
	t.Setenv("ZIPTREE_CACHE_BACKEND", "none")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Build.Workers)
	assert.Equal(t, BackendNone, cfg.Cache.Backend)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("ZIPTREE_CACHE_BACKEND", "memcached")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{MaxTrees: 1},
			Cache:  CacheConfig{Backend: BackendFile, Dir: "/tmp/zt", TTL: time.Hour},
			Build:  BuildConfig{Workers: 1},
		}
	}

	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, false},
		{"file without dir", func(c *Config) { c.Cache.Dir = "" }, false},
		{"redis without dir", func(c *Config) { c.Cache.Backend, c.Cache.Dir = BackendRedis, "" }, true},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, false},
		{"no workers", func(c *Config) { c.Build.Workers = 0 }, false},
		{"no trees", func(c *Config) { c.Server.MaxTrees = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}
