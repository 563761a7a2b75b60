package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/pairtree/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PAIRTREE_ADDR", "PAIRTREE_CORS_ORIGINS",
		"PAIRTREE_REDIS_ADDR", "PAIRTREE_REDIS_PASSWORD", "PAIRTREE_REDIS_DB",
		"PAIRTREE_CACHE", "PAIRTREE_CACHE_DIR",
		"PAIRTREE_STORE", "PAIRTREE_MONGO_URI", "PAIRTREE_MONGO_DATABASE", "PAIRTREE_POSTGRES_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.True(t, errs.Is(err, errs.ErrCodeFileNotFound), "err = %v", err)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[server]
addr = ":9000"
cors_origins = ["https://a.example", "https://b.example"]

[cache]
backend = "redis"
redis_addr = "cache:6379"
redis_db = 2

[store]
backend = "postgres"
postgres_url = "postgres://db/pairtree"

[build]
strategy = "direct"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 2, cfg.Cache.RedisDB)
	assert.Equal(t, StorePostgres, cfg.Store.Backend)
	assert.Equal(t, "direct", cfg.Build.Strategy)
	// Untouched keys keep their defaults.
	assert.Equal(t, "value", cfg.Build.IDs)
	assert.Equal(t, "pairtree", cfg.Store.MongoDatabase)
}

func TestLoadUnknownKey(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[server]\nport = 80\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidFormat))
	assert.Contains(t, err.Error(), "server.port")
}

func TestLoadMalformed(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[server\n")
	_, err := Load(path)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidFormat), "err = %v", err)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[server]\naddr = \":9000\"\n")
	t.Setenv("PAIRTREE_ADDR", ":7000")
	t.Setenv("PAIRTREE_REDIS_ADDR", "redis:6379")
	t.Setenv("PAIRTREE_STORE", "mongo")
	t.Setenv("PAIRTREE_MONGO_URI", "mongodb://mongo:27017")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, StoreMongo, cfg.Store.Backend)
	assert.Equal(t, "mongodb://mongo:27017", cfg.Store.MongoURI)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PAIRTREE_REDIS_ADDR":   "r:1",
		"PAIRTREE_CACHE":        "none",
		"PAIRTREE_CORS_ORIGINS": "https://x,https://y",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	// An explicit cache backend wins over the redis address switch.
	assert.Equal(t, CacheNone, cfg.Cache.Backend)
	assert.Equal(t, "r:1", cfg.Cache.RedisAddr)
	assert.Equal(t, []string{"https://x", "https://y"}, cfg.Server.CORSOrigins)

	env["PAIRTREE_REDIS_DB"] = "two"
	err := cfg.ApplyEnv(lookup)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "err = %v", err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis }, true},
		{"redis with addr", func(c *Config) { c.Cache.Backend = CacheRedis; c.Cache.RedisAddr = "x:1" }, false},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"postgres without url", func(c *Config) { c.Store.Backend = StorePostgres }, true},
		{"unknown store", func(c *Config) { c.Store.Backend = "sqlite" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pairtree", "config.toml"), p)
}
