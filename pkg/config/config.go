// Package config loads pairtree settings from a TOML file and the
// environment.
//
// Settings are resolved in order: built-in defaults, then the config file
// ($XDG_CONFIG_HOME/pairtree/config.toml unless a path is given), then
// PAIRTREE_* environment variables. Command-line flags override all of them
// and are applied by the CLI.
//
//	[server]
//	addr = ":8080"
//	cors_origins = ["https://example.com"]
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "postgres"
//	postgres_url = "postgres://localhost/pairtree"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/pairtree/pkg/errors"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Config holds all settings.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Build  BuildConfig  `toml:"build"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig selects and configures the tree store.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	PostgresURL   string `toml:"postgres_url"`
}

// BuildConfig holds default build options.
type BuildConfig struct {
	Strategy string `toml:"strategy"`
	IDs      string `toml:"ids"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", CORSOrigins: []string{"*"}},
		Cache:  CacheConfig{Backend: CacheFile},
		Store: StoreConfig{
			Backend:       StoreMemory,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "pairtree",
		},
		Build: BuildConfig{Strategy: "closure", IDs: "value"},
	}
}

// Path returns the default config file path.
func Path() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pairtree", "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pairtree", "config.toml"), nil
}

// Load reads the config file at path over the defaults and applies the
// environment. An empty path means [Path]; a missing default file is not an
// error, but a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case errors.Is(err, fs.ErrNotExist):
		return cfg, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
	case err != nil:
		return cfg, errs.Wrap(errs.ErrCodeInvalidFormat, err, "config file %s", path)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, errs.New(errs.ErrCodeInvalidFormat, "config file %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from PAIRTREE_* variables found by lookup.
// Setting PAIRTREE_REDIS_ADDR also switches the cache backend to redis
// unless PAIRTREE_CACHE names another one.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set("PAIRTREE_ADDR", &c.Server.Addr)
	if v, ok := lookup("PAIRTREE_CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = strings.Split(v, ",")
	}

	if v, ok := lookup("PAIRTREE_REDIS_ADDR"); ok && v != "" {
		c.Cache.RedisAddr = v
		c.Cache.Backend = CacheRedis
	}
	set("PAIRTREE_REDIS_PASSWORD", &c.Cache.RedisPassword)
	if v, ok := lookup("PAIRTREE_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "PAIRTREE_REDIS_DB")
		}
		c.Cache.RedisDB = db
	}
	set("PAIRTREE_CACHE", &c.Cache.Backend)
	set("PAIRTREE_CACHE_DIR", &c.Cache.Dir)

	set("PAIRTREE_STORE", &c.Store.Backend)
	set("PAIRTREE_MONGO_URI", &c.Store.MongoURI)
	set("PAIRTREE_MONGO_DATABASE", &c.Store.MongoDatabase)
	set("PAIRTREE_POSTGRES_URL", &c.Store.PostgresURL)
	return nil
}

// Validate checks backend names and required connection settings.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidInput, "cache backend redis requires redis_addr")
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case StoreMemory, StoreMongo:
	case StorePostgres:
		if c.Store.PostgresURL == "" {
			return errs.New(errs.ErrCodeInvalidInput, "store backend postgres requires postgres_url")
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown store backend %q (must be one of: memory, mongo, postgres)", c.Store.Backend)
	}
	return nil
}
