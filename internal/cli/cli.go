package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pairtree/pkg/buildinfo"
	"github.com/matzehuels/pairtree/pkg/cache"
	"github.com/matzehuels/pairtree/pkg/config"
	"github.com/matzehuels/pairtree/pkg/pipeline"
	"github.com/matzehuels/pairtree/pkg/store"
	"github.com/matzehuels/pairtree/pkg/store/mongo"
	"github.com/matzehuels/pairtree/pkg/store/postgres"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "pairtree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and default config.
// The config file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pairtree rebuilds trees from parent/child pairs",
		Long: `pairtree reconstructs ordered trees from ancestor/descendant or
parent/child pairs, converts them to and from flat element records, and
renders, stores and serves them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pairtree/config.toml)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.leavesCommand())
	root.AddCommand(c.pairsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == config.CacheRedis {
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Config.Cache.RedisAddr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
		})
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newStore opens the tree store for backend, falling back to the configured
// backend when backend is empty.
func (c *CLI) newStore(ctx context.Context, backend string) (store.Store, error) {
	if backend == "" {
		backend = c.Config.Store.Backend
	}
	switch backend {
	case config.StoreMongo:
		s, err := mongo.Open(ctx, mongo.Options{
			URI:      c.Config.Store.MongoURI,
			Database: c.Config.Store.MongoDatabase,
		})
		if err != nil {
			return nil, err
		}
		return store.Instrument(backend, s), nil
	case config.StorePostgres:
		if c.Config.Store.PostgresURL == "" {
			return nil, fmt.Errorf("postgres store needs a url (set PAIRTREE_POSTGRES_URL)")
		}
		s, err := postgres.Open(ctx, c.Config.Store.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		return store.Instrument(backend, s), nil
	case config.StoreMemory:
		return store.Instrument(backend, store.NewMemory()), nil
	}
	return nil, fmt.Errorf("unknown store backend %q (must be mongo, postgres or memory)", backend)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/pairtree/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
