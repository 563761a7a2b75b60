package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pairtree/pkg/config"
	"github.com/matzehuels/pairtree/pkg/server"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		backend string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Trees are built with POST /v1/trees/closure and /v1/trees/direct, imported
with POST /v1/trees/import and kept under /v1/store/{name}. Prometheus
metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := c.newStore(ctx, backend)
			if err != nil {
				return err
			}
			defer st.Close(context.WithoutCancel(ctx))

			if backend == "" {
				backend = c.Config.Store.Backend
			}
			if backend == config.StoreMemory {
				printWarning("Stored trees are kept in memory and lost on exit")
			}

			srv := server.New(server.Options{
				Addr:        addr,
				CORSOrigins: c.Config.Server.CORSOrigins,
				Runner:      runner,
				Store:       st,
				Logger:      c.Logger,
			})
			srv.Metrics().Install()

			cacheBackend := c.Config.Cache.Backend
			if noCache {
				cacheBackend = config.CacheNone
			}
			printKeyValue("Listening", addr)
			printKeyValue("Store", backend)
			printKeyValue("Cache", cacheBackend)

			// Interrupts end the server normally.
			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&backend, "backend", "", "tree store: memory (default), mongo, postgres")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
