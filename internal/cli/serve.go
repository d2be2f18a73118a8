package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/ziptree/internal/server"
	"github.com/matzehuels/ziptree/pkg/observability"
)

// serveCommand runs the HTTP API until the command context is cancelled.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			observability.NewLogHooks(logger).Register()
			defer observability.Reset()

			runner, err := c.newRunner(ctx, cacheFlags{noCache: noCache})
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, logger, server.Options{
				MaxTrees:     c.cfg.Server.MaxTrees,
				MaxBodyBytes: c.cfg.Server.MaxBodyBytes,
				DefaultLimit: c.cfg.Build.Limit,
			})
			logger.Debug("tree cache", "backend", c.cfg.Cache.Backend)
			return srv.ListenAndServe(ctx, addr, c.cfg.Server.ReadTimeout, c.cfg.Server.WriteTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the tree cache")
	return cmd
}
