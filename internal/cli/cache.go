package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ziptree/internal/config"
	"github.com/matzehuels/ziptree/pkg/cache"
	zterrors "github.com/matzehuels/ziptree/pkg/errors"
)

// openCache opens the configured backend. A non-empty prefix scopes the
// keys so several users can share one Redis or MongoDB backend.
func openCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, cache.Keyer, error) {
	var keyer cache.Keyer
	if cfg.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Prefix)
	}
	if noCache {
		return cache.NewNullCache(), keyer, nil
	}

	var (
		c   cache.Cache
		err error
	)
	switch cfg.Backend {
	case config.BackendNone:
		c = cache.NewNullCache()
	case config.BackendFile:
		c, err = cache.NewFileCache(cfg.Dir)
	case config.BackendRedis:
		c, err = cache.NewRedisCache(ctx, cfg.RedisURL)
	case config.BackendMongo:
		c, err = cache.NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	default:
		return nil, nil, zterrors.New(zterrors.ErrCodeUnsupported, "cache backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, nil, zterrors.Wrap(zterrors.ErrCodeInternal, err, "open %s cache", cfg.Backend)
	}
	return c, keyer, nil
}

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the tree cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand. Only the file
// backend can be cleared; Redis and MongoDB entries expire on their own.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached trees and clusters",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if c.cfg.Cache.Backend != config.BackendFile {
				printWarning(out, "The %s backend expires entries by TTL; nothing to clear", c.cfg.Cache.Backend)
				return nil
			}
			fc, err := cache.NewFileCache(c.cfg.Cache.Dir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			n, err := fc.Clear()
			if err != nil {
				return err
			}
			printSuccess(out, "Cleared %d cached entries", n)
			printDetail(out, "Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cfg.Cache.Dir)
			return nil
		},
	}
}
