package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/commitgraph/pkg/cache"
	"github.com/matzehuels/commitgraph/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cache of sorted commit orders",
	}

	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// fileCache opens the file cache. Other backends expire entries themselves.
func (c *CLI) fileCache() (*cache.FileCache, error) {
	cfg := c.config().Cache
	if cfg.Backend != config.CacheFile {
		return nil, fmt.Errorf("cache backend is %s; only the file cache is managed here", cfg.Backend)
	}
	return cache.NewFileCache(cfg.Dir)
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheSweep(cmd.Context(), cmd.OutOrStdout(), "Pruned %d expired entries", (*cache.FileCache).Prune)
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheSweep(cmd.Context(), cmd.OutOrStdout(), "Cleared %d cached entries", (*cache.FileCache).Clear)
		},
	}
}

func (c *CLI) runCacheSweep(ctx context.Context, w io.Writer, msg string, sweep func(*cache.FileCache, context.Context) (int, error)) error {
	fc, err := c.fileCache()
	if err != nil {
		return err
	}
	defer fc.Close()

	s := startSpinner(ctx, c.status, "Sweeping "+fc.Dir())
	n, err := sweep(fc, ctx)
	if err != nil {
		s.Fail(err.Error())
		return err
	}
	s.Stop()
	printSuccess(w, msg, n)
	printDetail(w, "Directory: %s", fc.Dir())
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.config().Cache.Dir
			if dir == "" {
				var err error
				if dir, err = config.DefaultCacheDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
