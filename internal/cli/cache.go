package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scopegraph/pkg/cache"
)

// newCache opens the remote artifact cache selected by the settings.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	switch c.settings.CacheBackend {
	case cacheBackendNone:
		return cache.NewNullCache(), nil
	case cacheBackendRedis:
		rc, err := cache.DialRedis(ctx, c.settings.RedisAddr, appName+":")
		if err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", c.settings.RedisAddr, err)
		}
		return rc, nil
	case cacheBackendFile, "":
		return cache.NewFileCache(c.settings.CacheDir)
	}
	return nil, fmt.Errorf("unknown cache backend %q (want %s, %s or %s)",
		c.settings.CacheBackend, cacheBackendFile, cacheBackendRedis, cacheBackendNone)
}

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the remote artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached remote artifact from the file cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.settings.CacheDir
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo(c.Out, "Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}

			printSuccess(c.Out, "Cleared %d cached entries", count)
			printDetail(c.Out, "Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(c.Out, c.settings.CacheDir)
			return nil
		},
	}
}
