package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spritegen/internal/config"
	"spritegen/internal/packcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:         "cache",
		Short:       "Manage the packed sheet cache",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))

	return cacheCmd
}

// cachePath falls back to the default cache location when no usable config
// exists, so the cache can be managed without a project.
func (c *commandContext) cachePath() string {
	if cfg, err := c.ensureConfig(); err == nil {
		return cfg.CachePath()
	}
	fallback := config.Default()
	return fallback.CachePath()
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.cachePath()
			store, err := packcache.Open(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("open pack cache: %w", err)
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear pack cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached sheet(s) from %s\n", removed, path)
			return nil
		},
	}
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show pack cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.cachePath()
			store, err := packcache.Open(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("open pack cache: %w", err)
			}
			defer store.Close()

			count, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:    %s\n", path)
			fmt.Fprintf(out, "Entries: %d\n", count)
			return nil
		},
	}
}
