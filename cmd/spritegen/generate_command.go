package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"spritegen/internal/batch"
	"spritegen/internal/logging"
	"spritegen/internal/packcache"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var noCache bool
	var strict bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Regenerate sprite sheets, stylesheets, and TypeScript modules",
		Long: "Deletes every configured target folder, packs each sprite group, and writes\n" +
			"the sheet image, SCSS fragment, and TypeScript module per group plus the\n" +
			"shared _sizes.scss. Failed groups are reported and do not stop the run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !ctx.configExists {
				// target folders are deleted on every run; never act on defaults
				return fmt.Errorf("no config file found at %s; run 'spritegen config init' first", ctx.configPath)
			}

			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := []batch.Option{batch.WithLogger(logger)}
			if cfg.Cache.Enabled && !noCache {
				store, err := packcache.Open(runCtx, cfg.CachePath())
				if err != nil {
					logging.WarnWithContext(logger, "pack cache unavailable", "packcache_open_failed",
						logging.String("path", cfg.CachePath()),
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "run 'spritegen cache clear' or set cache.enabled = false"),
						logging.String(logging.FieldImpact, "all groups are packed from scratch"),
					)
				} else {
					defer store.Close()
					opts = append(opts, batch.WithCache(store))
				}
			}

			report, err := batch.New(cfg, opts...).Run(runCtx)
			if err != nil {
				return err
			}

			if !quiet {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderReport(report, shouldColorize(out)))
			}

			if strict && report.HasFailures() {
				return fmt.Errorf("%d of %d sprite groups failed", report.Count(batch.StatusFailed), len(report.Groups))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Pack every group even when the pack cache is enabled")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any sprite group fails")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the run summary")
	return cmd
}
