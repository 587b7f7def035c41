package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datadrivenconstruction/skillmig/pkg/migrate"
	"github.com/datadrivenconstruction/skillmig/pkg/presenter"
)

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Migrate skills as their SKILL.md files are created or changed",
	Long: `Run a migration pass over the root, then keep watching it and migrate every
skill whose SKILL.md is created or written. Directories named .git and
node_modules are not watched. Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		debounce, _ := cmd.Flags().GetDuration("debounce")
		if code := runWatch(ctx, viper.GetViper(), presenter.Default(), args, debounce); code != 0 {
			_ = shutdownTracing(cmd.Context())
			os.Exit(code)
		}
	},
}

func init() {
	watchCmd.Flags().DurationP("debounce", "d", migrate.DefaultDebounce, "Quiet period after the last change before a skill is processed")
}

func runWatch(ctx context.Context, v *viper.Viper, p presenter.Presenter, args []string, debounce time.Duration) int {
	if code := runMigrate(ctx, v, p, args); code != 0 || ctx.Err() != nil {
		return code
	}

	cfg, err := loadConfig(v, args)
	if err != nil {
		p.Error(err, "Invalid configuration")
		return 1
	}
	discovery, err := newDiscovery(cfg)
	if err != nil {
		p.Error(err, "Failed to set up skill discovery")
		return 1
	}
	m, err := newMigrator(cfg)
	if err != nil {
		p.Error(err, "Failed to load keyword tables")
		return 1
	}

	w := migrate.NewWatcher(m, discovery, debounce, func(res migrate.Result) {
		p.Line(lineStatus(res.Outcome), res.Line())
		if res.Diff != "" {
			p.Diff(res.Diff)
		}
	})

	p.Info("Watching for skill changes... Press Ctrl+C to stop")
	if err := w.Watch(ctx); err != nil {
		p.Error(err, "Watch failed")
		return 1
	}
	return 0
}
